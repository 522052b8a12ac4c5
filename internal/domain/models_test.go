package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceStatusValid(t *testing.T) {
	for _, s := range []AdvanceStatus{AdvancePending, AdvanceApproved, AdvanceRejected, AdvanceCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, AdvanceStatus("").Valid())
	assert.False(t, AdvanceStatus("declined").Valid())
}

func TestLedgerEnumsValid(t *testing.T) {
	assert.True(t, DirectionDebit.Valid())
	assert.True(t, DirectionCredit.Valid())
	assert.False(t, LedgerDirection("both").Valid())

	assert.True(t, LedgerConfirmed.Valid())
	assert.False(t, LedgerStatus("done").Valid())

	assert.True(t, SourceAdvanceRequest.Valid())
	assert.False(t, LedgerSource("import").Valid())
}
