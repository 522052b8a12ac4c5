package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestNet(t *testing.T) {
	assert.True(t, dec("650.00").Equal(Net(dec("1000"), dec("200"), dec("150"))))
	// net may go negative when cash and expense exceed sales
	assert.True(t, dec("-50").Equal(Net(dec("100"), dec("100"), dec("50"))))
	assert.True(t, decimal.Zero.Equal(Net(decimal.Zero, decimal.Zero, decimal.Zero)))
}

func TestCommission(t *testing.T) {
	// 1000 * 10% = 100.00
	assert.Equal(t, "100.00", Commission(dec("1000"), dec("10")).StringFixed(2))
	// 333.33 * 7.5% = 25.0 (24.99975 rounds half-up)
	assert.Equal(t, "25.00", Commission(dec("333.33"), dec("7.5")).StringFixed(2))
	assert.Equal(t, "0.00", Commission(dec("1000"), decimal.Zero).StringFixed(2))
	assert.Equal(t, "0.00", Commission(decimal.Zero, dec("10")).StringFixed(2))
}

func TestEffectiveRate(t *testing.T) {
	// explicit rate wins over the employee default
	assert.True(t, dec("12").Equal(EffectiveRate(decPtr("12"), decPtr("8"))))
	// falls back to the employee default
	assert.True(t, dec("8").Equal(EffectiveRate(nil, decPtr("8"))))
	// zero when neither is set
	assert.True(t, decimal.Zero.Equal(EffectiveRate(nil, nil)))
	// explicit zero is a real rate, not "unset"
	assert.True(t, decimal.Zero.Equal(EffectiveRate(decPtr("0"), decPtr("8"))))
}

func TestWeightedCommissionRate(t *testing.T) {
	// 150 commission over 1000 sales = 15%
	assert.Equal(t, "15.00", WeightedCommissionRate(dec("150"), dec("1000")).StringFixed(2))
	// zero sales must not divide
	assert.True(t, decimal.Zero.Equal(WeightedCommissionRate(dec("150"), decimal.Zero)))
}

func TestExpiryStatus(t *testing.T) {
	today := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	at := func(days int) *time.Time {
		d := today.AddDate(0, 0, days)
		return &d
	}

	assert.Equal(t, DocumentSafe, ExpiryStatus(nil, today))
	assert.Equal(t, DocumentExpired, ExpiryStatus(at(-1), today))
	assert.Equal(t, DocumentUrgent, ExpiryStatus(at(0), today))
	assert.Equal(t, DocumentUrgent, ExpiryStatus(at(10), today))
	assert.Equal(t, DocumentUrgent, ExpiryStatus(at(15), today))
	assert.Equal(t, DocumentNear, ExpiryStatus(at(16), today))
	assert.Equal(t, DocumentNear, ExpiryStatus(at(60), today))
	assert.Equal(t, DocumentSafe, ExpiryStatus(at(61), today))
}

func TestDaysRemaining(t *testing.T) {
	today := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)

	// time-of-day must not affect the whole-day count
	got := DaysRemaining(&expiry, today)
	require.NotNil(t, got)
	assert.Equal(t, 10, *got)

	assert.Nil(t, DaysRemaining(nil, today))

	past := today.AddDate(0, 0, -3)
	got = DaysRemaining(&past, today)
	require.NotNil(t, got)
	assert.Equal(t, -3, *got)
}

func TestBalanceLabel(t *testing.T) {
	assert.Equal(t, "له", BalanceSummary{Balance: dec("50")}.Label())
	assert.Equal(t, "عليه", BalanceSummary{Balance: dec("-50")}.Label())
	assert.Equal(t, "متوازن", BalanceSummary{Balance: decimal.Zero}.Label())
}

func TestParseParty(t *testing.T) {
	p, err := ParseParty("employee", 7)
	require.NoError(t, err)
	assert.Equal(t, Party{Kind: PartyEmployee, ID: 7}, p)
	assert.Equal(t, "employee/7", p.String())

	for _, kind := range []string{"branch", "supplier", "customer"} {
		_, err := ParseParty(kind, 1)
		assert.NoError(t, err, kind)
	}

	_, err = ParseParty("vendor", 1)
	require.ErrorIs(t, err, ErrValidation)

	_, err = ParseParty("employee", 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestTotalEarnings(t *testing.T) {
	e := DailyEntry{Commission: dec("120.50"), Bonus: dec("30")}
	assert.Equal(t, "150.50", e.TotalEarnings().StringFixed(2))
}
