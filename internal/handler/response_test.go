package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonops-backend/internal/domain"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusOK, map[string]any{"id": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])
	_, hasError := body["error"]
	assert.False(t, hasError)
}

func TestWriteMessageEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeMessage(rec, http.StatusCreated, nil, "created")

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "created", body["message"])
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErrorCode(rec, http.StatusBadRequest, CodeValidation, "name is required")

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Equal(t, "name is required", errObj["message"])
}

func TestWriteDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrDayLocked, http.StatusConflict, CodeDayLocked},
		{domain.ErrDayAlreadyClosed, http.StatusConflict, CodeDayAlreadyClosed},
		{domain.ErrDuplicateEntry, http.StatusConflict, CodeDuplicateEntry},
		{domain.ErrNotPending, http.StatusConflict, CodeValidation},
		{domain.ErrNoEntriesToClose, http.StatusBadRequest, CodeNoEntriesToClose},
		{domain.ErrBranchMismatch, http.StatusBadRequest, CodeValidation},
		{domain.ErrValidation, http.StatusBadRequest, CodeValidation},
		{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{assert.AnError, http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		body := decodeBody(t, rec)
		errObj := body["error"].(map[string]any)
		assert.Equal(t, tc.code, errObj["code"], tc.err.Error())
	}
}

func TestParsePagination(t *testing.T) {
	req := func(query string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/branches"+query, nil)
	}

	page, perPage := parsePagination(req(""))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage)

	page, perPage = parsePagination(req("?page=3&per_page=50"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, perPage)

	// clamped to bounds
	page, perPage = parsePagination(req("?page=0&per_page=0"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage)

	_, perPage = parsePagination(req("?per_page=500"))
	assert.Equal(t, 100, perPage)

	_, perPage = parsePagination(req("?per_page=junk"))
	assert.Equal(t, 20, perPage)
}

func TestWritePagedMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	writePaged(rec, []int{1, 2, 3}, 2, 3, 7)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	meta := data["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(3), meta["per_page"])
	assert.Equal(t, float64(7), meta["total"])
	assert.Equal(t, float64(3), meta["total_pages"])
}

func TestPathID(t *testing.T) {
	id, ok := pathID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-1"} {
		_, ok := pathID(bad)
		assert.False(t, ok, bad)
	}
}
