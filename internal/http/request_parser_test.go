package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pfm/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{name: "defaults to now", query: "", want: MonthParams{Year: 2025, Month: 3}},
		{name: "explicit", query: "year=2024&month=12", want: MonthParams{Year: 2024, Month: 12}},
		{name: "month only", query: "month=7", want: MonthParams{Year: 2025, Month: 7}},
		{name: "out of range month is left to the service", query: "month=13", want: MonthParams{Year: 2025, Month: 13}},
		{name: "malformed month", query: "month=march", wantErr: true},
		{name: "malformed year", query: "year=20x5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseMonthParams(q, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateRange(t *testing.T) {
	q := url.Values{"start": {"2025-03-01"}, "end": {"2025-03-31"}}
	start, end, err := ParseDateRange(q)
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, core.NewDate(2025, 3, 1), *start)
	assert.Equal(t, core.NewDate(2025, 3, 31), *end)

	start, end, err = ParseDateRange(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	_, _, err = ParseDateRange(url.Values{"end": {"31/03/2025"}})
	assert.ErrorIs(t, err, errBadRequest)
}

func TestDecodeJSON(t *testing.T) {
	newReq := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	var e core.Expense
	require.NoError(t, DecodeJSON(newReq(`{"category_id":3,"expense_date":"2025-03-10","amount":"12.50"}`), &e))
	assert.Equal(t, int64(3), e.CategoryID)
	assert.Equal(t, core.NewMoney(12, 50), e.Amount)

	err := DecodeJSON(newReq(""), &e)
	assert.ErrorIs(t, err, errBadRequest)
	assert.Contains(t, err.Error(), "empty")

	assert.ErrorIs(t, DecodeJSON(newReq(`{"amount":`), &e), errBadRequest)
	assert.ErrorIs(t, DecodeJSON(newReq(`{"amount":"-5"}`), &e), core.ErrValidation)
	assert.ErrorIs(t, DecodeJSON(newReq(`{"expense_date":"2025-13-01"}`), &e), core.ErrValidation)
}

func TestPathID(t *testing.T) {
	withParam := func(v string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := PathID(withParam("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := PathID(withParam(bad), "id")
		assert.ErrorIs(t, err, errBadRequest, bad)
	}
}

func TestQueryID(t *testing.T) {
	id, ok, err := QueryID(url.Values{"user_id": {"7"}}, "user_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok, err = QueryID(url.Values{}, "user_id")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = QueryID(url.Values{"user_id": {"x"}}, "user_id")
	assert.ErrorIs(t, err, errBadRequest)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Groceries", sanitizeInput("  Groceries\x00 "))
	assert.Equal(t, "a\tb", sanitizeInput("a\tb"))
	assert.Equal(t, "", sanitizeInput("\x07"))
}
