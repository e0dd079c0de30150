package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pfm/internal/auth"
	"pfm/internal/core"
	"pfm/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "yes").
		JSON(map[string]int{"n": 1}).
		Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "yes", rec.Header().Get("X-Custom"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewResponse().Status(http.StatusNoContent).Write(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	NewResponse().JSON(make(chan int)).Write(rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{newBadRequest("invalid id"), http.StatusBadRequest, "invalid id"},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{auth.ErrMissingToken, http.StatusUnauthorized, "invalid token"},
		{fmt.Errorf("parse: %w", auth.ErrInvalidToken), http.StatusUnauthorized, "invalid token"},
		{services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("create expense: %w", core.ErrInvalidAmount), http.StatusUnprocessableEntity, "invalid amount"},
		{core.ErrNotFound, http.StatusNotFound, "not found"},
		{fmt.Errorf("insert: %w", core.ErrConflict), http.StatusConflict, "conflict"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		code, msg := statusFor(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}

func TestSyncFailureIsServerError(t *testing.T) {
	err := fmt.Errorf("%w: %v", services.ErrSyncFailed, core.ErrConflict)
	code, _ := statusFor(err)
	assert.Equal(t, http.StatusInternalServerError, code)
}
