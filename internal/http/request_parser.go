// Package http provides the JSON API server and its handlers.
//
// This file implements helpers for decoding request bodies, path ids and
// query parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pfm/internal/auth"
	"pfm/internal/core"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using now
// as the default. Values that are present but malformed are an error.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, newBadRequest("invalid year")
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, newBadRequest("invalid month")
		}
		params.Month = m
	}

	return params, nil
}

// ParseDateRange reads the optional start and end query dates.
func ParseDateRange(query url.Values) (start, end *core.Date, err error) {
	parse := func(key string) (*core.Date, error) {
		v := strings.TrimSpace(query.Get(key))
		if v == "" {
			return nil, nil
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return nil, newBadRequest("invalid " + key + " date")
		}
		return &d, nil
	}
	if start, err = parse("start"); err != nil {
		return nil, nil, err
	}
	if end, err = parse("end"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// DecodeJSON decodes the request body into dst. Malformed JSON is a bad
// request; values rejected by domain unmarshalers keep their validation
// error.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return newBadRequest("request body is empty")
		}
		return newBadRequest(fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}

// PathID parses the named chi URL parameter as a positive id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, newBadRequest("invalid " + name)
	}
	return id, nil
}

// QueryID parses an optional positive id query parameter. ok is false when
// the parameter is absent.
func QueryID(query url.Values, name string) (id int64, ok bool, err error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, newBadRequest("invalid " + name)
	}
	return id, true, nil
}

// currentUser returns the authenticated user id. Routes behind the auth
// middleware always have one.
func currentUser(r *http.Request) (int64, error) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		return 0, auth.ErrMissingToken
	}
	return id, nil
}
