package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/query"
)

var errBadRequest = errors.New("bad request")

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields and oversized payloads.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parseAmount converts a wire amount ("12.34") to Money.
func parseAmount(raw string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(raw))
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: amount: %v", errBadRequest, err)
	}
	return core.Money{Cents: cents}, nil
}

// parseTimestamp parses an optional RFC 3339 timestamp. Empty input
// yields the zero time.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: must be RFC 3339", errBadRequest, raw)
	}
	return ts, nil
}

// parseFilter reads the transaction query parameters.
//
//	range      all|thisWeek|lastWeek|thisMonth|lastMonth|custom
//	start,end  RFC 3339, required for range=custom
//	type       expense|income
//	categoryId string
//	authorId   int64
func parseFilter(r *http.Request) (query.Filter, error) {
	q := r.URL.Query()
	f := query.Filter{Range: query.RangeAll}

	if raw := q.Get("range"); raw != "" {
		f.Range = query.DateRange(raw)
		if !f.Range.Valid() {
			return query.Filter{}, fmt.Errorf("%w: unknown range %q", errBadRequest, raw)
		}
	}
	if f.Range == query.RangeCustom {
		start, err := parseTimestamp(q.Get("start"))
		if err != nil {
			return query.Filter{}, err
		}
		end, err := parseTimestamp(q.Get("end"))
		if err != nil {
			return query.Filter{}, err
		}
		if start.IsZero() || end.IsZero() {
			return query.Filter{}, fmt.Errorf("%w: custom range requires start and end", errBadRequest)
		}
		f.Start, f.End = start, end
	}

	if raw := q.Get("type"); raw != "" {
		t := core.TxType(raw)
		if !t.Valid() {
			return query.Filter{}, fmt.Errorf("%w: unknown type %q", errBadRequest, raw)
		}
		f.Type = t
	}

	f.CategoryID = q.Get("categoryId")

	if raw := q.Get("authorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return query.Filter{}, fmt.Errorf("%w: authorId must be an integer", errBadRequest)
		}
		f.AuthorID = id
	}

	return f, nil
}

// parsePage reads page and pageSize with 1-indexed defaults.
func parsePage(r *http.Request) (page, pageSize int, err error) {
	q := r.URL.Query()
	page, pageSize = 1, query.DefaultPageSize

	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("%w: page must be a positive integer", errBadRequest)
		}
	}
	if raw := q.Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return 0, 0, fmt.Errorf("%w: pageSize must be a positive integer", errBadRequest)
		}
	}
	return page, pageSize, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
