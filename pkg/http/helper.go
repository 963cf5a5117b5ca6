package http

import (
	"net/http"
	"strconv"
	"time"

	"eventrooms/pkg/config"
	apperrors "eventrooms/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractTimeRange reads RFC 3339 "start" and "end" query parameters.
// Both are required. Ordering is left to the service.
func ExtractTimeRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	start, err := parseTimeParam(query.Get("start"), "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTimeParam(query.Get("end"), "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ExtractOptionalTimeRange is like ExtractTimeRange but returns zero times
// for missing parameters.
func ExtractOptionalTimeRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	var start, end time.Time
	var err error
	if s := query.Get("start"); s != "" {
		if start, err = parseTimeParam(s, "start"); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if s := query.Get("end"); s != "" {
		if end, err = parseTimeParam(s, "end"); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func parseTimeParam(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput("missing " + name + " parameter")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + " parameter, expected RFC 3339: " + value)
	}
	return t, nil
}
