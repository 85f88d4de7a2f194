package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/timemanager-go/apperror"
)

// ParseID parses a positive integer identifier.
func ParseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError("invalid "+name+": must be a positive integer", err)
	}
	return id, nil
}

// PathID reads and parses the chi URL parameter called name.
func PathID(r *http.Request, name string) (int64, error) {
	return ParseID(chi.URLParam(r, name), name)
}

// Layouts accepted for date filters, most specific first. A value without a
// zone is taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTime parses a date filter value.
func ParseTime(value, name string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.NewValidationError("invalid "+name+": expected YYYY-MM-DD or RFC 3339 timestamp", nil)
}

// OptionalTime parses the query parameter name, returning nil when it is absent.
func OptionalTime(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	t, err := ParseTime(value, name)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
