package handlers

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Matches "HH:MM" in 24-hour time, single-digit hours allowed.
var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

func oneOf(values []string) *validation.InRule {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return validation.In(args...)
}

// parseISODate accepts RFC 3339 timestamps and plain dates.
func parseISODate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("must be a valid date")
}

// isoDate is a validation rule for date fields, given as strings or
// string pointers.
func isoDate(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	_, err := parseISODate(s)
	return err
}
