package validation

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	errNotPositive = errors.New("must be a positive integer")
	errNotBool     = errors.New("must be true or false")
	errNotDate     = errors.New("must be a date in YYYY-MM-DD or RFC 3339 format")
)

// Clean trims whitespace, strips surrounding quote characters and trims again.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParsePositiveInt parses a base-10 integer that must be > 0.
func ParsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(Clean(s))
	if err != nil || n <= 0 {
		return 0, errNotPositive
	}
	return n, nil
}

// ParseID parses a positive base-10 identifier.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(Clean(s), 10, 32)
	if err != nil || n == 0 {
		return 0, errNotPositive
	}
	return uint(n), nil
}

// ParseBool accepts true/false, 1/0, yes/no and on/off in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(Clean(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, errNotBool
	}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = Clean(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errNotDate
}
