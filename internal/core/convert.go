package core

// convert.go turns normalized cell text into the typed values panel payloads
// carry. Empty cells coerce to the zero value; text that is present but not a
// number is an error so the row is reported instead of silently stored as 0.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidNumber is wrapped by every numeric coercion failure.
var ErrInvalidNumber = errors.New("invalid number")

var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell removes spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="...") and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseFloat reads a decimal number. Thousands separators are accepted.
// An empty cell is 0.
func ParseFloat(field, s string) (float64, error) {
	s = strings.ReplaceAll(CleanCell(s), ",", "")
	if s == "" {
		return 0, nil
	}
	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("%w in %s: %q", ErrInvalidNumber, field, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w in %s: %q", ErrInvalidNumber, field, s)
	}
	return f, nil
}

// ParseInt reads a whole number. "4.0" is accepted, "4.5" is not.
// An empty cell is 0.
func ParseInt(field, s string) (int, error) {
	f, err := ParseFloat(field, s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w in %s: %q is not a whole number", ErrInvalidNumber, field, strings.TrimSpace(s))
	}
	return int(f), nil
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0. Empty is false.
func ParseBool(field, s string) (bool, error) {
	switch strings.ToLower(CleanCell(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean in %s: %q", field, s)
	}
}

// OneOf returns s when it exactly matches an allowed value, else fallback.
func OneOf(s string, allowed []string, fallback string) string {
	s = strings.TrimSpace(s)
	if slices.Contains(allowed, s) {
		return s
	}
	return fallback
}

// Text trims a cell for storage.
func Text(s string) string {
	return strings.TrimSpace(s)
}
