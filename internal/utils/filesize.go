package utils

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = [...]string{"B", "kB", "MB", "GB", "TB", "PB"}

// FormatFileSize renders size in binary units with two decimals, or as a
// plain byte count below 1 kB.
func FormatFileSize(size int64) string {
	if size < 1024 {
		return strconv.FormatInt(size, 10) + " B"
	}
	v, unit := float64(size), 0
	for ; v >= 1024 && unit < len(sizeUnits)-1; unit++ {
		v /= 1024
	}
	return fmt.Sprintf("%.2f %s", v, sizeUnits[unit])
}

// unitShift is the power of two each size suffix multiplies by.
var unitShift = map[string]uint{"": 0, "B": 0, "K": 10, "M": 20, "G": 30, "T": 40, "P": 50}

// ParseSizeFilter reads "+1M" (at least), "-500K" (at most) or "100"
// (exactly) and returns the threshold in bytes with the operator.
func ParseSizeFilter(filter string) (int64, string, error) {
	expr := strings.TrimSpace(filter)
	if expr == "" {
		return 0, "", fmt.Errorf("empty size filter")
	}

	op := "="
	if rest, ok := strings.CutPrefix(expr, "+"); ok {
		op, expr = ">=", rest
	} else if rest, ok := strings.CutPrefix(expr, "-"); ok {
		op, expr = "<=", rest
	}

	digits := strings.IndexFunc(expr, func(r rune) bool { return r < '0' || r > '9' })
	if digits < 0 {
		digits = len(expr)
	}
	if digits == 0 {
		return 0, "", fmt.Errorf("no number in size filter: %s", filter)
	}
	n, err := strconv.ParseInt(expr[:digits], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("size filter %s: %w", filter, err)
	}
	shift, ok := unitShift[strings.ToUpper(expr[digits:])]
	if !ok {
		return 0, "", fmt.Errorf("unknown unit %q in size filter: %s", expr[digits:], filter)
	}
	return n << shift, op, nil
}

// MatchesSize reports whether size satisfies a filter from ParseSizeFilter.
func MatchesSize(size, threshold int64, operator string) bool {
	switch operator {
	case ">=":
		return size >= threshold
	case "<=":
		return size <= threshold
	case "=":
		return size == threshold
	}
	return false
}
