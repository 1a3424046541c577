package calculator

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders f in its canonical decimal form: the shortest digits
// that round-trip, exponent notation outside [1e-6, 1e21), and Infinity/NaN
// for non-finite values. No rounding is applied, so 0.1+0.2 renders as
// 0.30000000000000004.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseDisplay reads the longest numeric prefix of s. A leading "Infinity"
// (optionally signed) parses as an infinity; input without any digits parses
// as NaN. Trailing garbage is ignored.
func ParseDisplay(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	// The prefix is well formed; the only possible error is ErrRange, which
	// still yields ±Inf or 0.
	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
