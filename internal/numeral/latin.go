package numeral

import "strconv"

// FormatLatin renders a magnitude as decimal digits with an optional scale
// suffix: "k" for thousands, "m" for millions. The scale is chosen from the
// trailing-zero count alone, never from the size of the number, so only exact
// multiples of 1000 or 1000000 abbreviate (12300 prints in full as "12300").
// Returns ok=false for magnitudes outside [1, MaxMagnitude).
func FormatLatin(magnitude int64) (string, bool) {
	if magnitude <= 0 || magnitude >= MaxMagnitude {
		return "", false
	}

	switch trailingZeros(magnitude) / 3 {
	case 0:
		return strconv.FormatInt(magnitude, 10), true
	case 1:
		return strconv.FormatInt(magnitude/1000, 10) + "k", true
	case 2:
		return strconv.FormatInt(magnitude/1_000_000, 10) + "m", true
	default:
		return "", false
	}
}

// trailingZeros counts the trailing zero decimal digits of m. m must be
// positive.
func trailingZeros(m int64) int {
	n := 0
	for m%10 == 0 {
		m /= 10
		n++
	}
	return n
}
