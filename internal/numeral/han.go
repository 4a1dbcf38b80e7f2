package numeral

import "slices"

// FormatHan renders a magnitude as a fully spelled-out Chinese numeral.
// Magnitudes of a myriad (10^4) or more split into upper and lower groups
// joined by the myriad mark; groups below the myriad spell every non-zero
// digit with its position glyph and collapse zero runs to a single 零.
// Returns ok=false for magnitudes outside [1, MaxMagnitude).
//
// Two behaviors of the numeral style are load-bearing and covered by tests:
// the thousands digit 2 is written 两 instead of 二, and zero elision resets
// at each myriad boundary, so 10000500 reads 一千万五百 with no 零 after 万.
func FormatHan(magnitude int64) (string, bool) {
	if magnitude <= 0 || magnitude >= MaxMagnitude {
		return "", false
	}
	return formatMyriads(magnitude), true
}

// formatMyriads splits m into 10^4 groups, most significant first. The lower
// group is omitted entirely when zero. m must be in [1, MaxMagnitude).
func formatMyriads(m int64) string {
	if m >= myriad {
		upper := m / myriad
		lower := m % myriad
		s := formatMyriads(upper) + string(Myriad)
		if lower != 0 {
			s += formatMyriads(lower)
		}
		return s
	}
	return formatGroup(m)
}

// formatGroup renders a magnitude in [1, 9999], walking decimal positions
// least significant first. Glyphs accumulate in reverse order (digit glyphs
// follow their exponent glyph) and a single reverse at the end produces the
// reading order.
func formatGroup(m int64) string {
	buf := make([]rune, 0, 8)
	for exp := 0; m > 0; exp++ {
		digit := int(m % 10)
		m /= 10

		if digit == 0 {
			if needsZeroMark(buf) {
				buf = append(buf, Zero)
			}
			continue
		}

		if exp > 0 {
			buf = append(buf, exponents[exp-1])
		}
		if usesTwoMark(digit, exp) {
			buf = append(buf, Two)
		} else {
			buf = append(buf, digits[digit-1])
		}
	}
	slices.Reverse(buf)
	return string(buf)
}

// needsZeroMark reports whether a zero digit contributes a 零 glyph given the
// reversed glyphs accumulated so far: only when some lower position already
// produced output and that output does not already start with 零. Trailing
// zero positions and repeated zeros contribute nothing.
func needsZeroMark(reversed []rune) bool {
	return len(reversed) > 0 && reversed[len(reversed)-1] != Zero
}

// usesTwoMark reports whether the digit at this exponent position is written
// with the special 两 glyph: only the digit 2 in the thousands position.
func usesTwoMark(digit, exp int) bool {
	return digit == 2 && exp == 3
}
