// Package numeral formats integer magnitudes in two scripts: an abbreviated
// Latin form ("123k", "4m", plain digits) and a fully spelled-out Chinese
// numeral with myriad grouping.
//
// Both formatters share one domain: magnitudes in [1, 99999999]. Anything
// outside it has no representation and reports ok=false.
package numeral

// MaxMagnitude is the exclusive upper bound of the representable domain.
const MaxMagnitude int64 = 100_000_000

// myriad is the Chinese grouping unit, 10^4.
const myriad int64 = 10_000

// digits holds the glyphs for 1 through 9.
var digits = [9]rune{'一', '二', '三', '四', '五', '六', '七', '八', '九'}

// exponents holds the glyphs for the tens, hundreds, and thousands positions.
var exponents = [3]rune{'十', '百', '千'}

const (
	// Zero marks an elided run of zero digits.
	Zero rune = '零'

	// Myriad separates 10^4 groups.
	Myriad rune = '万'

	// Two replaces the ordinary two glyph in the thousands position.
	Two rune = '两'
)

// IsNumberGlyph reports whether r carries digit value: one of the nine digit
// glyphs, the zero glyph, or the special two glyph. Exponent and myriad marks
// are position markers, not number glyphs.
func IsNumberGlyph(r rune) bool {
	for _, d := range digits {
		if r == d {
			return true
		}
	}
	return r == Zero || r == Two
}
