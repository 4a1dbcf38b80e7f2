package layout

import "github.com/xinyong-bot/xinyong/internal/numeral"

// anchorX is the shared baseline anchor for every line.
const anchorX = 160

// BuildPlan lays out the sign-prefixed Chinese and Latin number strings.
// The Chinese layout is keyed on the rune count of han (before its suffix is
// appended): up to six runes fit one line at shrinking tiers, seven squeezes
// the line up and pushes the Latin line down, beyond that the suffix and
// finally the number itself wrap to a second line. The Latin line is sized
// independently and only inherits the vertical compensation.
func BuildPlan(latin, han string, s Suffixes) Plan {
	hanRunes := []rune(han)
	plan := make(Plan, 0, 3)
	comp := 0

	switch l := len(hanRunes); {
	case l <= 4:
		plan = append(plan, Instruction{Text: han + s.Han, Script: ScriptHan, Tier: TierLarge, X: anchorX, Y: 140})
	case l == 5:
		plan = append(plan, Instruction{Text: han + s.Han, Script: ScriptHan, Tier: TierMedium, X: anchorX, Y: 140})
	case l == 6:
		plan = append(plan, Instruction{Text: han + s.Han, Script: ScriptHan, Tier: TierSmall, X: anchorX, Y: 140})
	case l == 7:
		plan = append(plan, Instruction{Text: han + s.Han, Script: ScriptHan, Tier: TierPico, X: anchorX, Y: 135})
		comp = 10
	case l <= 11:
		plan = append(plan,
			Instruction{Text: han, Script: ScriptHan, Tier: TierPico, X: anchorX, Y: 110},
			Instruction{Text: s.Han, Script: ScriptHan, Tier: TierPico, X: anchorX, Y: 145},
		)
	default:
		split := (l + len([]rune(s.Han))) / 2
		if split >= l {
			// An oversized configured suffix can push the midpoint past the
			// number; keep the whole number on the first line.
			split = l
		} else if !numeral.IsNumberGlyph(hanRunes[split]) {
			// Never open the second line with a bare scale or myriad mark.
			split++
		}
		plan = append(plan,
			Instruction{Text: string(hanRunes[:split]), Script: ScriptHan, Tier: TierPico, X: anchorX, Y: 110},
			Instruction{Text: string(hanRunes[split:]) + s.Han, Script: ScriptHan, Tier: TierPico, X: anchorX, Y: 145},
		)
	}

	suffix := s.LatinFull
	if len([]rune(latin)) > 7 {
		suffix = s.LatinShort
	}
	tier, baseY := TierLarge, 80
	if len([]rune(latin)) > 4 {
		tier, baseY = TierSmall, 75
	}
	plan = append(plan, Instruction{Text: latin + " " + suffix, Script: ScriptLatin, Tier: tier, X: anchorX, Y: baseY + comp})

	return plan
}
