// Package layout decides how the two formatted number strings are placed on
// the 512x174 sticker canvas: which font tier each line uses, where its
// baseline sits, and whether the Chinese line is split in two. Decisions are
// pure functions of rune counts.
package layout

// Tier is a discrete font size bucket. The renderer maps each tier to a
// pixel size per script.
type Tier int

const (
	TierLarge Tier = iota
	TierMedium
	TierSmall
	TierPico
)

func (t Tier) String() string {
	switch t {
	case TierLarge:
		return "large"
	case TierMedium:
		return "medium"
	case TierSmall:
		return "small"
	case TierPico:
		return "pico"
	}
	return "unknown"
}

// Script selects which font face renders an instruction.
type Script int

const (
	ScriptHan Script = iota
	ScriptLatin
)

func (s Script) String() string {
	switch s {
	case ScriptHan:
		return "han"
	case ScriptLatin:
		return "latin"
	}
	return "unknown"
}

// Instruction is a single text draw: Text rendered in the Script face at the
// Tier size, anchored at baseline (X, Y).
type Instruction struct {
	Text   string
	Script Script
	Tier   Tier
	X, Y   int
}

// Plan is an ordered list of draw instructions. Chinese lines come first,
// the Latin line last. Built fresh per call, never shared.
type Plan []Instruction

// Suffixes carries the fixed display strings appended after the numbers.
// The short Latin form is used when the Latin number runs long.
type Suffixes struct {
	Han        string
	LatinFull  string
	LatinShort string
}
