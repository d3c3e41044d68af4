/*
normalize.go - Cell and text normalization

PURPOSE:
  Every comparison in this package runs on normalized text: trimmed,
  whitespace-collapsed, lowercased, with Arabic compatibility letters folded
  and Arabic diacritics stripped. Normalized text is used only for
  comparison, never displayed back to an operator.

ARABIC FOLDING:
  Human-entered names arrive with inconsistent hamza seats and taa marbuta
  spellings. The four compatibility folds below make "أحمد" and "احمد"
  compare equal, and stripping the combining-mark block makes fully
  vocalized text match its bare form.

DESIGN:
  The fold table and diacritic ranges are immutable package-level data.
  Normalize is a pure function; empty or unparseable input normalizes to "".

SEE ALSO:
  - resolve.go: Consumes normalized headers and roster names
  - header.go:  Token scan over normalized cells
*/
package sheet

import (
	"strings"
)

// =============================================================================
// NORMALIZATION TABLES
// =============================================================================

// arabicFolds maps Arabic compatibility forms to their canonical letter:
// alef variants with hamza/madda to bare alef, alef maqsura to yaa, and
// taa marbuta to haa.
var arabicFolds = map[rune]rune{
	'أ': 'ا', // أ → ا
	'إ': 'ا', // إ → ا
	'آ': 'ا', // آ → ا
	'ى': 'ي', // ى → ي
	'ة': 'ه', // ة → ه
}

// isArabicCombining reports whether r is a combining mark in the Arabic
// diacritics ranges (tanween, fatha/damma/kasra, shadda, sukun, superscript
// alef, and the honorific sign range).
func isArabicCombining(r rune) bool {
	switch {
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r == 0x0670:
		return true
	default:
		return false
	}
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// NormalizeText canonicalizes a raw string for comparison: trim, collapse
// every run of whitespace (including line breaks) to a single space,
// lowercase, fold Arabic compatibility letters, strip Arabic diacritics.
func NormalizeText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := arabicFolds[r]; ok {
			r = folded
		}
		if isArabicCombining(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize converts any cell to its comparison form. Numbers canonicalize
// through their decimal representation (so a numeric 0 and the text "0"
// compare equal); dates are never normalized here - date handling belongs to
// the row assembler's date policy.
func Normalize(c Cell) string {
	switch c.Kind {
	case CellText:
		return NormalizeText(c.Text)
	case CellNumber:
		return c.Number.String()
	default:
		return ""
	}
}

// rawText returns the display form of a cell for error messages and
// unmapped-column reporting.
func rawText(c Cell) string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Number.String()
	case CellDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// isPurelyNumeric reports whether a normalized string consists only of ASCII
// digits (e.g. "0", "2024"). Such headers terminate the employee range.
func isPurelyNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stripSpaces removes every internal space from an already-normalized
// string. Used by the space-insensitive resolution strategy.
func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
