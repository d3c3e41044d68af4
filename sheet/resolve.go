/*
resolve.go - Employee column range detection and identity resolution

PURPOSE:
  Two jobs live here:

  1. Range detection: starting at a fixed offset past the date/day columns,
     scan forward until a column's header terminates the employee range
     (empty, purely numeric, or a stop-word such as "Total"). The
     terminating column and everything after it are excluded.

  2. Identity resolution: each header inside the range is matched to a
     roster entry by an explicit, ordered list of strategies. The order is
     the contract:

       override map -> embedded ID -> exact name -> first name
                    -> space-insensitive -> substring

     First success wins. A header no strategy matches becomes an unmapped
     column - surfaced, never dropped, so an operator can fix the label.

DETERMINISM:
  Strategies that compare against roster names iterate the roster in the
  caller-supplied order; when two entries would both match, the earlier one
  wins. Callers must pass a stable roster snapshot.

SEE ALSO:
  - normalize.go: All comparisons run on normalized text
  - parse.go:     Supplies startColumn per sheet layout
*/
package sheet

import (
	"regexp"
	"strings"
)

// =============================================================================
// RANGE DETECTION - Stop conditions
// =============================================================================

// stopWords terminate the employee column range when any whitespace token of
// a normalized header equals one of them. English plus Arabic equivalents
// (post-normalization forms: taa marbuta already folded to haa).
var stopWords = map[string]bool{
	"total":    true,
	"sales":    true,
	"sale":     true,
	"quantity": true,
	"qty":      true,
	"pieces":   true,
	"notes":    true,
	"اجمالي":   true,
	"الاجمالي": true,
	"مجموع":    true,
	"المجموع":  true,
	"كميه":     true,
	"الكميه":   true,
	"قطع":      true,
	"ملاحظات":  true,
}

// isStopHeader reports whether a normalized header terminates the employee
// range: empty, purely numeric (a bare "0" is a common filler), or carrying
// a stop-word token.
func isStopHeader(norm string) bool {
	if norm == "" || isPurelyNumeric(norm) {
		return true
	}
	for _, tok := range strings.Fields(norm) {
		if stopWords[tok] {
			return true
		}
	}
	return false
}

// =============================================================================
// RESOLUTION STRATEGIES
// =============================================================================

// headerLabel is the pre-computed view of one candidate header that every
// strategy consumes.
type headerLabel struct {
	raw  string
	norm string
}

// resolveStrategy attempts to match one header to a roster employee ID.
// Strategies are pure; ok=false means "try the next one".
type resolveStrategy func(h headerLabel, roster []EmployeeRecord, override map[string]string) (id string, ok bool)

// resolveOrder is the authoritative precedence list. Keeping it as data
// (rather than nested conditionals) makes the order testable on its own.
var resolveOrder = []resolveStrategy{
	resolveByOverride,
	resolveByEmbeddedID,
	resolveByExactName,
	resolveByFirstName,
	resolveSpaceInsensitive,
	resolveBySubstring,
}

// embeddedIDPattern accepts identifier-looking tokens: alphanumeric with at
// least one digit, optionally led by letters (E001, emp12, 1042).
var embeddedIDPattern = regexp.MustCompile(`^[A-Za-z]*[0-9][A-Za-z0-9]*$`)

// embeddedID extracts the identifier token from a "<token> - <name>" header,
// or "" when the header does not carry one.
func embeddedID(raw string) string {
	idx := strings.Index(raw, " - ")
	if idx < 0 {
		return ""
	}
	tok := strings.TrimSpace(raw[:idx])
	if tok == "" || !embeddedIDPattern.MatchString(tok) {
		return ""
	}
	return tok
}

// resolveByOverride consults the caller-supplied override map (an auxiliary
// mapping sheet) before any name heuristic runs: first the exact normalized
// header text, then the emp_<id> form when the header embeds an ID.
func resolveByOverride(h headerLabel, _ []EmployeeRecord, override map[string]string) (string, bool) {
	if len(override) == 0 {
		return "", false
	}
	if id, ok := override[h.norm]; ok {
		return id, true
	}
	if tok := embeddedID(h.raw); tok != "" {
		if id, ok := override["emp_"+strings.ToLower(tok)]; ok {
			return id, true
		}
	}
	return "", false
}

// resolveByEmbeddedID matches a "<token> - <name>" header against roster IDs
// directly (case-insensitive exact). The name part is ignored: the embedded
// ID is authoritative even when the written name has drifted.
func resolveByEmbeddedID(h headerLabel, roster []EmployeeRecord, _ map[string]string) (string, bool) {
	tok := embeddedID(h.raw)
	if tok == "" {
		return "", false
	}
	for _, emp := range roster {
		if strings.EqualFold(emp.ID, tok) {
			return emp.ID, true
		}
	}
	return "", false
}

func resolveByExactName(h headerLabel, roster []EmployeeRecord, _ map[string]string) (string, bool) {
	for _, emp := range roster {
		if NormalizeText(emp.DisplayName) == h.norm {
			return emp.ID, true
		}
	}
	return "", false
}

// resolveByFirstName matches when the header equals the first
// whitespace-delimited token of a roster name. Sheets often label columns
// with first names only.
func resolveByFirstName(h headerLabel, roster []EmployeeRecord, _ map[string]string) (string, bool) {
	for _, emp := range roster {
		name := NormalizeText(emp.DisplayName)
		if first, _, _ := strings.Cut(name, " "); first != "" && first == h.norm {
			return emp.ID, true
		}
	}
	return "", false
}

// resolveSpaceInsensitive compares with all internal whitespace removed from
// both sides, absorbing inconsistent spacing inside compound names.
func resolveSpaceInsensitive(h headerLabel, roster []EmployeeRecord, _ map[string]string) (string, bool) {
	want := stripSpaces(h.norm)
	if want == "" {
		return "", false
	}
	for _, emp := range roster {
		if stripSpaces(NormalizeText(emp.DisplayName)) == want {
			return emp.ID, true
		}
	}
	return "", false
}

// resolveBySubstring matches when the roster name contains the header as a
// substring, absorbing truncated or partial labels. Last resort before
// giving up.
func resolveBySubstring(h headerLabel, roster []EmployeeRecord, _ map[string]string) (string, bool) {
	if h.norm == "" {
		return "", false
	}
	for _, emp := range roster {
		if strings.Contains(NormalizeText(emp.DisplayName), h.norm) {
			return emp.ID, true
		}
	}
	return "", false
}

// =============================================================================
// COLUMN RESOLUTION
// =============================================================================

// ResolveEmployeeColumns scans the header row from startColumn until the
// first stop condition and resolves each header inside the range against
// the roster. Every column in the range comes back either resolved or
// unmapped; callers decide what to do with the unmapped ones.
func ResolveEmployeeColumns(headerRow []Cell, startColumn int, roster []EmployeeRecord, override map[string]string) []EmployeeColumn {
	var cols []EmployeeColumn
	for col := startColumn; col < len(headerRow); col++ {
		cell := headerRow[col]
		norm := Normalize(cell)
		if isStopHeader(norm) {
			break
		}

		label := headerLabel{raw: rawText(cell), norm: norm}
		resolved := EmployeeColumn{ColumnIndex: col, RawText: label.raw}
		for _, strategy := range resolveOrder {
			if id, ok := strategy(label, roster, override); ok {
				resolved.EmployeeID = id
				break
			}
		}
		if !resolved.Resolved() {
			resolved.NormalizedText = norm
		}
		cols = append(cols, resolved)
	}
	return cols
}

// OverrideFromGrid builds an identity override map from an auxiliary mapping
// sheet (two columns: header text or emp_<id> token, then the canonical
// employee ID). Rows with either cell blank are ignored. Keys are stored in
// normalized form, matching what resolveByOverride looks up.
func OverrideFromGrid(grid Grid) map[string]string {
	override := make(map[string]string)
	for row := 0; row < grid.Rows(); row++ {
		key := Normalize(grid.At(row, 0))
		id := strings.TrimSpace(rawText(grid.At(row, 1)))
		if key == "" || id == "" {
			continue
		}
		override[key] = id
	}
	return override
}
