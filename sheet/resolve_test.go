package sheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-recon/sheet"
)

// =============================================================================
// COLUMN RANGE DETECTION
// =============================================================================

func TestResolveEmployeeColumns_StopWordBoundary(t *testing.T) {
	// GIVEN: the canonical boundary case - employees end right before "SALES"
	header := txt("Date", "Day", "Abdulhadi", "Muslim", "SALES", "0", "Total Sales")
	roster := []sheet.EmployeeRecord{
		{ID: "E1", DisplayName: "Abdulhadi Omar"},
		{ID: "E2", DisplayName: "Muslim Khan"},
	}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)

	require.Len(t, cols, 2)
	assert.Equal(t, "Abdulhadi", cols[0].RawText)
	assert.Equal(t, "Muslim", cols[1].RawText)
	assert.Equal(t, 3, cols[1].ColumnIndex, "last employee column sits immediately before SALES")
}

func TestResolveEmployeeColumns_StopConditions(t *testing.T) {
	roster := []sheet.EmployeeRecord{{ID: "E1", DisplayName: "Ali"}}

	tests := []struct {
		name   string
		header []sheet.Cell
		want   int
	}{
		{"empty header stops", txt("Date", "Day", "Ali", "", "Omar"), 1},
		{"bare zero stops", txt("Date", "Day", "Ali", "0", "Omar"), 1},
		{"total stops", txt("Date", "Day", "Ali", "Total", "Omar"), 1},
		{"quantity stops", txt("Date", "Day", "Ali", "Quantity", "Omar"), 1},
		{"pieces stops", txt("Date", "Day", "Ali", "Pieces", "Omar"), 1},
		{"notes stops", txt("Date", "Day", "Ali", "Notes", "Omar"), 1},
		{"arabic total stops", txt("Date", "Day", "Ali", "الاجمالي", "Omar"), 1},
		{"stop word inside phrase", txt("Date", "Day", "Ali", "Total Sales", "Omar"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := sheet.ResolveEmployeeColumns(tt.header, 2, roster, nil)
			assert.Len(t, cols, tt.want)
		})
	}
}

func TestResolveEmployeeColumns_NumericNumberCellStops(t *testing.T) {
	// A numeric 0 cell (not text) also terminates the range.
	header := []sheet.Cell{
		sheet.TextCell("Date"), sheet.TextCell("Day"),
		sheet.TextCell("Ali"), sheet.NumberCellFromInt(0), sheet.TextCell("Omar"),
	}
	cols := sheet.ResolveEmployeeColumns(header, 2, []sheet.EmployeeRecord{{ID: "E1", DisplayName: "Ali"}}, nil)
	assert.Len(t, cols, 1)
}

func TestResolveEmployeeColumns_ZeroColumns(t *testing.T) {
	header := txt("Date", "Day", "Total")
	cols := sheet.ResolveEmployeeColumns(header, 2, nil, nil)
	assert.Empty(t, cols)
}

// =============================================================================
// IDENTITY RESOLUTION - Strategy precedence
// =============================================================================

func TestResolve_EmbeddedIDBeatsExactName(t *testing.T) {
	// GIVEN: a header whose embedded ID and whose literal text both match
	//        different roster entries
	// THEN: the embedded ID wins (strategy order is the contract)
	header := txt("Date", "Day", "E001 - Ali")
	roster := []sheet.EmployeeRecord{
		{ID: "E900", DisplayName: "E001 - Ali"}, // exact-name bait
		{ID: "E001", DisplayName: "Ali Hassan"},
	}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E001", cols[0].EmployeeID)
}

func TestResolve_EmbeddedIDCaseInsensitive(t *testing.T) {
	header := txt("Date", "Day", "e001 - Ali")
	roster := []sheet.EmployeeRecord{{ID: "E001", DisplayName: "Ali Hassan"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E001", cols[0].EmployeeID)
}

func TestResolve_NameWithoutDigitsIsNotAnID(t *testing.T) {
	// "Ali - Hassan" has no identifier-looking token before the dash; the
	// embedded-ID strategy must not fire and no name strategy matches the
	// dashed form, so the column surfaces as unmapped instead of silently
	// resolving "Ali" to the wrong person.
	header := txt("Date", "Day", "Ali - Hassan")
	roster := []sheet.EmployeeRecord{{ID: "ALI", DisplayName: "Alice Mansour"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.False(t, cols[0].Resolved())
}

func TestResolve_OverrideBeatsEverything(t *testing.T) {
	header := txt("Date", "Day", "E001 - Ali")
	roster := []sheet.EmployeeRecord{{ID: "E001", DisplayName: "Ali Hassan"}}
	override := map[string]string{"e001 - ali": "E777"}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, override)
	require.Len(t, cols, 1)
	assert.Equal(t, "E777", cols[0].EmployeeID)
}

func TestResolve_OverrideEmpTokenForm(t *testing.T) {
	header := txt("Date", "Day", "E001 - Ali")
	roster := []sheet.EmployeeRecord{{ID: "E555", DisplayName: "Someone Else"}}
	override := map[string]string{"emp_e001": "E555"}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, override)
	require.Len(t, cols, 1)
	assert.Equal(t, "E555", cols[0].EmployeeID)
}

func TestResolve_ExactNormalizedName(t *testing.T) {
	header := txt("Date", "Day", "  ALI   HASSAN ")
	roster := []sheet.EmployeeRecord{{ID: "E1", DisplayName: "Ali Hassan"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E1", cols[0].EmployeeID)
}

func TestResolve_ArabicNameVariants(t *testing.T) {
	// Hamza and taa marbuta variants written differently in header and roster.
	header := txt("Date", "Day", "أسامة")
	roster := []sheet.EmployeeRecord{{ID: "E1", DisplayName: "اسامه"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E1", cols[0].EmployeeID)
}

func TestResolve_FirstName(t *testing.T) {
	header := txt("Date", "Day", "Ali")
	roster := []sheet.EmployeeRecord{{ID: "E1", DisplayName: "Ali Hassan"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E1", cols[0].EmployeeID)
}

func TestResolve_FirstName_RosterOrderBreaksTies(t *testing.T) {
	// Two roster entries share the first name; the earlier one wins.
	header := txt("Date", "Day", "Ali")
	roster := []sheet.EmployeeRecord{
		{ID: "E1", DisplayName: "Ali Hassan"},
		{ID: "E2", DisplayName: "Ali Saleh"},
	}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E1", cols[0].EmployeeID)

	// Reversed roster flips the winner: determinism comes from caller order.
	reversed := []sheet.EmployeeRecord{roster[1], roster[0]}
	cols = sheet.ResolveEmployeeColumns(header, 2, reversed, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E2", cols[0].EmployeeID)
}

func TestResolve_SpaceInsensitive(t *testing.T) {
	// Header spaced, roster unspaced: equal once internal whitespace goes.
	header := txt("Date", "Day", "Abdul Rahman")
	roster := []sheet.EmployeeRecord{{ID: "E1", DisplayName: "AbdulRahman"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E1", cols[0].EmployeeID)
}

func TestResolve_SubstringContainment(t *testing.T) {
	// Truncated header: the roster name contains it.
	header := txt("Date", "Day", "Abdulha")
	roster := []sheet.EmployeeRecord{{ID: "E1", DisplayName: "Abdulhadi Omar"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.Equal(t, "E1", cols[0].EmployeeID)
}

func TestResolve_UnmappedSurfaced(t *testing.T) {
	header := txt("Date", "Day", "Nobody Known")
	roster := []sheet.EmployeeRecord{{ID: "E1", DisplayName: "Ali Hassan"}}

	cols := sheet.ResolveEmployeeColumns(header, 2, roster, nil)
	require.Len(t, cols, 1)
	assert.False(t, cols[0].Resolved())
	assert.Equal(t, "Nobody Known", cols[0].RawText)
	assert.Equal(t, "nobody known", cols[0].NormalizedText)
}

// =============================================================================
// OVERRIDE MAP LOADING
// =============================================================================

func TestOverrideFromGrid(t *testing.T) {
	grid := sheet.Grid{
		txt("Ali  HASSAN", "E001"),
		txt("", "E002"), // blank key ignored
		txt("emp_e003", "E003"),
		{sheet.TextCell("Omar"), sheet.BlankCell()}, // blank value ignored
	}

	override := sheet.OverrideFromGrid(grid)
	assert.Equal(t, map[string]string{
		"ali hassan": "E001",
		"emp_e003":   "E003",
	}, override)
}
