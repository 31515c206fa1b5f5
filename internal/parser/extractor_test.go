package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/attendance-service/internal/entity"
)

func table(rows ...Row) Table {
	return Table{Rows: rows}
}

func TestParseEndToEnd(t *testing.T) {
	got := NewExtractor(Policy{}).Parse(attendancePage)
	want := []entity.AttendanceRecord{
		{
			SubjectCode:          "ITITC601",
			SubjectName:          "Web Technology",
			ClassesPresent:       40,
			ClassesAbsent:        5,
			TotalClasses:         45,
			AttendancePercentage: 88.89,
		},
		{
			SubjectCode:          "CSE301",
			SubjectName:          "Data Structures",
			ClassesPresent:       46,
			ClassesAbsent:        4,
			TotalClasses:         50,
			AttendancePercentage: 92.00,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPercentageAlignsWithCodes(t *testing.T) {
	codes := []string{"MAC101", "PHY102", "CSE103", "ECE104"}
	percentages := []string{"75.5", "100", "0", "66.67"}

	tbl := table(
		append(Row{"Days"}, codes...),
		append(Row{"Overall (%)"}, percentages...),
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")

	require.Len(t, records, len(codes))
	wantPct := []float64{75.5, 100, 0, 66.67}
	for i, r := range records {
		assert.Equal(t, codes[i], r.SubjectCode)
		assert.Equal(t, wantPct[i], r.AttendancePercentage)
		assert.Equal(t, entity.SubjectNameUnknown, r.SubjectName)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	tables := Locate(attendancePage)
	require.NotEmpty(t, tables)
	ex := NewExtractor(Policy{})

	first := ex.Extract(tables[0], attendancePage)
	second := ex.Extract(tables[0], attendancePage)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestExtractComputesPercentageWithoutPercentageRow(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301", "CSE302", "CSE303"},
		Row{"P", "40", "0", "2"},
		Row{"A", "5", "0", "1"},
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, records, 3)

	assert.Equal(t, 88.89, records[0].AttendancePercentage)
	assert.Equal(t, 45, records[0].TotalClasses)

	// present+absent == 0 must not divide by zero.
	assert.Equal(t, 0.0, records[1].AttendancePercentage)
	assert.Equal(t, 0, records[1].TotalClasses)

	assert.Equal(t, 66.67, records[2].AttendancePercentage)
}

func TestExtractPercentagePrecedence(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301"},
		Row{"Overall (%)", "90.00"},
		Row{"Overall Present", "40"},
		Row{"Overall Absent", "5"},
	)

	fromPage := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, fromPage, 1)
	assert.Equal(t, 90.0, fromPage[0].AttendancePercentage)

	computed := NewExtractor(Policy{PreferComputedPercentage: true}).Extract(tbl, "")
	require.Len(t, computed, 1)
	assert.Equal(t, 88.89, computed[0].AttendancePercentage)
}

func TestExtractPreferComputedFallsBackToPage(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301"},
		Row{"Overall (%)", "90.00"},
	)
	records := NewExtractor(Policy{PreferComputedPercentage: true}).Extract(tbl, "")
	require.Len(t, records, 1)
	assert.Equal(t, 90.0, records[0].AttendancePercentage)
}

func TestExtractTotalRowWins(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301"},
		Row{"Total Classes", "50"},
		Row{"Overall Present", "40"},
		Row{"Overall Absent", "5"},
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, records, 1)
	assert.Equal(t, 50, records[0].TotalClasses)
	assert.Equal(t, 88.89, records[0].AttendancePercentage)
}

func TestExtractLastRowOfAKindWins(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301"},
		Row{"Overall (%)", "50.00"},
		Row{"Aug", "1"},
		Row{"Overall (%)", "75.00"},
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, records, 1)
	assert.Equal(t, 75.0, records[0].AttendancePercentage)
}

func TestExtractMalformedCells(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301", "CSE302"},
		Row{"Overall (%)", "n/a", "81.2%"},
		Row{"Overall Present", "forty", "13"},
		Row{"Overall Absent", "-"},
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, records, 2)

	assert.Equal(t, 0, records[0].ClassesPresent)
	assert.Equal(t, 0, records[0].ClassesAbsent)
	assert.Equal(t, 0.0, records[0].AttendancePercentage)

	// Absent row is short: the field defaults instead of failing.
	assert.Equal(t, 13, records[1].ClassesPresent)
	assert.Equal(t, 0, records[1].ClassesAbsent)
	assert.Equal(t, 81.2, records[1].AttendancePercentage)
}

func TestExtractHeaderWithoutSummaryRows(t *testing.T) {
	tbl := table(
		Row{"Days", "ITITC601", "CSE301"},
		Row{"01-Aug", "P", "A"},
		Row{"02-Aug", "P", "P"},
	)
	assert.Empty(t, NewExtractor(Policy{}).Extract(tbl, ""))
	assert.Empty(t, NewExtractor(Policy{}).Extract(table(Row{"Days", "CSE301"}), ""))
}

func TestExtractPartialSummaryKeepsEveryCode(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301", "CSE302"},
		Row{"Overall Present", "12"},
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, records, 2)
	assert.Equal(t, 12, records[0].ClassesPresent)
	assert.Equal(t, "CSE302", records[1].SubjectCode)
	assert.Equal(t, 0, records[1].ClassesPresent)
}

func TestExtractValuesFollowCodePosition(t *testing.T) {
	tbl := table(
		Row{"Days", "Lab", "CSE301"},
		Row{"Overall (%)", "55", "92"},
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, records, 1)
	assert.Equal(t, "CSE301", records[0].SubjectCode)
	assert.Equal(t, 55.0, records[0].AttendancePercentage, "first code takes the first value")
}

func TestExtractColumnPolicies(t *testing.T) {
	tbl := table(
		Row{"Days", "ITITC601", "", "Lab-2", "Days", "CSE301"},
		Row{"Overall (%)", "80", "70", "60"},
	)

	strict := NewExtractor(Policy{Columns: ColumnStrict}).Extract(tbl, "")
	require.Len(t, strict, 2)
	assert.Equal(t, "ITITC601", strict[0].SubjectCode)
	assert.Equal(t, 80.0, strict[0].AttendancePercentage)
	assert.Equal(t, "CSE301", strict[1].SubjectCode)
	assert.Equal(t, 70.0, strict[1].AttendancePercentage)

	permissive := NewExtractor(Policy{Columns: ColumnPermissive}).Extract(tbl, "")
	require.Len(t, permissive, 3)
	assert.Equal(t, []string{"ITITC601", "Lab-2", "CSE301"}, []string{
		permissive[0].SubjectCode, permissive[1].SubjectCode, permissive[2].SubjectCode,
	})
	assert.Equal(t, []float64{80, 70, 60}, []float64{
		permissive[0].AttendancePercentage, permissive[1].AttendancePercentage, permissive[2].AttendancePercentage,
	})
}

func TestExtractClampsPagePercentage(t *testing.T) {
	tbl := table(
		Row{"Days", "CSE301", "CSE302", "CSE303"},
		Row{"Overall (%)", "105", "-3", "99.999"},
	)
	records := NewExtractor(Policy{}).Extract(tbl, "")
	require.Len(t, records, 3)
	assert.Equal(t, 100.0, records[0].AttendancePercentage)
	assert.Equal(t, 0.0, records[1].AttendancePercentage)
	assert.Equal(t, 100.0, records[2].AttendancePercentage)
}

func TestExtractNoCodes(t *testing.T) {
	tbl := table(
		Row{"Days", "Lab A"},
		Row{"Overall (%)", "80"},
	)
	assert.Empty(t, NewExtractor(Policy{}).Extract(tbl, ""))
	assert.Len(t, NewExtractor(Policy{Columns: ColumnPermissive}).Extract(tbl, ""), 1)
}

func TestParseMultipleTables(t *testing.T) {
	doc := `<table><tr><td>Days</td><td>MAC101</td></tr><tr><td>Overall (%)</td><td>70</td></tr></table>
<table><tr><td>Days</td><td>PHY102</td></tr><tr><td>Overall (%)</td><td>80</td></tr></table>
<p>MAC101-Mathematics I<br>PHY102-Physics</p>`
	records := NewExtractor(Policy{}).Parse(doc)
	require.Len(t, records, 2)
	assert.Equal(t, "Mathematics I", records[0].SubjectName)
	assert.Equal(t, "Physics", records[1].SubjectName)
}

func TestNewPolicy(t *testing.T) {
	assert.Equal(t, Policy{}, NewPolicy(false, false))
	assert.Equal(t, Policy{Columns: ColumnPermissive, PreferComputedPercentage: true}, NewPolicy(true, true))
}
