package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/user/attendance-service/internal/entity"
)

// ColumnPolicy decides which header cells become subject columns.
type ColumnPolicy int

const (
	// ColumnStrict keeps only cells shaped like a subject code.
	ColumnStrict ColumnPolicy = iota
	// ColumnPermissive also keeps any other non-empty cell except "Days".
	ColumnPermissive
)

// Policy holds the tie-break choices of the extractor.
type Policy struct {
	Columns ColumnPolicy
	// PreferComputedPercentage derives the percentage from the present and
	// absent counts whenever they sum above zero, ignoring the page's value.
	PreferComputedPercentage bool
}

// Extractor assembles attendance records from located tables.
type Extractor struct {
	policy Policy
}

// NewExtractor creates an Extractor with the given policy.
func NewExtractor(policy Policy) *Extractor {
	return &Extractor{policy: policy}
}

// Parse locates every attendance table in document and extracts its
// records, resolving subject names against the same document.
func (e *Extractor) Parse(document string) []entity.AttendanceRecord {
	var records []entity.AttendanceRecord
	for _, table := range Locate(document) {
		records = append(records, e.Extract(table, document)...)
	}
	return records
}

// Extract builds one record per subject column of table, in header order.
// fullMarkup is searched for subject names. A table with no recognised
// summary row yields nothing.
func (e *Extractor) Extract(table Table, fullMarkup string) []entity.AttendanceRecord {
	columns := e.subjectColumns(table.Header())
	if len(columns) == 0 {
		return nil
	}

	summary := classifyRows(table.Body())
	if len(summary) == 0 {
		return nil
	}

	codes := make([]string, len(columns))
	for i, col := range columns {
		codes[i] = col.code
	}
	names := BuildNameIndex(fullMarkup, codes)

	records := make([]entity.AttendanceRecord, 0, len(columns))
	for _, col := range columns {
		records = append(records, e.assemble(col, summary, names))
	}
	return records
}

// column is a subject code and its position among the table's codes. Summary
// row values are aligned with that position, not with the header cell.
type column struct {
	code  string
	index int
}

func (e *Extractor) subjectColumns(header Row) []column {
	var columns []column
	for _, cell := range header.Values() {
		switch {
		case IsSubjectCode(cell):
			columns = append(columns, column{code: cell, index: len(columns)})
		case e.policy.Columns == ColumnPermissive && cell != "" && cell != daysLabel:
			columns = append(columns, column{code: cell, index: len(columns)})
		}
	}
	return columns
}

// classifyRows maps each summary kind to its row values. When a kind
// repeats, the last row wins.
func classifyRows(rows []Row) map[SummaryRowKind][]string {
	summary := make(map[SummaryRowKind][]string)
	for _, row := range rows {
		if len(row) <= 1 {
			continue
		}
		kind := ClassifyLabel(row.Label())
		if kind == KindNone {
			continue
		}
		summary[kind] = row.Values()
	}
	return summary
}

func (e *Extractor) assemble(col column, summary map[SummaryRowKind][]string, names NameIndex) entity.AttendanceRecord {
	i := col.index
	present := parseCount(cellAt(summary[KindPresent], i))
	absent := parseCount(cellAt(summary[KindAbsent], i))

	total := present + absent
	if cell := cellAt(summary[KindTotal], i); cell != "" {
		if n, ok := parseInt(cell); ok {
			total = n
		}
	}

	computed := computePercentage(present, absent)
	percentage := computed
	if cell := cellAt(summary[KindPercentage], i); cell != "" {
		if p, ok := parsePercentage(cell); ok {
			percentage = p
		}
	}
	if e.policy.PreferComputedPercentage && present+absent > 0 {
		percentage = computed
	}

	return entity.AttendanceRecord{
		SubjectCode:          col.code,
		SubjectName:          names.Lookup(col.code),
		ClassesPresent:       present,
		ClassesAbsent:        absent,
		TotalClasses:         total,
		AttendancePercentage: percentage,
	}
}

func cellAt(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// parseCount reads a class count; anything unreadable counts as zero.
func parseCount(s string) int {
	n, _ := parseInt(s)
	return n
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return max(int(f), 0), true
}

// parsePercentage reads a page percentage, clamped to 0..100.
func parsePercentage(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return round2(math.Min(100, math.Max(0, f))), true
}

func computePercentage(present, absent int) float64 {
	held := present + absent
	if held == 0 {
		return 0
	}
	return round2(float64(present) / float64(held) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// NewPolicy builds a Policy from the configuration switches.
func NewPolicy(permissiveHeaders, preferComputedPercentage bool) Policy {
	p := Policy{PreferComputedPercentage: preferComputedPercentage}
	if permissiveHeaders {
		p.Columns = ColumnPermissive
	}
	return p
}
