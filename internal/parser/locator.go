// Package parser turns the portal's attendance page markup into attendance
// records. Every function here is pure and safe for concurrent use.
package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// subjectCodePattern matches codes such as ITITC601 or CSE301.
var subjectCodePattern = regexp.MustCompile(`^[A-Z]{2,4}[A-Z]?\d{3,4}$`)

const daysLabel = "Days"

// Row is the ordered cell texts of one table row. Index 0 is the row label.
type Row []string

// Label returns the first cell, or "" for an empty row.
func (r Row) Label() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Values returns the cells after the label.
func (r Row) Values() []string {
	if len(r) <= 1 {
		return nil
	}
	return r[1:]
}

// Table is a located attendance table: all of its rows plus the index of the
// header row naming the subject columns.
type Table struct {
	Rows        []Row
	HeaderIndex int
}

// Header returns the header row.
func (t Table) Header() Row {
	return t.Rows[t.HeaderIndex]
}

// Body returns the rows strictly after the header row.
func (t Table) Body() []Row {
	return t.Rows[t.HeaderIndex+1:]
}

// IsSubjectCode reports whether s has the shape of a subject code.
func IsSubjectCode(s string) bool {
	return subjectCodePattern.MatchString(s)
}

// Locate finds every table in document that carries a subject-code header
// row. Tables are returned in document order; layout tables without a header
// row are skipped. Markup that cannot be parsed yields no tables.
func Locate(document string) []Table {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := tableRows(table)
		headerIndex := findHeaderRow(rows)
		if headerIndex < 0 {
			return
		}
		tables = append(tables, Table{Rows: rows, HeaderIndex: headerIndex})
	})
	return tables
}

// tableRows collects the rows owned by table, leaving out the rows of tables
// nested inside it.
func tableRows(table *goquery.Selection) []Row {
	var rows []Row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(table) {
			return
		}
		var row Row
		tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cellText(cell))
		})
		rows = append(rows, row)
	})
	return rows
}

func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

// findHeaderRow returns the index of the first row holding a subject code or
// a "Days" cell, or -1.
func findHeaderRow(rows []Row) int {
	for i, row := range rows {
		for _, cell := range row {
			if cell == daysLabel || IsSubjectCode(cell) {
				return i
			}
		}
	}
	return -1
}
