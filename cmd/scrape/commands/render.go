package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/export"
	"github.com/user/attendance-service/internal/usecase"
)

// renderRecords prints the records with a totals footer, then flags subjects
// below the threshold.
func renderRecords(w io.Writer, records []entity.AttendanceRecord, summary usecase.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{}
	for _, c := range export.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for _, r := range records {
		t.AppendRow(table.Row{
			r.SubjectCode,
			r.SubjectName,
			r.ClassesPresent,
			r.ClassesAbsent,
			r.TotalClasses,
			percent(r.AttendancePercentage),
		})
	}
	t.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%d subjects", summary.SubjectsCount),
		summary.TotalPresent,
		summary.TotalAbsent,
		summary.TotalClasses,
		percent(summary.OverallPercentage),
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()

	if summary.SubjectsBelowThreshold == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d subject(s) below %s:\n", summary.SubjectsBelowThreshold, percent(summary.Threshold))
	for _, r := range records {
		if r.AttendancePercentage < summary.Threshold {
			fmt.Fprintf(w, "  %s %s (%s)\n", r.SubjectCode, r.SubjectName, percent(r.AttendancePercentage))
		}
	}
}

func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64) + "%"
}
