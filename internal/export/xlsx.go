package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/user/attendance-service/internal/entity"
)

const sheetName = "Attendance"

// WriteXLSX writes a single-sheet workbook. Counts and percentages are
// stored as numbers.
func WriteXLSX(w io.Writer, records []entity.AttendanceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []interface{}{
			r.SubjectCode,
			r.SubjectName,
			r.ClassesPresent,
			r.ClassesAbsent,
			r.TotalClasses,
			r.AttendancePercentage,
		}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}
