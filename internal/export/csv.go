package export

import (
	"encoding/csv"
	"io"

	"github.com/user/attendance-service/internal/entity"
)

func WriteCSV(w io.Writer, records []entity.AttendanceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
