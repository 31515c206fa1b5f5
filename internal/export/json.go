package export

import (
	"encoding/json"
	"io"

	"github.com/user/attendance-service/internal/entity"
)

func WriteJSON(w io.Writer, records []entity.AttendanceRecord) error {
	if records == nil {
		records = []entity.AttendanceRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
