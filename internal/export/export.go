// Package export writes attendance records and captured portal frames to
// files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/attendance-service/internal/entity"
)

// DataFileBase is the file name, without extension, of exported records.
const DataFileBase = "attendance_data"

// Columns is the header of tabular exports.
var Columns = []string{
	"Subject Code",
	"Subject Name",
	"Classes Present",
	"Classes Absent",
	"Total Classes",
	"Attendance %",
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

var writers = map[Format]func(io.Writer, []entity.AttendanceRecord) error{
	FormatCSV:  WriteCSV,
	FormatXLSX: WriteXLSX,
	FormatJSON: WriteJSON,
}

// ParseFormats parses a comma-separated format list such as "csv,xlsx".
// Duplicates are dropped.
func ParseFormats(list string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(list, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if f == "" || seen[f] {
			continue
		}
		if _, ok := writers[f]; !ok {
			return nil, fmt.Errorf("unknown export format %q", part)
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// SaveRecords writes records to dir once per format and returns the paths
// written.
func SaveRecords(dir string, records []entity.AttendanceRecord, formats []Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, f := range formats {
		write, ok := writers[f]
		if !ok {
			return paths, fmt.Errorf("unknown export format %q", f)
		}
		path := filepath.Join(dir, DataFileBase+"."+string(f))
		if err := writeFile(path, func(w io.Writer) error { return write(w, records) }); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// row renders a record in Columns order.
func row(r entity.AttendanceRecord) []string {
	return []string{
		r.SubjectCode,
		r.SubjectName,
		strconv.Itoa(r.ClassesPresent),
		strconv.Itoa(r.ClassesAbsent),
		strconv.Itoa(r.TotalClasses),
		strconv.FormatFloat(r.AttendancePercentage, 'f', -1, 64),
	}
}
