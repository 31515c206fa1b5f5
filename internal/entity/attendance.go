package entity

import "time"

// SubjectNameUnknown is the display name used when a subject code cannot be
// resolved from the page markup.
const SubjectNameUnknown = "N/A"

// AttendanceRecord is the per-subject attendance extracted from one portal table.
type AttendanceRecord struct {
	SubjectCode          string  `json:"subject_code"`
	SubjectName          string  `json:"subject_name"`
	ClassesPresent       int     `json:"classes_present"`
	ClassesAbsent        int     `json:"classes_absent"`
	TotalClasses         int     `json:"total_classes"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// Term identifies the year/semester selection by dropdown index (0-based),
// the way the portal form exposes it.
type Term struct {
	Year     int `json:"year"`
	Semester int `json:"semester"`
}

// Credentials are the portal login fields other than the CAPTCHA.
type Credentials struct {
	RollNo   string
	Password string
}

// Frame is the rendered markup of one browser frame captured after the
// attendance form was submitted.
type Frame struct {
	Name       string
	HTML       string
	Screenshot []byte // PNG, only when requested
}

// Captcha is the login CAPTCHA image served to a human solver.
type Captcha struct {
	RollNo    string
	SourceURL string
	Image     []byte // PNG screenshot of the CAPTCHA element
}

// Snapshot mirrors the `attendance_snapshots` PostgreSQL table schema.
type Snapshot struct {
	ID        string
	RollNo    string // hashed, never stored in clear
	Term      Term
	Frame     string
	Records   []AttendanceRecord // Stored as JSONB in PostgreSQL
	FetchedAt time.Time
	Duration  time.Duration
}
