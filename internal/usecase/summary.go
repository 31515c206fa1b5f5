package usecase

import (
	"math"

	"github.com/user/attendance-service/internal/entity"
)

// DefaultLowAttendanceThreshold is the percentage under which a subject is
// flagged.
const DefaultLowAttendanceThreshold = 75.0

// Summary aggregates attendance across subjects.
type Summary struct {
	OverallPercentage      float64                  `json:"overall_percentage"`
	TotalPresent           int                      `json:"total_present"`
	TotalAbsent            int                      `json:"total_absent"`
	TotalClasses           int                      `json:"total_classes"`
	SubjectsCount          int                      `json:"subjects_count"`
	Threshold              float64                  `json:"threshold"`
	SubjectsBelowThreshold int                      `json:"subjects_below_threshold"`
	LowAttendance          []string                 `json:"low_attendance"`
	BestSubject            *entity.AttendanceRecord `json:"best_subject"`
	WorstSubject           *entity.AttendanceRecord `json:"worst_subject"`
}

// Summarize computes totals, the overall percentage and the subjects whose
// attendance is below threshold. A non-positive threshold uses the default.
// Ties for best and worst subject go to the earlier record.
func Summarize(records []entity.AttendanceRecord, threshold float64) Summary {
	if threshold <= 0 {
		threshold = DefaultLowAttendanceThreshold
	}
	s := Summary{
		SubjectsCount: len(records),
		Threshold:     threshold,
		LowAttendance: []string{},
	}

	for i := range records {
		r := &records[i]
		s.TotalPresent += r.ClassesPresent
		s.TotalAbsent += r.ClassesAbsent
		s.TotalClasses += r.TotalClasses
		if r.AttendancePercentage < threshold {
			s.LowAttendance = append(s.LowAttendance, r.SubjectCode)
		}
		if s.BestSubject == nil || r.AttendancePercentage > s.BestSubject.AttendancePercentage {
			best := *r
			s.BestSubject = &best
		}
		if s.WorstSubject == nil || r.AttendancePercentage < s.WorstSubject.AttendancePercentage {
			worst := *r
			s.WorstSubject = &worst
		}
	}
	s.SubjectsBelowThreshold = len(s.LowAttendance)

	if s.TotalClasses > 0 {
		s.OverallPercentage = math.Round(float64(s.TotalPresent)/float64(s.TotalClasses)*100*100) / 100
	}
	return s
}
