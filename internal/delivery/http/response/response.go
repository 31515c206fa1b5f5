package response

import (
	"time"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/usecase"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type AttendanceResponse struct {
	Success    bool                      `json:"success"`
	Data       []entity.AttendanceRecord `json:"data"`
	Cached     bool                      `json:"cached,omitempty"`
	Frame      string                    `json:"frame,omitempty"`
	SnapshotID string                    `json:"snapshot_id,omitempty"`
}

type SummaryResponse struct {
	Success bool                      `json:"success"`
	Data    []entity.AttendanceRecord `json:"data"`
	Summary usecase.Summary           `json:"summary"`
}

// CaptchaResponse carries the CAPTCHA as a PNG data URI.
type CaptchaResponse struct {
	Success       bool   `json:"success"`
	CaptchaURL    string `json:"captcha_url"`
	CaptchaBase64 string `json:"captcha_base64"`
	RollNo        string `json:"roll_no"`
}

// SnapshotResponse is a DTO for one stored fetch, mirroring entity.Snapshot
// without the hashed roll number.
type SnapshotResponse struct {
	ID         string                    `json:"id"`
	Year       int                       `json:"year"`
	Semester   int                       `json:"semester"`
	Frame      string                    `json:"frame"`
	Records    []entity.AttendanceRecord `json:"records"`
	FetchedAt  time.Time                 `json:"fetched_at"`
	DurationMS int64                     `json:"duration_ms"`
}

type HistoryResponse struct {
	Success bool               `json:"success"`
	Data    []SnapshotResponse `json:"data"`
}

type HealthResponse struct {
	Status       string            `json:"status"` // "ok" or "degraded"
	Message      string            `json:"message"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type IndexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// FromSnapshots converts stored snapshots to their DTOs.
func FromSnapshots(snapshots []*entity.Snapshot) []SnapshotResponse {
	out := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, SnapshotResponse{
			ID:         s.ID,
			Year:       s.Term.Year,
			Semester:   s.Term.Semester,
			Frame:      s.Frame,
			Records:    s.Records,
			FetchedAt:  s.FetchedAt,
			DurationMS: s.Duration.Milliseconds(),
		})
	}
	return out
}
