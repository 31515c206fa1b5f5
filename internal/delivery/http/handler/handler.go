package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/attendance-service/internal/delivery/http/request"
	"github.com/user/attendance-service/internal/delivery/http/response"
	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/repository"
	"github.com/user/attendance-service/internal/usecase"
	"github.com/user/attendance-service/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	attendance usecase.AttendanceService
	threshold  float64
	checks     map[string]Pinger
	logger     *zap.Logger
}

// NewHandler creates the API handlers. checks maps dependency names to their
// health probes.
func NewHandler(attendance usecase.AttendanceService, threshold float64, checks map[string]Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		attendance: attendance,
		threshold:  threshold,
		checks:     checks,
		logger:     logger,
	}
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.IndexResponse{
		Message: "Attendance Dashboard API",
		Version: "1.0",
		Endpoints: map[string]string{
			"GET /api/health":              "Check API health",
			"POST /api/captcha":            "Get a login CAPTCHA image",
			"POST /api/attendance":         "Get attendance data",
			"POST /api/attendance/summary": "Get attendance data with a summary",
			"GET /api/attendance/cached":   "Get recently fetched attendance",
			"GET /api/attendance/history":  "Get stored attendance snapshots",
		},
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := response.HealthResponse{
		Status:       "ok",
		Message:      "Attendance API is running",
		Dependencies: make(map[string]string, len(h.checks)),
	}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Error("Health check failed", zap.String("dependency", name), zap.Error(err))
			resp.Dependencies[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Dependencies[name] = "healthy"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) HandleCaptcha(w http.ResponseWriter, r *http.Request) {
	var req request.CaptchaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RollNo == "" {
		h.writeJSONError(w, "roll_no is required", http.StatusBadRequest)
		return
	}

	captcha, err := h.attendance.Captcha(r.Context(), req.RollNo)
	if err != nil {
		h.writeFetchError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response.CaptchaResponse{
		Success:       true,
		CaptchaURL:    captcha.SourceURL,
		CaptchaBase64: "data:image/png;base64," + base64.StdEncoding.EncodeToString(captcha.Image),
		RollNo:        req.RollNo,
	})
}

func (h *Handler) HandleFetchAttendance(w http.ResponseWriter, r *http.Request) {
	result, ok := h.fetch(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, response.AttendanceResponse{
		Success:    true,
		Data:       result.Records,
		Frame:      result.Frame,
		SnapshotID: result.SnapshotID,
	})
}

func (h *Handler) HandleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	result, ok := h.fetch(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, response.SummaryResponse{
		Success: true,
		Data:    result.Records,
		Summary: usecase.Summarize(result.Records, h.threshold),
	})
}

// fetch decodes an attendance request and runs a portal session. It writes
// the error response itself and reports whether the caller should go on.
func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*usecase.FetchResult, bool) {
	var req request.AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	h.logger.Info("Fetching attendance", logger.RollNo(req.RollNo), zap.Int("year", req.Year), zap.Int("semester", req.Semester))
	result, err := h.attendance.Fetch(r.Context(), usecase.FetchRequest{
		Credentials: entity.Credentials{RollNo: req.RollNo, Password: req.Password},
		Term:        entity.Term{Year: req.Year, Semester: req.Semester},
	}, usecase.StaticCaptcha(req.Captcha))
	if err != nil {
		h.writeFetchError(w, err)
		return nil, false
	}
	return result, true
}

func (h *Handler) HandleCachedAttendance(w http.ResponseWriter, r *http.Request) {
	rollNo, term, ok := h.termQuery(w, r)
	if !ok {
		return
	}

	records, err := h.attendance.Cached(r.Context(), rollNo, term)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "No cached data found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to read cached attendance", logger.RollNo(rollNo), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.AttendanceResponse{Success: true, Data: records, Cached: true})
}

func (h *Handler) HandleAttendanceHistory(w http.ResponseWriter, r *http.Request) {
	rollNo, term, ok := h.termQuery(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	snapshots, err := h.attendance.History(r.Context(), rollNo, term, limit)
	if err != nil {
		h.logger.Error("Failed to list attendance history", logger.RollNo(rollNo), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.HistoryResponse{Success: true, Data: response.FromSnapshots(snapshots)})
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSONError(w, "Endpoint not found", http.StatusNotFound)
}

func (h *Handler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// termQuery reads roll_no, year and semester from the query string. Year and
// semester default to 0.
func (h *Handler) termQuery(w http.ResponseWriter, r *http.Request) (string, entity.Term, bool) {
	q := r.URL.Query()
	rollNo := q.Get("roll_no")
	if rollNo == "" {
		h.writeJSONError(w, "roll_no query parameter is required", http.StatusBadRequest)
		return "", entity.Term{}, false
	}

	var term entity.Term
	for _, p := range []struct {
		name string
		dst  *int
	}{{"year", &term.Year}, {"semester", &term.Semester}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeJSONError(w, p.name+" must be a non-negative integer", http.StatusBadRequest)
			return "", entity.Term{}, false
		}
		*p.dst = n
	}
	return rollNo, term, true
}

// writeFetchError maps use case errors to HTTP statuses.
func (h *Handler) writeFetchError(w http.ResponseWriter, err error) {
	switch usecase.ErrorType(err) {
	case "in_progress":
		h.writeJSONError(w, err.Error(), http.StatusConflict)
	case "unknown":
		h.logger.Error("Attendance request failed", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	default:
		h.writeJSONError(w, err.Error(), http.StatusBadGateway)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Success: false, Error: message})
}
