package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/middleware"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	LogInOut(w http.ResponseWriter, r *http.Request)
	StudentLogInOut(w http.ResponseWriter, r *http.Request)
	GetStatus(w http.ResponseWriter, r *http.Request)
	StudentStatus(w http.ResponseWriter, r *http.Request)
	StudentHistory(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	NearestLocations(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// LogInOut toggles attendance for the authenticated subject. The action is
// always derived from today's state.
func (h *attendanceHandlerImpl) LogInOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("LogInOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Action = ""
	h.toggle(w, r, req)
}

// StudentLogInOut accepts an explicit action; an empty action toggles.
func (h *attendanceHandlerImpl) StudentLogInOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("StudentLogInOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	h.toggle(w, r, req)
}

func (h *attendanceHandlerImpl) toggle(w http.ResponseWriter, r *http.Request, req attendance.ToggleRequest) {
	subjectID, ok := middleware.SubjectID(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}
	req.SubjectID = subjectID

	result, err := h.attendanceService.Toggle(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetStatus returns today's status for the subject in the path. Students may
// only read their own; faculty may read anyone's.
func (h *attendanceHandlerImpl) GetStatus(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := pathSubject(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Status(r.Context(), subjectID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// History lists every record of the subject in the path, with the same
// access rule as GetStatus.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := pathSubject(w, r)
	if !ok {
		return
	}
	h.history(w, r, subjectID)
}

// pathSubject resolves the {id} path parameter and checks the caller may read it.
func pathSubject(w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID, ok := middleware.SubjectID(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return "", false
	}

	subjectID := chi.URLParam(r, "id")
	if subjectID == "" {
		response.BadRequest(w, "Subject ID is required", nil)
		return "", false
	}
	if subjectID != callerID && middleware.Role(r.Context()) != subject.RoleFaculty {
		response.HandleError(w, attendance.ErrForbidden)
		return "", false
	}
	return subjectID, true
}

// StudentStatus returns today's status for the authenticated student.
func (h *attendanceHandlerImpl) StudentStatus(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := middleware.SubjectID(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	result, err := h.attendanceService.Status(r.Context(), subjectID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// StudentHistory lists the authenticated student's records between the
// optional startDate and endDate query parameters.
func (h *attendanceHandlerImpl) StudentHistory(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := middleware.SubjectID(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}
	h.history(w, r, subjectID)
}

func (h *attendanceHandlerImpl) history(w http.ResponseWriter, r *http.Request, subjectID string) {
	query := r.URL.Query()
	filter := attendance.HistoryFilter{SubjectID: subjectID}
	if v := query.Get("startDate"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("endDate"); v != "" {
		filter.EndDate = &v
	}

	result, err := h.attendanceService.History(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// NearestLocations ranks the authorized locations around a coordinate.
func (h *attendanceHandlerImpl) NearestLocations(w http.ResponseWriter, r *http.Request) {
	var req location.NearestLocationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("NearestLocations decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.NearestLocations(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
