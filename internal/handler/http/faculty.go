package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/auth"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/middleware"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/response"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/jwt"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/sse"
)

type FacultyHandler interface {
	Attendance(w http.ResponseWriter, r *http.Request)
	Students(w http.ResponseWriter, r *http.Request)
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type facultyHandlerImpl struct {
	attendanceService attendance.AttendanceService
	authService       auth.AuthService
	jwtService        jwt.Service
	hub               *sse.Hub
	keepalive         time.Duration
}

func NewFacultyHandler(attendanceService attendance.AttendanceService, authService auth.AuthService, jwtService jwt.Service, hub *sse.Hub) FacultyHandler {
	return &facultyHandlerImpl{
		attendanceService: attendanceService,
		authService:       authService,
		jwtService:        jwtService,
		hub:               hub,
		keepalive:         30 * time.Second,
	}
}

// Attendance lists every student with their status for the faculty member's
// course on the given date.
func (h *facultyHandlerImpl) Attendance(w http.ResponseWriter, r *http.Request) {
	facultyID, ok := middleware.SubjectID(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	filter := attendance.RosterFilter{FacultyID: facultyID}
	if v := r.URL.Query().Get("date"); v != "" {
		filter.Date = &v
	}

	result, err := h.attendanceService.Roster(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Students lists all registered students.
func (h *facultyHandlerImpl) Students(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListStudents(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// StreamToken issues a short-lived token for the live feed.
func (h *facultyHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	facultyID, ok := middleware.SubjectID(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	result, err := h.authService.StreamToken(r.Context(), facultyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stream pushes committed attendance transitions over SSE. The token comes
// from the query string because EventSource cannot set headers.
func (h *facultyHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.HandleError(w, auth.ErrMissingToken)
		return
	}

	facultyID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	topic := sse.TopicAll
	if course := r.URL.Query().Get("subject"); course != "" {
		topic = sse.CourseTopic(course)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(topic)
	defer func() {
		cleanup()
		slog.Info("SSE subscriber disconnected", "subject_id", facultyID, "topic", topic, "total", h.hub.TotalSubscribers())
	}()
	slog.Info("SSE subscriber connected", "subject_id", facultyID, "topic", topic, "topic_subscribers", h.hub.SubscriberCount(topic))

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"subject_id\":%q,\"topic\":%q}\n\n", facultyID, topic)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
