package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance/mocks"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/middleware"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type attendanceHandlerDeps struct {
	router     http.Handler
	service    *mocks.MockAttendanceService
	jwtService jwt.Service
}

func setupAttendanceHandler(t *testing.T) *attendanceHandlerDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAttendanceService(ctrl)
	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	h := NewAttendanceHandler(svc)

	r := chi.NewRouter()
	r.Post("/get_nearest_locations", h.NearestLocations)
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
		r.Use(middleware.AuthRequired(jwtService.JWTAuth()))
		r.Post("/LogInOut", h.LogInOut)
		r.Get("/LogInOut/{id}", h.GetStatus)
		r.Get("/LogInOut/{id}/history", h.History)
		r.Route("/student", func(r chi.Router) {
			r.Use(middleware.RequireStudent)
			r.Post("/loginout", h.StudentLogInOut)
			r.Get("/history", h.StudentHistory)
		})
	})

	return &attendanceHandlerDeps{router: r, service: svc, jwtService: jwtService}
}

func (d *attendanceHandlerDeps) token(t *testing.T, subjectID string, role subject.Role) string {
	t.Helper()
	token, _, err := d.jwtService.GenerateAccessToken(subjectID, "name", role)
	require.NoError(t, err)
	return token
}

func (d *attendanceHandlerDeps) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAttendanceHandler_LogInOut(t *testing.T) {
	payload := map[string]interface{}{
		"employee_id": "s-1",
		"latitude":    12.9716,
		"longitude":   77.5946,
		"action":      "checkout",
	}

	t.Run("Success uses the token subject and ignores action", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			Toggle(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req attendance.ToggleRequest) (attendance.ToggleResponse, error) {
				assert.Equal(t, "s-1", req.SubjectID)
				assert.Equal(t, attendance.FlexibleID("s-1"), req.EmployeeID)
				assert.Empty(t, req.Action)
				return attendance.ToggleResponse{
					Message: "Checked in successfully",
					Status:  attendance.StateCheckedIn,
					Action:  attendance.ActionCheckIn,
				}, nil
			})

		rec := deps.do(http.MethodPost, "/LogInOut", deps.token(t, "s-1", subject.RoleEmployee), payload)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Checked in successfully", body["message"])
		assert.Equal(t, "CHECKED_IN", body["status"])
	})

	t.Run("Geofence rejection carries distance and radius", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			Toggle(gomock.Any(), gomock.Any()).
			Return(attendance.ToggleResponse{}, &attendance.GeofenceRejectedError{
				LocationName: "Office", Distance: 150.7, AllowedRadius: 100,
			})

		rec := deps.do(http.MethodPost, "/LogInOut", deps.token(t, "s-1", subject.RoleStudent), payload)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "outside allowed radius", body["error"])
		assert.Equal(t, "OUTSIDE_GEOFENCE", body["code"])
		assert.Equal(t, float64(150), body["distance"])
		assert.Equal(t, float64(100), body["allowedRadius"])
	})

	t.Run("Other rejections omit geofence fields", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			Toggle(gomock.Any(), gomock.Any()).
			Return(attendance.ToggleResponse{}, &attendance.InvalidTransitionError{Current: attendance.StateCheckedOut})

		rec := deps.do(http.MethodPost, "/LogInOut", deps.token(t, "s-1", subject.RoleStudent), payload)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "already completed attendance for today", body["error"])
		assert.Equal(t, "ATTENDANCE_COMPLETED", body["code"])
		assert.NotContains(t, body, "distance")
		assert.NotContains(t, body, "allowedRadius")
	})

	t.Run("Store unavailable is retryable", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			Toggle(gomock.Any(), gomock.Any()).
			Return(attendance.ToggleResponse{}, fmt.Errorf("%w: lock timeout", attendance.ErrStoreUnavailable))

		rec := deps.do(http.MethodPost, "/LogInOut", deps.token(t, "s-1", subject.RoleStudent), payload)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("Missing token", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		rec := deps.do(http.MethodPost, "/LogInOut", "", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		rec := deps.do(http.MethodPost, "/LogInOut", deps.token(t, "s-1", subject.RoleStudent), "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAttendanceHandler_StudentLogInOut(t *testing.T) {
	t.Run("Passes explicit action", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			Toggle(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req attendance.ToggleRequest) (attendance.ToggleResponse, error) {
				assert.Equal(t, attendance.ActionCheckIn, req.Action)
				assert.Equal(t, "DBMS", req.Subject)
				return attendance.ToggleResponse{Status: attendance.StateCheckedIn}, nil
			})

		rec := deps.do(http.MethodPost, "/student/loginout", deps.token(t, "s-1", subject.RoleStudent), map[string]interface{}{
			"latitude": 12.9716, "longitude": 77.5946, "action": "checkin", "subject": "DBMS",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Faculty cannot use the student route", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		rec := deps.do(http.MethodPost, "/student/loginout", deps.token(t, "f-1", subject.RoleFaculty), map[string]interface{}{
			"latitude": 12.9716, "longitude": 77.5946,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Time window rejection", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			Toggle(gomock.Any(), gomock.Any()).
			Return(attendance.ToggleResponse{}, &attendance.OutsideTimeWindowError{
				Action: attendance.ActionCheckOut,
				Window: attendance.DefaultPolicy().CheckOut,
				Zone:   "Asia/Kolkata",
			})

		rec := deps.do(http.MethodPost, "/student/loginout", deps.token(t, "s-1", subject.RoleStudent), map[string]interface{}{
			"latitude": 12.9716, "longitude": 77.5946,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "OUTSIDE_TIME_WINDOW", body["code"])
		assert.Equal(t, "Check-out allowed only between 16:00 and 21:00 (Asia/Kolkata)", body["error"])
	})
}

func TestAttendanceHandler_GetStatus(t *testing.T) {
	t.Run("Own status", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().Status(gomock.Any(), "s-1").Return(attendance.StatusResponse{
			SubjectID: "s-1", State: attendance.StateNone,
		}, nil)

		rec := deps.do(http.MethodGet, "/LogInOut/s-1", deps.token(t, "s-1", subject.RoleStudent), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "NONE", decodeBody(t, rec)["state"])
	})

	t.Run("Student reading another subject", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		rec := deps.do(http.MethodGet, "/LogInOut/s-2", deps.token(t, "s-1", subject.RoleStudent), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Faculty reading a student", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().Status(gomock.Any(), "s-2").Return(attendance.StatusResponse{SubjectID: "s-2"}, nil)

		rec := deps.do(http.MethodGet, "/LogInOut/s-2", deps.token(t, "f-1", subject.RoleFaculty), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAttendanceHandler_StudentHistory(t *testing.T) {
	deps := setupAttendanceHandler(t)
	deps.service.EXPECT().
		History(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f attendance.HistoryFilter) ([]attendance.RecordResponse, error) {
			assert.Equal(t, "s-1", f.SubjectID)
			require.NotNil(t, f.StartDate)
			assert.Equal(t, "2024-01-15", *f.StartDate)
			assert.Nil(t, f.EndDate)
			return []attendance.RecordResponse{{Date: "2024-01-15"}, {Date: "2024-01-16"}}, nil
		})

	rec := deps.do(http.MethodGet, "/student/history?startDate=2024-01-15", deps.token(t, "s-1", subject.RoleStudent), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "2024-01-15", items[0]["date"])
}

func TestAttendanceHandler_History(t *testing.T) {
	t.Run("Own records", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			History(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f attendance.HistoryFilter) ([]attendance.RecordResponse, error) {
				assert.Equal(t, "e-1", f.SubjectID)
				assert.Nil(t, f.StartDate)
				require.NotNil(t, f.EndDate)
				assert.Equal(t, "2024-01-31", *f.EndDate)
				return []attendance.RecordResponse{{Date: "2024-01-15"}}, nil
			})

		rec := deps.do(http.MethodGet, "/LogInOut/e-1/history?endDate=2024-01-31", deps.token(t, "e-1", subject.RoleEmployee), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var items []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "2024-01-15", items[0]["date"])
	})

	t.Run("Another subject's records", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		rec := deps.do(http.MethodGet, "/LogInOut/e-2/history", deps.token(t, "e-1", subject.RoleEmployee), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Faculty reading an employee", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		deps.service.EXPECT().
			History(gomock.Any(), attendance.HistoryFilter{SubjectID: "e-2"}).
			Return([]attendance.RecordResponse{}, nil)

		rec := deps.do(http.MethodGet, "/LogInOut/e-2/history", deps.token(t, "f-1", subject.RoleFaculty), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		deps := setupAttendanceHandler(t)
		rec := deps.do(http.MethodGet, "/LogInOut/e-1/history", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAttendanceHandler_NearestLocationsIsPublic(t *testing.T) {
	deps := setupAttendanceHandler(t)
	deps.service.EXPECT().NearestLocations(gomock.Any(), gomock.Any()).Return(nil, nil)

	rec := deps.do(http.MethodPost, "/get_nearest_locations", "", map[string]interface{}{"lat": 12.9, "lng": 77.6})
	assert.Equal(t, http.StatusOK, rec.Code)
}
