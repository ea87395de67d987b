package middleware

import (
	"net/http"

	"github.com/campusgeo/attendance-backend-go/internal/domain/auth"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/response"
)

// RequireStudent requires the student role
func RequireStudent(next http.Handler) http.Handler {
	return requireRole(subject.RoleStudent, auth.ErrStudentRequired)(next)
}

// RequireFaculty requires the faculty role
func RequireFaculty(next http.Handler) http.Handler {
	return requireRole(subject.RoleFaculty, auth.ErrFacultyRequired)(next)
}

func requireRole(role subject.Role, denied error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Role(r.Context()) != role {
				response.HandleError(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
