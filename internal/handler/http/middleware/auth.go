package middleware

import (
	"context"
	"net/http"

	"github.com/campusgeo/attendance-backend-go/internal/domain/auth"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/response"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token. It must run
// after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrMissingToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			subjectID, ok := claims["subject_id"].(string)
			if !ok || subjectID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// SubjectID returns the authenticated subject id from the verified token.
func SubjectID(ctx context.Context) (string, bool) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", false
	}
	id, ok := claims["subject_id"].(string)
	return id, ok && id != ""
}

// Role returns the authenticated subject's role claim.
func Role(ctx context.Context) subject.Role {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return subject.Role(role)
}
