package auth

import (
	"context"
)

type AuthService interface {
	RegisterStudent(ctx context.Context, req RegisterStudentRequest) (TokenResponse, error)
	LoginStudent(ctx context.Context, req LoginStudentRequest) (TokenResponse, error)
	LoginFaculty(ctx context.Context, req LoginFacultyRequest) (TokenResponse, error)
	// StreamToken issues a short-lived token for the live attendance feed.
	StreamToken(ctx context.Context, subjectID string) (StreamTokenResponse, error)
}
