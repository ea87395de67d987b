package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("missing authentication token")
	ErrFacultyRequired    = errors.New("faculty access required")
	ErrStudentRequired    = errors.New("student access required")
)
