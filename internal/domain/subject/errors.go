package subject

import "errors"

var (
	ErrSubjectNotFound     = errors.New("subject not found")
	ErrSubjectEmailExists  = errors.New("a user with this email already exists")
	ErrSubjectNameExists   = errors.New("a user with this name already exists")
	ErrFacultyCourseNotSet = errors.New("faculty subject not configured in position field")
)
