package subject

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent  Role = "student"  // Checks in and out of campus
	RoleFaculty  Role = "faculty"  // Views the roster for their course
	RoleEmployee Role = "employee" // Staff using the /LogInOut flow
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleEmployee:
		return true
	}
	return false
}

const facultyPositionPrefix = "Professor - "

// Subject is a person whose attendance is tracked.
type Subject struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	Position     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Course returns the normalized course a faculty member teaches, derived from
// a position such as "Professor - DBMS". Non-faculty subjects have no course.
func (s Subject) Course() string {
	if s.Role != RoleFaculty || s.Position == "" {
		return ""
	}
	return NormalizeCourse(strings.TrimPrefix(s.Position, facultyPositionPrefix))
}

// NormalizeCourse lowercases and trims a course label for comparisons.
func NormalizeCourse(course string) string {
	return strings.ToLower(strings.TrimSpace(course))
}

func (s Subject) IsStudent() bool {
	return s.Role == RoleStudent
}

func (s Subject) IsFaculty() bool {
	return s.Role == RoleFaculty
}
