package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campusgeo/attendance-backend-go/internal/domain/auth"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	subject.SubjectRepository
	jwt.Service
}

func NewAuthService(subjectRepository subject.SubjectRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		SubjectRepository: subjectRepository,
		Service:           jwtService,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RegisterStudent implements auth.AuthService.
func (a *AuthServiceImpl) RegisterStudent(ctx context.Context, req auth.RegisterStudentRequest) (auth.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := a.SubjectRepository.Create(ctx, subject.Subject{
		Name:         req.Name,
		Email:        req.Email,
		Role:         subject.RoleStudent,
		Position:     string(subject.RoleStudent),
		PasswordHash: hashed,
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("student registered", "subject_id", created.ID)

	return a.issue(created)
}

// LoginStudent implements auth.AuthService.
func (a *AuthServiceImpl) LoginStudent(ctx context.Context, req auth.LoginStudentRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	student, err := a.SubjectRepository.GetByName(ctx, strings.TrimSpace(req.Name), subject.RoleStudent)
	if err != nil {
		if errors.Is(err, subject.ErrSubjectNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get student by name: %w", err)
	}

	if err := a.checkPassword(student, req.Password); err != nil {
		return auth.TokenResponse{}, err
	}

	return a.issue(student)
}

// LoginFaculty implements auth.AuthService.
func (a *AuthServiceImpl) LoginFaculty(ctx context.Context, req auth.LoginFacultyRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	var (
		faculty subject.Subject
		err     error
	)
	if id := req.Identifier(); strings.Contains(id, "@") {
		faculty, err = a.SubjectRepository.GetByEmail(ctx, id)
	} else {
		faculty, err = a.SubjectRepository.GetByName(ctx, id, subject.RoleFaculty)
	}
	if err != nil {
		if errors.Is(err, subject.ErrSubjectNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get faculty: %w", err)
	}
	if !faculty.IsFaculty() {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if err := a.checkPassword(faculty, req.Password); err != nil {
		return auth.TokenResponse{}, err
	}

	return a.issue(faculty)
}

// StreamToken implements auth.AuthService.
func (a *AuthServiceImpl) StreamToken(ctx context.Context, subjectID string) (auth.StreamTokenResponse, error) {
	faculty, err := a.SubjectRepository.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, subject.ErrSubjectNotFound) {
			return auth.StreamTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.StreamTokenResponse{}, err
	}
	if !faculty.IsFaculty() {
		return auth.StreamTokenResponse{}, auth.ErrFacultyRequired
	}

	token, expiresIn, err := a.Service.GenerateSSEToken(faculty.ID)
	if err != nil {
		return auth.StreamTokenResponse{}, fmt.Errorf("failed to create stream token: %w", err)
	}

	return auth.StreamTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

func (a *AuthServiceImpl) checkPassword(s subject.Subject, password string) error {
	if s.PasswordHash == "" {
		return auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)); err != nil {
		return auth.ErrInvalidCredentials
	}
	return nil
}

func (a *AuthServiceImpl) issue(s subject.Subject) (auth.TokenResponse, error) {
	token, expiresAt, err := a.Service.GenerateAccessToken(s.ID, s.Name, s.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	resp := auth.TokenResponse{Token: token, AccessTokenExpiresIn: expiresAt}
	view := subject.ToResponse(s)
	if s.IsFaculty() {
		resp.Faculty = &view
	} else {
		resp.Student = &view
	}
	return resp, nil
}
