package auth

import (
	"context"
	"testing"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/auth"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/jwt"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/validator"
	"github.com/campusgeo/attendance-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

func newTestAuthService(t *testing.T) (auth.AuthService, subject.SubjectRepository, jwt.Service) {
	t.Helper()
	repo := memory.NewSubjectRepository()
	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	return NewAuthService(repo, jwtService), repo, jwtService
}

func createTestFaculty(t *testing.T, repo subject.SubjectRepository, name, email, password string) subject.Subject {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	f, err := repo.Create(context.Background(), subject.Subject{
		Name:         name,
		Email:        email,
		Role:         subject.RoleFaculty,
		Position:     "Professor - DBMS",
		PasswordHash: string(hashed),
	})
	require.NoError(t, err)
	return f
}

func TestAuthService_RegisterAndLoginStudent(t *testing.T) {
	svc, repo, jwtService := newTestAuthService(t)
	ctx := context.Background()

	t.Run("Register issues a student token", func(t *testing.T) {
		resp, err := svc.RegisterStudent(ctx, auth.RegisterStudentRequest{
			Name:     " asha ",
			Email:    "Asha@Presidency.edu.in",
			Password: "password123",
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Student)
		assert.Nil(t, resp.Faculty)
		assert.Equal(t, "asha", resp.Student.Name)
		assert.Equal(t, "asha@presidency.edu.in", resp.Student.Email)

		token, err := jwtauth.VerifyToken(jwtService.JWTAuth(), resp.Token)
		require.NoError(t, err)
		role, _ := token.Get("role")
		assert.Equal(t, "student", role)

		stored, err := repo.GetByID(ctx, resp.Student.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "password123", stored.PasswordHash)
	})

	t.Run("Register rejects duplicates", func(t *testing.T) {
		_, err := svc.RegisterStudent(ctx, auth.RegisterStudentRequest{
			Name:     "someone",
			Email:    "asha@presidency.edu.in",
			Password: "password123",
		})
		assert.ErrorIs(t, err, subject.ErrSubjectEmailExists)
	})

	t.Run("Register validates input", func(t *testing.T) {
		_, err := svc.RegisterStudent(ctx, auth.RegisterStudentRequest{Name: "x", Email: "bad", Password: "short"})
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		fields := vErrs.ToMap()
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
	})

	t.Run("Login with correct password", func(t *testing.T) {
		resp, err := svc.LoginStudent(ctx, auth.LoginStudentRequest{Name: "asha", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Greater(t, resp.AccessTokenExpiresIn, time.Now().Unix())
	})

	t.Run("Login with wrong password", func(t *testing.T) {
		_, err := svc.LoginStudent(ctx, auth.LoginStudentRequest{Name: "asha", Password: "wrong-password"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Login unknown student", func(t *testing.T) {
		_, err := svc.LoginStudent(ctx, auth.LoginStudentRequest{Name: "nobody", Password: "password123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestAuthService_LoginFaculty(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()
	faculty := createTestFaculty(t, repo, "Dr. Rao", "rao@presidency.edu.in", "facultypass")

	t.Run("By name", func(t *testing.T) {
		resp, err := svc.LoginFaculty(ctx, auth.LoginFacultyRequest{Name: "Dr. Rao", Password: "facultypass"})
		require.NoError(t, err)
		require.NotNil(t, resp.Faculty)
		assert.Equal(t, faculty.ID, resp.Faculty.ID)
	})

	t.Run("By email", func(t *testing.T) {
		resp, err := svc.LoginFaculty(ctx, auth.LoginFacultyRequest{Email: "RAO@presidency.edu.in", Password: "facultypass"})
		require.NoError(t, err)
		assert.Equal(t, "Professor - DBMS", resp.Faculty.Position)
	})

	t.Run("Students cannot log in as faculty", func(t *testing.T) {
		_, err := svc.RegisterStudent(ctx, auth.RegisterStudentRequest{Name: "ravi", Email: "ravi@presidency.edu.in", Password: "password123"})
		require.NoError(t, err)

		_, err = svc.LoginFaculty(ctx, auth.LoginFacultyRequest{Email: "ravi@presidency.edu.in", Password: "password123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestAuthService_StreamToken(t *testing.T) {
	svc, repo, jwtService := newTestAuthService(t)
	ctx := context.Background()
	faculty := createTestFaculty(t, repo, "Dr. Iyer", "iyer@presidency.edu.in", "facultypass")

	resp, err := svc.StreamToken(ctx, faculty.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, resp.ExpiresIn)

	subjectID, err := jwtService.ValidateSSEToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, faculty.ID, subjectID)

	student, err := svc.RegisterStudent(ctx, auth.RegisterStudentRequest{Name: "meera", Email: "meera@presidency.edu.in", Password: "password123"})
	require.NoError(t, err)
	_, err = svc.StreamToken(ctx, student.Student.ID)
	assert.ErrorIs(t, err, auth.ErrFacultyRequired)
}
