package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campusgeo/attendance-backend-go/internal/domain/auth"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/response"
)

type AuthHandler interface {
	RegisterStudent(w http.ResponseWriter, r *http.Request)
	LoginStudent(w http.ResponseWriter, r *http.Request)
	LoginFaculty(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
	}
}

// RegisterStudent implements AuthHandler.
func (a *AuthHandlerImpl) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var registerReq auth.RegisterStudentRequest

	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		slog.Error("RegisterStudent decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.RegisterStudent(r.Context(), registerReq)
	if err != nil {
		slog.Info("RegisterStudent rejected", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, tokenResponse)
}

// LoginStudent implements AuthHandler.
func (a *AuthHandlerImpl) LoginStudent(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginStudentRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("LoginStudent decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.LoginStudent(r.Context(), loginReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tokenResponse)
}

// LoginFaculty implements AuthHandler.
func (a *AuthHandlerImpl) LoginFaculty(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginFacultyRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("LoginFaculty decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.LoginFaculty(r.Context(), loginReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tokenResponse)
}
