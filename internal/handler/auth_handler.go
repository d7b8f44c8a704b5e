package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ahmadqo/club-certificate-engine/internal/middleware"
	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/ahmadqo/club-certificate-engine/internal/response"
	"github.com/ahmadqo/club-certificate-engine/internal/service"
	"github.com/ahmadqo/club-certificate-engine/internal/utils"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *logrus.Entry
}

func NewAuthHandler(authService service.AuthService, logger *logrus.Entry) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

var validRoles = map[model.Role]bool{
	model.RoleAdmin:     true,
	model.RoleOrganizer: true,
	model.RoleCoach:     true,
}

// Login authenticates a club user
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	errs := utils.ValidationErrors{}
	req.Email = utils.SanitizeString(strings.ToLower(req.Email))
	if req.Email == "" {
		errs["email"] = "Email is required"
	} else if !utils.IsValidEmail(req.Email) {
		errs["email"] = "Email is not valid"
	}
	if req.Password == "" {
		errs["password"] = "Password is required"
	}
	if errs.HasErrors() {
		response.BadRequest(w, "Validation failed", errs)
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(w, err.Error())
		case errors.Is(err, service.ErrAccountDisabled):
			response.Forbidden(w, err.Error())
		default:
			h.logger.WithError(err).Error("login")
			response.InternalError(w, "Internal server error")
		}
		return
	}

	response.Success(w, "Login successful", result)
}

// Register creates a club user (admin only)
// @Summary      Register user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      service.RegisterRequest  true  "New user"
// @Security     BearerAuth
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /users [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	errs := utils.ValidationErrors{}
	req.Name = utils.SanitizeString(req.Name)
	req.Email = utils.SanitizeString(strings.ToLower(req.Email))
	if req.Name == "" {
		errs["name"] = "Name is required"
	}
	if req.Email == "" {
		errs["email"] = "Email is required"
	} else if !utils.IsValidEmail(req.Email) {
		errs["email"] = "Email is not valid"
	}
	if req.Password == "" {
		errs["password"] = "Password is required"
	} else if !utils.IsValidPassword(req.Password) {
		errs["password"] = "Password needs at least 8 characters including a letter and a digit"
	}
	if req.Role != "" && !validRoles[req.Role] {
		errs["role"] = "Role must be one of admin, organizer, coach"
	}
	if errs.HasErrors() {
		response.BadRequest(w, "Validation failed", errs)
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			response.BadRequest(w, err.Error(), nil)
			return
		}
		h.logger.WithError(err).Error("register user")
		response.InternalError(w, "Internal server error")
		return
	}

	response.Created(w, "User created", result)
}

// RefreshToken exchanges a refresh token for a new pair
// @Summary      Refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      service.RefreshTokenRequest  true  "Refresh token"
// @Success      200      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshTokenRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if req.RefreshToken == "" {
		response.BadRequest(w, "refresh_token is required", nil)
		return
	}

	tokenPair, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	response.Success(w, "Token refreshed", tokenPair)
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, "User retrieved", user)
}
