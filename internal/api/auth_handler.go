package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/schoolmgmt/school-api/internal/api/shared"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/service"
	"github.com/schoolmgmt/school-api/internal/validation"
)

const msgEmailVerified = "Email verified successfully"

// AuthService is the subset of service.AuthService the handler uses.
type AuthService interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	VerifyEmail(ctx context.Context, token string) error
}

// AdminService is the subset of service.AdminService the handler uses.
type AdminService interface {
	Bootstrap(ctx context.Context, name, email, password string) (service.AdminAccount, error)
}

// AuthHandler handles authentication and account endpoints.
type AuthHandler struct {
	auth      AuthService
	admins    AdminService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	authService AuthService,
	admins AdminService,
	v *validation.Validator,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = validation.New()
	}
	return &AuthHandler{
		auth:      authService,
		admins:    admins,
		validator: v,
		logger:    logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token: res.Token,
		User:  newUserResponse(res.User),
	})
}

// VerifyEmail handles POST /auth/verify-email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req validation.VerifyEmailRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.auth.VerifyEmail(r.Context(), req.Token); err != nil {
		HandleAPIError(w, r, err, "Failed to verify email")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, msgEmailVerified)
}

// RegisterAdmin handles POST /auth/admin/register. Only administrators
// reach it; the router applies the role guard.
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req validation.AdminRegisterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	account, err := h.admins.Bootstrap(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Unable to create admin user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("admin user created",
		slog.Int64("user_id", account.UserID))
	shared.RespondWithJSON(w, r, http.StatusCreated, AdminRegisterResponse{
		Message: "Admin user created successfully",
		ID:      account.UserID,
	})
}
