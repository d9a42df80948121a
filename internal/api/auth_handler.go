package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rgoodall/taskly-api/internal/api/shared"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/platform/logger"
	"github.com/rgoodall/taskly-api/internal/platform/mailer"
	"github.com/rgoodall/taskly-api/internal/redact"
	"github.com/rgoodall/taskly-api/internal/service/auth"
	"github.com/rgoodall/taskly-api/internal/store"
)

// AuthHandler handles signup, login, and password-reset API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier
	resetTokens      auth.ResetTokenGenerator
	mailer           mailer.Mailer
	resetBaseURL     string
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordHasher auth.PasswordHasher,
	passwordVerifier auth.PasswordVerifier,
	resetTokens auth.ResetTokenGenerator,
	mailSender mailer.Mailer,
	resetBaseURL string,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordHasher:   passwordHasher,
		passwordVerifier: passwordVerifier,
		resetTokens:      resetTokens,
		mailer:           mailSender,
		resetBaseURL:     strings.TrimRight(resetBaseURL, "/"),
	}
}

// Signup handles the POST /signup/ endpoint. On success it returns 201 with
// a freshly issued access/refresh token pair.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	var req SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	confirmPassword := strings.TrimSpace(req.ConfirmPassword)

	if username == "" || email == "" || password == "" || confirmPassword == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "All fields are required")
		return
	}

	if password != confirmPassword {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Passwords do not match")
		return
	}

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	hashedPassword, err := h.passwordHasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.HashedPassword = hashedPassword
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Username is already taken")
			return
		}
		log.Error("failed to create user", "error", redact.Error(err), "username", username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	tokens, err := h.issueTokenPair(r, user)
	if err != nil {
		log.Error("failed to generate tokens", "error", redact.Error(err), "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, SignupResponse{
		Message: "Registered Successfully",
		Tokens:  *tokens,
	})
}

// Login handles the POST /login/ endpoint. A failed login never reveals
// whether the username exists.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid credentials")
			return
		}
		log.Error("failed to get user by username", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid credentials")
		return
	}

	accessToken, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Error("failed to generate token", "error", redact.Error(err), "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Access:   accessToken,
		Username: user.Username,
		Message:  "Login successful",
	})
}

// Home handles the GET /home/ endpoint, a trivial authenticated probe.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Welcome to dashboard"})
}

// PasswordReset handles the POST /password-reset/ endpoint. It emails the
// user a reset link carrying their encoded ID and a stateless reset token.
func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	var req PasswordResetRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Email == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Required field")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "No user Found")
			return
		}
		log.Error("failed to get user by email", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process reset request")
		return
	}

	token, err := h.resetTokens.Generate(user)
	if err != nil {
		log.Error("failed to generate reset token", "error", redact.Error(err), "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process reset request")
		return
	}

	uid := encodeUserID(user.ID)
	resetLink := fmt.Sprintf("%s/reset-password/%s/%s/", h.resetBaseURL, uid, token)
	body := "Click the link to reset your password: " + resetLink

	if err := h.mailer.Send(r.Context(), user.Email, "Password Reset Request", body); err != nil {
		log.Error("failed to send reset email", "error", redact.Error(err), "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Mail sent"})
}

// PasswordResetConfirm handles the POST /password-reset-confirm/{uid}/{token}/
// endpoint. The token is checked against the user's current account state, so
// it stops validating once the password has been changed.
func (h *AuthHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	userID, err := decodeUserID(chi.URLParam(r, "uid"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user")
			return
		}
		log.Error("failed to get user by ID", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	if err := h.resetTokens.Check(user, chi.URLParam(r, "token")); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	var req PasswordResetConfirmRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Password == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Password is required")
		return
	}

	hashedPassword, err := h.passwordHasher.Hash(req.Password)
	if err != nil {
		log.Error("failed to hash password", "error", redact.Error(err), "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	if err := h.userStore.UpdatePassword(r.Context(), user.ID, hashedPassword); err != nil {
		log.Error("failed to update password", "error", redact.Error(err), "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password reset success!"})
}

// issueTokenPair mints the access/refresh pair returned at signup.
func (h *AuthHandler) issueTokenPair(r *http.Request, user *domain.User) (*TokenPair, error) {
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	accessToken, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Refresh: refreshToken, Access: accessToken}, nil
}

// encodeUserID renders a user ID as the URL-safe opaque segment used in
// reset links.
func encodeUserID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

// decodeUserID reverses encodeUserID.
func decodeUserID(encoded string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}
