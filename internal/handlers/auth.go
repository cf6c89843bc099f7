// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/middleware"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/session"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "Blog Platform"

// AccountStore is the account persistence used by Auth.
type AccountStore interface {
	Create(ctx context.Context, in store.CreateUserInput) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
}

// SessionManager owns browser sessions.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// Auth groups registration, login and two-factor endpoints.
type Auth struct {
	users    AccountStore
	sessions SessionManager
	tokens   TokenIssuer
}

// NewAuth creates the Auth handler group.
func NewAuth(users AccountStore, sessions SessionManager, tokens TokenIssuer) *Auth {
	return &Auth{users: users, sessions: sessions, tokens: tokens}
}

type loginResponse struct {
	Token             string       `json:"token,omitempty"`
	User              *models.User `json:"user"`
	TwoFactorRequired bool         `json:"twoFactorRequired"`
}

// Register handles POST /auth/register. New accounts are always readers.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.users.Create(r.Context(), store.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleReader,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	writeSuccess(w, http.StatusCreated, map[string]any{"userId": user.ID}, "User registered successfully")
}

// Login handles POST /auth/login. It always opens a cookie session; the
// bearer token is only issued once any second factor has been verified.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Deactivated accounts fail exactly like bad credentials.
	if user == nil || !user.IsActive || !a.users.CheckPassword(user, req.Password) {
		writeError(w, r, apperr.Authentication("Invalid email or password"))
		return
	}

	pending := user.Requires2FA()
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		TwoFADone: !pending,
	})
	if err != nil {
		writeError(w, r, apperr.Internal("create session", err))
		return
	}

	if pending {
		writeSuccess(w, http.StatusOK, loginResponse{User: user, TwoFactorRequired: true}, "")
		return
	}
	a.completeLogin(w, r, user)
}

func (a *Auth) completeLogin(w http.ResponseWriter, r *http.Request, user *models.User) {
	tok, err := a.tokens.Issue(user)
	if err != nil {
		writeError(w, r, apperr.Internal("issue token", err))
		return
	}
	slog.Info("user logged in", "user_id", user.ID)
	writeSuccess(w, http.StatusOK, loginResponse{Token: tok, User: user}, "")
}

// VerifyTwoFA handles POST /auth/2fa/verify, completing a login that is
// waiting on a TOTP code.
func (a *Auth) VerifyTwoFA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, r, apperr.Authentication("Login required"))
		return
	}

	var req totpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !user.IsActive {
		writeError(w, r, apperr.Authentication("Login required"))
		return
	}
	if !user.Requires2FA() {
		writeError(w, r, apperr.Validation("Two-factor authentication is not enabled"))
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, r, apperr.Authentication("Invalid verification code"))
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		writeError(w, r, apperr.Internal("update session", err))
		return
	}
	a.completeLogin(w, r, user)
}

// SetupTwoFA handles POST /auth/2fa/setup. It stores a fresh secret and
// returns it with a QR code; the factor is only enforced after EnableTwoFA.
func (a *Auth) SetupTwoFA(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user.TOTPEnabled {
		writeError(w, r, apperr.Validation("Two-factor authentication is already enabled"))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		writeError(w, r, apperr.Internal("generate totp key", err))
		return
	}
	if err := a.users.SetTOTPSecret(r.Context(), user.ID, key.Secret()); err != nil {
		writeError(w, r, err)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		writeError(w, r, apperr.Internal("encode qr code", err))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
		"qrPng":  "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, "")
}

// EnableTwoFA handles POST /auth/2fa/enable, confirming the secret from
// SetupTwoFA with a valid code.
func (a *Auth) EnableTwoFA(w http.ResponseWriter, r *http.Request) {
	var req totpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, r, apperr.Validation("Run two-factor setup first"))
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, r, apperr.Validation("Invalid verification code"))
		return
	}
	if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("2fa enabled", "user_id", user.ID)
	writeMessage(w, http.StatusOK, "Two-factor authentication enabled")
}

// Logout handles POST /auth/logout. Bearer tokens simply expire.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (a *Auth) currentUser(r *http.Request) (*models.User, error) {
	caller := identity.FromContext(r.Context())
	if caller == nil {
		return nil, apperr.Authentication("Authentication required")
	}
	user, err := a.users.FindByID(r.Context(), caller.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}
