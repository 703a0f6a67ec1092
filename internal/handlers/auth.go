// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"newsdesk/internal/middleware"
	"newsdesk/internal/session"
	"newsdesk/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "Newsdesk"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{sessions: sessions, userStore: userStore}
}

// loginInput is the JSON body for login.
type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and issues a session. The session starts with
// 2FA incomplete; the response tells the frontend which 2FA step is next.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	user, err := a.userStore.FindByEmail(in.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, in.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	// TwoFADone starts false — the user must complete 2FA before the
	// admin routes open up.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	next := "verify"
	if user.Needs2FASetup() {
		next = "setup"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"display_name": user.DisplayName,
		"role":         user.Role,
		"two_fa":       next,
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]any{"logged_out": true})
}

// TwoFASetup generates a fresh TOTP secret for the logged-in user, saves
// it, and responds with the provisioning QR code as a PNG image.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// verifyInput is the JSON body for 2FA verification.
type verifyInput struct {
	Code string `json:"code"`
}

// TwoFAVerify checks a TOTP code against the stored secret. On the first
// successful verification, enrollment is marked complete; every success
// marks the session 2FA-done.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var in verifyInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil || user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "Two-factor setup has not started.")
		return
	}

	if !totp.Validate(in.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "Invalid verification code.")
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"verified": true})
}
