// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps editor login state in Valkey, keyed by an opaque
// cookie. The payload carries just enough identity for the admin API to
// authorize writes without a user lookup per request.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName identifies the newsdesk session cookie.
	CookieName = "nd_session"

	// DefaultTTL is how long an editor stays logged in without activity.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"
	idBytes   = 32
)

// Data is the session payload. TwoFADone is false between password login
// and TOTP verification; the admin routes require it to be true.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	TwoFADone   bool      `json:"two_fa_done"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store manages sessions in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore returns a session store. With secure set, cookies are marked
// TLS-only, which is how production runs behind its proxy.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

// Create stores a fresh session and sets the cookie. The returned ID is
// the cookie value, useful mostly to tests.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}

	data.CreatedAt = time.Now()
	if err := s.put(ctx, id, data); err != nil {
		return "", err
	}

	http.SetCookie(w, s.cookie(id, int(s.ttl.Seconds())))
	return id, nil
}

// Get loads the session named by the request cookie. A missing cookie or
// an expired session is (nil, nil), not an error.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &data, nil
}

// Update rewrites the payload under the existing session ID and resets
// the TTL. Used when 2FA verification flips TwoFADone.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return fmt.Errorf("session update: no cookie")
	}
	return s.put(ctx, cookie.Value, data)
}

// Destroy drops the session and expires the cookie. Safe to call when no
// session exists.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	s.client.Del(ctx, keyPrefix+cookie.Value)
	http.SetCookie(w, s.cookie("", -1))
	return nil
}

func (s *Store) put(ctx context.Context, id string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func newSessionID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
