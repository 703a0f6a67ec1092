// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/models"
)

// UserStore manages admin-panel users in the database.
type UserStore struct {
	db *sql.DB
}

// NewUserStore returns a new UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, display_name, role, totp_secret, totp_enabled, created_at, updated_at`

// scanUser scans a row into a User struct.
func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role,
		&u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail retrieves a user by email. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by ID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *UserStore) CheckPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetTOTPSecret stores the provisional TOTP secret during 2FA setup.
func (s *UserStore) SetTOTPSecret(id uuid.UUID, secret string) error {
	_, err := s.db.Exec(
		`UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2`,
		secret, id,
	)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA enrollment as complete after a verified code.
func (s *UserStore) EnableTOTP(id uuid.UUID) error {
	_, err := s.db.Exec(
		`UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}
