package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a small starter category tree. It is a no-op when users
// already exist. The admin will be prompted to set up 2FA on first login
// (totp_enabled = false).
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@newsdesk.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Starter categories: news → {politics, sports}, opinion.
	var newsID string
	err = db.QueryRow(`
		INSERT INTO categories (name, slug, level, sort_order)
		VALUES ('News', 'news', 0, 0)
		RETURNING id
	`).Scan(&newsID)
	if err != nil {
		return fmt.Errorf("seed insert news category: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO categories (name, slug, parent_id, level, sort_order) VALUES
			('Politics', 'politics', $1, 1, 0),
			('Sports', 'sports', $1, 1, 1)
	`, newsID)
	if err != nil {
		return fmt.Errorf("seed insert subcategories: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO categories (name, slug, level, sort_order)
		VALUES ('Opinion', 'opinion', 0, 1)
	`)
	if err != nil {
		return fmt.Errorf("seed insert opinion category: %w", err)
	}

	slog.Info("database seeded with default admin user and starter categories",
		"email", "admin@newsdesk.local",
		"password", "admin",
	)

	return nil
}
