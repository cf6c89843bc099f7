package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/vue-rookie/blog-platform/internal/models"
)

// Development credentials created by Seed.
const (
	SeedAdminEmail    = "admin@blog.local"
	SeedAdminUsername = "admin"
	SeedAdminPassword = "admin123"
)

// Seed populates the database with initial development data: a default
// admin account and a "general" category. Existing rows are left alone,
// so Seed is safe to call on every start.
func Seed(ctx context.Context, db *sql.DB) error {
	var exists bool
	if err := db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", SeedAdminEmail,
	).Scan(&exists); err != nil {
		return fmt.Errorf("seed check admin: %w", err)
	}

	if !exists {
		hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed bcrypt: %w", err)
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO users (username, email, password_hash, role, is_active)
			VALUES ($1, $2, $3, $4, TRUE)
			ON CONFLICT DO NOTHING
		`, SeedAdminUsername, SeedAdminEmail, string(hash), models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("seed insert admin: %w", err)
		}

		slog.Info("database seeded with default admin user",
			"email", SeedAdminEmail,
			"password", SeedAdminPassword,
		)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO categories (name, slug, description, color)
		VALUES ('General', 'general', 'Posts that do not fit anywhere else', $1)
		ON CONFLICT (slug) DO NOTHING
	`, models.DefaultCategoryColor)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	return nil
}
