// store_test.go provides shared database helpers for the store integration
// tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vue-rookie/blog-platform/internal/database"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testAuthor creates a throwaway author account and returns its identity.
// The account, its posts and any comments on those posts are removed when
// the test finishes.
func testAuthor(t *testing.T, db *sql.DB, role models.Role) *identity.Identity {
	t.Helper()

	token := uuid.NewString()[:8]
	u, err := NewUserStore(db).Create(context.Background(), CreateUserInput{
		Username: "store-test-" + token,
		Email:    "store-test-" + token + "@store-test.local",
		Password: "testpass123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = $1)", u.ID)
		db.Exec("DELETE FROM posts WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})

	return &identity.Identity{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// testPost creates a post owned by author with a unique title.
func testPost(t *testing.T, db *sql.DB, author *identity.Identity, in CreatePostInput) *models.Post {
	t.Helper()
	if in.Title == "" {
		in.Title = "Store Test " + uuid.NewString()[:8]
	}
	if in.Content == "" {
		in.Content = "Body of " + in.Title
	}
	p, err := NewPostStore(db).Create(context.Background(), author, in)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}
