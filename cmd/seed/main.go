// Package main provides a CLI tool for seeding the demo database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"crudgrid/internal/storage/postgres"
	"crudgrid/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS departments (
	id    UUID PRIMARY KEY,
	name  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'viewer',
	enabled       BOOLEAN NOT NULL DEFAULT TRUE,
	department_id UUID REFERENCES departments(id),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS crud_user_settings (
	user_id           TEXT NOT NULL,
	crud_name         TEXT NOT NULL,
	results_displayed INT NOT NULL,
	displayed_columns TEXT NOT NULL DEFAULT '[]',
	sort              TEXT NOT NULL DEFAULT '',
	sense             TEXT NOT NULL DEFAULT 'ASC',
	PRIMARY KEY (user_id, crud_name)
);

CREATE TABLE IF NOT EXISTS crud_search_session (
	user_id    TEXT NOT NULL,
	crud_name  TEXT NOT NULL,
	payload    BYTEA NOT NULL,
	compressed BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, crud_name)
);
`

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema ready")

	deptIDs, err := seedDepartments(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed departments", "error", err)
	}

	if err := seedUsers(ctx, pool, log, deptIDs); err != nil {
		log.Fatalw("failed to seed users", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedDepartments(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) ([]uuid.UUID, error) {
	names := []string{"Engineering", "Sales", "Support"}
	ids := make([]uuid.UUID, 0, len(names))

	for _, name := range names {
		var id uuid.UUID
		err := pool.QueryRow(ctx, "SELECT id FROM departments WHERE name = $1", name).Scan(&id)
		if err == nil {
			ids = append(ids, id)
			continue
		}

		id = uuid.New()
		if _, err := pool.Exec(ctx,
			"INSERT INTO departments (id, name) VALUES ($1, $2)", id, name); err != nil {
			return nil, fmt.Errorf("insert department %s: %w", name, err)
		}
		ids = append(ids, id)
		log.Infow("created department", "name", name)
	}

	return ids, nil
}

type seedUser struct {
	username  string
	email     string
	firstName string
	lastName  string
	role      string
	enabled   bool
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger, deptIDs []uuid.UUID) error {
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "Password123!"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	users := []seedUser{
		{"admin", "admin@example.com", "Ada", "Lovelace", "admin", true},
		{"bgrace", "bgrace@example.com", "Barbara", "Grace", "manager", true},
		{"chopper", "chopper@example.com", "Grace", "Hopper", "manager", true},
		{"dknuth", "dknuth@example.com", "Donald", "Knuth", "viewer", true},
		{"edijkstra", "edijkstra@example.com", "Edsger", "Dijkstra", "viewer", true},
		{"fallen", "fallen@example.com", "Frances", "Allen", "viewer", true},
		{"gkay", "gkay@example.com", "Alan", "Kay", "viewer", false},
		{"hlamport", "hlamport@example.com", "Leslie", "Lamport", "viewer", true},
	}

	// Filler accounts so pagination has something to page through.
	for i := 1; i <= 25; i++ {
		users = append(users, seedUser{
			username:  fmt.Sprintf("user%02d", i),
			email:     fmt.Sprintf("user%02d@example.com", i),
			firstName: fmt.Sprintf("User%02d", i),
			lastName:  "Demo",
			role:      "viewer",
			enabled:   i%7 != 0,
		})
	}

	created := 0
	base := time.Now().AddDate(0, -6, 0)
	for i, u := range users {
		dept := deptIDs[i%len(deptIDs)]
		createdAt := base.AddDate(0, 0, i*3)

		tag, err := pool.Exec(ctx, `
			INSERT INTO users (id, username, email, password_hash, first_name, last_name, role, enabled, department_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (username) DO NOTHING`,
			uuid.New(), u.username, u.email, string(hash),
			u.firstName, u.lastName, u.role, u.enabled, dept, createdAt)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.username, err)
		}
		created += int(tag.RowsAffected())
	}

	log.Infow("users seeded", "created", created, "total", len(users))
	return nil
}
