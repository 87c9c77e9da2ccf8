//go:build integration

// Package testdb starts a throwaway Postgres with the repository schema applied.
package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yigit/rollcall/internal/app/migrations"
	"github.com/yigit/rollcall/internal/db"
)

// Handle owns the container and the pool connected to it
type Handle struct {
	DB   *db.PostgresDB
	stop func(context.Context) error
}

// Close releases the pool and terminates the container
func (h *Handle) Close() {
	if h.DB != nil {
		h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
}

// Truncate empties every application table
func (h *Handle) Truncate(ctx context.Context) error {
	_, err := h.DB.Pool.Exec(ctx, `TRUNCATE teacher_invites, accounts, organizations RESTART IDENTITY CASCADE`)
	return err
}

// Start runs postgres and applies migrations/
func Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("rollcall"),
		postgres.WithUsername("rollcall"),
		postgres.WithPassword("rollcall"),
		tc.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return nil, err
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, err
	}

	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, err
	}

	dir, err := migrationsDir()
	if err != nil {
		pool.Close()
		_ = pg.Terminate(ctx)
		return nil, err
	}
	if err := migrations.NewMigrator(pool, zerolog.Nop()).MigrateFromDirectory(ctx, dir); err != nil {
		pool.Close()
		_ = pg.Terminate(ctx)
		return nil, err
	}

	return &Handle{DB: db.NewFromPool(pool, zerolog.Nop()), stop: pg.Terminate}, nil
}

func migrationsDir() (string, error) {
	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", wd)
		}
		dir = parent
	}
}
