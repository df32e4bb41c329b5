// Package backend selects and builds a Store implementation from
// configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/store"
	"budgetbook/internal/store/memory"
	"budgetbook/internal/store/postgres"
	"budgetbook/internal/store/sqlite"
)

// Type names a storage backend.
type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
)

func (t Type) String() string { return string(t) }

// IsValid reports whether t names a known backend.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Postgres:
		return true
	default:
		return false
	}
}

// Config holds what a backend needs to start.
type Config struct {
	Type Type

	// SQLite
	SQLiteDBPath string

	// Postgres
	PostgresURL string

	// Memory
	MemoryLatency time.Duration
	SeedDemoData  bool
}

// Result is a built store plus its cleanup.
type Result struct {
	Store   store.Store
	Cleanup func() error
}

// Factory builds stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the store described by cfg.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case Memory:
		return f.createMemory(ctx, cfg)
	case SQLite:
		return f.createSQLite(cfg)
	case Postgres:
		return f.createPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *Factory) createMemory(ctx context.Context, cfg Config) (*Result, error) {
	var opts []memory.Option
	if cfg.MemoryLatency > 0 {
		opts = append(opts, memory.WithLatency(cfg.MemoryLatency))
	}
	s := memory.New(opts...)

	if cfg.SeedDemoData {
		if err := memory.Seed(ctx, s, time.Now()); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		f.logger.Info("Seeded demo data")
	}

	f.logger.Info("Initialized memory backend", "latency", cfg.MemoryLatency)
	return &Result{Store: s, Cleanup: s.Close}, nil
}

func (f *Factory) createSQLite(cfg Config) (*Result, error) {
	s, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite backend: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return &Result{Store: s, Cleanup: s.Close}, nil
}

func (f *Factory) createPostgres(ctx context.Context, cfg Config) (*Result, error) {
	s, err := postgres.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres backend: %w", err)
	}

	f.logger.Info("Initialized Postgres backend")
	return &Result{Store: s, Cleanup: s.Close}, nil
}
