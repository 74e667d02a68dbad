package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oliauusc/CSCI201-Group7/internal/pkg/config"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up> [dir]")
	}

	cfg, err := config.Load("campusfood-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log, "campusfood-migrate")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	dir := "migrations"
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	switch os.Args[1] {
	case "up":
		if err := runMigrations(ctx, pool, dir); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// runMigrations applies every *.sql file in dir in name order. Each file is
// idempotent, so re-running is safe.
func runMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.Info("migration applied", "file", f)
	}

	slog.Info("all migrations applied", "count", len(files))
	return nil
}
