package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ficcboard/backend/internal/db"
)

type testDB struct {
	container testcontainers.Container
	database  *db.DB
}

func setupTestDB(t *testing.T) *testDB {
	if testing.Short() {
		t.Skip("skipping container-based DB tests in short mode")
	}
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	database, err := gorm.Open(gormPostgres.New(gormPostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	wrapped := &db.DB{DB: database}
	if err := applyMigrations(wrapped); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return &testDB{
		container: pgContainer,
		database:  wrapped,
	}
}

func (tdb *testDB) cleanup(t *testing.T) {
	ctx := context.Background()
	if err := tdb.container.Terminate(ctx); err != nil {
		t.Errorf("Failed to terminate container: %v", err)
	}
}

// exec runs one statement against the test database, failing the test on error.
func (tdb *testDB) exec(t *testing.T, query string, args ...interface{}) {
	t.Helper()
	sqlDB, err := tdb.database.GetSQLDB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}
	if _, err := sqlDB.Exec(query, args...); err != nil {
		t.Fatalf("Failed to exec %q: %v", query, err)
	}
}

func applyMigrations(database *db.DB) error {
	// Locate the migrations directory: MIGRATIONS_DIR wins, otherwise search
	// upwards from the working directory.
	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		wd, _ := os.Getwd()
		dir := wd
		for i := 0; i < 8; i++ {
			candidate := filepath.Join(dir, "migrations")
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				migrationsDir = candidate
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if migrationsDir == "" {
		return fmt.Errorf("failed to locate migrations directory; set MIGRATIONS_DIR or run tests from repo root")
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return err
	}
	// Sort by filename to ensure correct order
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, rerr := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
		if rerr != nil {
			return rerr
		}
		if _, exErr := sqlDB.Exec(string(b)); exErr != nil {
			return exErr
		}
	}
	return nil
}
