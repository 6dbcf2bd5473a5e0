package test

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	database "todoapi/internal/adapter/database/sqlite"
)

type TestSetup[T any] struct {
	DB   *sql.DB
	Repo *T
}

// findProjectRoot walks up from this file until it sees go.mod, so tests
// resolve the migrations directory regardless of which package runs them.
func findProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	log.Fatal("Could not find project root directory")
	return ""
}

func InitTestDB() *database.DB {
	db, err := sql.Open("sqlite3", ":memory:")

	if err != nil {
		log.Fatal(err)
	}

	// A second connection to ":memory:" would see an empty database, so the
	// pool is pinned to one.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		log.Fatal(err)
	}

	projectRoot := findProjectRoot()
	migrationsPath := filepath.Join(projectRoot, "db", "migrations")
	database.RunMigrations(db, migrationsPath)

	return database.Wrap(db)
}

func SetupTest[T any](t *testing.T, repo *T) *TestSetup[T] {
	db := InitTestDB()

	return &TestSetup[T]{
		DB:   db.DB,
		Repo: repo,
	}
}

func TeardownTest[T any](t *testing.T, setup *TestSetup[T]) {
	if setup.DB != nil {
		CleanDB(t, setup)
		setup.DB.Close()
	}
}

func CleanDB[T any](t *testing.T, setup *TestSetup[T]) {
	rows, err := setup.DB.Query("SELECT name FROM sqlite_master WHERE type = 'table' and name not in ('sqlite_sequence', 'schema_migrations')")
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var table string

		if err := rows.Scan(&table); err != nil {
			t.Fatalf("Failed to scan table name: %v", err)
		}
		table = strings.TrimSpace(table)

		stmt, err := setup.DB.Prepare("DELETE FROM " + table)
		if err != nil {
			t.Fatalf("Failed to prepare delete statement for table %s: %v", table, err)
		}
		defer stmt.Close()

		if _, err := stmt.Exec(); err != nil {
			t.Fatalf("Failed to execute delete for table %s: %v", table, err)
		}
	}

	if err := rows.Err(); err != nil {
		t.Fatalf("Error iterating over rows: %v", err)
	}
}
