package migrate_test

import (
	"testing"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/db"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/migrate"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var tables int
	err = conn.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name IN ('users','tasks','task_assignees','activity_log','api_keys')`).Scan(&tables)
	if err != nil || tables != 5 {
		t.Fatalf("expected 5 tables, got %d (err %v)", tables, err)
	}
	var version int
	if err := conn.QueryRow(`SELECT version FROM schema_version`).Scan(&version); err != nil || version < 1 {
		t.Fatalf("expected recorded version, got %d (err %v)", version, err)
	}
}
