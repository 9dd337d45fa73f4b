// Package migrate brings a workspace database up to the current schema.
// Scripts live in sql/ as <version>_<label>.sql and run in one transaction;
// a single-row schema_version table records how far the store has advanced.
package migrate

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var scriptFS embed.FS

type script struct {
	version int
	label   string
	body    string
}

// loadScripts reads the embedded scripts sorted by version. Duplicate
// versions are a packaging mistake and fail loudly.
func loadScripts() ([]script, error) {
	entries, err := scriptFS.ReadDir("sql")
	if err != nil {
		return nil, err
	}
	seen := make(map[int]string, len(entries))
	out := make([]script, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		prefix, label, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: want <version>_<label>.sql", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", name, err)
		}
		if prior, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %s: version %d already used by %s", name, version, prior)
		}
		seen[version] = name
		body, err := scriptFS.ReadFile("sql/" + name)
		if err != nil {
			return nil, err
		}
		out = append(out, script{
			version: version,
			label:   strings.TrimSuffix(label, ".sql"),
			body:    string(body),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func appliedVersion(tx *sql.Tx) (int, error) {
	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version(version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var version int
	err := tx.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (0)`); err != nil {
			return 0, fmt.Errorf("seed schema_version: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return version, nil
}

// Migrate applies every script newer than the recorded version. Running it
// against an up-to-date store is a no-op.
func Migrate(db *sql.DB) error {
	scripts, err := loadScripts()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	applied, err := appliedVersion(tx)
	if err != nil {
		return err
	}
	for _, s := range scripts {
		if s.version <= applied {
			continue
		}
		if _, err := tx.Exec(s.body); err != nil {
			return fmt.Errorf("apply %d_%s: %w", s.version, s.label, err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version=?`, s.version); err != nil {
			return fmt.Errorf("record version %d: %w", s.version, err)
		}
	}
	return tx.Commit()
}
