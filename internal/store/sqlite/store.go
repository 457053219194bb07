// Package sqlite is the SQLite-backed tag store.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/tagengine/internal/domain"
	"github.com/listenupapp/tagengine/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// maxInParams caps the placeholders in one IN (...) list.
const maxInParams = 500

// Store provides SQLite-backed persistence for tags and their associations.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.TagStore = (*Store)(nil)

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Shutdown implements do.Shutdowner.
func (s *Store) Shutdown() error {
	return s.Close()
}

// tableName maps an association table to its SQL name. Only whitelisted
// names ever reach a query string.
func tableName(t domain.AssociationTable) (string, error) {
	switch t {
	case domain.AssociationLegacy:
		return "legacy_content_tags", nil
	case domain.AssociationCurrent:
		return "content_tags", nil
	default:
		return "", store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown association table %q", t))
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// inClause returns "?,?,..." and the matching args for ids.
func inClause(ids []string) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

// chunks splits ids into slices of at most maxInParams.
func chunks(ids []string) [][]string {
	var out [][]string
	for len(ids) > maxInParams {
		out = append(out, ids[:maxInParams])
		ids = ids[maxInParams:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
