package genai

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/repsmith/internal/models"
	_ "modernc.org/sqlite"
)

// AuditLog records one row per Generate call in a local SQLite database,
// for offline debugging of generation behavior. Best-effort: the engine
// logs and continues when a write fails.
type AuditLog struct {
	db *sql.DB
}

// OpenAuditLog opens (or creates) the audit database at dir/genai.db.
func OpenAuditLog(dir string) (*AuditLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "genai.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS generation_audit (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL,
		source     TEXT NOT NULL,
		attempts   INTEGER NOT NULL,
		quality    INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit table: %w", err)
	}

	return &AuditLog{db: db}, nil
}

// Record appends one generation outcome.
func (a *AuditLog) Record(userID int, source models.PlanSource, attempts, quality int, elapsed time.Duration) error {
	_, err := a.db.Exec(
		`INSERT INTO generation_audit (user_id, source, attempts, quality, elapsed_ms) VALUES (?, ?, ?, ?, ?)`,
		userID, string(source), attempts, quality, elapsed.Milliseconds(),
	)
	return err
}

// Close closes the audit database.
func (a *AuditLog) Close() error {
	return a.db.Close()
}
