// Package journal spools audit entries to a local SQLite file when the
// primary audit store is unavailable, so they can be replayed later.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_journal (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	sent_at TEXT,
	failed_reason TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_journal_pending ON audit_journal (sent_at, id);
`

type SQLiteJournal struct {
	db *sqlx.DB
}

// Open opens (or creates) the journal at path. Use ":memory:" in tests.
func Open(path string) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit journal: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit journal: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

var _ domainRepo.AuditJournal = (*SQLiteJournal)(nil)

func (j *SQLiteJournal) Append(ctx context.Context, entry *entity.AuditLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `INSERT INTO audit_journal (payload) VALUES (?)`, string(payload))
	return err
}

func (j *SQLiteJournal) FetchPending(ctx context.Context, limit int) ([]domainRepo.JournalRecord, error) {
	var rows []struct {
		ID      int64  `db:"id"`
		Payload string `db:"payload"`
	}
	err := j.db.SelectContext(ctx, &rows,
		`SELECT id, payload FROM audit_journal WHERE sent_at IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domainRepo.JournalRecord, 0, len(rows))
	for _, row := range rows {
		rec := domainRepo.JournalRecord{ID: row.ID}
		if err := json.Unmarshal([]byte(row.Payload), &rec.Entry); err != nil {
			// A row that cannot be decoded would block every later entry.
			if qerr := j.quarantine(ctx, row.ID, err); qerr != nil {
				return nil, fmt.Errorf("quarantine journal row %d: %w", row.ID, qerr)
			}
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// quarantine takes a row out of the pending set and keeps it, with the
// reason, for manual inspection.
func (j *SQLiteJournal) quarantine(ctx context.Context, id int64, reason error) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE audit_journal SET sent_at = CURRENT_TIMESTAMP, failed_reason = ? WHERE id = ?`,
		reason.Error(), id)
	return err
}

// QuarantinedCount reports rows that were set aside because they could not be decoded.
func (j *SQLiteJournal) QuarantinedCount(ctx context.Context) (int64, error) {
	var n int64
	err := j.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM audit_journal WHERE failed_reason IS NOT NULL`)
	return n, err
}

func (j *SQLiteJournal) MarkSent(ctx context.Context, id int64) error {
	_, err := j.db.ExecContext(ctx, `UPDATE audit_journal SET sent_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// PendingCount reports entries still waiting to be replayed.
func (j *SQLiteJournal) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := j.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM audit_journal WHERE sent_at IS NULL`)
	return n, err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
