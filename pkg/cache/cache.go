// Package cache persists learned fingerprint→skill associations alongside
// the tool-execution log that feeds the offline insights pass. Associations
// are advisory: single-record upserts keyed by the fingerprint primary key,
// last-write-wins on skill id, monotonically growing hit counts.
package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/voyantlabs/skillscout/pkg/db"
	"github.com/voyantlabs/skillscout/pkg/logger"
)

// Store is a SQLite-backed feedback store. It exclusively owns its database
// file; concurrent readers and writers are safe because no transaction
// spans more than one fingerprint.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating and migrating if needed) the feedback store at the
// given path.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(sqlDB)
	if err := runner.Run(ctx, migrations); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "failed to migrate feedback store")
	}

	return &Store{db: sqlDB}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var migrations = []db.Migration{
	{
		Version:     20260115090000,
		Description: "create learned_associations",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS learned_associations (
					context_fingerprint TEXT PRIMARY KEY,
					skill_id TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 1.0,
					hit_count INTEGER NOT NULL DEFAULT 1,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)
			`)
			return err
		},
	},
	{
		Version:     20260115090001,
		Description: "create tool_executions",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE IF NOT EXISTS tool_executions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					session_id TEXT NOT NULL,
					tool_name TEXT NOT NULL,
					tool_input TEXT,
					success BOOLEAN NOT NULL,
					error_message TEXT,
					duration_ms INTEGER,
					skill_used TEXT,
					timestamp TEXT NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_tool_executions_skill ON tool_executions(skill_used)`,
				`CREATE INDEX IF NOT EXISTS idx_tool_executions_session ON tool_executions(session_id)`,
				`CREATE INDEX IF NOT EXISTS idx_tool_executions_tool ON tool_executions(tool_name)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		Version:     20260115090002,
		Description: "create session_summaries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS session_summaries (
					session_id TEXT PRIMARY KEY,
					prompt TEXT,
					tools_used TEXT,
					skills_detected TEXT,
					total_tool_calls INTEGER,
					successful_calls INTEGER,
					failed_calls INTEGER,
					task_completed BOOLEAN,
					timestamp TEXT NOT NULL
				)
			`)
			return err
		},
	},
}

// Get looks up a learned association by fingerprint. The second return
// value reports whether an association exists.
func (s *Store) Get(ctx context.Context, fingerprint string) (string, bool, error) {
	var skillID string
	err := s.db.GetContext(ctx, &skillID,
		"SELECT skill_id FROM learned_associations WHERE context_fingerprint = ?", fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "failed to query learned association")
	}
	return skillID, true, nil
}

// Put learns or reinforces a fingerprint→skill association: insert with
// hit_count=1, or on conflict replace the skill id, fold the confidence
// into a running average, bump hit_count, and refresh updated_at.
func (s *Store) Put(ctx context.Context, fingerprint, skillID string, confidence float64) error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learned_associations
			(context_fingerprint, skill_id, confidence, hit_count, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(context_fingerprint) DO UPDATE SET
			skill_id = excluded.skill_id,
			confidence = (confidence * hit_count + excluded.confidence) / (hit_count + 1),
			hit_count = hit_count + 1,
			updated_at = excluded.updated_at
	`, fingerprint, skillID, confidence, now, now)
	if err != nil {
		return errors.Wrap(err, "failed to upsert learned association")
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"fingerprint": fingerprint,
		"skill":       skillID,
	}).Debug("learned association")
	return nil
}

// HitCount returns the hit count for a fingerprint, 0 when absent.
func (s *Store) HitCount(ctx context.Context, fingerprint string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT hit_count FROM learned_associations WHERE context_fingerprint = ?", fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to query hit count")
	}
	return count, nil
}

// Associations returns all learned associations as fingerprint→skill id.
func (s *Store) Associations(ctx context.Context) (map[string]string, error) {
	rows := []struct {
		Fingerprint string `db:"context_fingerprint"`
		SkillID     string `db:"skill_id"`
	}{}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT context_fingerprint, skill_id FROM learned_associations")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list learned associations")
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Fingerprint] = row.SkillID
	}
	return out, nil
}

// Reset deletes all stored data: associations, executions, and summaries.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"learned_associations", "tool_executions", "session_summaries"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "failed to clear %s", table)
		}
	}
	logger.G(ctx).Info("feedback store reset")
	return nil
}
