package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Execution is one logged tool execution, the raw material for skill
// performance stats.
type Execution struct {
	SessionID    string                 `json:"session_id"`
	ToolName     string                 `json:"tool_name"`
	ToolInput    map[string]interface{} `json:"tool_input"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	DurationMS   int64                  `json:"duration_ms,omitempty"`
	SkillUsed    string                 `json:"skill_used,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// SessionSummary aggregates one session for the insights pass.
type SessionSummary struct {
	SessionID       string   `json:"session_id"`
	Prompt          string   `json:"prompt"`
	ToolsUsed       []string `json:"tools_used"`
	SkillsDetected  []string `json:"skills_detected"`
	TotalToolCalls  int      `json:"total_tool_calls"`
	SuccessfulCalls int      `json:"successful_calls"`
	FailedCalls     int      `json:"failed_calls"`
	TaskCompleted   bool     `json:"task_completed"`
	Timestamp       time.Time `json:"timestamp"`
}

// Stats summarizes success rates for one skill or tool.
type Stats struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// Counts holds store-wide totals.
type Counts struct {
	Executions int `json:"total_executions"`
	Sessions   int `json:"total_sessions"`
	Skills     int `json:"total_skills"`
}

// LogExecution appends a tool execution record and returns its row id.
func (s *Store) LogExecution(ctx context.Context, e Execution) (int64, error) {
	inputJSON, err := json.Marshal(e.ToolInput)
	if err != nil {
		return 0, errors.Wrap(err, "failed to marshal tool input")
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_executions
			(session_id, tool_name, tool_input, success, error_message, duration_ms, skill_used, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.SessionID, e.ToolName, string(inputJSON), e.Success,
		nullable(e.ErrorMessage), e.DurationMS, nullable(e.SkillUsed), ts.Format(time.RFC3339))
	if err != nil {
		return 0, errors.Wrap(err, "failed to log tool execution")
	}

	return res.LastInsertId()
}

// LogSessionSummary inserts or replaces a session summary.
func (s *Store) LogSessionSummary(ctx context.Context, sum SessionSummary) error {
	toolsJSON, err := json.Marshal(sum.ToolsUsed)
	if err != nil {
		return errors.Wrap(err, "failed to marshal tools used")
	}
	skillsJSON, err := json.Marshal(sum.SkillsDetected)
	if err != nil {
		return errors.Wrap(err, "failed to marshal skills detected")
	}

	ts := sum.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO session_summaries
			(session_id, prompt, tools_used, skills_detected, total_tool_calls,
			 successful_calls, failed_calls, task_completed, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sum.SessionID, sum.Prompt, string(toolsJSON), string(skillsJSON),
		sum.TotalToolCalls, sum.SuccessfulCalls, sum.FailedCalls, sum.TaskCompleted,
		ts.Format(time.RFC3339))
	return errors.Wrap(err, "failed to log session summary")
}

// SkillStats returns per-skill success stats, optionally filtered to one
// skill id.
func (s *Store) SkillStats(ctx context.Context, skillID string) (map[string]Stats, error) {
	query := `
		SELECT skill_used, COUNT(*) AS total,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END) AS successful
		FROM tool_executions
		WHERE skill_used IS NOT NULL`
	args := []interface{}{}
	if skillID != "" {
		query += " AND skill_used = ?"
		args = append(args, skillID)
	}
	query += " GROUP BY skill_used"

	return s.statsQuery(ctx, query, args...)
}

// ToolUsageStats returns per-tool success stats.
func (s *Store) ToolUsageStats(ctx context.Context) (map[string]Stats, error) {
	return s.statsQuery(ctx, `
		SELECT tool_name, COUNT(*) AS total,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END) AS successful
		FROM tool_executions
		GROUP BY tool_name
	`)
}

func (s *Store) statsQuery(ctx context.Context, query string, args ...interface{}) (map[string]Stats, error) {
	rows := []struct {
		Key        string `db:"skill_used"`
		ToolName   string `db:"tool_name"`
		Total      int    `db:"total"`
		Successful int    `db:"successful"`
	}{}

	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to query stats")
	}

	out := make(map[string]Stats, len(rows))
	for _, row := range rows {
		key := row.Key
		if key == "" {
			key = row.ToolName
		}
		stats := Stats{
			Total:      row.Total,
			Successful: row.Successful,
			Failed:     row.Total - row.Successful,
		}
		if stats.Total > 0 {
			stats.SuccessRate = float64(stats.Successful) / float64(stats.Total)
		}
		out[key] = stats
	}
	return out, nil
}

// RecentSessions returns the newest session summaries, most recent first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows := []struct {
		SessionID       string `db:"session_id"`
		Prompt          string `db:"prompt"`
		ToolsUsed       string `db:"tools_used"`
		SkillsDetected  string `db:"skills_detected"`
		TotalToolCalls  int    `db:"total_tool_calls"`
		SuccessfulCalls int    `db:"successful_calls"`
		FailedCalls     int    `db:"failed_calls"`
		TaskCompleted   bool   `db:"task_completed"`
		Timestamp       string `db:"timestamp"`
	}{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT session_id, prompt, tools_used, skills_detected, total_tool_calls,
		       successful_calls, failed_calls, task_completed, timestamp
		FROM session_summaries ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent sessions")
	}

	out := make([]SessionSummary, 0, len(rows))
	for _, row := range rows {
		sum := SessionSummary{
			SessionID:       row.SessionID,
			Prompt:          row.Prompt,
			TotalToolCalls:  row.TotalToolCalls,
			SuccessfulCalls: row.SuccessfulCalls,
			FailedCalls:     row.FailedCalls,
			TaskCompleted:   row.TaskCompleted,
		}
		_ = json.Unmarshal([]byte(row.ToolsUsed), &sum.ToolsUsed)
		_ = json.Unmarshal([]byte(row.SkillsDetected), &sum.SkillsDetected)
		if ts, err := time.Parse(time.RFC3339, row.Timestamp); err == nil {
			sum.Timestamp = ts
		}
		out = append(out, sum)
	}
	return out, nil
}

// CommonErrors returns the most frequent error messages, optionally
// filtered by skill.
func (s *Store) CommonErrors(ctx context.Context, skillID string, limit int) ([]ErrorCount, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT error_message, COUNT(*) AS count, tool_name
		FROM tool_executions
		WHERE NOT success AND error_message IS NOT NULL`
	args := []interface{}{}
	if skillID != "" {
		query += " AND skill_used = ?"
		args = append(args, skillID)
	}
	query += " GROUP BY error_message ORDER BY count DESC LIMIT ?"
	args = append(args, limit)

	rows := []ErrorCount{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to query common errors")
	}
	return rows, nil
}

// ErrorCount is one aggregated error message.
type ErrorCount struct {
	Error string `db:"error_message" json:"error"`
	Count int    `db:"count" json:"count"`
	Tool  string `db:"tool_name" json:"tool"`
}

// TotalCounts returns store-wide totals for quick stats.
func (s *Store) TotalCounts(ctx context.Context) (Counts, error) {
	var counts Counts

	queries := []struct {
		dest  *int
		query string
	}{
		{&counts.Executions, "SELECT COUNT(*) FROM tool_executions"},
		{&counts.Sessions, "SELECT COUNT(DISTINCT session_id) FROM tool_executions"},
		{&counts.Skills, "SELECT COUNT(DISTINCT skill_used) FROM tool_executions WHERE skill_used IS NOT NULL"},
	}
	for _, q := range queries {
		if err := s.db.GetContext(ctx, q.dest, q.query); err != nil {
			return Counts{}, errors.Wrap(err, "failed to query totals")
		}
	}

	return counts, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
