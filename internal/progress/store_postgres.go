package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/prost/internal/reading"
)

const dbTimeout = 5 * time.Second

// Schema creates the completion log and analytics tables.
const Schema = `
CREATE TABLE IF NOT EXISTS completions (
	seq            BIGSERIAL,
	id             UUID PRIMARY KEY,
	user_id        TEXT NOT NULL,
	subject_id     TEXT NOT NULL,
	kind           TEXT NOT NULL,
	level          TEXT NOT NULL,
	score          DOUBLE PRECISION NOT NULL CHECK (score >= 0 AND score <= 1),
	completed_at   TIMESTAMPTZ NOT NULL,
	attempt_number INTEGER NOT NULL CHECK (attempt_number >= 1),
	is_passed      BOOLEAN NOT NULL,
	time_spent     INTEGER
);
CREATE INDEX IF NOT EXISTS completions_user_seq_idx ON completions (user_id, seq);

CREATE TABLE IF NOT EXISTS completion_parts (
	completion_id UUID NOT NULL REFERENCES completions (id) ON DELETE CASCADE,
	part          INTEGER NOT NULL CHECK (part BETWEEN 1 AND 3),
	correct       INTEGER NOT NULL,
	total         INTEGER NOT NULL,
	PRIMARY KEY (completion_id, part)
);

CREATE TABLE IF NOT EXISTS events (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	event_type TEXT NOT NULL,
	data       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);
`

// PostgresLog is a PostgreSQL-backed CompletionLog.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog creates a completion log on pool.
func NewPostgresLog(pool *pgxpool.Pool) (*PostgresLog, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresLog{pool: pool}, nil
}

// EnsureSchema creates the tables if they do not exist yet.
func (l *PostgresLog) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := l.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (l *PostgresLog) Append(ctx context.Context, c reading.Completion) error {
	if c.ID == "" {
		return fmt.Errorf("completion id is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO completions (id, user_id, subject_id, kind, level, score, completed_at, attempt_number, is_passed, time_spent)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID,
		c.UserID,
		c.SubjectID,
		string(c.Kind),
		c.Level,
		c.Score,
		c.CompletedAt,
		c.AttemptNumber,
		c.IsPassed,
		nullIfZero(c.TimeSpent),
	)
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}

	for _, p := range c.Parts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO completion_parts (completion_id, part, correct, total)
			 VALUES ($1::uuid, $2, $3, $4)`,
			c.ID, p.Part, p.Correct, p.Total,
		); err != nil {
			return fmt.Errorf("insert part %d: %w", p.Part, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit completion: %w", err)
	}
	return nil
}

func (l *PostgresLog) ListByUser(ctx context.Context, userID string) ([]reading.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := l.pool.Query(ctx,
		`SELECT id::text, user_id, subject_id, kind, level, score, completed_at, attempt_number, is_passed, time_spent
		 FROM completions
		 WHERE user_id = $1
		 ORDER BY seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	out := []reading.Completion{}
	index := make(map[string]int)
	for rows.Next() {
		var c reading.Completion
		var kind string
		var timeSpent *int
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.SubjectID,
			&kind,
			&c.Level,
			&c.Score,
			&c.CompletedAt,
			&c.AttemptNumber,
			&c.IsPassed,
			&timeSpent,
		); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		c.Kind = reading.Kind(kind)
		if timeSpent != nil {
			c.TimeSpent = *timeSpent
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}

	if err := l.attachParts(ctx, userID, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *PostgresLog) attachParts(ctx context.Context, userID string, completions []reading.Completion, index map[string]int) error {
	rows, err := l.pool.Query(ctx,
		`SELECT p.completion_id::text, p.part, p.correct, p.total
		 FROM completion_parts p
		 JOIN completions c ON c.id = p.completion_id
		 WHERE c.user_id = $1
		 ORDER BY p.part ASC`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var p reading.PartScore
		if err := rows.Scan(&id, &p.Part, &p.Correct, &p.Total); err != nil {
			return fmt.Errorf("scan part: %w", err)
		}
		if i, ok := index[id]; ok {
			completions[i].Parts = append(completions[i].Parts, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate parts: %w", err)
	}
	return nil
}

// HealthCheck verifies the pool is reachable.
func (l *PostgresLog) HealthCheck(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

var _ CompletionLog = (*PostgresLog)(nil)

func nullIfZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
