package vocabulary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS vocabulary_words (
	id                   TEXT PRIMARY KEY,
	user_id              TEXT NOT NULL,
	word                 TEXT NOT NULL,
	word_key             TEXT NOT NULL,
	context              TEXT NOT NULL DEFAULT '',
	source_passage_id    TEXT NOT NULL DEFAULT '',
	source_passage_title TEXT NOT NULL DEFAULT '',
	level                TEXT NOT NULL DEFAULT '',
	notes                TEXT,
	is_favorite          BOOLEAN NOT NULL DEFAULT false,
	added_at             TIMESTAMP NOT NULL,
	UNIQUE (user_id, word_key)
)`

const wordColumns = `id, user_id, word, context, source_passage_id, source_passage_title, level, notes, is_favorite, added_at`

// SQLiteStore is a SQLite-backed Store.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens the database at path and creates the schema. Use
// ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create vocabulary schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Add(ctx context.Context, w Word) (Word, bool, error) {
	key := Key(w.Word)
	if w.UserID == "" || key == "" {
		return Word{}, false, fmt.Errorf("user_id and word are required")
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.AddedAt.IsZero() {
		w.AddedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO vocabulary_words (`+wordColumns+`, word_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, word_key) DO NOTHING`,
		w.ID, w.UserID, w.Word, w.Context, w.SourcePassageID, w.SourcePassageTitle,
		w.Level, w.Notes, w.IsFavorite, w.AddedAt.UTC(), key,
	)
	if err != nil {
		return Word{}, false, fmt.Errorf("insert word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Word{}, false, fmt.Errorf("insert word: %w", err)
	}
	if n == 1 {
		return w, true, nil
	}

	var existing Word
	if err := s.db.GetContext(ctx, &existing,
		`SELECT `+wordColumns+` FROM vocabulary_words WHERE user_id = ? AND word_key = ?`,
		w.UserID, key,
	); err != nil {
		return Word{}, false, fmt.Errorf("load existing word: %w", err)
	}
	return existing, false, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM vocabulary_words WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	return affectedOne(res, "remove", id)
}

func (s *SQLiteStore) ToggleFavorite(ctx context.Context, userID, id string) (Word, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE vocabulary_words SET is_favorite = NOT is_favorite WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return Word{}, fmt.Errorf("toggle favorite: %w", err)
	}
	if err := affectedOne(res, "toggle favorite", id); err != nil {
		return Word{}, err
	}
	return s.get(ctx, userID, id)
}

func (s *SQLiteStore) UpdateNotes(ctx context.Context, userID, id string, notes *string) (Word, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE vocabulary_words SET notes = ? WHERE id = ? AND user_id = ?`, notes, id, userID)
	if err != nil {
		return Word{}, fmt.Errorf("update notes: %w", err)
	}
	if err := affectedOne(res, "update notes", id); err != nil {
		return Word{}, err
	}
	return s.get(ctx, userID, id)
}

func (s *SQLiteStore) Words(ctx context.Context, userID string) ([]Word, error) {
	words := []Word{}
	if err := s.db.SelectContext(ctx, &words,
		`SELECT `+wordColumns+` FROM vocabulary_words WHERE user_id = ? ORDER BY rowid`, userID,
	); err != nil {
		return nil, fmt.Errorf("select words: %w", err)
	}
	return words, nil
}

func (s *SQLiteStore) get(ctx context.Context, userID, id string) (Word, error) {
	var w Word
	err := s.db.GetContext(ctx, &w,
		`SELECT `+wordColumns+` FROM vocabulary_words WHERE id = ? AND user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Word{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Word{}, fmt.Errorf("get word: %w", err)
	}
	return w, nil
}

func affectedOne(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
