package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/model/journal"
	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
)

//go:embed schema.sql
var ddl string

// Store implements storage.Store on top of a single SQLite file.
type Store struct{ db *sql.DB }

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate applies the embedded schema; every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// ---------- chat logs -------------------------------------------------------

func (s *Store) AppendChatExchange(ctx context.Context, exchange *chat.Exchange) error {
	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}
	if exchange.Timestamp.IsZero() {
		exchange.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO chat_logs (id, user_id, message, response, created_at)
        VALUES (?,?,?,?,?)`,
		exchange.ID, exchange.UserID, exchange.Message, exchange.Response, exchange.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

func (s *Store) CountMessagesSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_logs WHERE user_id=? AND created_at>=?`,
		userID, since.UnixNano(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chat logs: %w", err)
	}
	return n, nil
}

func (s *Store) ListChatHistory(ctx context.Context, userID string, limit int) ([]chat.Exchange, error) {
	query := `
        SELECT id, user_id, message, response, created_at FROM (
            SELECT * FROM chat_logs WHERE user_id=? ORDER BY created_at DESC LIMIT ?
        ) ORDER BY created_at ASC`
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat logs: %w", err)
	}
	defer rows.Close()

	out := make([]chat.Exchange, 0)
	for rows.Next() {
		var ex chat.Exchange
		var ts int64
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Message, &ex.Response, &ts); err != nil {
			return nil, err
		}
		ex.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, ex)
	}
	return out, rows.Err()
}

// ---------- moods -----------------------------------------------------------

const moodColumns = `id, user_id, year, month, day, main, sub, lang`

func (s *Store) FindMoodByKey(ctx context.Context, key mood.Key) (*mood.Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+moodColumns+` FROM moods
        WHERE user_id=? AND year=? AND month=? AND day=?`,
		key.UserID, key.Year, key.Month, key.Day)

	rec, err := scanMood(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mood: %w", err)
	}
	return &rec, nil
}

// UpsertMood relies on the unique (user_id, year, month, day) index so the
// natural key holds even if two writers race past FindMoodByKey.
func (s *Store) UpsertMood(ctx context.Context, record *mood.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO moods (`+moodColumns+`) VALUES (?,?,?,?,?,?,?,?)
        ON CONFLICT(user_id, year, month, day) DO UPDATE SET
            main=excluded.main, sub=excluded.sub, lang=excluded.lang`,
		record.ID, record.UserID, record.Year, record.Month, record.Day,
		string(record.Main), string(record.Sub), record.Lang)
	if err != nil {
		return fmt.Errorf("upsert mood: %w", err)
	}
	return nil
}

func (s *Store) FindMoodsByUserAndMonth(ctx context.Context, userID string, year, month int) ([]mood.Record, error) {
	return s.queryMoods(ctx, `
        SELECT `+moodColumns+` FROM moods
        WHERE user_id=? AND year=? AND month=? ORDER BY day`, userID, year, month)
}

func (s *Store) FindAllMoodsByUser(ctx context.Context, userID string) ([]mood.Record, error) {
	return s.queryMoods(ctx, `
        SELECT `+moodColumns+` FROM moods
        WHERE user_id=? ORDER BY year, month, day`, userID)
}

func (s *Store) queryMoods(ctx context.Context, query string, args ...any) ([]mood.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query moods: %w", err)
	}
	defer rows.Close()

	out := make([]mood.Record, 0)
	for rows.Next() {
		rec, err := scanMood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMood(row scanner) (mood.Record, error) {
	var rec mood.Record
	var main, sub string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Year, &rec.Month, &rec.Day, &main, &sub, &rec.Lang)
	rec.Main = mood.Main(main)
	rec.Sub = mood.Sub(sub)
	return rec, err
}

// ---------- journal ---------------------------------------------------------

func (s *Store) SaveNote(ctx context.Context, note *journal.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Timestamp.IsZero() {
		note.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO journal_entries (id, user_id, content, date, created_at)
        VALUES (?,?,?,?,?)`,
		note.ID, note.UserID, note.Content, note.Date, note.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *Store) ListNotes(ctx context.Context, userID, date string) ([]journal.Note, error) {
	query := `SELECT id, user_id, content, date, created_at FROM journal_entries WHERE user_id=?`
	args := []any{userID}
	if date != "" {
		query += ` AND date=?`
		args = append(args, date)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]journal.Note, 0)
	for rows.Next() {
		var n journal.Note
		var ts int64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Date, &ts); err != nil {
			return nil, err
		}
		n.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}
