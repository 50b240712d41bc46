// Package store persists profiles, recommendations, chat history and
// analytics events in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spotdemo4/quick-coach/internal/chat"
	"github.com/spotdemo4/quick-coach/internal/profile"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	mode       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	mode       TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	properties TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_name ON events(name, created_at);
`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("could not create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open store: %w", err)
	}

	// Every connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not configure store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate store: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveProfile(ctx context.Context, p profile.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("could not save profile: %w", err)
	}

	return nil
}

func (s *Store) LoadProfile(ctx context.Context) (profile.UserProfile, error) {
	var p profile.UserProfile

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("could not load profile: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, fmt.Errorf("could not decode profile: %w", err)
	}

	return p, nil
}

// NewSession records a chat session and returns its ID.
func (s *Store) NewSession(ctx context.Context, mode string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, created_at) VALUES (?, ?, ?)`,
		id, mode, s.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("could not create session: %w", err)
	}

	return id, nil
}

type Session struct {
	ID        string
	Mode      string
	CreatedAt time.Time
	Messages  int
}

// Sessions lists the most recent sessions first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.mode, s.created_at, COUNT(m.id)
		 FROM sessions s LEFT JOIN messages m ON m.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.created_at DESC, s.rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		var created int64
		if err := rows.Scan(&sess.ID, &sess.Mode, &created, &sess.Messages); err != nil {
			return nil, err
		}
		sess.CreatedAt = time.UnixMilli(created)
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

func (s *Store) SaveRecommendation(ctx context.Context, sessionID string, mode string, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations (session_id, mode, data, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, mode, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("could not save recommendation: %w", err)
	}

	return nil
}

// LatestRecommendation decodes the newest recommendation for mode into v.
func (s *Store) LatestRecommendation(ctx context.Context, mode string, v any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM recommendations WHERE mode = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		mode).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("could not load recommendation: %w", err)
	}

	return json.Unmarshal([]byte(data), v)
}

// AppendMessage stores the full text of m.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, m chat.Message) error {
	content := m.Full
	if content == "" {
		content = m.Content
	}
	created := m.CreatedAt
	if created.IsZero() {
		created = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, sessionID, string(m.Role), content, created.UnixMilli())
	if err != nil {
		return fmt.Errorf("could not save message: %w", err)
	}

	return nil
}

// History returns up to limit messages of a session, oldest first.
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM (
			SELECT id, role, content, created_at, rowid AS r FROM messages
			WHERE session_id = ?
			ORDER BY created_at DESC, r DESC
			LIMIT ?
		 ) ORDER BY created_at ASC, r ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("could not load history: %w", err)
	}
	defer rows.Close()

	msgs := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		var role string
		var created int64
		if err := rows.Scan(&m.ID, &role, &m.Content, &created); err != nil {
			return nil, err
		}
		m.Role = chat.Role(role)
		m.Full = m.Content
		m.CreatedAt = time.UnixMilli(created)
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// Track records an analytics event.
func (s *Store) Track(ctx context.Context, name string, props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (name, properties, created_at) VALUES (?, ?, ?)`,
		name, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("could not track %s: %w", name, err)
	}

	return nil
}

type Event struct {
	Name       string
	Properties map[string]any
	CreatedAt  time.Time
}

// Events lists events, newest first. An empty name lists all events.
func (s *Store) Events(ctx context.Context, name string, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, properties, created_at FROM events
		 WHERE ? = '' OR name = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var props string
		var created int64
		if err := rows.Scan(&e.Name, &props, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(props), &e.Properties); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(created)
		events = append(events, e)
	}

	return events, rows.Err()
}
