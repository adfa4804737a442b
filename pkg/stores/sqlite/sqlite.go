package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/echomind-ai/echomind/pkg/memory"
	"github.com/echomind-ai/echomind/pkg/stores"
)

/*
Store implements stores.MemoryStore and stores.UserStore on SQLite.
*/
type Store struct {
	db *sql.DB
}

/*
New opens or creates the database at the given path.
*/
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ulid.Make's default entropy is locked, so ids stay safe under the
// concurrent request handlers.
func (s *Store) newID() string {
	return ulid.Make().String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT 'general',
		content    TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		mood       TEXT,
		tags       TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_user_created ON memories(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Create(ctx context.Context, userID string, mem memory.Memory) (memory.Memory, error) {
	if strings.TrimSpace(mem.Content) == "" {
		return memory.Memory{}, stores.ErrEmptyContent
	}

	mem.ID = s.newID()
	mem.CreatedAt = time.Now().UTC()
	if mem.Type == "" {
		mem.Type = memory.TypeGeneral
	}

	var tags sql.NullString
	if len(mem.Tags) > 0 {
		buf, err := json.Marshal(mem.Tags)
		if err != nil {
			return memory.Memory{}, fmt.Errorf("marshal tags: %w", err)
		}
		tags = sql.NullString{String: string(buf), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, user_id, type, content, confidence, mood, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mem.ID, userID, string(mem.Type), mem.Content, mem.Confidence,
		nullable(mem.Mood), tags, mem.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return memory.Memory{}, fmt.Errorf("insert memory: %w", err)
	}

	return mem, nil
}

func (s *Store) List(ctx context.Context, userID string) ([]memory.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, content, confidence, mood, tags, created_at
		FROM memories WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	var out []memory.Memory
	for rows.Next() {
		var (
			mem       memory.Memory
			memType   string
			mood      sql.NullString
			tags      sql.NullString
			createdAt string
		)

		if err := rows.Scan(&mem.ID, &memType, &mem.Content, &mem.Confidence, &mood, &tags, &createdAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}

		mem.Type = memory.Type(memType)
		mem.Mood = mood.String

		if tags.Valid {
			if err := json.Unmarshal([]byte(tags.String), &mem.Tags); err != nil {
				return nil, fmt.Errorf("unmarshal tags for %s: %w", mem.ID, err)
			}
		}

		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", mem.ID, err)
		}
		mem.CreatedAt = ts

		out = append(out, mem)
	}

	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	// Idempotent: zero rows affected is still success.
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM memories WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (stores.User, error) {
	user := stores.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return stores.User{}, stores.ErrDuplicateEmail
		}
		return stores.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (stores.User, error) {
	var (
		user      stores.User
		createdAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)

	if err == sql.ErrNoRows {
		return stores.User{}, stores.ErrNotFound
	}
	if err != nil {
		return stores.User{}, fmt.Errorf("query user: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return stores.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	user.CreatedAt = ts

	return user, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
