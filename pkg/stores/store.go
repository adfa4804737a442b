package stores

// Persistence interfaces behind the memory service. The built-in in-memory
// implementation is sufficient for dev & unit tests; production deployments
// use the SQLite store in the sqlite subpackage.

import (
	"context"
	"errors"
	"time"

	"github.com/echomind-ai/echomind/pkg/memory"
)

var (
	// ErrEmptyContent rejects memory records with no content.
	ErrEmptyContent = errors.New("memory content must not be empty")

	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail signals a registration conflict.
	ErrDuplicateEmail = errors.New("email already registered")
)

/*
MemoryStore persists memories scoped per user. Create assigns the id and
creation timestamp; List returns newest first; Delete is idempotent.
*/
type MemoryStore interface {
	Create(ctx context.Context, userID string, mem memory.Memory) (memory.Memory, error)
	List(ctx context.Context, userID string) ([]memory.Memory, error)
	Delete(ctx context.Context, userID, id string) error
}

/*
User is an account record. PasswordHash is a bcrypt digest, never the
plaintext credential.
*/
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
}
