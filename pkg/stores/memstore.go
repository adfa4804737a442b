package stores

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/echomind-ai/echomind/pkg/memory"
)

/*
InMemoryStore implements MemoryStore and UserStore with maps, safe for
concurrent use.
*/
type InMemoryStore struct {
	mu       sync.RWMutex
	memories map[string][]memory.Memory // keyed by user id
	users    map[string]User            // keyed by email
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		memories: make(map[string][]memory.Memory),
		users:    make(map[string]User),
	}
}

func (s *InMemoryStore) newID() string {
	return ulid.Make().String()
}

func (s *InMemoryStore) Create(ctx context.Context, userID string, mem memory.Memory) (memory.Memory, error) {
	if strings.TrimSpace(mem.Content) == "" {
		return memory.Memory{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mem.ID = s.newID()
	mem.CreatedAt = time.Now().UTC()
	if mem.Type == "" {
		mem.Type = memory.TypeGeneral
	}

	s.memories[userID] = append(s.memories[userID], mem)
	return mem, nil
}

func (s *InMemoryStore) List(ctx context.Context, userID string) ([]memory.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]memory.Memory, len(s.memories[userID]))
	copy(out, s.memories[userID])

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.memories[userID]
	for i, mem := range entries {
		if mem.ID == id {
			s.memories[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}

	// Deleting a non-existent id is treated as success.
	return nil
}

func (s *InMemoryStore) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return User{}, ErrDuplicateEmail
	}

	user := User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	s.users[email] = user
	return user, nil
}

func (s *InMemoryStore) UserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return User{}, ErrNotFound
	}

	return user, nil
}
