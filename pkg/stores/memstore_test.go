package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomind-ai/echomind/pkg/memory"
)

func TestInMemoryStoreCreateList(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	first, err := s.Create(ctx, "u1", memory.Memory{Content: "likes jazz"})
	require.NoError(t, err)
	second, err := s.Create(ctx, "u1", memory.Memory{Content: "no calls before 11"})
	require.NoError(t, err)

	listed, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
}

func TestInMemoryStoreRejectsEmptyContent(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.Create(context.Background(), "u1", memory.Memory{})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestInMemoryStoreDeleteIdempotent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", memory.Memory{Content: "temp"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "u1", created.ID))
	require.NoError(t, s.Delete(ctx, "u1", created.ID))
}

func TestInMemoryStoreUsers(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "ada@example.com", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "ada@example.com", "hash2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = s.UserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
