package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genrpg-server/internal/domain"
)

func TestFileRepositoryRoundTrip(t *testing.T) {
	repo, err := NewFileGameStateRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	state := domain.NewInitialGameState()
	state.Character.Gold = 42
	event := &domain.GameEvent{
		ID:          uuid.New(),
		Description: "A test event.",
		Options:     []domain.EventOption{{ID: uuid.New(), Text: "Ok"}},
	}

	require.NoError(t, repo.Save(ctx, "slot1", GameSave{State: state, Event: event, ImagePath: "a.png"}))

	loaded, err := repo.Load(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.State.Character.Gold)
	assert.Equal(t, event.ID, loaded.Event.ID)
	assert.Equal(t, "a.png", loaded.ImagePath)

	// Перезапись слота.
	state.Character.Gold = 7
	require.NoError(t, repo.Save(ctx, "slot1", GameSave{State: state}))
	loaded, err = repo.Load(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.State.Character.Gold)
	assert.Nil(t, loaded.Event)
}

func TestFileRepositoryNotFound(t *testing.T) {
	repo, err := NewFileGameStateRepository(t.TempDir())
	require.NoError(t, err)

	_, err = repo.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSaveNotFound)
}

func TestFileRepositoryDelete(t *testing.T) {
	repo, err := NewFileGameStateRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "slot1", GameSave{State: domain.NewInitialGameState()}))
	require.NoError(t, repo.Delete(ctx, "slot1"))

	_, err = repo.Load(ctx, "slot1")
	assert.ErrorIs(t, err, ErrSaveNotFound)

	// Повторное удаление — no-op.
	assert.NoError(t, repo.Delete(ctx, "slot1"))
}
