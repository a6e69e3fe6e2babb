package repository

import (
	"context"
	"testing"
	"time"

	"MatchPublisher/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	s, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, s)

	in := &model.Session{ChatID: 1, Flow: model.FlowAdd, Step: model.StepStreamURLs, UpdatedAt: time.Now()}
	in.Draft.StreamURLs = []string{"https://a.example"}
	require.NoError(t, store.Save(ctx, in))

	in.Draft.StreamURLs[0] = "mutated"
	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StepStreamURLs, got.Step)
	assert.Equal(t, []string{"https://a.example"}, got.Draft.StreamURLs)

	got.Draft.StreamURLs[0] = "mutated"
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", again.Draft.StreamURLs[0])

	require.NoError(t, store.Delete(ctx, 1))
	s, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryPublishLog(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPublishLog(3)

	for _, slug := range []string{"a", "b", "c", "d"} {
		log := &model.PublishLog{Action: model.ActionAdd, Slug: slug}
		require.NoError(t, repo.Append(ctx, log))
		assert.NotEmpty(t, log.LogUUID)
		assert.False(t, log.CreatedAt.IsZero())
	}

	list, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "d", list[0].Slug)
	assert.Equal(t, "b", list[2].Slug)

	list, err = repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(4), list[0].ID)
}
