package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/usecase"
)

func toggleEventBody(t *testing.T, ev entity.ToggleEvent) []byte {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body
}

func TestApplyJSON_LikeUpsertsRow(t *testing.T) {
	repo := newMemLikeRepo()
	a := usecase.NewToggleEventApplier(repo, testLogger, newTestMetrics())

	ev := entity.ToggleEvent{
		EventID:    "ev-1",
		Domain:     entity.DomainPost,
		EntityID:   "post-1",
		ActorID:    "alice",
		Liked:      true,
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, a.ApplyJSON(context.Background(), toggleEventBody(t, ev)))

	count, err := repo.CountLikes(context.Background(), entity.DomainPost, "post-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestApplyJSON_UnlikeDeletesRow(t *testing.T) {
	repo := newMemLikeRepo()
	require.NoError(t, repo.UpsertLike(context.Background(), entity.DomainPost, "post-1", "alice"))
	a := usecase.NewToggleEventApplier(repo, testLogger, newTestMetrics())

	ev := entity.ToggleEvent{
		EventID:  "ev-2",
		Domain:   entity.DomainPost,
		EntityID: "post-1",
		ActorID:  "alice",
		Liked:    false,
	}
	require.NoError(t, a.ApplyJSON(context.Background(), toggleEventBody(t, ev)))

	count, err := repo.CountLikes(context.Background(), entity.DomainPost, "post-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestApplyJSON_DuplicateDeliveryIsIdempotent(t *testing.T) {
	repo := newMemLikeRepo()
	a := usecase.NewToggleEventApplier(repo, testLogger, newTestMetrics())

	ev := entity.ToggleEvent{
		EventID:  "ev-3",
		Domain:   entity.DomainArchive,
		EntityID: "arch-1",
		ActorID:  "bob",
		Liked:    true,
	}
	body := toggleEventBody(t, ev)
	require.NoError(t, a.ApplyJSON(context.Background(), body))
	require.NoError(t, a.ApplyJSON(context.Background(), body))

	count, err := repo.CountLikes(context.Background(), entity.DomainArchive, "arch-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "redelivery must converge to the same end state")

	// Unlike redelivered twice is equally safe.
	ev.Liked = false
	body = toggleEventBody(t, ev)
	require.NoError(t, a.ApplyJSON(context.Background(), body))
	require.NoError(t, a.ApplyJSON(context.Background(), body))

	count, err = repo.CountLikes(context.Background(), entity.DomainArchive, "arch-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestApplyJSON_UndecodableMessageErrors(t *testing.T) {
	repo := newMemLikeRepo()
	a := usecase.NewToggleEventApplier(repo, testLogger, newTestMetrics())

	err := a.ApplyJSON(context.Background(), []byte("not json"))
	assert.Error(t, err)
	assert.Equal(t, 0, repo.UpsertCalls)
	assert.Equal(t, 0, repo.DeleteCalls)
}
