package badger

import (
	"context"
	"testing"

	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscalationRepository_AppendAndList(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	first, err := repos.Escalations.AppendEscalation(ctx, &core.EscalationItem{Query: "child bites", Plane: "0-6"})
	require.NoError(t, err)
	second, err := repos.Escalations.AppendEscalation(ctx, &core.EscalationItem{Query: "long division"})
	require.NoError(t, err)

	assert.NotZero(t, first.Id)
	assert.Greater(t, second.Id, first.Id)
	assert.Equal(t, core.EscalationOpen, first.Status)
	assert.False(t, first.CreatedAt.IsZero())

	items, err := repos.Escalations.ListEscalations(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "child bites", items[0].Query)
	assert.Equal(t, "long division", items[1].Query)
}

func TestEscalationRepository_Resolve(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	item, err := repos.Escalations.AppendEscalation(ctx, &core.EscalationItem{Query: "child bites"})
	require.NoError(t, err)
	_, err = repos.Escalations.AppendEscalation(ctx, &core.EscalationItem{Query: "still open"})
	require.NoError(t, err)

	reply, err := repos.Escalations.ResolveEscalation(ctx, item.Id, "Model gentle hands during circle.")
	require.NoError(t, err)
	assert.Equal(t, item.Id, reply.QueueId)
	assert.NotZero(t, reply.Id)

	got, err := repos.Escalations.GetEscalation(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, core.EscalationResolved, got.Status)

	open, err := repos.Escalations.ListEscalations(ctx, core.EscalationOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "still open", open[0].Query)

	replies, err := repos.Escalations.ListReplies(ctx)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "Model gentle hands during circle.", replies[0].Text)

	_, err = repos.Escalations.ResolveEscalation(ctx, 999, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEscalationRepository_AddReply(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	reply, err := repos.Escalations.AddReply(ctx, &core.TrainerReply{Text: "General note"})
	require.NoError(t, err)
	assert.NotZero(t, reply.Id)
	assert.Zero(t, reply.QueueId)

	_, err = repos.Escalations.AddReply(ctx, nil)
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
}
