package suppress_test

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/store"
	"github.com/emrgen/relstage/internal/suppress"
	"github.com/emrgen/relstage/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func logTask(t *testing.T, s store.Store, documentID int, at time.Time) *model.StagingTask {
	t.Helper()
	task := &model.StagingTask{
		Title:      "Update document",
		Type:       model.TaskTypeUpdateDocument,
		ObjectType: model.ObjectTypeDocument,
		DocumentID: documentID,
		Time:       at,
	}
	require.NoError(t, s.CreateTask(context.Background(), task))
	require.NoError(t, s.CreateSynchronization(context.Background(), &model.Synchronization{TaskID: task.ID, ServerID: 1}))
	return task
}

func TestSuppressor_ShouldDiscard(t *testing.T) {
	tests := []struct {
		name    string
		mark    bool
		elapsed time.Duration
		discard bool
	}{
		{name: "marked inside window", mark: true, elapsed: 2 * time.Second, discard: true},
		{name: "marked at window edge", mark: true, elapsed: 10 * time.Second, discard: false},
		{name: "marked outside window", mark: true, elapsed: 15 * time.Second, discard: false},
		{name: "not marked", mark: false, elapsed: time.Second, discard: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tester.TestStore(t)
			f := tester.Seed(t, s, 1)
			c := clock.NewFake(start)
			sup := suppress.NewSuppressor(s, c)

			ctx := suppress.WithScope(context.Background())
			if tt.mark {
				suppress.MarkDeleted(ctx, f.Node.ID, c.Now())
			}

			task := logTask(t, s, f.Node.DocumentID, c.Now())
			c.Advance(tt.elapsed)

			discard, err := sup.ShouldDiscard(ctx, task)
			require.NoError(t, err)
			assert.Equal(t, tt.discard, discard)
		})
	}
}

func TestSuppressor_ShouldDiscard_Errors(t *testing.T) {
	s := tester.TestStore(t)
	sup := suppress.NewSuppressor(s, clock.NewFake(start))
	ctx := suppress.WithScope(context.Background())

	_, err := sup.ShouldDiscard(ctx, &model.StagingTask{})
	assert.ErrorIs(t, err, suppress.ErrNoDocument)

	discard, err := sup.ShouldDiscard(ctx, &model.StagingTask{DocumentID: 404, Time: start})
	require.NoError(t, err)
	assert.False(t, discard)
}

func TestSuppressor_HandleLogged(t *testing.T) {
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 1)
	c := clock.NewFake(start)
	sup := suppress.NewSuppressor(s, c)
	ctx := suppress.WithScope(context.Background())

	suppress.MarkDeleted(ctx, f.Node.ID, c.Now())
	echo := logTask(t, s, f.Node.DocumentID, c.Now())
	c.Advance(time.Second)
	sup.HandleLogged(ctx, echo)

	_, err := s.GetTask(ctx, echo.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	syncs, err := s.ListSynchronizations(ctx, echo.ID)
	require.NoError(t, err)
	assert.Empty(t, syncs)

	// a separate operation never marked the node
	other := suppress.WithScope(context.Background())
	kept := logTask(t, s, f.Node.DocumentID, c.Now())
	sup.HandleLogged(other, kept)

	_, err = s.GetTask(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestMarkDeleted_WithoutScope(t *testing.T) {
	ctx := context.Background()
	suppress.MarkDeleted(ctx, 1, start)

	_, ok := suppress.FromContext(ctx)
	assert.False(t, ok)

	ctx = suppress.WithScope(ctx)
	suppress.MarkDeleted(ctx, 7, start)
	scope, ok := suppress.FromContext(ctx)
	require.True(t, ok)
	at, ok := scope.DeletedAt(7)
	require.True(t, ok)
	assert.True(t, start.Equal(at))
}
