package feed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorExtraction(t *testing.T) {
	tag := uuid.New()
	other := uuid.New()

	tests := []struct {
		name string
		ev   ChangeEvent
		want *uuid.UUID
	}{
		{
			name: "insert uses new row",
			ev:   ChangeEvent{Type: EventInsert, New: &Row{LastModifiedBy: &tag}},
			want: &tag,
		},
		{
			name: "update uses new row even when old differs",
			ev:   ChangeEvent{Type: EventUpdate, New: &Row{LastModifiedBy: &tag}, Old: &Row{LastModifiedBy: &other}},
			want: &tag,
		},
		{
			name: "delete uses old row",
			ev:   ChangeEvent{Type: EventDelete, Old: &Row{LastModifiedBy: &tag}},
			want: &tag,
		},
		{
			name: "untagged row",
			ev:   ChangeEvent{Type: EventInsert, New: &Row{}},
			want: nil,
		},
		{
			name: "missing rows",
			ev:   ChangeEvent{Type: EventDelete},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ev.Actor()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestChannelBusDeliversToSubscriber(t *testing.T) {
	bus := NewChannelBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ChangeEvent, 4)
	require.NoError(t, bus.Subscribe(ctx, func(_ context.Context, ev ChangeEvent) {
		received <- ev
	}))

	workspaceID := uuid.New()
	actor := uuid.New()
	sent := ChangeEvent{
		Table: TableWorkspaces,
		Type:  EventUpdate,
		New:   &Row{Id: workspaceID, Title: "renamed", LastModifiedBy: &actor, UpdatedAt: time.Now().UTC()},
		Old:   &Row{Id: workspaceID, Title: "old"},
		At:    time.Now().UTC(),
	}
	require.NoError(t, bus.Publish(ctx, sent))

	select {
	case got := <-received:
		assert.Equal(t, TableWorkspaces, got.Table)
		assert.Equal(t, EventUpdate, got.Type)
		require.NotNil(t, got.New)
		assert.Equal(t, workspaceID, got.New.Id)
		assert.Equal(t, "renamed", got.New.Title)
		require.NotNil(t, got.Actor())
		assert.Equal(t, actor, *got.Actor())
		require.NotNil(t, got.Old)
		assert.Equal(t, "old", got.Old.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestChannelBusDeliversEveryTable(t *testing.T) {
	bus := NewChannelBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Table, len(Tables()))
	require.NoError(t, bus.Subscribe(ctx, func(_ context.Context, ev ChangeEvent) {
		received <- ev.Table
	}))

	for _, table := range Tables() {
		require.NoError(t, bus.Publish(ctx, ChangeEvent{
			Table: table,
			Type:  EventInsert,
			New:   &Row{Id: uuid.New()},
		}))
	}

	seen := make(map[Table]bool)
	for range Tables() {
		select {
		case table := <-received:
			seen[table] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out; saw %v", seen)
		}
	}
	for _, table := range Tables() {
		assert.True(t, seen[table], "missing events for table %s", table)
	}
}
