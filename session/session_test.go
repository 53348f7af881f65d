package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProps(t *testing.T) {
	state := NewState()
	require.Empty(t, state.Get("Mode"))

	require.NoError(t, state.Set("Mode", "edit"))
	require.Equal(t, "edit", state.Get("Mode"))

	require.ErrorIs(t, state.Set("Mode", ""), ErrEmptyValue)
	require.Equal(t, "edit", state.Get("Mode"), "a rejected set must not clear the value")
}

func TestContextURIFallsBackToCurrentItem(t *testing.T) {
	state := NewState()
	require.Empty(t, state.ContextURI())

	require.NoError(t, state.SetCurrentItemURI("item://master/a"))
	require.Equal(t, "item://master/a", state.ContextURI(), "falls back to the open item")

	require.NoError(t, state.SetContextURI("item://master/b"))
	require.Equal(t, "item://master/b", state.ContextURI())
	require.Equal(t, "item://master/a", state.CurrentItemURI(), "selection does not touch the open item")
}

func TestCurrentItemDeletedIsMonotonic(t *testing.T) {
	state := NewState()
	require.False(t, state.CurrentItemDeleted())
	state.MarkCurrentItemDeleted()
	require.True(t, state.CurrentItemDeleted())
	// There is no way back.
	state.MarkCurrentItemDeleted()
	require.True(t, state.CurrentItemDeleted())
}

func TestLatches(t *testing.T) {
	state := NewState()

	state.SetRefreshAsked(true)
	require.True(t, state.RefreshAsked())
	state.SetRefreshAsked(false)
	require.False(t, state.RefreshAsked())

	state.SetAwaitingReload(true)
	require.True(t, state.AwaitingReload())

	state.SetDesigning(true)
	require.True(t, state.Designing())
}

func TestSnapshotIsACopy(t *testing.T) {
	state := NewState()
	require.NoError(t, state.Set("Mode", "edit"))
	state.MarkCurrentItemDeleted()

	snapshot := state.Snapshot()
	require.Equal(t, "edit", snapshot.Properties["Mode"])
	require.True(t, snapshot.CurrentItemDeleted)

	snapshot.Properties["Mode"] = "preview"
	require.Equal(t, "edit", state.Get("Mode"))
}

func TestManager(t *testing.T) {
	manager := NewManager()
	a := manager.Get("a")
	require.Same(t, a, manager.Get("a"))
	require.NotSame(t, a, manager.Get("b"))

	require.NoError(t, a.Set("Mode", "edit"))
	manager.Drop("a")
	require.Empty(t, manager.Get("a").Get("Mode"), "dropped sessions start fresh")
}
