package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foomo/ribbon/content"
)

func TestDispatch(t *testing.T) {
	registry := NewInProc()
	var gotItem *content.Item
	var gotArg string
	registry.Register("webedit:open", func(msg Message, item *content.Item) error {
		gotItem = item
		gotArg = msg.Argument("id")
		return nil
	}, nil)

	item := &content.Item{Name: "home"}
	err := registry.Dispatch(Message{Name: "webedit:open", Arguments: map[string]string{"id": "x"}}, item)
	require.NoError(t, err)
	require.Same(t, item, gotItem)
	require.Equal(t, "x", gotArg)

	err = registry.Dispatch(Message{Name: "nope:nope"}, nil)
	require.Error(t, err)
}

func TestQueryState(t *testing.T) {
	registry := NewInProc()
	registry.Register("always", func(Message, *content.Item) error { return nil }, nil)
	registry.Register("gated", func(Message, *content.Item) error { return nil }, func(ctx Context) State {
		if ctx.Item == nil {
			return StateDisabled
		}
		return StateEnabled
	})

	require.Equal(t, StateEnabled, registry.QueryState("always", Context{}))
	require.Equal(t, StateDisabled, registry.QueryState("gated", Context{}))
	require.Equal(t, StateEnabled, registry.QueryState("gated", Context{Item: &content.Item{}}))
	require.Equal(t, StateHidden, registry.QueryState("unknown", Context{}))
}

func TestHas(t *testing.T) {
	registry := NewInProc()
	require.False(t, registry.Has("webedit:open"))
	registry.Register("webedit:open", func(Message, *content.Item) error { return nil }, nil)
	require.True(t, registry.Has("webedit:open"))
}

func TestRunPipeline(t *testing.T) {
	registry := NewInProc()
	require.NoError(t, registry.Run("unknown", nil), "missing pipelines are not an error")

	boom := errors.New("boom")
	registry.RegisterPipeline("failing", func(args any) error { return boom })
	require.ErrorIs(t, registry.Run("failing", nil), boom)

	registry.RegisterPipeline("collect", func(args any) error {
		(*args.(*[]string))[0] = "filled"
		return nil
	})
	out := make([]string, 1)
	require.NoError(t, registry.Run("collect", &out))
	require.Equal(t, "filled", out[0])
}

func TestArgument(t *testing.T) {
	msg := Message{Name: "item:save"}
	require.Empty(t, msg.Argument("id"), "nil argument maps are fine")
}
