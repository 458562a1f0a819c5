package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type listener struct {
	name  string
	calls int
}

func TestEventBusDispatchOrderAndHandled(t *testing.T) {
	bus := NewEventBus()
	first := &listener{name: "first"}
	second := &listener{name: "second"}

	var order []string
	handler := func(handled bool) FnOnEvent {
		return func(code SystemEventCode, sender interface{}, l interface{}, data EventContext) bool {
			ln := l.(*listener)
			ln.calls++
			order = append(order, ln.name)
			return handled
		}
	}
	require.True(t, bus.Register(EVENT_CODE_RESIZED, first, handler(false)))
	require.True(t, bus.Register(EVENT_CODE_RESIZED, second, handler(false)))
	// Same listener twice is refused.
	require.False(t, bus.Register(EVENT_CODE_RESIZED, first, handler(false)))

	var ctx EventContext
	ctx.Data.U32[0] = 800
	require.False(t, bus.Fire(EVENT_CODE_RESIZED, nil, ctx))
	require.Equal(t, []string{"first", "second"}, order)

	// A handled event stops propagation.
	require.True(t, bus.Unregister(EVENT_CODE_RESIZED, first))
	require.True(t, bus.Register(EVENT_CODE_RESIZED, first, handler(true)))
	order = nil
	require.True(t, bus.Fire(EVENT_CODE_RESIZED, nil, ctx))
	require.Equal(t, []string{"second", "first"}, order)

	require.False(t, bus.Unregister(EVENT_CODE_APPLICATION_QUIT, first))
}

func TestEventBusPassesContext(t *testing.T) {
	bus := NewEventBus()
	var got string
	bus.Register(EVENT_CODE_ASSET_CHANGED, t, func(code SystemEventCode, sender interface{}, l interface{}, data EventContext) bool {
		got = data.Data.C[0]
		return true
	})
	var ctx EventContext
	ctx.Data.C[0] = "cobblestone"
	require.True(t, bus.Fire(EVENT_CODE_ASSET_CHANGED, nil, ctx))
	require.Equal(t, "cobblestone", got)

	bus.Shutdown()
	require.False(t, bus.Fire(EVENT_CODE_ASSET_CHANGED, nil, ctx))
}

func TestEventBusRejectsInvalidRegistrations(t *testing.T) {
	bus := NewEventBus()
	require.False(t, bus.Register(-1, t, func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }))
	require.False(t, bus.Register(EVENT_CODE_RESIZED, t, nil))
}
