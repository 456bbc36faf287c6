package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh/core"
)

func TestInMemoryStore_AppendAndGet(t *testing.T) {
	store := NewInMemoryStore()

	require.NoError(t, store.Append("run-1", core.ExecutorInvokedEvent{ExecutorID: "input"}))
	require.NoError(t, store.Append("run-1", core.CompletedEvent{}))
	require.NoError(t, store.Append("run-2", core.CancelledEvent{}))

	trace, err := store.Get("run-1")
	require.NoError(t, err)
	require.Len(t, trace, 2)
	assert.IsType(t, core.CompletedEvent{}, trace[1])

	other, err := store.Get("run-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestInMemoryStore_UnknownRun(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestInMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Append("run-1", core.CompletedEvent{}))

	trace, _ := store.Get("run-1")
	trace[0] = core.CancelledEvent{}

	fresh, _ := store.Get("run-1")
	assert.IsType(t, core.CompletedEvent{}, fresh[0])
}

func TestInMemoryStore_ConcurrentAppend(t *testing.T) {
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Append("run-1", core.ExecutorInvokedEvent{ExecutorID: "node"}))
		}()
	}
	wg.Wait()

	trace, err := store.Get("run-1")
	require.NoError(t, err)
	assert.Len(t, trace, 50)
}
