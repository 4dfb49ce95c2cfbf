package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentAppend(t *testing.T) {
	withTempDataDir(t)

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)

	errs := make([]error, goroutines)
	for i := range goroutines {
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = Append("msg", result("msg"))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoErrorf(t, err, "goroutine %d failed", i)
	}

	entries, err := Load()
	require.NoError(t, err)
	assert.Len(t, entries, goroutines)

	// All IDs should be unique.
	ids := make(map[string]bool)
	for _, e := range entries {
		assert.False(t, ids[e.ID], "duplicate ID: %s", e.ID)
		ids[e.ID] = true
	}
}

func TestConcurrentRemoveAndAppend(t *testing.T) {
	withTempDataDir(t)

	const initial = 20
	const appenders = 5

	var ids []string
	for range initial {
		e, err := Append("initial", result("initial"))
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	var wg sync.WaitGroup
	wg.Add(len(ids) + appenders)

	for _, id := range ids {
		go func() {
			defer wg.Done()
			removed, err := Remove(id)
			assert.NoError(t, err)
			assert.True(t, removed)
		}()
	}
	for range appenders {
		go func() {
			defer wg.Done()
			_, err := Append("appended", result("appended"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := Load()
	require.NoError(t, err)
	require.Len(t, entries, appenders)
	for _, e := range entries {
		assert.Equal(t, "appended", e.Source)
	}
}
