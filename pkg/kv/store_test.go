package kv

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	s.Delete("key")

	_, ok := s.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_GetOrLoad(t *testing.T) {
	s := New[string, int]()
	calls := 0
	load := func(k string) (int, error) {
		calls++
		if k == "missing" {
			return 0, errors.New("not found")
		}
		return len(k), nil
	}

	val, err := s.GetOrLoad("abc", load)
	require.NoError(t, err)
	assert.Equal(t, 3, val)

	val, err = s.GetOrLoad("abc", load)
	require.NoError(t, err)
	assert.Equal(t, 3, val)
	assert.Equal(t, 1, calls, "second call served from cache")

	_, err = s.GetOrLoad("missing", load)
	require.Error(t, err)
	_, ok := s.Get("missing")
	assert.False(t, ok, "errors are not cached")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int, int]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set(n, n*2)
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = s.GetOrLoad(n, func(k int) (int, error) { return k * 2, nil })
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 100, s.Len())
	val, _ := s.Get(7)
	assert.Equal(t, 14, val)
}
