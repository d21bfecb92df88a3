package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tidewave/cache"
)

func TestLoaderFetchOnce(t *testing.T) {
	t.Parallel()

	l := cache.NewLoader[int](10)

	var calls int
	fetch := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := l.Fetch("k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = l.Fetch("k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestLoaderFetchError(t *testing.T) {
	t.Parallel()

	l := cache.NewLoader[int](10)
	boom := errors.New("boom")

	_, err := l.Fetch("k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestLoaderForget(t *testing.T) {
	t.Parallel()

	l := cache.NewLoader[string](10)

	var calls int
	fetch := func() (string, error) {
		calls++
		return "v", nil
	}

	_, err := l.Fetch("k", time.Minute, fetch)
	require.NoError(t, err)
	l.Forget("k")
	_, err = l.Fetch("k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
