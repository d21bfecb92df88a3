package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

var (
	DefaultAlbumTTL  = 1 * time.Hour
	DefaultGenresTTL = 24 * time.Hour
)

// Loader is a small mutex-guarded wrapper around ccache so concurrent callers
// of Fetch with the same key run the fetch function once.
type Loader[T any] struct {
	c   *ccache.Cache[T]
	mux sync.Mutex
}

func NewLoader[T any](maxSize int64) *Loader[T] {
	c := ccache.New(
		ccache.Configure[T]().
			MaxSize(maxSize).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Loader[T]{c: c, mux: sync.Mutex{}}
}

func (l *Loader[T]) Fetch(k string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	l.mux.Lock()
	defer l.mux.Unlock()

	v, err := l.c.Fetch(k, ttl, fetch)
	if nil != err {
		var zero T
		return zero, fmt.Errorf("fetch %q: %w", k, err)
	}

	return v.Value(), nil
}

func (l *Loader[T]) Forget(k string) {
	l.mux.Lock()
	defer l.mux.Unlock()

	l.c.Delete(k)
}
