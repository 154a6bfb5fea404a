package auth

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zekroTJA/timedmap"
)

// ErrStoreFull is returned by Mount when the store already holds its limit of
// form instances.
var ErrStoreFull = errors.New("too many mounted forms")

// Instance is a mounted form as seen by the Store.
type Instance interface {
	ID() string
	Kind() string
}

// Store keeps mounted form instances by id. An instance nobody touches for
// the idle TTL is unmounted; nothing else unmounts it, so a settled form keeps
// answering duplicate posts until then.
type Store struct {
	ttl   time.Duration
	limit int
	forms *timedmap.TimedMap

	mu      sync.Mutex
	mounted atomic.Int64
}

// NewStore creates a store holding at most limit instances. A limit of zero
// or less means no limit.
func NewStore(ttl time.Duration, limit int) *Store {
	cleanup := time.Minute
	if ttl < cleanup {
		cleanup = ttl
	}
	return &Store{ttl: ttl, limit: limit, forms: timedmap.New(cleanup)}
}

func (s *Store) Mount(f Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && s.mounted.Load() >= int64(s.limit) {
		return ErrStoreFull
	}
	s.mounted.Add(1)
	s.forms.Set(f.ID(), f, s.ttl, func(any) {
		s.mounted.Add(-1)
	})
	return nil
}

// Len is the number of mounted instances, counting expired ones the cleaner
// has not reached yet.
func (s *Store) Len() int {
	return int(s.mounted.Load())
}

func (s *Store) Close() {
	s.forms.StopCleaner()
}

// Lookup returns the mounted instance with the given id if it is a Form[T],
// and restarts its idle timer.
func Lookup[T any](s *Store, id string) (*Form[T], bool) {
	if id == "" {
		return nil, false
	}
	f, ok := s.forms.GetValue(id).(*Form[T])
	if !ok {
		return nil, false
	}
	_ = s.forms.SetExpires(id, s.ttl)
	return f, true
}
