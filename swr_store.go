package relay

import (
	"sort"
	"sync"
	"time"
)

// entryStatus describes what a store entry currently holds.
type entryStatus int

const (
	// statusPending means no fetch for the key has resolved yet.
	statusPending entryStatus = iota
	// statusSuccess means the latest resolved fetch succeeded.
	statusSuccess
	// statusError means the latest resolved fetch failed. A value from
	// an earlier success may still be present.
	statusError
)

// storeEntry is a snapshot of one key of a swrStore.
type storeEntry[T any] struct {
	value     *T
	err       error
	status    entryStatus
	etag      string
	fetchTime time.Time

	// inflight counts the callers currently waiting for a fetch of
	// the key.
	inflight int
}

func (e storeEntry[T]) validating() bool {
	return e.inflight > 0
}

// swrStore is a process-wide keyed store with explicit subscribers.
// Values are replaced wholesale and every change is broadcast to all
// subscribers of the key.
type swrStore[T any] struct {
	mu      sync.Mutex
	entries map[string]*storeEntry[T]
	subs    map[string]map[int]func(storeEntry[T])
	nextSub int
}

func newSWRStore[T any]() *swrStore[T] {
	return &swrStore[T]{
		entries: make(map[string]*storeEntry[T]),
		subs:    make(map[string]map[int]func(storeEntry[T])),
	}
}

// get returns a copy of the entry for key. The boolean is false when the
// key has never been requested.
func (s *swrStore[T]) get(key string) (storeEntry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return storeEntry[T]{}, false
	}
	return *e, true
}

// beginValidation records a caller waiting for a fetch of key.
func (s *swrStore[T]) beginValidation(key string) {
	s.update(key, func(e *storeEntry[T]) {
		e.inflight++
	})
}

// endValidation is the counterpart of beginValidation.
func (s *swrStore[T]) endValidation(key string) {
	s.update(key, func(e *storeEntry[T]) {
		if e.inflight > 0 {
			e.inflight--
		}
	})
}

// resolve stores the outcome of a fetch. On success the value is replaced
// wholesale; on failure the previous value is kept and err is recorded.
func (s *swrStore[T]) resolve(key string, value *T, etag string, fetchTime time.Time, err error) {
	s.update(key, func(e *storeEntry[T]) {
		if err != nil {
			e.err = err
			e.status = statusError
			return
		}
		e.value = value
		e.err = nil
		e.status = statusSuccess
		e.etag = etag
		e.fetchTime = fetchTime
	})
}

// invalidate forgets the ETag of key so that the next fetch downloads a
// full document. The value itself stays visible until it is replaced. It
// reports whether the key was present.
func (s *swrStore[T]) invalidate(key string) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		e.etag = ""
	}
	s.mu.Unlock()
	return ok
}

// subscribe registers fn to be called with the new entry whenever key
// changes. Callbacks run synchronously, outside the store lock, in
// registration order. The returned function removes the subscription.
func (s *swrStore[T]) subscribe(key string, fn func(storeEntry[T])) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func(storeEntry[T]))
	}
	s.subs[key][id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
	}
}

func (s *swrStore[T]) update(key string, f func(e *storeEntry[T])) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &storeEntry[T]{}
		s.entries[key] = e
	}
	f(e)
	snapshot := *e
	subs := s.subscribersLocked(key)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *swrStore[T]) subscribersLocked(key string) []func(storeEntry[T]) {
	m := s.subs[key]
	if len(m) == 0 {
		return nil
	}
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(storeEntry[T]), len(ids))
	for i, id := range ids {
		fns[i] = m[id]
	}
	return fns
}
