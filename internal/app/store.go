package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStoreClosed is returned by Dispatch after Close.
var ErrStoreClosed = errors.New("state store closed")

// Subscriber observes every transition. It runs on the store goroutine and
// must not call Dispatch.
type Subscriber func(prev, next State)

type result struct {
	state State
	err   error
}

type envelope struct {
	action Action
	done   chan result
}

// Store serializes transitions through a single goroutine.
type Store struct {
	actions chan envelope
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	current atomic.Pointer[State]

	mu   sync.RWMutex
	subs []Subscriber
}

func NewStore(initial State) *Store {
	s := &Store{
		actions: make(chan envelope),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	s.current.Store(&initial)
	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.quit:
			return
		case env := <-s.actions:
			prev := *s.current.Load()
			next, err := reduce(prev, env.action)
			if err != nil {
				env.done <- result{prev, err}
				continue
			}
			s.current.Store(&next)

			s.mu.RLock()
			subs := s.subs
			s.mu.RUnlock()
			for _, sub := range subs {
				sub(prev, next)
			}
			env.done <- result{next, nil}
		}
	}
}

// Dispatch applies a and returns the resulting state. When the reducer
// rejects a, the unchanged state and the reason are returned and
// subscribers are not notified.
func (s *Store) Dispatch(ctx context.Context, a Action) (State, error) {
	env := envelope{action: a, done: make(chan result, 1)}
	select {
	case s.actions <- env:
	case <-s.quit:
		return s.Snapshot(), ErrStoreClosed
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
	r := <-env.done
	return r.state, r.err
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	return *s.current.Load()
}

// Subscribe registers sub for every later transition.
func (s *Store) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs[:len(s.subs):len(s.subs)], sub)
}

// Close stops the store goroutine and waits for it to exit.
func (s *Store) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped
}
