package session

import (
	"context"
	"strconv"
	"sync"

	"faktura/internal/events"
	"faktura/internal/rbac"
	"faktura/internal/utils/logger"

	"golang.org/x/sync/singleflight"
)

var log = logger.New("session")

// State describes where the cached session is in its lifecycle. Loading
// is deliberately distinct from a denial: guards render nothing while
// loading so a slow resolution never flashes the forbidden view.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

// Resolver loads the current identity from the identity provider (the
// /users/me endpoint in the web client's case).
type Resolver interface {
	ResolveIdentity(ctx context.Context) (rbac.Identity, error)
}

// Session caches the resolved identity for the lifetime of a client
// page/tab. Concurrent loads coalesce into one in-flight resolution,
// and sign-out or token-refresh events invalidate the cache so the next
// read re-resolves.
type Session struct {
	resolver Resolver

	mu       sync.RWMutex
	state    State
	identity rbac.Identity
	err      error
	gen      uint64

	group singleflight.Group
}

func New(resolver Resolver) *Session {
	s := &Session{resolver: resolver}

	events.On(events.EventSignedOut, func(interface{}) { s.Invalidate() })
	events.On(events.EventTokenRefreshed, func(interface{}) { s.Invalidate() })

	return s
}

// Load returns the cached identity, resolving it first if needed.
// Redundant concurrent calls share a single resolution instead of
// racing multiple lookups.
func (s *Session) Load(ctx context.Context) (rbac.Identity, error) {
	s.mu.RLock()
	if s.state == StateReady {
		identity := s.identity
		s.mu.RUnlock()
		return identity, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	// The generation is part of the key so loads started after an
	// Invalidate never join a pre-invalidation flight.
	result := s.group.DoChan("resolve:"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		s.setLoading(gen)
		identity, err := s.resolver.ResolveIdentity(ctx)
		if err != nil {
			s.setFailed(gen, err)
			return rbac.Identity{}, err
		}
		s.setReady(gen, identity)
		return identity, nil
	})

	select {
	case <-ctx.Done():
		// The caller went away mid-flight; the shared resolution keeps
		// running for other waiters, but this caller gets no result.
		return rbac.Identity{}, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return rbac.Identity{}, res.Err
		}
		return res.Val.(rbac.Identity), nil
	}
}

// Invalidate drops the cached identity. The next Load re-resolves, and
// any resolution already in flight is discarded when it lands.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.state = StateIdle
	s.identity = rbac.Identity{}
	s.err = nil
	s.mu.Unlock()
	log.Info("Session invalidated")
}

// Snapshot returns the current state and identity without triggering a
// load. Guards evaluate against this.
func (s *Session) Snapshot() (State, rbac.Identity) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.identity
}

// Err returns the resolution error, if the last load failed. A failed
// load is a visible error state, not an access denial.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateFailed {
		return nil
	}
	return s.err
}

func (s *Session) setLoading(gen uint64) {
	s.mu.Lock()
	if s.gen == gen && s.state != StateReady {
		s.state = StateLoading
	}
	s.mu.Unlock()
}

func (s *Session) setReady(gen uint64, identity rbac.Identity) {
	s.mu.Lock()
	// A result that started before an Invalidate must not resurrect the
	// old session.
	if s.gen == gen {
		s.state = StateReady
		s.identity = identity
		s.err = nil
	}
	s.mu.Unlock()
}

func (s *Session) setFailed(gen uint64, err error) {
	s.mu.Lock()
	if s.gen == gen {
		s.state = StateFailed
		s.err = err
	}
	s.mu.Unlock()
}
