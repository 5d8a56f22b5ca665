package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"faktura/internal/events"
	"faktura/internal/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	identity rbac.Identity
	err      error
	delay    time.Duration
	calls    int64
}

func (r *stubResolver) ResolveIdentity(ctx context.Context) (rbac.Identity, error) {
	atomic.AddInt64(&r.calls, 1)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return rbac.Identity{}, ctx.Err()
		}
	}
	if r.err != nil {
		return rbac.Identity{}, r.err
	}
	return r.identity, nil
}

func managerIdentity() rbac.Identity {
	return rbac.Identity{ID: "user-1", Role: rbac.RoleManager, BusinessID: "biz-1"}
}

func TestLoadCachesIdentity(t *testing.T) {
	resolver := &stubResolver{identity: managerIdentity()}
	sess := New(resolver)

	identity, err := sess.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, managerIdentity(), identity)

	_, err = sess.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&resolver.calls), "second load must hit the cache")

	state, cached := sess.Snapshot()
	assert.Equal(t, StateReady, state)
	assert.Equal(t, managerIdentity(), cached)
}

func TestConcurrentLoadsCoalesce(t *testing.T) {
	resolver := &stubResolver{identity: managerIdentity(), delay: 50 * time.Millisecond}
	sess := New(resolver)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			identity, err := sess.Load(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, managerIdentity(), identity)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt64(&resolver.calls), "concurrent loads must share one resolution")
}

func TestInvalidateForcesReload(t *testing.T) {
	resolver := &stubResolver{identity: managerIdentity()}
	sess := New(resolver)

	_, err := sess.Load(context.Background())
	require.NoError(t, err)

	sess.Invalidate()
	state, identity := sess.Snapshot()
	assert.Equal(t, StateIdle, state)
	assert.Empty(t, identity.ID)

	_, err = sess.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&resolver.calls))
}

func TestSignOutEventInvalidates(t *testing.T) {
	resolver := &stubResolver{identity: managerIdentity()}
	sess := New(resolver)

	_, err := sess.Load(context.Background())
	require.NoError(t, err)

	events.Emit(events.EventSignedOut, nil)

	// The bus dispatches handlers asynchronously.
	assert.Eventually(t, func() bool {
		state, _ := sess.Snapshot()
		return state == StateIdle
	}, time.Second, 10*time.Millisecond)
}

func TestFailedLoadIsErrorStateNotDenial(t *testing.T) {
	resolver := &stubResolver{err: errors.New("network unreachable")}
	sess := New(resolver)

	_, err := sess.Load(context.Background())
	require.Error(t, err)

	state, _ := sess.Snapshot()
	assert.Equal(t, StateFailed, state)
	assert.Error(t, sess.Err())

	// A guard must render nothing here, not the denial view.
	decision := PageGuard{MinRole: rbac.RoleUser}.Evaluate(sess.Snapshot())
	assert.Equal(t, RenderNothing, decision)
}

func TestAbortedLoadDoesNotBlockCaller(t *testing.T) {
	resolver := &stubResolver{identity: managerIdentity(), delay: time.Second}
	sess := New(resolver)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sess.Load(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStaleResolutionDiscardedAfterInvalidate(t *testing.T) {
	resolver := &stubResolver{identity: managerIdentity(), delay: 80 * time.Millisecond}
	sess := New(resolver)

	done := make(chan struct{})
	go func() {
		sess.Load(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	sess.Invalidate()
	<-done

	// The in-flight result landed after the invalidation and must not
	// have resurrected the session.
	state, identity := sess.Snapshot()
	assert.Equal(t, StateIdle, state)
	assert.Empty(t, identity.ID)
}
