package concurrency_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mna/ore/internal/concurrency"
)

func TestThreadManagerWaitJoinsAllWorkers(t *testing.T) {
	m := concurrency.NewThreadManager(0)
	var n int32
	for i := 0; i < 10; i++ {
		m.Go(func() { atomic.AddInt32(&n, 1) })
	}
	m.Wait()
	assert.Equal(t, int32(10), n)
}

func TestThreadManagerCapLimitsConcurrency(t *testing.T) {
	m := concurrency.NewThreadManager(2)
	var cur, max int32
	for i := 0; i < 8; i++ {
		m.Go(func() {
			c := atomic.AddInt32(&cur, 1)
			for {
				old := atomic.LoadInt32(&max)
				if c <= old || atomic.CompareAndSwapInt32(&max, old, c) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&cur, -1)
		})
	}
	m.Wait()
	assert.LessOrEqual(t, max, int32(2))
}

func TestThreadManagerExitRequested(t *testing.T) {
	m := concurrency.NewThreadManager(0)
	assert.False(t, m.ExitRequested())
	m.RequestExit()
	assert.True(t, m.ExitRequested())
}

func TestSyncTableReentrantSameOwner(t *testing.T) {
	st := concurrency.NewSyncTable()
	key := concurrency.FuncKey{Unit: "main", Func: "f"}
	owner := "owner-a"

	done := make(chan struct{})
	go func() {
		st.Lock(key, owner)
		st.Lock(key, owner) // re-entrant: must not deadlock
		st.Unlock(key, owner)
		st.Unlock(key, owner)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reentrant lock deadlocked")
	}
}

func TestSyncTableBlocksDifferentOwner(t *testing.T) {
	st := concurrency.NewSyncTable()
	key := concurrency.FuncKey{Unit: "main", Func: "f"}

	st.Lock(key, "owner-a")

	acquired := make(chan struct{})
	go func() {
		st.Lock(key, "owner-b")
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("owner-b acquired the lock while owner-a still holds it")
	case <-time.After(50 * time.Millisecond):
	}

	st.Unlock(key, "owner-a")

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("owner-b never acquired the lock after owner-a released it")
	}
}
