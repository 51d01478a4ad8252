package enginelock_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.abhg.dev/teapot/internal/teapot/enginelock"
)

func TestRegistrySerializesSameRepo(t *testing.T) {
	var reg enginelock.Registry

	var active atomic.Int32
	var maxActive atomic.Int32
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := reg.Lock("/repo/a")
			defer unlock()

			n := active.Add(1)
			for {
				cur := maxActive.Load()
				if n <= cur || maxActive.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestRegistryAllowsDifferentRepos(t *testing.T) {
	var reg enginelock.Registry

	unlockA := reg.Lock("/repo/a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := reg.Lock("/repo/b")
		defer unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different repository should not block")
	}
}

func TestRegistryNormalizesPath(t *testing.T) {
	var reg enginelock.Registry

	unlock := reg.Lock("/repo/a/")
	blocked := make(chan struct{})
	go func() {
		u := reg.Lock("/repo/a")
		close(blocked)
		u()
	}()

	select {
	case <-blocked:
		t.Fatal("equivalent paths should share a lock")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	<-blocked
}
