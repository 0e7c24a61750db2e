package contact

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		counter int
		inside  int
		maxSeen int
		probe   sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("a")
			defer unlock()

			probe.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			probe.Unlock()

			counter++

			probe.Lock()
			inside--
			probe.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, km.locks, "released keys are dropped")
}

func TestKeyedMutex_DistinctKeysAreIndependent(t *testing.T) {
	km := newKeyedMutex()

	unlockA := km.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("b")
		unlockB()
		close(done)
	}()

	<-done
	unlockA()
	assert.Empty(t, km.locks)
}
