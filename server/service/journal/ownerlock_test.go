package journal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOwnerLocksSameOwnerSerializes(t *testing.T) {
	locks := newOwnerLocks()
	var counter int

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(1)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	require.Equal(t, 50, counter)
}

func TestOwnerLocksDifferentOwnersIndependent(t *testing.T) {
	locks := newOwnerLocks()

	unlock := locks.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := locks.Lock(2)
		u()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different owner blocked")
	}
}

func TestConcurrentSameDayWrites(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemDriver(), nil)
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Unix()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordEntryDay(ctx, 1, ts)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := svc.GetStreak(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int32(1), state.CurrentStreak)
	require.Equal(t, int32(1), state.LongestStreak)
	require.Equal(t, int32(20), state.TotalEntries)
}
