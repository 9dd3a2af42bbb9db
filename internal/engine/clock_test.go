package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_StartsAtZeroAndCounts(t *testing.T) {
	c := NewClock()
	require.Zero(t, c.Current())

	for want := int64(1); want <= 3; want++ {
		assert.Equal(t, want, c.Next())
	}
	assert.Equal(t, int64(3), c.Current())
	assert.Equal(t, int64(3), c.Current(), "reading does not advance the seq")
}

func TestClock_ResumesAfterLoggedSeq(t *testing.T) {
	// A battle log whose last row has seq 41 continues at 42.
	c := NewClockAt(41)
	assert.Equal(t, int64(41), c.Current())
	assert.Equal(t, int64(42), c.Next())
}

func TestClock_SeqsNeverRepeatAcrossWriters(t *testing.T) {
	c := NewClock()
	const writers, perWriter = 16, 250

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[int64]struct{}, writers*perWriter)
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				seq := c.Next()
				mu.Lock()
				seen[seq] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, writers*perWriter)
	assert.Equal(t, int64(writers*perWriter), c.Current())
}

func TestSystemClock_UTC(t *testing.T) {
	now := SystemClock{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}
