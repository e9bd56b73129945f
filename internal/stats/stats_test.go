package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	start := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	s := New(start)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Message()
		}()
	}
	wg.Wait()
	s.Fault()
	s.Updated(start.Add(time.Minute))

	snap := s.Snapshot(start.Add(time.Hour))
	assert.Equal(t, time.Hour, snap.Uptime)
	assert.EqualValues(t, 10, snap.Messages)
	assert.EqualValues(t, 1, snap.Faults)
	assert.True(t, snap.LastUpdate.Equal(start.Add(time.Minute)))
	assert.True(t, snap.LastJournal.IsZero())

	s.JournalChecked(start.Add(2 * time.Minute))
	assert.True(t, s.Snapshot(start).LastJournal.Equal(start.Add(2*time.Minute)))
}
