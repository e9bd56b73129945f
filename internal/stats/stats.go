// Package stats keeps the runtime statistics of the bot
package stats

import (
	"sync/atomic"
	"time"
)

// Stats represents the runtime statistics, it is safe for concurrent use
type Stats struct {
	startedAt   time.Time
	messages    atomic.Int64
	faults      atomic.Int64
	lastUpdate  atomic.Int64 // unix nanoseconds
	lastJournal atomic.Int64 // unix nanoseconds
}

// New creates the statistics of a bot started at the given moment
func New(startedAt time.Time) *Stats {
	s := &Stats{startedAt: startedAt}
	s.lastUpdate.Store(startedAt.UnixNano())
	return s
}

// Message counts a handled message
func (s *Stats) Message() {
	s.messages.Add(1)
}

// Fault counts a failed handler
func (s *Stats) Fault() {
	s.faults.Add(1)
}

// Updated records that updates were received from Telegram
func (s *Stats) Updated(t time.Time) {
	s.lastUpdate.Store(t.UnixNano())
}

// JournalChecked records a completed journal check
func (s *Stats) JournalChecked(t time.Time) {
	s.lastJournal.Store(t.UnixNano())
}

// Snapshot represents the statistics at a given moment
type Snapshot struct {
	Uptime      time.Duration
	Messages    int64
	Faults      int64
	LastUpdate  time.Time
	LastJournal time.Time // zero if the journal was never checked
}

// Snapshot returns the current statistics
func (s *Stats) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Uptime:     now.Sub(s.startedAt),
		Messages:   s.messages.Load(),
		Faults:     s.faults.Load(),
		LastUpdate: time.Unix(0, s.lastUpdate.Load()),
	}
	if n := s.lastJournal.Load(); n != 0 {
		snap.LastJournal = time.Unix(0, n)
	}
	return snap
}
