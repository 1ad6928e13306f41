package diag

import (
	"sync"
	"time"

	"github.com/zond/redikv/heap"
)

// SlowEntry is one recorded slow command.
type SlowEntry struct {
	Command  string
	Duration time.Duration
	At       time.Time
}

// SlowLog keeps the capacity slowest commands observed, adapted from
// the teacher's generic heap.Heap[T]: a min-heap on Duration, so the
// root is always the fastest of the currently-kept slow entries and
// the first one evicted once a slower command arrives. Drained by the
// admin CLI's SLOWLOG meta-command (bin/cli), per SPEC_FULL.md §B.
type SlowLog struct {
	mu       sync.Mutex
	capacity int
	entries  *heap.Heap[SlowEntry]
}

// NewSlowLog returns a SlowLog retaining at most capacity entries.
func NewSlowLog(capacity int) *SlowLog {
	return &SlowLog{
		capacity: capacity,
		entries: heap.New(func(a, b SlowEntry) bool {
			return a.Duration < b.Duration
		}),
	}
}

// Record considers a command that took d to execute for inclusion in
// the log.
func (s *SlowLog) Record(command string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity <= 0 {
		return
	}
	if s.entries.Size() < s.capacity {
		s.entries.Push(SlowEntry{Command: command, Duration: d, At: time.Now()})
		return
	}
	fastest, ok := s.entries.Peek()
	if !ok || d <= fastest.Duration {
		return
	}
	s.entries.Pop()
	s.entries.Push(SlowEntry{Command: command, Duration: d, At: time.Now()})
}

// Snapshot returns every retained entry, slowest first.
func (s *SlowLog) Snapshot() []SlowEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := make([]SlowEntry, 0, s.entries.Size())
	for {
		e, ok := s.entries.Pop()
		if !ok {
			break
		}
		tmp = append(tmp, e)
	}
	for _, e := range tmp {
		s.entries.Push(e)
	}

	out := make([]SlowEntry, len(tmp))
	for i, e := range tmp {
		out[len(tmp)-1-i] = e
	}
	return out
}
