package overlay

import (
	"sync"
	"time"
)

const (
	defaultCapacity = 4
	defaultTTL      = 6 * time.Second
)

// Notice is one line shown to the user.
type Notice struct {
	Text  string
	Error bool
	At    time.Time
}

// Board keeps the most recent notices. Post may be called from any goroutine; the draw loop
// reads with Active.
type Board struct {
	mu       sync.Mutex
	notices  []Notice
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewBoard returns a board holding up to capacity notices, each visible for ttl.
// Non-positive values use 4 notices and 6 seconds.
func NewBoard(capacity int, ttl time.Duration) *Board {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Board{capacity: capacity, ttl: ttl, now: time.Now}
}

// Info posts an informational notice.
func (b *Board) Info(text string) { b.post(text, false) }

// Error posts a failure notice.
func (b *Board) Error(text string) { b.post(text, true) }

func (b *Board) post(text string, isErr bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{Text: text, Error: isErr, At: b.now()})
	if over := len(b.notices) - b.capacity; over > 0 {
		b.notices = append(b.notices[:0], b.notices[over:]...)
	}
}

// Active returns the unexpired notices, oldest first.
func (b *Board) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := b.now().Add(-b.ttl)
	keep := b.notices[:0]
	for _, n := range b.notices {
		if n.At.After(cutoff) {
			keep = append(keep, n)
		}
	}
	b.notices = keep
	out := make([]Notice, len(keep))
	copy(out, keep)
	return out
}
