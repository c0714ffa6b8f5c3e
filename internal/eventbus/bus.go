package eventbus

import (
	"sync"

	"github.com/rs/zerolog"

	"logoforge/internal/domain"
)

const subscriberBuffer = 16

// Bus fans job snapshots out to per-job subscribers.
type Bus struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	subs   map[string][]chan domain.Snapshot
}

func New(logger zerolog.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[string][]chan domain.Snapshot),
	}
}

// Subscribe returns a channel receiving snapshots for jobID and a function
// that unsubscribes and closes the channel. The function is idempotent.
func (b *Bus) Subscribe(jobID string) (<-chan domain.Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.Snapshot, subscriberBuffer)
	b.subs[jobID] = append(b.subs[jobID], ch)

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subscribers := b.subs[jobID]
			for i, sub := range subscribers {
				if sub == ch {
					close(ch)
					b.subs[jobID] = append(subscribers[:i:i], subscribers[i+1:]...)
					break
				}
			}
			if len(b.subs[jobID]) == 0 {
				delete(b.subs, jobID)
			}
		})
	}
	return ch, unsub
}

// Publish delivers s to every subscriber of its job. Slow subscribers lose the
// snapshot instead of blocking the publisher.
func (b *Bus) Publish(s domain.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[s.JobID] {
		select {
		case ch <- s:
		default:
			b.logger.Warn().Str("job_id", s.JobID).Str("status", string(s.Status)).Msg("eventbus: subscriber full, dropping snapshot")
		}
	}
}

// Subscribers reports how many subscribers jobID currently has.
func (b *Bus) Subscribers(jobID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[jobID])
}

var _ domain.SnapshotPublisher = (*Bus)(nil)
