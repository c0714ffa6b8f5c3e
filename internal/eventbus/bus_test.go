package eventbus

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logoforge/internal/domain"
)

func TestBusPubSub(t *testing.T) {
	bus := New(zerolog.Nop())
	ch, unsub := bus.Subscribe("job-123")
	defer unsub()

	snap := domain.Snapshot{JobID: "job-123", Status: domain.JobStatusDone, ResultURL: "https://example.com/logo.png"}
	bus.Publish(snap)

	select {
	case got := <-ch:
		assert.Equal(t, snap, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestBusIgnoresOtherJobs(t *testing.T) {
	bus := New(zerolog.Nop())
	ch, unsub := bus.Subscribe("job-a")
	defer unsub()

	bus.Publish(domain.Snapshot{JobID: "job-b", Status: domain.JobStatusDone})

	select {
	case s := <-ch:
		t.Fatalf("unexpected snapshot %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := New(zerolog.Nop())
	ch, unsub := bus.Subscribe("job-456")
	unsub()
	unsub()

	bus.Publish(domain.Snapshot{JobID: "job-456", Status: domain.JobStatusFailed})

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
	assert.Equal(t, 0, bus.Subscribers("job-456"))
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := New(zerolog.Nop())
	ch1, unsub1 := bus.Subscribe("job-multi")
	defer unsub1()
	ch2, unsub2 := bus.Subscribe("job-multi")
	require.Equal(t, 2, bus.Subscribers("job-multi"))

	bus.Publish(domain.Snapshot{JobID: "job-multi", Status: domain.JobStatusProcessing})
	unsub2()

	assert.Equal(t, domain.JobStatusProcessing, (<-ch1).Status)
	assert.Equal(t, domain.JobStatusProcessing, (<-ch2).Status)
	assert.Equal(t, 1, bus.Subscribers("job-multi"))
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := New(zerolog.Nop())
	ch, unsub := bus.Subscribe("job-full")
	defer unsub()

	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Publish(domain.Snapshot{JobID: "job-full", Status: domain.JobStatusProcessing})
	}
	assert.Len(t, ch, subscriberBuffer)
}
