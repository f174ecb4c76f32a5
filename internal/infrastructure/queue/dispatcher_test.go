package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/core/ports"
)

type stubSink struct {
	mu     sync.Mutex
	events []ports.LayoutEvent
	err    error
}

func (s *stubSink) Record(_ context.Context, event ports.LayoutEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcher_RecordsEvents(t *testing.T) {
	sink := &stubSink{}
	d := NewDispatcher(2, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		d.Enqueue(ports.LayoutEvent{LayoutID: "layout-1", Action: "layout saved"})
	}

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := sink.count(); got != 5 {
		t.Fatalf("recorded %d events, want 5", got)
	}
}

func TestDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewDispatcher(4, &stubSink{}, zerolog.Nop())

	first := d.shardIndex("layout-1")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("layout-1"); got != first {
			t.Fatalf("shard for same id changed from %d to %d", first, got)
		}
	}
}

func TestEnqueue_NeverBlocksWithoutWorkers(t *testing.T) {
	// No Start call, nothing drains the buffers. Every Enqueue past
	// capacity must drop instead of blocking the caller.
	d := NewDispatcher(1, &stubSink{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(ports.LayoutEvent{LayoutID: "layout-1", Action: "layout saved"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Enqueue blocked on a saturated worker queue")
	}
}

func TestEnqueue_DropsAfterShutdown(t *testing.T) {
	sink := &stubSink{}
	d := NewDispatcher(1, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	// Workers are gone; filling past capacity must still return.
	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(ports.LayoutEvent{LayoutID: "layout-1", Action: "widget added"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Enqueue blocked during shutdown")
	}
}
