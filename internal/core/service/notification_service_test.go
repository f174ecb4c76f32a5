package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/core/domain"
)

func notif(id string, read, visible bool) domain.Notification {
	return domain.Notification{
		ID:        id,
		UserID:    "user-123",
		Type:      domain.NotificationInfo,
		Message:   "message " + id,
		Timestamp: time.Now().UTC(),
		Read:      read,
		Visible:   visible,
	}
}

func newTestCenter(gw *stubGateway) *NotificationService {
	return NewNotificationService(gw, "user-123", time.Hour, zerolog.Nop())
}

// invariantUnread recomputes the expected unread count straight from the
// listed cache contents, independent of the service's own bookkeeping.
func invariantUnread(t *testing.T, s *NotificationService) {
	t.Helper()
	want := 0
	for _, n := range s.Notifications() {
		if !n.Read && n.Visible {
			want++
		}
	}
	if got := s.UnreadCount(); got != want {
		t.Fatalf("unread count drifted: got %d, derived %d", got, want)
	}
}

func TestMerge_AdditivePolicy(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)

	gw.setNotifications([]domain.Notification{
		notif("n1", false, true),
		notif("n2", true, true),
	})
	center.poll(context.Background())

	// A later poll omitting n1 must not evict it from the local cache.
	gw.setNotifications([]domain.Notification{notif("n2", true, true)})
	center.poll(context.Background())

	items := center.Notifications()
	if len(items) != 2 {
		t.Fatalf("expected both notifications cached, got %d", len(items))
	}
	found := false
	for _, n := range items {
		if n.ID == "n1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("n1 was dropped by a truncating merge")
	}
	if got := center.UnreadCount(); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}
}

func TestMerge_KeepsLocalReadState(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)

	gw.setNotifications([]domain.Notification{notif("n1", false, true)})
	center.poll(context.Background())
	center.MarkAsRead("n1")

	// The feed still reports n1 unread; local read state wins for known ids.
	center.poll(context.Background())
	if got := center.UnreadCount(); got != 0 {
		t.Fatalf("poll regressed local read state, unread = %d", got)
	}
}

func TestMarkAsRead_Transitions(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	gw.setNotifications([]domain.Notification{
		notif("n1", false, true),
		notif("n2", false, true),
	})
	center.poll(context.Background())

	center.MarkAsRead("n1")
	if got := center.UnreadCount(); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}
	invariantUnread(t, center)

	// Already-read and absent ids are no-ops.
	center.MarkAsRead("n1")
	center.MarkAsRead("ghost")
	if got := center.UnreadCount(); got != 1 {
		t.Fatalf("no-op calls changed the count: %d", got)
	}
}

func TestClear_TerminalAndIdempotent(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	gw.setNotifications([]domain.Notification{notif("n1", false, true)})
	center.poll(context.Background())

	center.Clear("n1")
	if len(center.Notifications()) != 0 {
		t.Fatalf("cleared entry still cached")
	}

	// Second clear of the same id is a no-op, never an error.
	center.Clear("n1")
	center.Clear("never-existed")
	invariantUnread(t, center)
}

func TestClearAll(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	gw.setNotifications([]domain.Notification{
		notif("n1", false, true),
		notif("n2", false, true),
		notif("n3", true, true),
	})
	center.poll(context.Background())

	center.ClearAll()
	if len(center.Notifications()) != 0 || center.UnreadCount() != 0 {
		t.Fatalf("clearAll left state behind")
	}
}

func TestUnreadCount_IgnoresInvisible(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	gw.setNotifications([]domain.Notification{
		notif("n1", false, true),
		notif("n2", false, false), // hidden, must not count
		notif("n3", true, true),
	})
	center.poll(context.Background())

	if got := center.UnreadCount(); got != 1 {
		t.Fatalf("unread = %d, want 1 (invisible entries excluded)", got)
	}
	invariantUnread(t, center)
}

func TestUnreadCount_DerivedAfterMutationSequences(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	gw.setNotifications([]domain.Notification{
		notif("a", false, true),
		notif("b", false, true),
		notif("c", false, true),
		notif("d", true, true),
	})
	center.poll(context.Background())

	steps := []func(){
		func() { center.MarkAsRead("a") },
		func() { center.Clear("b") },
		func() { center.MarkAsRead("b") }, // cleared id, no-op
		func() { center.Clear("b") },      // already cleared, no-op
		func() { center.MarkAsRead("c") },
		func() { center.Clear("d") },
	}
	for _, step := range steps {
		step()
		invariantUnread(t, center)
	}
	if got := center.UnreadCount(); got != 0 {
		t.Fatalf("final unread = %d, want 0", got)
	}
}

func TestPoll_FailureLeavesCacheUntouched(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	gw.setNotifications([]domain.Notification{notif("n1", false, true)})
	center.poll(context.Background())

	gw.mu.Lock()
	gw.notificationsErr = context.DeadlineExceeded
	gw.mu.Unlock()

	center.poll(context.Background()) // absorbed, no panic, no propagation
	if len(center.Notifications()) != 1 || center.UnreadCount() != 1 {
		t.Fatalf("failed poll disturbed the cache")
	}
}

func TestPoll_PausedSkipsGateway(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	center.SetPaused(true)

	center.poll(context.Background())
	gw.mu.Lock()
	calls := gw.pollCalls
	gw.mu.Unlock()
	if calls != 0 {
		t.Fatalf("paused center must not hit the gateway, made %d calls", calls)
	}

	center.SetPaused(false)
	center.poll(context.Background())
	gw.mu.Lock()
	calls = gw.pollCalls
	gw.mu.Unlock()
	if calls != 1 {
		t.Fatalf("resumed center should poll, made %d calls", calls)
	}
}

func TestGateByFeatureFlag(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	cfg := newTestConfig(newStubKV())
	ctx := context.Background()

	cfg.Set(ctx, "enableRealtimeDataStreams", domain.BoolSetting(false))
	unsub := center.GateByFeatureFlag(cfg, "enableRealtimeDataStreams")
	defer unsub()

	center.poll(ctx)
	if gw.pollCalls != 0 {
		t.Fatalf("center should be paused while the flag is off")
	}

	cfg.Set(ctx, "enableRealtimeDataStreams", domain.BoolSetting(true))
	center.poll(ctx)
	if gw.pollCalls != 1 {
		t.Fatalf("flag turning on should resume polling")
	}
}

func TestStop_DiscardsInFlightResult(t *testing.T) {
	gw := &stubGateway{}
	center := newTestCenter(gw)
	gw.setNotifications([]domain.Notification{notif("n1", false, true)})
	center.poll(context.Background())

	center.Stop()

	// A poll result landing after Stop must be discarded.
	center.merge([]domain.Notification{notif("late", false, true)})
	items := center.Notifications()
	if len(items) != 1 || items[0].ID != "n1" {
		t.Fatalf("post-stop merge was applied: %v", items)
	}

	// Stop is idempotent.
	center.Stop()
}

func TestStartStop_ReleasesTimer(t *testing.T) {
	gw := &stubGateway{}
	gw.setNotifications([]domain.Notification{notif("n1", false, true)})
	center := NewNotificationService(gw, "user-123", 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	center.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		gw.mu.Lock()
		calls := gw.pollCalls
		gw.mu.Unlock()
		if calls >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("poll loop never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	center.Stop()
	gw.mu.Lock()
	after := gw.pollCalls
	gw.mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	gw.mu.Lock()
	final := gw.pollCalls
	gw.mu.Unlock()
	// Allow at most one already-in-flight tick to finish after Stop.
	if final > after+1 {
		t.Fatalf("timer kept firing after Stop: %d -> %d", after, final)
	}
}
