package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/api/metrics"
	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

const defaultPollInterval = 60 * time.Second

// NotificationService implements ports.NotificationCenter for a single user.
// It owns its local cache exclusively; the gateway is authoritative only at
// poll time, and the feed is merged additively: an id known locally is
// never dropped because a later poll response omits it.
type NotificationService struct {
	gateway  ports.Gateway
	userID   string
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	cache   map[string]*domain.Notification
	order   []string // arrival order, for stable listing
	paused  bool
	stopped bool
	cancel  context.CancelFunc

	startOnce sync.Once
}

func NewNotificationService(gateway ports.Gateway, userID string, interval time.Duration, log zerolog.Logger) *NotificationService {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &NotificationService{
		gateway:  gateway,
		userID:   userID,
		interval: interval,
		log:      log.With().Str("user_id", userID).Logger(),
		cache:    make(map[string]*domain.Notification),
	}
}

// Start launches the poll loop: one immediate poll, then one per interval
// tick. Safe to call once; subsequent calls are no-ops.
func (s *NotificationService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			cancel()
			return
		}
		s.cancel = cancel
		s.mu.Unlock()

		go s.run(ctx)
	})
}

func (s *NotificationService) run(ctx context.Context) {
	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll fetches the feed and merges it. A failure leaves the cache untouched
// (stale-but-available) and is absorbed; the next tick retries. No backoff.
func (s *NotificationService) poll(ctx context.Context) {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		metrics.NotificationPollsTotal.WithLabelValues("skipped").Inc()
		return
	}

	items, err := s.gateway.FetchNotifications(ctx, s.userID)
	if err != nil {
		metrics.NotificationPollsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("notification poll failed, will retry next tick")
		return
	}

	s.merge(items)
	metrics.NotificationPollsTotal.WithLabelValues("ok").Inc()
}

// merge inserts ids not yet cached, preserving the delivered read state.
// Known ids keep their local state: read-state tracking is local truth once
// an entry has been seen. A result arriving after Stop is discarded.
func (s *NotificationService) merge(items []domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	inserted := 0
	for _, item := range items {
		if _, known := s.cache[item.ID]; known {
			continue
		}
		entry := item
		s.cache[item.ID] = &entry
		s.order = append(s.order, item.ID)
		inserted++
	}
	if inserted > 0 {
		s.log.Debug().Int("inserted", inserted).Msg("notifications merged")
	}
	s.updateUnreadGauge()
}

// Notifications returns cached entries in arrival order.
func (s *NotificationService) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, 0, len(s.order))
	for _, id := range s.order {
		if n, ok := s.cache[id]; ok {
			out = append(out, *n)
		}
	}
	return out
}

// UnreadCount recomputes the derived count on every call: cached entries
// that are unread and visible. It is never tracked as a separate counter.
func (s *NotificationService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLocked()
}

func (s *NotificationService) unreadLocked() int {
	count := 0
	for _, n := range s.cache {
		if !n.Read && n.Visible {
			count++
		}
	}
	return count
}

// MarkAsRead transitions an entry to read. Absent or already-read ids are
// no-ops.
func (s *NotificationService) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.cache[id]; ok && !n.Read {
		n.Read = true
	}
	s.updateUnreadGauge()
}

// Clear removes an entry outright. Clearing an absent id is a no-op, never
// an error.
func (s *NotificationService) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[id]; !ok {
		return
	}
	delete(s.cache, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.updateUnreadGauge()
}

// ClearAll empties the cache.
func (s *NotificationService) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*domain.Notification)
	s.order = nil
	s.updateUnreadGauge()
}

// SetPaused suspends or resumes polling; the timer keeps ticking so resume
// takes effect on the next tick.
func (s *NotificationService) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// GateByFeatureFlag pauses the center while the flag is off and keeps it in
// sync with future config rounds. The returned Unsubscribe releases the
// subscription.
func (s *NotificationService) GateByFeatureFlag(cfg ports.ConfigStore, flag string) ports.Unsubscribe {
	s.SetPaused(!cfg.GetFeatureFlag(flag))
	return cfg.Subscribe(func(domain.Settings) {
		s.SetPaused(!cfg.GetFeatureFlag(flag))
	})
}

// Stop cancels the poll timer. An in-flight poll completing after Stop has
// its merge discarded. Idempotent.
func (s *NotificationService) Stop() {
	s.mu.Lock()
	s.stopped = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *NotificationService) updateUnreadGauge() {
	metrics.NotificationsUnread.WithLabelValues(s.userID).Set(float64(s.unreadLocked()))
}
