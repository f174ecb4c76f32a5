package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/core/ports"
)

// NotificationHub manages one NotificationCenter per user id, starting the
// poll loop on first use and guaranteeing every timer is released on
// shutdown.
type NotificationHub struct {
	gateway  ports.Gateway
	cfg      ports.ConfigStore
	flag     string
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	centers map[string]*NotificationService
	unsubs  map[string]ports.Unsubscribe
	ctx     context.Context
	stopped bool
}

// NewNotificationHub creates a hub. When flag is non-empty every center is
// gated by that feature flag through cfg.
func NewNotificationHub(gateway ports.Gateway, cfg ports.ConfigStore, flag string, interval time.Duration, log zerolog.Logger) *NotificationHub {
	return &NotificationHub{
		gateway:  gateway,
		cfg:      cfg,
		flag:     flag,
		interval: interval,
		log:      log,
		centers:  make(map[string]*NotificationService),
		unsubs:   make(map[string]ports.Unsubscribe),
	}
}

// Start sets the lifecycle context under which centers run. Must be called
// before For.
func (h *NotificationHub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctx = ctx
}

// For returns the center for a user, creating and starting it on first use.
func (h *NotificationHub) For(userID string) ports.NotificationCenter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if center, ok := h.centers[userID]; ok {
		return center
	}

	center := NewNotificationService(h.gateway, userID, h.interval, h.log)
	if h.cfg != nil && h.flag != "" {
		h.unsubs[userID] = center.GateByFeatureFlag(h.cfg, h.flag)
	}

	ctx := h.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if !h.stopped {
		center.Start(ctx)
	}

	h.centers[userID] = center
	return center
}

// StopAll tears down every center and releases the config subscriptions.
// Idempotent.
func (h *NotificationHub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for id, center := range h.centers {
		center.Stop()
		if unsub, ok := h.unsubs[id]; ok {
			unsub()
			delete(h.unsubs, id)
		}
	}
}
