package service

import (
	"context"
	"sync"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub key-value store
// ---------------------------------------------------------------------------

type stubKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newStubKV() *stubKV {
	return &stubKV{data: make(map[string]string)}
}

func (s *stubKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.sets++
	return nil
}

func (s *stubKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// ---------------------------------------------------------------------------
// Scriptable stub gateway
// ---------------------------------------------------------------------------

type stubGateway struct {
	mu sync.Mutex

	layouts    []domain.Layout
	layoutsErr error

	saveErr   error
	saveCalls int
	lastSaved domain.Layout
	saved     map[string]domain.Layout

	notifications    []domain.Notification
	notificationsErr error
	pollCalls        int

	recommendations []string
	recsErr         error

	widgetData    *ports.WidgetData
	widgetDataErr error
}

func (g *stubGateway) FetchLayouts(_ context.Context, _ string) ([]domain.Layout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.layoutsErr != nil {
		return nil, g.layoutsErr
	}
	return g.layouts, nil
}

func (g *stubGateway) SaveLayout(_ context.Context, layout domain.Layout) (domain.Layout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saveCalls++
	if g.saveErr != nil {
		return domain.Layout{}, g.saveErr
	}
	g.lastSaved = layout
	if g.saved == nil {
		g.saved = make(map[string]domain.Layout)
	}
	// Keyed like the real gateway, owner-scoped.
	g.saved[layout.OwnerID+"/"+layout.ID] = layout
	return layout, nil
}

func (g *stubGateway) FetchNotifications(_ context.Context, _ string) ([]domain.Notification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pollCalls++
	if g.notificationsErr != nil {
		return nil, g.notificationsErr
	}
	out := make([]domain.Notification, len(g.notifications))
	copy(out, g.notifications)
	return out, nil
}

func (g *stubGateway) FetchRecommendations(_ context.Context, _ map[string]string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.recsErr != nil {
		return nil, g.recsErr
	}
	return g.recommendations, nil
}

func (g *stubGateway) FetchWidgetData(_ context.Context, widgetID string, _ []string, _ map[string]string) (*ports.WidgetData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.widgetDataErr != nil {
		return nil, g.widgetDataErr
	}
	if g.widgetData != nil {
		return g.widgetData, nil
	}
	return &ports.WidgetData{WidgetID: widgetID}, nil
}

func (g *stubGateway) setNotifications(items []domain.Notification) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = items
}

// ---------------------------------------------------------------------------
// In-memory stub user directory
// ---------------------------------------------------------------------------

type stubDirectory struct {
	users map[string]*ports.UserRecord
	err   error
}

func (d *stubDirectory) FindByUsername(_ context.Context, username string) (*ports.UserRecord, error) {
	if d.err != nil {
		return nil, d.err
	}
	u, ok := d.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}
