package ports

import (
	"context"

	"github.com/universeos/dashboard/internal/core/domain"
)

// NotificationCenter polls a remote feed for one user, merges results into a
// local cache, and tracks read state. The unread count is always derived
// from the cache, never tracked as an independent counter.
type NotificationCenter interface {
	// Start begins the fixed-interval poll loop. Polling stops when ctx is
	// cancelled or Stop is called.
	Start(ctx context.Context)

	// Stop cancels the poll timer. A poll already in flight when Stop is
	// called has its result discarded. Idempotent.
	Stop()

	// Notifications returns cached entries in arrival order.
	Notifications() []domain.Notification

	// UnreadCount is the number of cached entries that are unread and
	// visible, recomputed from the cache on every call.
	UnreadCount() int

	// MarkAsRead transitions an entry to read; no-op if absent or already read.
	MarkAsRead(id string)

	// Clear removes an entry outright; clearing an absent id is a no-op.
	Clear(id string)

	// ClearAll empties the cache.
	ClearAll()

	// SetPaused suspends or resumes polling without releasing the timer.
	SetPaused(paused bool)
}
