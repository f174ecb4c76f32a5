package ports

import (
	"context"

	"github.com/universeos/dashboard/internal/core/domain"
)

// ConfigSubscriber receives the full configuration snapshot on every
// notification round.
type ConfigSubscriber func(snapshot domain.Settings)

// Unsubscribe deregisters a subscriber. Calling it during a notification
// round is safe: callbacks already scheduled for that round still run, and
// the subscriber is excluded from future rounds.
type Unsubscribe func()

// ConfigStore maps setting names to values and fans out changes to
// subscribers in registration order.
type ConfigStore interface {
	// Get returns the current value, or def when the name is absent.
	Get(name string, def domain.SettingValue) domain.SettingValue

	// Lookup returns the current value and whether the name is set.
	Lookup(name string) (domain.SettingValue, bool)

	// Set updates the mapping, persists the entire mapping durably, and
	// synchronously notifies every subscriber with the new snapshot.
	// Exactly one notification round per call; rounds are never coalesced.
	Set(ctx context.Context, name string, value domain.SettingValue)

	// Subscribe registers a callback for change and heartbeat rounds.
	Subscribe(fn ConfigSubscriber) Unsubscribe

	// GetFeatureFlag reports whether either "feature_<flag>" or "<flag>"
	// is truthy; both naming conventions are accepted.
	GetFeatureFlag(flag string) bool

	// Snapshot returns a copy of the full mapping.
	Snapshot() domain.Settings
}
