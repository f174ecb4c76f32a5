package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/api/metrics"
	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

const configKey = "globalConfig"

const defaultHeartbeat = 30 * time.Second

// DefaultSettings returns the configuration the store starts from when no
// durable record exists.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		"dashboardVersion":             domain.StringSetting("10.5.2"),
		"enableAIRecommendationEngine": domain.BoolSetting(true),
		"enableRealtimeDataStreams":    domain.BoolSetting(true),
		"defaultLanguage":              domain.StringSetting("en-US"),
		"dataRetentionYears":           domain.NumberSetting(5),
		"quantumSecurityEnabled":       domain.BoolSetting(false),
		"holographicModeAvailable":     domain.BoolSetting(true),
		"ledgerIntegrationEnabled":     domain.BoolSetting(true),
	}
}

type subscriber struct {
	id int
	fn ports.ConfigSubscriber
}

// ConfigService implements ports.ConfigStore backed by the shared durable
// key-value store. The whole mapping is rewritten on every Set.
type ConfigService struct {
	kv        ports.KeyValueStore
	heartbeat time.Duration
	log       zerolog.Logger

	mu     sync.Mutex
	values domain.Settings
	subs   []subscriber
	nextID int

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewConfigService(kv ports.KeyValueStore, heartbeat time.Duration, log zerolog.Logger) *ConfigService {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &ConfigService{
		kv:        kv,
		heartbeat: heartbeat,
		log:       log,
		values:    DefaultSettings(),
		stopCh:    make(chan struct{}),
	}
}

// Restore loads the persisted mapping. An absent or malformed record leaves
// the seeded defaults in place; it is never a fatal condition.
func (s *ConfigService) Restore(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, configKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("config restore failed, using defaults")
		return
	}
	if !ok {
		return
	}

	var stored domain.Settings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.Warn().Err(err).Msg("malformed persisted config discarded")
		return
	}

	s.mu.Lock()
	s.values = stored
	s.mu.Unlock()
}

func (s *ConfigService) Get(name string, def domain.SettingValue) domain.SettingValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[name]; ok {
		return v
	}
	return def
}

func (s *ConfigService) Lookup(name string) (domain.SettingValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Set updates one setting, rewrites the full mapping durably, and runs one
// synchronous notification round in subscriber-registration order. A write
// that changes a setting's value type is accepted without validation.
func (s *ConfigService) Set(ctx context.Context, name string, value domain.SettingValue) {
	s.mu.Lock()
	s.values[name] = value
	snapshot := s.values.Clone()
	round := make([]subscriber, len(s.subs))
	copy(round, s.subs)
	s.mu.Unlock()

	if raw, err := json.Marshal(snapshot); err != nil {
		s.log.Error().Err(err).Str("setting", name).Msg("config encode failed")
	} else if err := s.kv.Set(ctx, configKey, string(raw)); err != nil {
		s.log.Warn().Err(err).Str("setting", name).Msg("config persist failed")
	}

	s.notify(round, snapshot)
	metrics.ConfigSetTotal.Inc()
}

// Subscribe registers a callback. The returned Unsubscribe only excludes the
// callback from future rounds; a round already snapshotted still delivers.
func (s *ConfigService) Subscribe(fn ports.ConfigSubscriber) ports.Unsubscribe {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// GetFeatureFlag accepts both the "feature_<flag>" and bare "<flag>" naming
// conventions; either being truthy enables the flag.
func (s *ConfigService) GetFeatureFlag(flag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values["feature_"+flag]; ok && v.Truthy() {
		return true
	}
	if v, ok := s.values[flag]; ok && v.Truthy() {
		return true
	}
	return false
}

func (s *ConfigService) Snapshot() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

// StartHeartbeat notifies subscribers with the current snapshot on a fixed
// interval even when nothing changed. This duplicates the Set-triggered
// notification path for consumers expecting periodic liveness signals; it is
// not change detection.
func (s *ConfigService) StartHeartbeat(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.mu.Lock()
				snapshot := s.values.Clone()
				round := make([]subscriber, len(s.subs))
				copy(round, s.subs)
				s.mu.Unlock()

				s.notify(round, snapshot)
				metrics.ConfigHeartbeatsTotal.Inc()
			}
		}
	}()
}

// Stop ends the heartbeat. Idempotent.
func (s *ConfigService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// notify runs one round: every callback in registration order, each with its
// own snapshot copy so subscribers cannot affect each other.
func (s *ConfigService) notify(round []subscriber, snapshot domain.Settings) {
	for _, sub := range round {
		sub.fn(snapshot.Clone())
	}
	metrics.ConfigFanoutCallbacks.Add(float64(len(round)))
}
