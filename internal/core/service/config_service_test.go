package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

func newTestConfig(kv *stubKV) *ConfigService {
	return NewConfigService(kv, time.Hour, zerolog.Nop())
}

func TestConfigGet_DefaultWhenAbsent(t *testing.T) {
	cfg := newTestConfig(newStubKV())

	got := cfg.Get("no_such_setting", domain.StringSetting("fallback"))
	if got.Str != "fallback" {
		t.Fatalf("expected fallback default, got %+v", got)
	}

	if _, ok := cfg.Lookup("no_such_setting"); ok {
		t.Fatalf("Lookup should report absence")
	}
}

func TestConfigSet_PersistsFullMapping(t *testing.T) {
	kv := newStubKV()
	cfg := newTestConfig(kv)

	cfg.Set(context.Background(), "defaultLanguage", domain.StringSetting("es-MX"))

	raw, ok, _ := kv.Get(context.Background(), configKey)
	if !ok {
		t.Fatalf("expected persisted config record")
	}
	var stored domain.Settings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("persisted config not decodable: %v", err)
	}
	if stored["defaultLanguage"].Str != "es-MX" {
		t.Fatalf("persisted value wrong: %+v", stored["defaultLanguage"])
	}
	// The whole mapping is rewritten, not just the changed key.
	if _, ok := stored["dashboardVersion"]; !ok {
		t.Fatalf("persisted record missing untouched settings")
	}
}

func TestConfigSet_NotifiesInRegistrationOrder(t *testing.T) {
	cfg := newTestConfig(newStubKV())

	var calls []string
	cfg.Subscribe(func(snap domain.Settings) {
		calls = append(calls, "cb1")
		if !snap["x"].Bool {
			t.Errorf("cb1 observed stale snapshot: %+v", snap["x"])
		}
	})
	cfg.Subscribe(func(snap domain.Settings) {
		calls = append(calls, "cb2")
		if !snap["x"].Bool {
			t.Errorf("cb2 observed stale snapshot: %+v", snap["x"])
		}
	})

	cfg.Set(context.Background(), "x", domain.BoolSetting(true))

	if len(calls) != 2 || calls[0] != "cb1" || calls[1] != "cb2" {
		t.Fatalf("expected [cb1 cb2], got %v", calls)
	}
}

func TestConfigSet_EachCallIsOwnRound(t *testing.T) {
	cfg := newTestConfig(newStubKV())

	rounds := 0
	cfg.Subscribe(func(domain.Settings) { rounds++ })

	ctx := context.Background()
	cfg.Set(ctx, "a", domain.NumberSetting(1))
	cfg.Set(ctx, "a", domain.NumberSetting(2))
	cfg.Set(ctx, "a", domain.NumberSetting(2)) // unchanged value still notifies

	if rounds != 3 {
		t.Fatalf("expected 3 rounds (no coalescing), got %d", rounds)
	}
}

func TestConfigUnsubscribe_DuringRound(t *testing.T) {
	cfg := newTestConfig(newStubKV())

	var unsub2 ports.Unsubscribe
	second := 0
	cfg.Subscribe(func(domain.Settings) {
		// Unsubscribing cb2 mid-round must not break the in-flight fan-out.
		unsub2()
	})
	unsub2 = cfg.Subscribe(func(domain.Settings) { second++ })

	ctx := context.Background()
	cfg.Set(ctx, "x", domain.BoolSetting(true))
	if second != 1 {
		t.Fatalf("cb2 should still run in the round it was scheduled for, ran %d times", second)
	}

	cfg.Set(ctx, "x", domain.BoolSetting(false))
	if second != 1 {
		t.Fatalf("cb2 should be excluded from later rounds, ran %d times", second)
	}
}

func TestConfigFeatureFlag_BothConventions(t *testing.T) {
	cfg := newTestConfig(newStubKV())
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value domain.SettingValue
		flag  string
		want  bool
	}{
		{"prefixed bool", "feature_darkMode", domain.BoolSetting(true), "darkMode", true},
		{"bare bool", "betaPanel", domain.BoolSetting(true), "betaPanel", true},
		{"false bool", "feature_off", domain.BoolSetting(false), "off", false},
		{"truthy string", "feature_label", domain.StringSetting("on"), "label", true},
		{"empty string", "feature_empty", domain.StringSetting(""), "empty", false},
		{"nonzero number", "feature_limit", domain.NumberSetting(3), "limit", true},
		{"zero number", "feature_zero", domain.NumberSetting(0), "zero", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Set(ctx, tt.key, tt.value)
			if got := cfg.GetFeatureFlag(tt.flag); got != tt.want {
				t.Fatalf("GetFeatureFlag(%q) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}

	if cfg.GetFeatureFlag("never_set") {
		t.Fatalf("unset flag must be false")
	}
}

func TestConfigSet_TypeChangeAccepted(t *testing.T) {
	cfg := newTestConfig(newStubKV())
	ctx := context.Background()

	cfg.Set(ctx, "retention", domain.NumberSetting(5))
	cfg.Set(ctx, "retention", domain.StringSetting("forever"))

	got, ok := cfg.Lookup("retention")
	if !ok || got.Kind != domain.SettingString || got.Str != "forever" {
		t.Fatalf("type-changing write should be accepted as-is, got %+v", got)
	}
}

func TestConfigRestore_MalformedFallsBackToDefaults(t *testing.T) {
	kv := newStubKV()
	_ = kv.Set(context.Background(), configKey, "{not json")

	cfg := newTestConfig(kv)
	cfg.Restore(context.Background())

	if _, ok := cfg.Lookup("dashboardVersion"); !ok {
		t.Fatalf("malformed record should leave seeded defaults in place")
	}
}

func TestConfigRestore_LoadsPersistedMapping(t *testing.T) {
	kv := newStubKV()
	persisted := domain.Settings{"defaultLanguage": domain.StringSetting("fr-FR")}
	raw, _ := json.Marshal(persisted)
	_ = kv.Set(context.Background(), configKey, string(raw))

	cfg := newTestConfig(kv)
	cfg.Restore(context.Background())

	got, ok := cfg.Lookup("defaultLanguage")
	if !ok || got.Str != "fr-FR" {
		t.Fatalf("expected restored value, got %+v", got)
	}
}

func TestConfigHeartbeat_NotifiesWithoutChanges(t *testing.T) {
	cfg := NewConfigService(newStubKV(), 10*time.Millisecond, zerolog.Nop())
	defer cfg.Stop()

	beat := make(chan domain.Settings, 1)
	cfg.Subscribe(func(snap domain.Settings) {
		select {
		case beat <- snap:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg.StartHeartbeat(ctx)

	select {
	case snap := <-beat:
		if _, ok := snap["dashboardVersion"]; !ok {
			t.Fatalf("heartbeat snapshot should carry current settings")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("heartbeat never fired")
	}
}
