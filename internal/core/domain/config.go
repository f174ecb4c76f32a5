package domain

import (
	"encoding/json"
	"fmt"
)

// SettingKind discriminates the value held by a SettingValue.
type SettingKind int

const (
	SettingBool SettingKind = iota
	SettingString
	SettingNumber
)

// SettingValue is a tagged union of the three value types a configuration
// setting may hold. A name may change kind between writes; the store accepts
// this without validation (documented looseness, not enforced here).
type SettingValue struct {
	Kind SettingKind
	Bool bool
	Str  string
	Num  float64
}

func BoolSetting(v bool) SettingValue      { return SettingValue{Kind: SettingBool, Bool: v} }
func StringSetting(v string) SettingValue  { return SettingValue{Kind: SettingString, Str: v} }
func NumberSetting(v float64) SettingValue { return SettingValue{Kind: SettingNumber, Num: v} }

// Truthy reports whether the value counts as "on" for feature-flag checks:
// a true boolean, a non-empty string, or a non-zero number.
func (v SettingValue) Truthy() bool {
	switch v.Kind {
	case SettingBool:
		return v.Bool
	case SettingString:
		return v.Str != ""
	case SettingNumber:
		return v.Num != 0
	}
	return false
}

// Equal compares kind and payload.
func (v SettingValue) Equal(o SettingValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case SettingBool:
		return v.Bool == o.Bool
	case SettingString:
		return v.Str == o.Str
	case SettingNumber:
		return v.Num == o.Num
	}
	return false
}

// MarshalJSON encodes the value as its raw scalar, so a persisted settings
// map looks like {"name": true, "other": "text", "count": 3}.
func (v SettingValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case SettingBool:
		return json.Marshal(v.Bool)
	case SettingString:
		return json.Marshal(v.Str)
	case SettingNumber:
		return json.Marshal(v.Num)
	}
	return nil, fmt.Errorf("setting value: unknown kind %d", v.Kind)
}

// UnmarshalJSON decodes a raw scalar back into the tagged union.
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolSetting(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberSetting(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringSetting(s)
		return nil
	}
	return fmt.Errorf("setting value: unsupported JSON value %s", data)
}

// Settings is a full configuration snapshot, keyed by setting name.
type Settings map[string]SettingValue

// Clone returns an independent copy of the snapshot.
func (s Settings) Clone() Settings {
	clone := make(Settings, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}
