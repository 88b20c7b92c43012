package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GetInt reads an integer setting. Missing keys return ErrSettingNotFound;
// unparsable values return ErrInvalidEntity.
func GetInt(ctx context.Context, s SettingsStore, key string) (int, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer: %v", ErrInvalidEntity, key, err)
	}
	return n, nil
}

// SetInt stages an integer setting.
func SetInt(ctx context.Context, s SettingsStore, key string, value int) error {
	return s.Set(ctx, key, []byte(strconv.Itoa(value)))
}

// GetBool reads a boolean setting.
func GetBool(ctx context.Context, s SettingsStore, key string) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(strings.TrimSpace(string(raw)))
	if err != nil {
		return false, fmt.Errorf("%w: %s is not a boolean: %v", ErrInvalidEntity, key, err)
	}
	return b, nil
}

// SetBool stages a boolean setting.
func SetBool(ctx context.Context, s SettingsStore, key string, value bool) error {
	return s.Set(ctx, key, []byte(strconv.FormatBool(value)))
}

// GetString reads a string setting.
func GetString(ctx context.Context, s SettingsStore, key string) (string, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SetString stages a string setting.
func SetString(ctx context.Context, s SettingsStore, key, value string) error {
	return s.Set(ctx, key, []byte(value))
}

// GetJSON decodes a JSON setting into v.
func GetJSON(ctx context.Context, s SettingsStore, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s is not valid JSON: %v", ErrInvalidEntity, key, err)
	}
	return nil
}

// SetJSON encodes v as JSON and stages it under key.
func SetJSON(ctx context.Context, s SettingsStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrInvalidEntity, key, err)
	}
	return s.Set(ctx, key, raw)
}
