// Package config persists the daemon's provider/model configuration (spec
// §6): a JSON file under the user config directory holding
// {version, default_model?, default_provider?, providers, models}.
//
// The load-with-fallback shape — try the current format, fall back to an
// older one, migrate in memory, optionally write the migrated form back —
// generalizes the teacher's profile.Store.Load backward-compatibility
// pattern (profiles.yaml / old combined profiles+settings format), applied
// here to a v1→v2 provider-config migration instead of a profiles/settings
// split.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const CurrentVersion = 2

// ProviderInstance is one configured provider (spec §6 "providers").
type ProviderInstance struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Enabled       bool   `json:"enabled"`
	APIKey        string `json:"api_key,omitempty"`
	BaseURL       string `json:"base_url,omitempty"`
	IsTypeDefault bool   `json:"is_type_default,omitempty"`
}

// ModelEntry names one usable model and the provider instance serving it.
type ModelEntry struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
}

// Config is the v2 in-memory shape, whatever the on-disk version was.
type Config struct {
	Version         int                `json:"version"`
	DefaultModel    string             `json:"default_model,omitempty"`
	DefaultProvider string             `json:"default_provider,omitempty"`
	Providers       []ProviderInstance `json:"providers"`
	Models          []ModelEntry       `json:"models"`
}

// v1Config is the legacy flat shape: one provider per type, keyed by type
// name, with no explicit id or default_provider field.
type v1Config struct {
	DefaultModel string `json:"default_model"`
	Providers    map[string]struct {
		Enabled bool   `json:"enabled"`
		APIKey  string `json:"api_key"`
		BaseURL string `json:"base_url"`
	} `json:"providers"`
}

// Store reads and writes the config file at path.
type Store struct {
	path string
}

// New constructs a Store for path.
func New(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns $SCOOTER_BRIDGE_CONFIG_DIR/llm.json if set, else
// $XDG_CONFIG_HOME/harbor/llm.json (or the platform config dir equivalent),
// mirroring the teacher's SCOOTER_CONFIG_DIR override convention.
func DefaultPath() (string, error) {
	if dir := os.Getenv("SCOOTER_BRIDGE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "llm.json"), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "harbor", "llm.json"), nil
}

// Load reads the config file, migrating a v1 payload to v2 shape in memory
// (spec §6, §8 "Config migration"). A missing file yields an empty v2
// Config, not an error.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{Version: CurrentVersion}, nil
		}
		return Config{}, err
	}

	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Config{}, fmt.Errorf("config: malformed json: %w", err)
	}

	if probe.Version >= 2 {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: malformed v2 config: %w", err)
		}
		return cfg, nil
	}

	var v1 v1Config
	if err := json.Unmarshal(data, &v1); err != nil {
		return Config{}, fmt.Errorf("config: malformed v1 config: %w", err)
	}
	return migrateV1(v1), nil
}

// migrateV1 maps each legacy type to a single provider instance whose id
// equals the type, marks it is_type_default, and derives default_provider
// from the legacy default_model's "type:model" prefix when that type has a
// matching provider instance (spec §8 "Config migration"; model ids are
// "provider:model", e.g. "openai:gpt-4o" — colon-separated, not slash).
func migrateV1(v1 v1Config) Config {
	cfg := Config{Version: CurrentVersion, DefaultModel: v1.DefaultModel}

	providerTypes := make(map[string]bool, len(v1.Providers))
	for providerType, p := range v1.Providers {
		providerTypes[providerType] = true
		cfg.Providers = append(cfg.Providers, ProviderInstance{
			ID:            providerType,
			Type:          providerType,
			Enabled:       p.Enabled,
			APIKey:        p.APIKey,
			BaseURL:       p.BaseURL,
			IsTypeDefault: true,
		})
	}

	if v1.DefaultModel != "" {
		providerType := v1.DefaultModel
		if i := strings.IndexByte(v1.DefaultModel, ':'); i >= 0 {
			providerType = v1.DefaultModel[:i]
		}
		if providerTypes[providerType] {
			cfg.DefaultProvider = providerType
		}
	}

	return cfg
}

// Save writes cfg to disk as the current (v2) shape, creating the parent
// directory if needed.
func (s *Store) Save(cfg Config) error {
	cfg.Version = CurrentVersion
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
