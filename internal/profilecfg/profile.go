// Package profilecfg holds named, reusable bundles of guest startup
// parameters — environment variables and capabilities — plus the
// daemon-wide Settings. The daemon loads profiles at startup; neither
// js.start_server nor the CLI applies them to a guest.
//
// Profile is adapted from the teacher's domain/profile.Profile: the
// teacher's profile described an isolated environment for *external* MCP
// tool processes (remote auth mode, a remote server URL to proxy to,
// allowed tool names); here it instead bundles the env map and
// guest.Capabilities a set of named guests are started with, since the
// bridge's unit of isolation is an in-process guest, not a child process.
package profilecfg

import (
	"errors"

	"github.com/mcp-scooter/bridge/internal/guest"
)

// Profile bundles the env vars and capabilities a named set of guests
// starts with.
type Profile struct {
	ID              string             `yaml:"id" json:"id"`
	Env             map[string]string  `yaml:"env" json:"env"`
	Capabilities    guest.Capabilities `yaml:"capabilities" json:"capabilities"`
	AllowedGuestIDs []string           `yaml:"allowed_guest_ids" json:"allowed_guest_ids"`
}

// Validate checks the profile is well formed.
func (p Profile) Validate() error {
	if p.ID == "" {
		return errors.New("profilecfg: profile id is required")
	}
	return nil
}

// AllowsGuest reports whether id may be started under this profile. An
// empty AllowedGuestIDs list means "any guest id".
func (p Profile) AllowsGuest(id string) bool {
	if len(p.AllowedGuestIDs) == 0 {
		return true
	}
	for _, allowed := range p.AllowedGuestIDs {
		if allowed == id {
			return true
		}
	}
	return false
}
