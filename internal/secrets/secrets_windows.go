//go:build windows

package secrets

import (
	"github.com/danieljoos/wincred"
)

// WindowsStore stores secrets in the Windows Credential Manager, adapted
// directly from the teacher's integration.Keychain.
type WindowsStore struct {
	prefix string
}

// NewStore constructs the platform credential store. prefix namespaces
// entries (e.g. "mcp-scooter-bridge") so multiple installs don't collide.
func NewStore(prefix string) Store {
	return &WindowsStore{prefix: prefix}
}

func (s *WindowsStore) Set(id, secret string) error {
	cred := wincred.NewGenericCredential(namespacedKey(s.prefix, id))
	cred.CredentialBlob = []byte(secret)
	cred.Persist = wincred.PersistLocalMachine
	return cred.Write()
}

func (s *WindowsStore) Get(id string) (string, error) {
	cred, err := wincred.GetGenericCredential(namespacedKey(s.prefix, id))
	if err != nil {
		return "", ErrNotFound
	}
	return string(cred.CredentialBlob), nil
}

func (s *WindowsStore) Remove(id string) error {
	cred, err := wincred.GetGenericCredential(namespacedKey(s.prefix, id))
	if err != nil {
		return ErrNotFound
	}
	return cred.Delete()
}
