package guest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Capabilities is the grant a guest is started with: which network hosts it
// may fetch from and which filesystem paths it may read or write. Empty
// lists forbid everything for that axis.
type Capabilities struct {
	AllowedHosts []string `json:"allowed_hosts" yaml:"allowed_hosts"`
	ReadPaths    []string `json:"read_paths" yaml:"read_paths"`
	WritePaths   []string `json:"write_paths" yaml:"write_paths"`
}

// HostAllowed reports whether host matches one of the capability's patterns.
// A pattern is "*" (any host), "*.suffix" (host equals suffix or is a
// subdomain of it), or an exact host match.
func (c Capabilities) HostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, pattern := range c.AllowedHosts {
		if hostPatternMatches(pattern, host) {
			return true
		}
	}
	return false
}

func hostPatternMatches(pattern, host string) bool {
	pattern = strings.ToLower(pattern)
	if pattern == "*" {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:] // ".example.com"
		return host == suffix[1:] || strings.HasSuffix(host, suffix)
	}
	return pattern == host
}

// ReadAllowed reports whether path is a canonical descendant of one of the
// read-path prefixes (or the write prefixes, since write implies read).
func (c Capabilities) ReadAllowed(path string) bool {
	return pathAllowed(path, c.ReadPaths) || pathAllowed(path, c.WritePaths)
}

// WriteAllowed reports whether path is a canonical descendant of one of the
// write-path prefixes.
func (c Capabilities) WriteAllowed(path string) bool {
	return pathAllowed(path, c.WritePaths)
}

func pathAllowed(path string, prefixes []string) bool {
	canon, err := canonicalPath(path)
	if err != nil {
		return false
	}
	for _, prefix := range prefixes {
		canonPrefix, err := canonicalPath(prefix)
		if err != nil {
			continue
		}
		if canon == canonPrefix || strings.HasPrefix(canon, canonPrefix+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func canonicalPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
