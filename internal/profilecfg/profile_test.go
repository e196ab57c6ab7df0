package profilecfg_test

import (
	"testing"

	"github.com/mcp-scooter/bridge/internal/profilecfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestProfile_Unmarshal(t *testing.T) {
	yamlData := `
id: research
env:
  BRAVE_API_KEY: "abc123"
capabilities:
  allowed_hosts:
    - "*.example.com"
allowed_guest_ids:
  - "search"
`

	var p profilecfg.Profile
	err := yaml.Unmarshal([]byte(yamlData), &p)
	require.NoError(t, err)

	assert.Equal(t, "research", p.ID)
	assert.Equal(t, "abc123", p.Env["BRAVE_API_KEY"])
	assert.Contains(t, p.Capabilities.AllowedHosts, "*.example.com")
	assert.Contains(t, p.AllowedGuestIDs, "search")
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile profilecfg.Profile
		wantErr bool
	}{
		{"valid", profilecfg.Profile{ID: "research"}, false},
		{"missing id", profilecfg.Profile{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProfile_AllowsGuest(t *testing.T) {
	anyProfile := profilecfg.Profile{ID: "p"}
	assert.True(t, anyProfile.AllowsGuest("whatever"))

	scoped := profilecfg.Profile{ID: "p", AllowedGuestIDs: []string{"search"}}
	assert.True(t, scoped.AllowsGuest("search"))
	assert.False(t, scoped.AllowsGuest("other"))
}
