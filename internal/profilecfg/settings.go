package profilecfg

// Settings is the daemon-wide configuration not scoped to any one profile:
// the two listening ports from spec §6 (the extension-facing loopback,
// default 8766) plus a separate control-plane port (spec §4.8).
type Settings struct {
	BridgePort  int  `yaml:"bridge_port" json:"bridge_port"`
	ControlPort int  `yaml:"control_port" json:"control_port"`
	EnableBeta  bool `yaml:"enable_beta" json:"enable_beta"`
}

// DefaultSettings mirrors the teacher's DefaultSettings: fixed, documented
// port defaults rather than ephemeral ones, so a client can hard-code them.
func DefaultSettings() Settings {
	return Settings{
		BridgePort:  8766,
		ControlPort: 8767,
		EnableBeta:  false,
	}
}
