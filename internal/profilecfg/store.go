// Store persistence for profiles and settings, adapted from the teacher's
// profile.Store: separate YAML files, with a backward-compat fallback that
// tries the old combined format before giving up.
package profilecfg

import (
	"os"

	"gopkg.in/yaml.v3"
)

// profilesFile is the profiles.yaml document shape.
type profilesFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// settingsFile is the settings.yaml document shape.
type settingsFile struct {
	Settings Settings `yaml:"settings"`
}

// Store handles persistence of profiles and settings to separate YAML
// files.
type Store struct {
	profilesPath string
	settingsPath string
}

// NewStore constructs a store with separate paths for profiles and
// settings.
func NewStore(profilesPath, settingsPath string) *Store {
	return &Store{profilesPath: profilesPath, settingsPath: settingsPath}
}

// Load reads both profiles and settings. A missing profiles file yields an
// empty slice; a missing settings file yields DefaultSettings(). If
// profiles.yaml is in the teacher's old combined shape (profiles+settings
// in one file), both are recovered from it and settings.yaml is written
// immediately so subsequent loads use the split format.
func (s *Store) Load() ([]Profile, Settings, error) {
	profiles := []Profile{}
	pData, err := os.ReadFile(s.profilesPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, Settings{}, err
		}
	} else {
		var pf profilesFile
		if err := yaml.Unmarshal(pData, &pf); err != nil {
			var combined struct {
				Profiles []Profile `yaml:"profiles"`
				Settings Settings  `yaml:"settings"`
			}
			if err2 := yaml.Unmarshal(pData, &combined); err2 == nil && len(combined.Profiles) > 0 {
				profiles = combined.Profiles
			} else {
				return nil, Settings{}, err
			}
		} else {
			profiles = pf.Profiles
		}
	}

	settings := DefaultSettings()
	sData, err := os.ReadFile(s.settingsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, Settings{}, err
		}
		if pData != nil {
			var combined struct {
				Settings Settings `yaml:"settings"`
			}
			if err2 := yaml.Unmarshal(pData, &combined); err2 == nil && combined.Settings.BridgePort != 0 {
				settings = combined.Settings
				_ = s.SaveSettings(settings)
			}
		}
	} else {
		var sf settingsFile
		if err := yaml.Unmarshal(sData, &sf); err != nil {
			return nil, Settings{}, err
		}
		settings = sf.Settings
	}

	if settings.BridgePort == 0 {
		settings.BridgePort = DefaultSettings().BridgePort
	}
	if settings.ControlPort == 0 {
		settings.ControlPort = DefaultSettings().ControlPort
	}

	return profiles, settings, nil
}

// SaveProfiles writes profiles to profiles.yaml.
func (s *Store) SaveProfiles(profiles []Profile) error {
	data, err := yaml.Marshal(profilesFile{Profiles: profiles})
	if err != nil {
		return err
	}
	return os.WriteFile(s.profilesPath, data, 0o644)
}

// SaveSettings writes settings to settings.yaml.
func (s *Store) SaveSettings(settings Settings) error {
	data, err := yaml.Marshal(settingsFile{Settings: settings})
	if err != nil {
		return err
	}
	return os.WriteFile(s.settingsPath, data, 0o644)
}

// Save writes both files.
func (s *Store) Save(profiles []Profile, settings Settings) error {
	if err := s.SaveProfiles(profiles); err != nil {
		return err
	}
	return s.SaveSettings(settings)
}
