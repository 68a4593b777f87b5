package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the app's fixed endpoints and vendor ids
type Profile struct {
	// Minimum-version document ({android, ios})
	VersionEndpoint string `yaml:"version_endpoint"`

	Android PlatformProfile `yaml:"android"`
	IOS     PlatformProfile `yaml:"ios"`

	Wallet WalletProfile `yaml:"wallet"`
}

// PlatformProfile holds the per-platform addresses and ad units
type PlatformProfile struct {
	ContentURL    string  `yaml:"content_url"`
	UpdateInfoURL string  `yaml:"update_info_url"`
	AdUnits       AdUnits `yaml:"ad_units"`
}

type AdUnits struct {
	Rewarded   string `yaml:"rewarded"`
	Fullscreen string `yaml:"fullscreen"`
}

// WalletProfile is the metadata shown in the wallet connection modal
type WalletProfile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	Icon        string `yaml:"icon"`
}

// For returns the section for platform ("android" or "ios").
func (p *Profile) For(platform string) PlatformProfile {
	if platform == "ios" {
		return p.IOS
	}
	return p.Android
}

// LoadProfile loads the profile from a YAML file, falling back to the defaults
// when the file does not exist. Fields missing from the file keep their defaults.
func LoadProfile(path string) (*Profile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return profile, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return profile, nil
}

// DefaultProfile returns the production profile
func DefaultProfile() *Profile {
	const (
		contentURL    = "https://www.coquiz.space/0_v1/index.php"
		updateInfoURL = "https://www.coquiz.space/0_v1/app_update_info.php"
	)
	return &Profile{
		VersionEndpoint: "https://conut-backend-c9308ac7120b.herokuapp.com/minimum-version/coquiz",
		Android: PlatformProfile{
			ContentURL:    contentURL,
			UpdateInfoURL: updateInfoURL,
			AdUnits: AdUnits{
				Rewarded:   "ca-app-pub-8020861757941184/8745214789",
				Fullscreen: "ca-app-pub-8020861757941184/2019946061",
			},
		},
		IOS: PlatformProfile{
			ContentURL:    contentURL,
			UpdateInfoURL: updateInfoURL,
			AdUnits: AdUnits{
				Rewarded:   "ca-app-pub-8020861757941184/2578164204",
				Fullscreen: "ca-app-pub-8020861757941184/2614842436",
			},
		},
		Wallet: WalletProfile{
			Name:        "COQUIZ",
			Description: "COQUIZ",
			URL:         "https://www.coquiz.space",
		},
	}
}
