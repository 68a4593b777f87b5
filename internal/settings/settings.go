package settings

import (
	"context"
	"encoding/json"
	"fmt"
)

// StorageKey is the fixed key the settings record is stored under.
const StorageKey = "setting"

// toggle values used by the web content
const (
	On  = "1"
	Off = "0"
)

// Settings is the persisted set of user toggles.
// Every field holds On or Off.
type Settings struct {
	BGM     string `json:"bgm"`     // background music
	Sound   string `json:"sound"`   // sound effects
	Vibrate string `json:"vibrate"` // vibration feedback
	Push    string `json:"push"`    // push notifications
}

// Defaults returns the settings used when nothing has been stored yet: all enabled.
func Defaults() Settings {
	return Settings{
		BGM:     On,
		Sound:   On,
		Vibrate: On,
		Push:    On,
	}
}

// Patch is a partial update sent by the content. Nil fields keep the current value.
type Patch struct {
	BGM     *string `json:"bgm,omitempty"`
	Sound   *string `json:"sound,omitempty"`
	Vibrate *string `json:"vibrate,omitempty"`
	Push    *string `json:"push,omitempty"`
}

// Merge returns a copy of s with every non-nil field of p applied.
func (s Settings) Merge(p Patch) Settings {
	if p.BGM != nil {
		s.BGM = *p.BGM
	}
	if p.Sound != nil {
		s.Sound = *p.Sound
	}
	if p.Vibrate != nil {
		s.Vibrate = *p.Vibrate
	}
	if p.Push != nil {
		s.Push = *p.Push
	}
	return s
}

func (s Settings) BGMEnabled() bool     { return s.BGM == On }
func (s Settings) SoundEnabled() bool   { return s.Sound == On }
func (s Settings) VibrateEnabled() bool { return s.Vibrate == On }
func (s Settings) PushEnabled() bool    { return s.Push == On }

// Store persists the settings record as a single flat JSON blob.
// Load returns (nil, nil) when no record has been saved yet.
type Store interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s Settings) error
	Close() error
}

func encode(s Settings) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}
	return string(data), nil
}

func decode(raw string) (*Settings, error) {
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &s, nil
}
