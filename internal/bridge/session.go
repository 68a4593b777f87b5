package bridge

import (
	"time"

	"coquiz/internal/settings"
)

// BackgroundStatus is the requested state of the background music player.
type BackgroundStatus string

const (
	BackgroundStart  BackgroundStatus = "start"
	BackgroundStop   BackgroundStatus = "stop"
	BackgroundPause  BackgroundStatus = "pause"
	BackgroundResume BackgroundStatus = "resume"
)

// AppState mirrors the host's foreground state.
type AppState string

const (
	AppActive     AppState = "active"
	AppInactive   AppState = "inactive"
	AppBackground AppState = "background"
)

// DefaultBackgroundTrack plays until the content picks another one.
const DefaultBackgroundTrack = "bgm_normal"

// AdRetryDelay is how long an ad request waits for a reload before its single retry.
const AdRetryDelay = 5 * time.Second

// Session is the state the bridge keeps for the lifetime of the attached content.
// Member id and ad type are overwritten by every command carrying them.
type Session struct {
	UserIdentifier   string
	PushToken        *string
	ActiveMemberID   string
	ActiveAdType     string
	Settings         settings.Settings
	WalletPending    bool
	BackgroundTrack  string
	BackgroundStatus BackgroundStatus
	AppState         AppState
	Online           bool
}

func newSession() Session {
	return Session{
		Settings:         settings.Defaults(),
		BackgroundTrack:  DefaultBackgroundTrack,
		BackgroundStatus: BackgroundStop,
		AppState:         AppActive,
		Online:           true,
	}
}

// Clock schedules the ad retry. Replaced in tests.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
