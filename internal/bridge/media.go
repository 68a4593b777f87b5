package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// VibrationGap is the fixed "off" duration placed before every pulse and after the last one.
const VibrationGap = 400

type filePayload struct {
	File string `json:"file"`
}

type vibratePayload struct {
	Pattern string `json:"pattern"`
}

// BuildVibrationPattern turns a comma-separated list of "on" durations into an
// alternating off/on sequence: a VibrationGap before each term plus one trailing gap.
// "500,1000" -> [400 500 400 1000 400]. An empty list returns nil, meaning the
// single default pulse.
func BuildVibrationPattern(list string) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	terms := strings.Split(list, ",")
	pattern := make([]int, 0, len(terms)*2+1)
	for _, term := range terms {
		ms, err := strconv.Atoi(strings.TrimSpace(term))
		if err != nil {
			return nil, fmt.Errorf("invalid vibration term %q: %w", term, err)
		}
		pattern = append(pattern, VibrationGap, ms)
	}
	return append(pattern, VibrationGap), nil
}

func (b *Bridge) handleVibrateStart(ctx context.Context, msg *Message) error {
	if !b.session.Settings.VibrateEnabled() {
		return nil
	}

	var p vibratePayload
	if msg.HasValue() {
		if err := msg.DecodeValue(&p); err != nil {
			return err
		}
	}
	pattern, err := BuildVibrationPattern(p.Pattern)
	if err != nil {
		b.logger.Warn("vibration_pattern_invalid", "pattern", p.Pattern, "error", err.Error())
	}
	if len(pattern) == 0 {
		return b.caps.Vibration.Vibrate(ctx)
	}
	return b.caps.Vibration.VibratePattern(ctx, pattern)
}

func (b *Bridge) handleSoundStart(ctx context.Context, msg *Message) error {
	if !b.session.Settings.SoundEnabled() {
		return nil
	}
	var p filePayload
	if err := msg.DecodeValue(&p); err != nil {
		return err
	}
	if err := b.caps.Sound.PlayEffect(ctx, p.File+".mp3"); err != nil {
		return fmt.Errorf("play sound effect: %w", err)
	}
	return nil
}

func (b *Bridge) handleBGMStart(ctx context.Context, msg *Message) error {
	var p filePayload
	if err := msg.DecodeValue(&p); err != nil {
		return err
	}
	b.session.BackgroundTrack = p.File
	b.setBackground(ctx, BackgroundStart)
	return nil
}

func (b *Bridge) backgroundHandler(status BackgroundStatus) handlerFunc {
	return func(ctx context.Context, msg *Message) error {
		b.setBackground(ctx, status)
		return nil
	}
}

// setBackground records the requested status and drives the player.
// Start and resume only play while background music is enabled.
func (b *Bridge) setBackground(ctx context.Context, status BackgroundStatus) {
	b.session.BackgroundStatus = status

	var err error
	switch status {
	case BackgroundStart:
		if b.session.Settings.BGMEnabled() {
			err = b.caps.Audio.Play(ctx, b.session.BackgroundTrack)
		}
	case BackgroundResume:
		if b.session.Settings.BGMEnabled() {
			err = b.caps.Audio.Resume(ctx)
		}
	case BackgroundStop:
		err = b.caps.Audio.Stop(ctx)
	case BackgroundPause:
		err = b.caps.Audio.Pause(ctx)
	}
	if err != nil {
		b.logger.Warn("background_audio_failed",
			"status", status,
			"track", b.session.BackgroundTrack,
			"error", err.Error(),
		)
	}
}

// BackgroundTrackFinished loops the current track while it is meant to be playing.
func (b *Bridge) BackgroundTrackFinished(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := b.session.BackgroundStatus
	if status != BackgroundStart && status != BackgroundResume {
		return
	}
	if !b.session.Settings.BGMEnabled() {
		return
	}
	if err := b.caps.Audio.Play(ctx, b.session.BackgroundTrack); err != nil {
		b.logger.Warn("background_loop_failed", "track", b.session.BackgroundTrack, "error", err.Error())
	}
}
