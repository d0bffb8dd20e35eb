// Package settings loads and saves the user preferences file and projects it
// into the small configuration values each component takes.
package settings

import (
	"github.com/aretw0/worklog/pkg/dock"
	"github.com/aretw0/worklog/pkg/timer"
)

// FileName is the default settings file inside the data directory.
const FileName = "settings.json"

// Settings mirrors the preferences file.
type Settings struct {
	Theme  string         `json:"theme" yaml:"theme"`
	Timer  TimerSettings  `json:"timer" yaml:"timer"`
	Window WindowSettings `json:"window" yaml:"window"`
}

// TimerSettings holds the pomodoro defaults, in minutes.
type TimerSettings struct {
	WorkDuration  int  `json:"work_duration" yaml:"work_duration"`
	BreakDuration int  `json:"break_duration" yaml:"break_duration"`
	SoundEnabled  bool `json:"sound_enabled" yaml:"sound_enabled"`
}

// WindowSettings holds the panel preferences.
type WindowSettings struct {
	Width           int     `json:"width" yaml:"width"`
	Height          int     `json:"height" yaml:"height"`
	Opacity         float64 `json:"opacity" yaml:"opacity"`
	AlwaysOnTop     bool    `json:"always_on_top" yaml:"always_on_top"`
	AutoStart       bool    `json:"auto_start" yaml:"auto_start"`
	AutoHide        bool    `json:"auto_hide" yaml:"auto_hide"`
	ShowNoteActions bool    `json:"show_note_actions" yaml:"show_note_actions"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Theme: "light_glass",
		Timer: TimerSettings{
			WorkDuration:  25,
			BreakDuration: 5,
			SoundEnabled:  true,
		},
		Window: WindowSettings{
			Width:           300,
			Height:          500,
			Opacity:         1.0,
			AlwaysOnTop:     true,
			AutoStart:       false,
			AutoHide:        true,
			ShowNoteActions: true,
		},
	}
}

// DockConfig projects the fields the dock controller needs.
func (s Settings) DockConfig() dock.Config {
	cfg := dock.DefaultConfig()
	cfg.AutoHide = s.Window.AutoHide
	return cfg
}

// TimerConfig projects the fields the timer engine needs. Non-positive
// durations fall back to the defaults.
func (s Settings) TimerConfig() timer.Config {
	cfg := timer.DefaultConfig()
	if s.Timer.WorkDuration > 0 {
		cfg.WorkMinutes = s.Timer.WorkDuration
	}
	if s.Timer.BreakDuration > 0 {
		cfg.BreakMinutes = s.Timer.BreakDuration
	}
	cfg.SoundEnabled = s.Timer.SoundEnabled
	return cfg
}
