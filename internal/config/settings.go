// Package config holds the settings the core pipeline reads. Full
// persistence (the SQLite history/profile/tag stores) is an external
// concern; this package only owns the small YAML document that carries
// the user-facing bindings and provider settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputMode selects whether a finalized transcript is pasted verbatim or
// first rewritten by the external LLM post-processor.
type OutputMode string

const (
	OutputModeTranscript  OutputMode = "transcript"
	OutputModeGhostwriter OutputMode = "ghostwriter"
)

// Binding is one hotkey-to-action mapping.
type Binding struct {
	ID             string `yaml:"id"`
	CurrentBinding string `yaml:"current_binding"`
	DefaultBinding string `yaml:"default_binding"`
	Action         string `yaml:"action"`
}

// Settings is the subset of persisted configuration the core pipeline
// consumes. Everything else (sound theme, autostart, tray preferences) is
// owned by the external settings store and never reaches this module.
type Settings struct {
	PushToTalk          bool               `yaml:"push_to_talk"`
	AlwaysOnMicrophone  bool               `yaml:"always_on_microphone"`
	SelectedMicrophone  string             `yaml:"selected_microphone"`
	MuteWhileRecording  bool               `yaml:"mute_while_recording"`
	OutputMode          OutputMode         `yaml:"output_mode"`
	MinWordsToInterrupt int                `yaml:"min_words_to_interrupt"`
	Bindings            map[string]Binding `yaml:"bindings"`
}

// Default returns sensible defaults: push-to-talk, on-demand microphone,
// plain transcript output, one PTT binding on the default chord.
func Default() Settings {
	return Settings{
		PushToTalk:         true,
		AlwaysOnMicrophone: false,
		OutputMode:         OutputModeTranscript,
		Bindings: map[string]Binding{
			"transcribe": {
				ID:             "transcribe",
				CurrentBinding: "ctrl+space",
				DefaultBinding: "ctrl+space",
				Action:         "transcribe",
			},
		},
	}
}

// Load reads Settings from a YAML file. A missing file is not an error:
// callers get Default() back so the daemon can run before any settings
// file has ever been written.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

// Save writes Settings back out as YAML.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
