// Package hotkey implements the hotkey state machine: PTT vs toggle
// semantics, auto-repeat suppression, binding validation and a periodic
// re-registration health check. It is a direct port of
// original_source/src-tauri/src/shortcut.rs's on_shortcut closure and
// verify_and_reregister_shortcuts, translated from Tauri's
// global-shortcut plugin callbacks into a Backend interface so the
// testable state-machine logic doesn't depend on any one OS-hotkey
// library's exact event shapes.
package hotkey

import "strings"

// Mode selects PTT vs toggle semantics for a binding.
type Mode int

const (
	PushToTalk Mode = iota
	Toggle
)

// KeyEvent is the direction of a raw hotkey event from the OS backend.
type KeyEvent int

const (
	KeyDown KeyEvent = iota
	KeyUp
)

// Action identifies what a binding does when triggered. The set of
// actions is a small closed enumeration, not a dynamically extensible
// registry.
type Action int

const (
	ActionTranscribe Action = iota
	ActionTest
)

// Binding is one configured hotkey chord plus its mode and action.
type Binding struct {
	ID     string
	Chord  string // e.g. "ctrl+space"
	Mode   Mode
	Action Action
}

var modifierTokens = map[string]bool{
	"ctrl": true, "control": true,
	"shift": true,
	"alt": true, "option": true,
	"meta": true, "command": true, "cmd": true, "super": true,
	"win": true, "windows": true,
}

// Validate checks the binding-string rule: at least one non-modifier
// token after splitting on '+'.
func Validate(chord string) error {
	parts := strings.Split(chord, "+")
	for _, p := range parts {
		token := strings.ToLower(strings.TrimSpace(p))
		if token != "" && !modifierTokens[token] {
			return nil
		}
	}
	return ErrModifierOnlyBinding
}
