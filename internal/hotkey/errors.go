package hotkey

import "errors"

var (
	// ErrHotkeyRegistrationFailed propagates from a binding-change command;
	// the health checker also logs it on periodic re-registration attempts.
	ErrHotkeyRegistrationFailed = errors.New("hotkey: registration failed")
	// ErrModifierOnlyBinding is a validation failure before registration:
	// a binding string with no non-modifier token.
	ErrModifierOnlyBinding = errors.New("hotkey: binding must contain at least one non-modifier key")
	// ErrDuplicateChord means the chord is already registered under
	// another binding id.
	ErrDuplicateChord = errors.New("hotkey: chord already registered")
)
