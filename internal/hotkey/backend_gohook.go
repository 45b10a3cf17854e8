package hotkey

import (
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// GohookBackend implements Backend over robotn/gohook's global keyboard
// hook. gohook has no native concept of a "chord" registration the way
// Tauri's global-shortcut plugin does, so this tracks the modifier set
// and trigger key for each registered chord itself and evaluates them
// against gohook's raw key-down/key-up event stream.
type GohookBackend struct {
	mu       sync.Mutex
	bindings map[string]*chordBinding // chord -> binding
	started  bool
}

type chordBinding struct {
	modifiers map[string]bool
	key       string
	onEvent   func(KeyEvent)
	pressed   bool // whether the full chord is currently considered down
}

// NewGohookBackend constructs an idle backend; call Start to begin
// listening for raw OS key events.
func NewGohookBackend() *GohookBackend {
	return &GohookBackend{bindings: make(map[string]*chordBinding)}
}

// Start begins gohook's global event loop in its own goroutine.
func (b *GohookBackend) Start() {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	evChan := hook.Start()
	go func() {
		for ev := range evChan {
			b.handleRawEvent(ev)
		}
	}()
}

// Stop ends gohook's event loop.
func (b *GohookBackend) Stop() {
	hook.End()
}

func (b *GohookBackend) handleRawEvent(ev hook.Event) {
	var direction KeyEvent
	switch ev.Kind {
	case hook.KeyDown:
		direction = KeyDown
	case hook.KeyUp:
		direction = KeyUp
	default:
		return
	}

	key := strings.ToLower(hook.RawcodeToKeychar(ev.Rawcode))

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cb := range b.bindings {
		if cb.key != key {
			continue
		}
		if !cb.modifiers[""] && !modifiersSatisfied(cb.modifiers, ev) {
			continue
		}
		cb.onEvent(direction)
	}
}

func modifiersSatisfied(mods map[string]bool, ev hook.Event) bool {
	if mods["ctrl"] && ev.Mask&hook.MaskCtrl == 0 {
		return false
	}
	if mods["shift"] && ev.Mask&hook.MaskShift == 0 {
		return false
	}
	if mods["alt"] && ev.Mask&hook.MaskAlt == 0 {
		return false
	}
	if mods["meta"] && ev.Mask&hook.MaskMeta == 0 {
		return false
	}
	return true
}

// Register parses chord (e.g. "ctrl+space") and installs it.
func (b *GohookBackend) Register(chord string, onEvent func(KeyEvent)) error {
	mods, key := parseChord(chord)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings[chord] = &chordBinding{modifiers: mods, key: key, onEvent: onEvent}
	return nil
}

// Unregister removes chord.
func (b *GohookBackend) Unregister(chord string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bindings, chord)
	return nil
}

// IsRegistered reports whether chord is currently installed. gohook gives
// no OS-level "is this still live" signal (unlike Tauri's global-shortcut
// plugin), so this reports our own bookkeeping; real OS-level drops (e.g.
// after a sleep/wake cycle) are caught by re-registering unconditionally
// from the health check if this ever returns false.
func (b *GohookBackend) IsRegistered(chord string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.bindings[chord]
	return ok
}

func parseChord(chord string) (map[string]bool, string) {
	mods := make(map[string]bool)
	var key string
	for _, part := range strings.Split(chord, "+") {
		token := strings.ToLower(strings.TrimSpace(part))
		switch token {
		case "ctrl", "control":
			mods["ctrl"] = true
		case "shift":
			mods["shift"] = true
		case "alt", "option":
			mods["alt"] = true
		case "meta", "command", "cmd", "super", "win", "windows":
			mods["meta"] = true
		default:
			key = token
		}
	}
	return mods, key
}
