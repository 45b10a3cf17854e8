package hotkey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/open-dictation/dictd/internal/logging"
)

// healthCheckInterval matches original_source/.../shortcut.rs's
// std::thread::sleep(Duration::from_secs(10)) cadence.
const healthCheckInterval = 10 * time.Second

// Backend is the OS-integration capability Manager depends on: register/
// unregister a chord and report whether it's currently registered. The
// concrete implementation (backend_gohook.go) wraps robotn/gohook;
// Manager itself never touches an OS hotkey API directly, so its
// registration/health-check/dispatch logic is testable without one.
type Backend interface {
	Register(chord string, onEvent func(KeyEvent)) error
	Unregister(chord string) error
	IsRegistered(chord string) bool
}

// Manager owns the set of configured bindings, validates and registers
// them against a Backend, drives the StateMachine, and runs the periodic
// health check.
type Manager struct {
	backend Backend
	sm      *StateMachine
	log     logging.Logger

	mu       sync.Mutex
	bindings map[string]Binding // id -> binding
	chords   map[string]string  // chord -> id, for duplicate detection
}

// NewManager constructs a Manager. sm.OnStart/OnStop should already be
// wired by the caller (typically the session controller) before bindings
// are registered.
func NewManager(backend Backend, sm *StateMachine, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NoOpLogger{}
	}
	return &Manager{
		backend:  backend,
		sm:       sm,
		log:      log,
		bindings: make(map[string]Binding),
		chords:   make(map[string]string),
	}
}

// Register validates and registers a binding, rejecting modifier-only
// chords and chords that would duplicate an already-registered one.
func (m *Manager) Register(b Binding) error {
	if err := Validate(b.Chord); err != nil {
		return err
	}

	m.mu.Lock()
	if owner, exists := m.chords[b.Chord]; exists && owner != b.ID {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q already bound to %q", ErrDuplicateChord, b.Chord, owner)
	}
	m.mu.Unlock()

	if err := m.backend.Register(b.Chord, func(ev KeyEvent) {
		m.sm.Dispatch(b, ev)
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrHotkeyRegistrationFailed, err)
	}

	m.mu.Lock()
	m.bindings[b.ID] = b
	m.chords[b.Chord] = b.ID
	m.mu.Unlock()
	return nil
}

// Unregister removes a binding.
func (m *Manager) Unregister(id string) error {
	m.mu.Lock()
	b, ok := m.bindings[id]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.bindings, id)
	delete(m.chords, b.Chord)
	m.mu.Unlock()

	return m.backend.Unregister(b.Chord)
}

// RunHealthCheck blocks, re-registering any binding the OS no longer
// reports as registered, until ctx is cancelled.
func (m *Manager) RunHealthCheck(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.verifyAndReregister()
		}
	}
}

func (m *Manager) verifyAndReregister() {
	m.mu.Lock()
	snapshot := make([]Binding, 0, len(m.bindings))
	for _, b := range m.bindings {
		snapshot = append(snapshot, b)
	}
	m.mu.Unlock()

	for _, b := range snapshot {
		if m.backend.IsRegistered(b.Chord) {
			continue
		}
		m.log.Warn("health check: binding not registered, re-registering", "id", b.ID, "chord", b.Chord)
		if err := m.backend.Register(b.Chord, func(ev KeyEvent) {
			m.sm.Dispatch(b, ev)
		}); err != nil {
			m.log.Error("health check: failed to re-register binding", "id", b.ID, "error", err)
		}
	}
}
