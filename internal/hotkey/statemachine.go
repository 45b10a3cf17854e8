package hotkey

import "sync"

// bindingState is the per-binding session: whether the key is currently
// held, and (toggle mode only) whether the binding is active.
type bindingState struct {
	mu      sync.Mutex
	keyHeld bool
	active  bool // toggle mode only
}

// StateMachine turns raw KeyDown/KeyUp events into start/stop dispatch,
// per binding, according to each binding's Mode. It holds no OS-specific
// state; Manager wires it to a Backend.
type StateMachine struct {
	mu       sync.Mutex
	sessions map[string]*bindingState

	OnStart func(binding Binding)
	OnStop  func(binding Binding)
}

// NewStateMachine constructs an empty StateMachine.
func NewStateMachine() *StateMachine {
	return &StateMachine{sessions: make(map[string]*bindingState)}
}

func (s *StateMachine) sessionFor(id string) *bindingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	if !ok {
		st = &bindingState{}
		s.sessions[id] = st
	}
	return st
}

// Dispatch interprets one raw key event for binding according to its
// Mode. The binding's own bindingState mutex serializes its transitions,
// so two bindings can be dispatched concurrently without interfering.
func (s *StateMachine) Dispatch(binding Binding, event KeyEvent) {
	st := s.sessionFor(binding.ID)
	st.mu.Lock()
	defer st.mu.Unlock()

	switch binding.Mode {
	case PushToTalk:
		s.dispatchPTT(st, binding, event)
	case Toggle:
		s.dispatchToggle(st, binding, event)
	}
}

func (s *StateMachine) dispatchPTT(st *bindingState, binding Binding, event KeyEvent) {
	switch event {
	case KeyDown:
		// auto-repeat suppression: ignore KeyDown while already held
		if st.keyHeld {
			return
		}
		st.keyHeld = true
		if s.OnStart != nil {
			s.OnStart(binding)
		}
	case KeyUp:
		st.keyHeld = false
		if s.OnStop != nil {
			s.OnStop(binding)
		}
	}
}

func (s *StateMachine) dispatchToggle(st *bindingState, binding Binding, event KeyEvent) {
	switch event {
	case KeyDown:
		// auto-repeat suppression: ignore KeyDown while already held
		if st.keyHeld {
			return
		}
		st.keyHeld = true
		st.active = !st.active
		if st.active {
			if s.OnStart != nil {
				s.OnStart(binding)
			}
		} else {
			if s.OnStop != nil {
				s.OnStop(binding)
			}
		}
	case KeyUp:
		// KeyUp in toggle mode performs no action beyond clearing key_held
		st.keyHeld = false
	}
}

// Reset clears all per-binding session state (used on shutdown/reload).
func (s *StateMachine) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*bindingState)
}
