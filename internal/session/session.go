// Package session implements the session controller: it orchestrates
// the externally visible start/stop/cancel lifecycle,
// driving the capture worker and streaming coordinator and handing off to
// the external paste/overlay/history/LLM collaborators. Grounded on
// other_examples' bezmoradi-t2 Daemon.OnPress/OnRelease for the
// lifecycle shape (its quick-press discard heuristic in particular),
// reshaped around this system's F/D split instead of a
// single recorder+streaming-client pair.
package session

import (
	"context"
	"time"

	"github.com/open-dictation/dictd/internal/logging"
)

// Action identifies what a started session does when it stops. The set
// is a small closed enumeration, mirroring hotkey.Action one level up
// the call stack without importing the hotkey package.
type Action int

const (
	// ActionTranscribe runs the normal finalize pipeline: ASR fallback,
	// post-process, history, paste.
	ActionTranscribe Action = iota
	// ActionTest runs a mic check: it reports signal level and duration
	// and never reaches ASR, post-processing, history, or paste.
	ActionTest
)

// Session is the per-session record: the binding that started it, which
// action it is running, and when it started.
type Session struct {
	BindingID string
	Action    Action
	StartedAt time.Time
}

// quickPressThreshold is a supplemented discard heuristic from
// bezmoradi-t2's Daemon.OnRelease: sessions shorter than this are dropped
// before ever reaching the ASR. There is no amplitude-based discard; a
// quiet session of sufficient length is finalized normally.
const (
	quickPressThreshold = 800 * time.Millisecond
	minFinalTextLen     = 3 // shorter streaming text is replaced by one fallback ASR call
	preFinalYield       = 100 * time.Millisecond
)

// Coordinator is the capability the controller needs from the streaming
// coordinator.
type Coordinator interface {
	StartRecording()
	StopRecording()
	LatestText() string
}

// Worker is the capability the controller needs from the capture
// worker.
type Worker interface {
	Start()
	Stop() []float32
}

// ASR is the fallback single-shot transcription call, used when the
// streaming coordinator never accumulated enough committed text.
type ASR interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
}

// PostProcessor optionally rewrites the final text.
type PostProcessor interface {
	Process(ctx context.Context, text, instructions string) (string, error)
}

// Paste inserts the final text into the foreground application.
type Paste interface {
	Paste(text string) error
}

// History persists the finalized session (audio + text + metadata).
type History interface {
	Save(ctx context.Context, audio []float32, text string, duration time.Duration) error
}

// UI receives lifecycle notifications for tray/overlay rendering. All
// methods are best-effort; a UI error never aborts a session.
type UI interface {
	ShowRecording()
	ShowTranscribing()
	ShowGhostwriting()
	ShowIdle()
	ShowError(err error)
	PlayStartChime()
	PlayStopChime()
	// ShowMicTestResult reports the outcome of an ActionTest session:
	// peak sample amplitude and how long the test ran.
	ShowMicTestResult(peakAmplitude float32, duration time.Duration)
}

// IdleInhibit lets the controller inhibit the ASR engine's idle-unload
// while a session is active.
type IdleInhibit interface {
	Inhibit()
	Release()
}

// Config wires every collaborator the controller depends on.
type Config struct {
	Coordinator   Coordinator
	Worker        Worker
	ASR           ASR
	PostProcessor PostProcessor
	Paste         Paste
	History       History
	UI            UI
	IdleInhibit   IdleInhibit
	Log           logging.Logger

	// PostProcessInstructions is empty when output_mode is "transcript"
	// rather than "ghostwriter"; in that case post-processing is skipped
	// entirely.
	PostProcessInstructions func() string
}

// Controller drives the start/stop/cancel lifecycle for a session.
type Controller struct {
	cfg Config
	log logging.Logger

	active *Session
}

// New constructs a Controller.
func New(cfg Config) *Controller {
	log := cfg.Log
	if log == nil {
		log = logging.NoOpLogger{}
	}
	return &Controller{cfg: cfg, log: log}
}

// Start begins a new session for bindingID running the given action.
// Returns false if another session is already active.
func (c *Controller) Start(bindingID string, action Action) bool {
	if c.active != nil {
		return false
	}

	c.cfg.Coordinator.StartRecording()
	if c.cfg.IdleInhibit != nil {
		c.cfg.IdleInhibit.Inhibit()
	}
	if c.cfg.UI != nil {
		c.cfg.UI.ShowRecording()
		c.cfg.UI.PlayStartChime()
	}
	c.cfg.Worker.Start()

	c.active = &Session{BindingID: bindingID, Action: action, StartedAt: time.Now()}
	return true
}

// Stop finalizes the current session: stops recording, drains the
// worker, falls back to single-shot ASR if the streaming text is too
// short, optionally post-processes, persists history, and pastes.
func (c *Controller) Stop(ctx context.Context, bindingID string) {
	if c.active == nil || c.active.BindingID != bindingID {
		return
	}
	sess := c.active
	c.active = nil

	c.cfg.Coordinator.StopRecording()
	if c.cfg.IdleInhibit != nil {
		c.cfg.IdleInhibit.Release()
	}
	if c.cfg.UI != nil {
		c.cfg.UI.PlayStopChime()
		c.cfg.UI.ShowTranscribing()
	}

	samples := c.cfg.Worker.Stop()
	duration := time.Since(sess.StartedAt)

	if sess.Action == ActionTest {
		c.log.Info("session: mic test finished", "duration", duration, "peak", peakAmplitude(samples))
		if c.cfg.UI != nil {
			c.cfg.UI.ShowMicTestResult(peakAmplitude(samples), duration)
			c.cfg.UI.ShowIdle()
		}
		return
	}

	// supplemented discard heuristic (bezmoradi-t2 Daemon.OnRelease): a
	// press shorter than the quick-press threshold is almost certainly an
	// accidental tap, not dictation.
	if duration < quickPressThreshold {
		c.log.Info("session: quick press discarded", "duration", duration)
		if c.cfg.UI != nil {
			c.cfg.UI.ShowIdle()
		}
		return
	}

	time.Sleep(preFinalYield) // let the last in-flight transcription job land before reading final text

	final := c.cfg.Coordinator.LatestText()
	if len([]rune(final)) < minFinalTextLen {
		fallback, err := c.cfg.ASR.Transcribe(ctx, samples)
		if err != nil {
			c.log.Warn("session: fallback asr call failed, aborting", "error", err)
			if c.cfg.UI != nil {
				c.cfg.UI.ShowError(err)
				c.cfg.UI.ShowIdle()
			}
			return
		}
		final = fallback
	}

	if final == "" {
		if c.cfg.UI != nil {
			c.cfg.UI.ShowIdle()
		}
		return
	}

	rewritten := final
	if instructions := c.instructions(); instructions != "" && c.cfg.PostProcessor != nil {
		if c.cfg.UI != nil {
			c.cfg.UI.ShowGhostwriting()
		}
		if text, err := c.cfg.PostProcessor.Process(ctx, final, instructions); err != nil {
			c.log.Warn("session: post-process failed, falling back to asr text", "error", err)
			if c.cfg.UI != nil {
				c.cfg.UI.ShowError(err)
			}
		} else {
			rewritten = text
		}
	}

	if c.cfg.History != nil {
		if err := c.cfg.History.Save(ctx, samples, rewritten, duration); err != nil {
			c.log.Warn("session: failed to persist history", "error", err)
		}
	}

	if c.cfg.Paste != nil {
		if err := c.cfg.Paste.Paste(rewritten); err != nil {
			c.log.Warn("session: paste failed", "error", err)
		}
	}

	if c.cfg.UI != nil {
		c.cfg.UI.ShowIdle()
	}
}

// Cancel aborts any active session without finalizing: drop the buffer,
// restore idle UI.
func (c *Controller) Cancel() {
	if c.active == nil {
		return
	}
	c.active = nil
	c.cfg.Coordinator.StopRecording()
	if c.cfg.IdleInhibit != nil {
		c.cfg.IdleInhibit.Release()
	}
	c.cfg.Worker.Stop()
	if c.cfg.UI != nil {
		c.cfg.UI.ShowIdle()
	}
}

// peakAmplitude returns the largest absolute sample value in samples, or
// 0 for an empty buffer.
func peakAmplitude(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

func (c *Controller) instructions() string {
	if c.cfg.PostProcessInstructions == nil {
		return ""
	}
	return c.cfg.PostProcessInstructions()
}
