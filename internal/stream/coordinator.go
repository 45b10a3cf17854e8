// Package stream implements the streaming coordinator: it accumulates
// speech chunks into a sliding audio
// buffer, schedules windowed re-transcription against a single ASR slot,
// and reconciles overlapping transcription results into a stable display
// string.
//
// It is grounded on team-hashing-lokutor-orchestrator/pkg/orchestrator's
// ManagedStream: the generation-counter staleness check, the mutex-guarded
// scalar/buffer fields, and the non-blocking single-slot claim pattern are
// all adapted from ManagedStream.sttGeneration/isSpeaking/internalInterrupt,
// reshaped around this system's windowed-rewrite semantics instead of
// ManagedStream's interrupt-on-barge-in semantics.
package stream

import (
	"context"
	"sync"

	"github.com/open-dictation/dictd/internal/logging"
)

// NewAudioTrigger is the minimum amount of newly-accumulated speech (in
// samples, at 16 kHz) required to schedule a streaming transcription tick.
const NewAudioTrigger = 16000

// MaxWindowSeconds bounds the trailing window submitted to the ASR on each
// tick.
const MaxWindowSeconds = 10

const sampleRate = 16000

// windowMargin is the extra slack kept in audio_buffer beyond the window
// itself, so trimming doesn't happen exactly at the window boundary
// every tick.
const windowMargin = 2 * sampleRate

// ASREngine is the external collaborator this coordinator schedules jobs
// against. Implementations must be safe to call from any goroutine; the
// engine is expected to serialize internally and return "" on silence.
type ASREngine interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
	TranscribeWithPrompt(ctx context.Context, samples []float32, prompt string) (string, error)
}

// PartialFunc receives the coordinator's updated display string after
// each completed (non-stale) transcription job.
type PartialFunc func(text string)

// Coordinator is the singleton streaming state, owned by the session for
// its lifetime; reset on every start_recording.
type Coordinator struct {
	asr ASREngine
	log logging.Logger
	ctx context.Context

	onPartial PartialFunc

	// bufMu guards audioBuffer and lastTranscribedLen: writers must hold
	// it while mutating either.
	bufMu              sync.Mutex
	audioBuffer        []float32
	lastTranscribedLen int

	generation     int64 // guarded by transMu
	isTranscribing int32 // 0/1 single-slot CAS flag, guarded by transMu

	transMu sync.Mutex

	// textMu guards latest_text/committed_text: their read/write must be
	// mutually exclusive with a short, non-blocking critical section.
	textMu        sync.Mutex
	latestText    string
	committedText string

	recording bool
}

// New constructs a Coordinator. ctx bounds every ASR call spawned by
// OnSpeechChunk; cancelling it aborts in-flight jobs' context but does not
// retroactively un-apply an already-committed result.
func New(ctx context.Context, asr ASREngine, log logging.Logger, onPartial PartialFunc) *Coordinator {
	if log == nil {
		log = logging.NoOpLogger{}
	}
	return &Coordinator{asr: asr, log: log, ctx: ctx, onPartial: onPartial}
}

// StartRecording resets all streaming state and opens the session gate.
func (c *Coordinator) StartRecording() {
	c.bufMu.Lock()
	c.audioBuffer = nil
	c.lastTranscribedLen = 0
	c.bufMu.Unlock()

	c.transMu.Lock()
	c.generation = 0
	c.isTranscribing = 0
	c.transMu.Unlock()

	c.textMu.Lock()
	c.latestText = ""
	c.committedText = ""
	c.textMu.Unlock()

	c.recording = true
}

// StopRecording closes the session gate. Any ASR job already in flight is
// allowed to complete and update latest_text unless the generation check
// finds it stale.
func (c *Coordinator) StopRecording() {
	c.recording = false
}

// LatestText returns a snapshot of the current best display string.
func (c *Coordinator) LatestText() string {
	c.textMu.Lock()
	defer c.textMu.Unlock()
	return c.latestText
}

// OnSpeechChunk is invoked by the capture worker for every emitted
// speech chunk: it appends to the buffer, checks the periodic trigger,
// claims the single transcription slot, and (if available) spawns a
// transcription job against a trimmed trailing window.
func (c *Coordinator) OnSpeechChunk(samples []float32) {
	if !c.recording {
		return
	}

	c.bufMu.Lock()
	c.audioBuffer = append(c.audioBuffer, samples...)
	newSamples := len(c.audioBuffer) - c.lastTranscribedLen
	if newSamples < NewAudioTrigger {
		c.bufMu.Unlock()
		return
	}
	c.bufMu.Unlock()

	// step 4: claim the single transcription slot
	c.transMu.Lock()
	if c.isTranscribing != 0 {
		c.transMu.Unlock()
		return
	}
	c.isTranscribing = 1
	c.transMu.Unlock()

	c.bufMu.Lock()
	c.lastTranscribedLen = len(c.audioBuffer)

	maxBufferLen := MaxWindowSeconds*sampleRate + windowMargin
	if len(c.audioBuffer) > maxBufferLen {
		delta := len(c.audioBuffer) - maxBufferLen
		c.audioBuffer = c.audioBuffer[delta:]
		c.lastTranscribedLen -= delta
		if c.lastTranscribedLen < 0 {
			c.lastTranscribedLen = 0
		}
	}

	windowLen := MaxWindowSeconds * sampleRate
	if len(c.audioBuffer) < windowLen {
		windowLen = len(c.audioBuffer)
	}
	isWindowed := len(c.audioBuffer) > MaxWindowSeconds*sampleRate
	window := make([]float32, windowLen)
	copy(window, c.audioBuffer[len(c.audioBuffer)-windowLen:])
	c.bufMu.Unlock()

	c.transMu.Lock()
	gen := c.generation
	c.generation++
	c.transMu.Unlock()

	c.textMu.Lock()
	prompt := c.committedText
	c.textMu.Unlock()

	go c.runJob(gen, window, isWindowed, prompt)
}

func (c *Coordinator) runJob(gen int64, window []float32, isWindowed bool, prompt string) {
	var text string
	var err error
	if prompt != "" {
		text, err = c.asr.TranscribeWithPrompt(c.ctx, window, prompt)
	} else {
		text, err = c.asr.Transcribe(c.ctx, window)
	}
	if err != nil {
		c.log.Warn("streaming asr job failed, absorbing", "error", err)
		c.clearTranscribing()
		return
	}

	c.transMu.Lock()
	current := c.generation
	c.transMu.Unlock()
	if gen+1 < current {
		// stale: a newer job has already been scheduled or completed
		c.clearTranscribing()
		return
	}

	if text == "" {
		c.clearTranscribing()
		return
	}

	c.textMu.Lock()
	var display string
	if !isWindowed {
		display = text
	} else {
		prevLatest := c.latestText
		if prevLatest != "" {
			c.committedText = prevLatest
		}
		display = MergeOverlapping(c.committedText, text)
	}
	c.latestText = display
	c.textMu.Unlock()

	if c.onPartial != nil {
		c.onPartial(display)
	}
	c.clearTranscribing()
}

func (c *Coordinator) clearTranscribing() {
	c.transMu.Lock()
	c.isTranscribing = 0
	c.transMu.Unlock()
}
