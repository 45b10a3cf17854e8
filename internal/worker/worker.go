// Package worker implements the capture worker: the single dedicated
// goroutine that owns the capture stream, resampler and VAD and applies
// start/stop commands, grounded on the onSamples callback loop in
// cmd/agent/main.go but restructured around an explicit command inbox
// instead of an inline closure, since here the worker also owns session
// lifecycle (start/stop/shutdown), not just continuous RMS gating.
package worker

import (
	"github.com/open-dictation/dictd/internal/logging"
	"github.com/open-dictation/dictd/internal/spectrum"
	"github.com/open-dictation/dictd/internal/vad"
)

// SampleSource is the capability the worker needs from the capture stream:
// a channel of raw mono f32 chunks at 16 kHz. audiopipe.Stream implements
// this; tests substitute a fake channel.
type SampleSource interface {
	Samples() <-chan []float32
}

// Resampler is the capability the worker needs from the frame resampler.
// audiopipe.Resampler implements this.
type Resampler interface {
	Push(chunk []float32) [][]float32
	Finish() []float32
}

// segmentTrigger is the periodic streaming trigger threshold: ~1s of
// accumulated speech.
const segmentTrigger = 16000

// SpeechChunkFunc is invoked once per emitted speech chunk (on segment
// boundary or periodic trigger), always from the worker's own goroutine.
type SpeechChunkFunc func(samples []float32)

// SpectrumFunc receives the 16-bucket visualization side-output. It is
// invoked from a dedicated dispatch goroutine, never from the frame loop;
// while a call is still running, newer buckets are dropped.
type SpectrumFunc func(buckets [16]float32)

type command int

const (
	cmdStart command = iota
	cmdStop
	cmdShutdown
)

type request struct {
	cmd   command
	reply chan []float32
}

// Worker is the single dedicated goroutine that drives capture.
type Worker struct {
	stream    SampleSource
	resampler Resampler
	detector  vad.Detector
	log       logging.Logger

	onSpeechChunk SpeechChunkFunc
	onSpectrum    SpectrumFunc
	spec          *spectrum.Analyzer
	spectrumCh    chan [16]float32

	inbox chan request

	recording        bool
	processedSamples []float32
	segmentBuffer    []float32
	rawSinceBucket   int
}

// Config wires the worker's collaborators.
type Config struct {
	Stream        SampleSource
	Resampler     Resampler
	Detector      vad.Detector
	Log           logging.Logger
	OnSpeechChunk SpeechChunkFunc
	OnSpectrum    SpectrumFunc
}

// New constructs a Worker; call Run in its own goroutine to start serving
// the command inbox and audio samples.
func New(cfg Config) *Worker {
	log := cfg.Log
	if log == nil {
		log = logging.NoOpLogger{}
	}
	return &Worker{
		stream:        cfg.Stream,
		resampler:     cfg.Resampler,
		detector:      cfg.Detector,
		log:           log,
		onSpeechChunk: cfg.OnSpeechChunk,
		onSpectrum:    cfg.OnSpectrum,
		spec:          spectrum.NewAnalyzer(),
		spectrumCh:    make(chan [16]float32, 1),
		inbox:         make(chan request, 4),
	}
}

// Start requests the worker begin feeding frames into the VAD pipeline.
// Non-blocking; actual state change happens on the worker's goroutine.
func (w *Worker) Start() {
	w.inbox <- request{cmd: cmdStart}
}

// Stop requests the worker flush and drain, returning the full
// session-wide sample buffer: the resampler is flushed, any remaining
// segment is drained, and the accumulated speech samples are handed back.
func (w *Worker) Stop() []float32 {
	reply := make(chan []float32, 1)
	w.inbox <- request{cmd: cmdStop, reply: reply}
	return <-reply
}

// Shutdown stops the worker's goroutine permanently.
func (w *Worker) Shutdown() {
	w.inbox <- request{cmd: cmdShutdown}
}

// Run is the worker's main loop: it must be invoked exactly once, in its
// own goroutine. It owns the capture stream, resampler and VAD state
// exclusively — no other goroutine may touch them.
func (w *Worker) Run() {
	if w.onSpectrum != nil {
		go w.dispatchSpectrum()
	}
	defer func() {
		if w.onSpectrum != nil {
			close(w.spectrumCh)
		}
	}()

	for {
		select {
		case req, ok := <-w.inbox:
			if !ok {
				return
			}
			switch req.cmd {
			case cmdStart:
				w.recording = true
				w.processedSamples = nil
				w.segmentBuffer = nil
				w.detector.Reset()
			case cmdStop:
				flushed := w.resampler.Finish()
				if flushed != nil {
					w.processFrame(flushed)
				}
				if len(w.segmentBuffer) > 0 {
					w.emitSegment()
				}
				w.recording = false
				req.reply <- w.processedSamples
			case cmdShutdown:
				return
			}

		case chunk, ok := <-w.stream.Samples():
			if !ok {
				return
			}
			w.rawSinceBucket += len(chunk)
			if w.onSpectrum != nil {
				w.spec.Feed(chunk)
				if w.rawSinceBucket >= spectrum.WindowSize {
					w.rawSinceBucket -= spectrum.WindowSize
					buckets := w.spec.Compute()
					select {
					case w.spectrumCh <- buckets:
					default:
						// a slow subscriber drops buckets rather than
						// piling up goroutines or blocking the hot path
					}
				}
			}

			if !w.recording {
				continue
			}
			for _, frame := range w.resampler.Push(chunk) {
				w.processFrame(frame)
			}
		}
	}
}

// dispatchSpectrum is the single goroutine that delivers spectrum
// buckets to onSpectrum, decoupling a slow subscriber from the capture
// hot path without spawning a goroutine per tick.
func (w *Worker) dispatchSpectrum() {
	for buckets := range w.spectrumCh {
		w.onSpectrum(buckets)
	}
}

// processFrame runs one frame through the detector, accumulates any
// speech samples, and checks whether a segment or periodic trigger
// boundary has been reached.
func (w *Worker) processFrame(frame []float32) {
	if !w.recording {
		return
	}

	decision := w.detector.PushFrame(frame)
	if decision.IsSpeech() {
		w.processedSamples = append(w.processedSamples, decision.Speech...)
		w.segmentBuffer = append(w.segmentBuffer, decision.Speech...)
	}

	switch w.detector.CheckSegmentBoundary() {
	case vad.SegmentComplete:
		if len(w.segmentBuffer) > 0 {
			w.emitSegment()
		}
	default:
		if len(w.segmentBuffer) >= segmentTrigger {
			w.emitSegment()
		}
	}
}

func (w *Worker) emitSegment() {
	chunk := w.segmentBuffer
	w.segmentBuffer = nil
	if w.onSpeechChunk != nil {
		w.onSpeechChunk(chunk)
	}
}
