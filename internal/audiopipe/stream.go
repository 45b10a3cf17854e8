// Package audiopipe owns the microphone end of the pipeline: opening the
// capture device and resampling its raw callback chunks into fixed
// 30ms/480-sample mono f32 frames. It is adapted from cmd/agent/main.go's
// malgo duplex setup, narrowed to capture-only and reshaped around a
// channel instead of an inline closure, since here there is no playback
// side to coordinate with.
package audiopipe

import (
	"fmt"
	"math"

	"github.com/gen2brain/malgo"

	"github.com/open-dictation/dictd/internal/logging"
)

// SampleRate is the fixed capture rate the rest of the pipeline assumes.
const SampleRate = 16000

// Stream owns one malgo capture device and publishes raw float32 mono
// samples as they arrive. It does not itself chunk samples into frames —
// that's Resampler's job — since device callbacks deliver whatever
// frameCount the backend feels like, not a fixed size.
type Stream struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	log    logging.Logger

	samples chan []float32
	errs    chan error
}

// Config selects an input device; an empty DeviceID picks the OS default.
type Config struct {
	DeviceID string
	Log      logging.Logger
}

// Open initializes the capture context and device but does not start
// capturing; call Start to begin delivering samples.
func Open(cfg Config) (*Stream, error) {
	log := cfg.Log
	if log == nil {
		log = logging.NoOpLogger{}
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug("malgo backend message", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s := &Stream{
		ctx:     mctx,
		log:     log,
		samples: make(chan []float32, 64),
		errs:    make(chan error, 1),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = SampleRate
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: s.onSamples,
	})
	if err != nil {
		mctx.Uninit()
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	s.device = device

	return s, nil
}

func (s *Stream) onSamples(_, pInput []byte, frameCount uint32) {
	if pInput == nil || frameCount == 0 {
		return
	}
	out := make([]float32, frameCount)
	for i := range out {
		off := i * 4
		bits := uint32(pInput[off]) | uint32(pInput[off+1])<<8 | uint32(pInput[off+2])<<16 | uint32(pInput[off+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	select {
	case s.samples <- out:
	default:
		s.log.Warn("capture sample channel full, dropping chunk", "frames", frameCount)
	}
}

// Start begins capture; samples become available on Samples().
func (s *Stream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamFailed, err)
	}
	return nil
}

// Samples is the channel of raw capture chunks, each a slice of mono f32
// samples at SampleRate. Chunk sizes are backend-determined, not 480.
func (s *Stream) Samples() <-chan []float32 { return s.samples }

// Close stops capture and releases the device and context. Safe to call
// once; calling twice is the caller's bug, same as malgo's own Uninit.
func (s *Stream) Close() error {
	s.device.Uninit()
	s.ctx.Uninit()
	close(s.samples)
	return nil
}
