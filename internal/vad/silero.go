//go:build silero

package vad

// Silero provides a neural inner Engine backed by ONNX Runtime, as an
// opt-in alternative to RMSEngine. It is adapted from
// nupi-ai-plugin-vad-local-silero/internal/engine/silero.go: same fixed
// 512-sample/16kHz window and [2,1,128] recurrent state tensor, but
// reshaped to satisfy this module's Engine interface (IsVoice/Reset/Name)
// instead of that plugin's ProcessChunk/Reset/Close gRPC-facing Engine.
//
// Built only with -tags silero, since it requires the onnxruntime shared
// library to be present at runtime; the default build uses RMSEngine.
import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	sileroWindowSize = 512 // 32ms at 16kHz, the model's native window
	sileroStateSize  = 128
)

var (
	sileroInitOnce sync.Once
	sileroInitErr  error
)

// Silero runs Silero VAD v5 inference via ONNX Runtime. Frames arrive at
// FrameSize (480 samples / 30ms); Silero accumulates them into its native
// 512-sample window before running inference, carrying any remainder to
// the next call.
type Silero struct {
	session *ort.AdvancedSession

	inputTensor  *ort.Tensor[float32] // [1, 512]
	stateTensor  *ort.Tensor[float32] // [2, 1, 128]
	srTensor     *ort.Tensor[int64]   // scalar
	outputTensor *ort.Tensor[float32] // [1, 1]
	stateNTensor *ort.Tensor[float32] // [2, 1, 128]

	pcmBuf    []float32
	threshold float64
	modelPath string
	libPath   string
}

// NewSilero loads the given ONNX model and allocates the session's
// input/output tensors.
func NewSilero(modelPath, libPath string, threshold float64) (*Silero, error) {
	sileroInitOnce.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		sileroInitErr = ort.InitializeEnvironment()
	})
	if sileroInitErr != nil {
		return nil, fmt.Errorf("silero: initialize onnxruntime: %w", sileroInitErr)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, sileroWindowSize))
	if err != nil {
		return nil, fmt.Errorf("silero: input tensor: %w", err)
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroStateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("silero: state tensor: %w", err)
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{int64(FloatMonoSampleRate)})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, fmt.Errorf("silero: sample-rate tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, fmt.Errorf("silero: output tensor: %w", err)
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroStateSize))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("silero: state-out tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return nil, fmt.Errorf("silero: create session: %w", err)
	}

	return &Silero{
		session:      session,
		inputTensor:  inputTensor,
		stateTensor:  stateTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		stateNTensor: stateNTensor,
		threshold:    threshold,
		modelPath:    modelPath,
		libPath:      libPath,
	}, nil
}

// FloatMonoSampleRate mirrors pkg/audio.FloatMonoSampleRate without an
// import cycle; both must stay at 16000.
const FloatMonoSampleRate = 16000

func (s *Silero) IsVoice(frame []float32) bool {
	s.pcmBuf = append(s.pcmBuf, frame...)
	voice := false
	for len(s.pcmBuf) >= sileroWindowSize {
		window := s.pcmBuf[:sileroWindowSize]
		s.pcmBuf = s.pcmBuf[sileroWindowSize:]

		copy(s.inputTensor.GetData(), window)

		if err := s.session.Run(); err != nil {
			// a transient inference failure degrades to "no voice" rather
			// than panicking the capture worker
			continue
		}

		score := s.outputTensor.GetData()[0]
		copy(s.stateTensor.GetData(), s.stateNTensor.GetData())

		if float64(score) > s.threshold {
			voice = true
		}
	}
	return voice
}

func (s *Silero) Reset() {
	s.pcmBuf = s.pcmBuf[:0]
	for i := range s.stateTensor.GetData() {
		s.stateTensor.GetData()[i] = 0
	}
}

func (s *Silero) Name() string { return "silero" }

// Close releases the ONNX Runtime session and tensors.
func (s *Silero) Close() error {
	s.session.Destroy()
	s.inputTensor.Destroy()
	s.stateTensor.Destroy()
	s.srTensor.Destroy()
	s.outputTensor.Destroy()
	s.stateNTensor.Destroy()
	return nil
}
