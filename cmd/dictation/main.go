package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/open-dictation/dictd/internal/audiopipe"
	"github.com/open-dictation/dictd/internal/collab"
	"github.com/open-dictation/dictd/internal/config"
	"github.com/open-dictation/dictd/internal/hotkey"
	"github.com/open-dictation/dictd/internal/logging"
	"github.com/open-dictation/dictd/internal/session"
	"github.com/open-dictation/dictd/internal/stream"
	"github.com/open-dictation/dictd/internal/vad"
	"github.com/open-dictation/dictd/internal/worker"
)

func main() {
	var (
		configPath  = flag.String("config", "dictd.yaml", "path to the settings YAML file")
		logLevel    = flag.String("log-level", "info", "debug, info, warn, or error")
		sttName     = flag.String("stt", "groq", "groq, openai, or deepgram")
		llmName     = flag.String("llm", "", "openai, anthropic, or google; empty disables ghostwriter post-processing")
		vadName     = flag.String("vad", "rms", "rms, or silero (only in binaries built with -tags silero)")
		vadThresh   = flag.Float64("vad-threshold", 0.02, "voice threshold for the selected VAD engine")
		vadModel    = flag.String("vad-model", "", "path to the Silero ONNX model (silero engine only)")
		vadLib      = flag.String("vad-lib", "", "path to the onnxruntime shared library (silero engine only)")
		overlayAddr = flag.String("overlay-addr", "127.0.0.1:7711", "address the overlay renderer connects to over websocket")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "note: no .env file found, using system environment variables")
	}

	log := logging.New(*logLevel)

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	asrEngine, err := buildASR(*sttName)
	if err != nil {
		log.Error("failed to configure ASR provider", "error", err)
		os.Exit(1)
	}

	postProcessor := buildPostProcessor(*llmName)

	vadEngine, err := buildVADEngine(*vadName, *vadThresh, *vadModel, *vadLib)
	if err != nil {
		log.Error("failed to configure VAD engine", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ui := newOverlayUI(logging.With(log, "component", "overlay"))
	go ui.serve(ctx, *overlayAddr)

	coordLog := logging.With(log, "component", "coordinator")
	coord := stream.New(ctx, asrEngine, coordLog, ui.Partial)

	capture, err := audiopipe.Open(audiopipe.Config{
		DeviceID: settings.SelectedMicrophone,
		Log:      logging.With(log, "component", "capture"),
	})
	if err != nil {
		log.Error("failed to open capture device", "error", err)
		os.Exit(1)
	}
	defer capture.Close()

	detector := vad.NewDefaultSmoothed(vadEngine)

	w := worker.New(worker.Config{
		Stream:        capture,
		Resampler:     audiopipe.NewResampler(),
		Detector:      detector,
		Log:           logging.With(log, "component", "worker"),
		OnSpeechChunk: coord.OnSpeechChunk,
		OnSpectrum:    ui.MicLevel,
	})
	go w.Run()
	defer w.Shutdown()

	if err := capture.Start(); err != nil {
		log.Error("failed to start capture device", "error", err)
		os.Exit(1)
	}

	controller := session.New(session.Config{
		Coordinator:   coord,
		Worker:        w,
		ASR:           asrEngine,
		PostProcessor: postProcessor,
		Paste:         collab.ClipboardPaste{},
		History:       historyAdapter{collab.NoOpHistory{}},
		UI:            ui,
		IdleInhibit:   noopInhibit{},
		Log:           logging.With(log, "component", "session"),
		PostProcessInstructions: func() string {
			if settings.OutputMode != config.OutputModeGhostwriter {
				return ""
			}
			return "Rewrite the dictated text cleanly, fixing filler words and grammar, preserving meaning."
		},
	})

	sm := hotkey.NewStateMachine()
	sm.OnStart = func(b hotkey.Binding) { controller.Start(b.ID, sessionAction(b.Action)) }
	sm.OnStop = func(b hotkey.Binding) { controller.Stop(ctx, b.ID) }

	backend := hotkey.NewGohookBackend()
	backend.Start()
	defer backend.Stop()

	manager := hotkey.NewManager(backend, sm, logging.With(log, "component", "hotkey"))
	for _, b := range settings.Bindings {
		mode := hotkey.PushToTalk
		if !settings.PushToTalk {
			mode = hotkey.Toggle
		}
		action := hotkey.ActionTranscribe
		if b.Action == "test" {
			action = hotkey.ActionTest
		}
		binding := hotkey.Binding{ID: b.ID, Chord: b.CurrentBinding, Mode: mode, Action: action}
		if err := manager.Register(binding); err != nil {
			log.Error("failed to register hotkey binding", "id", b.ID, "error", err)
			os.Exit(1)
		}
	}
	go manager.RunHealthCheck(ctx)

	log.Info("dictation daemon started", "stt", *sttName, "llm", *llmName, "vad", *vadName, "push_to_talk", settings.PushToTalk)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
}

// sessionAction maps a hotkey binding's action onto the session
// package's own closed enum, keeping the two packages decoupled.
func sessionAction(a hotkey.Action) session.Action {
	if a == hotkey.ActionTest {
		return session.ActionTest
	}
	return session.ActionTranscribe
}

func buildASR(name string) (collab.ASR, error) {
	switch name {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY must be set for the openai STT provider")
		}
		return collab.NewOpenAIASR(key, ""), nil
	case "deepgram":
		key := os.Getenv("DEEPGRAM_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("DEEPGRAM_API_KEY must be set for the deepgram STT provider")
		}
		return collab.NewDeepgramASR(key), nil
	case "groq", "":
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("GROQ_API_KEY must be set for the groq STT provider")
		}
		return collab.NewGroqASR(key, ""), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", name)
	}
}

func buildPostProcessor(name string) collab.PostProcessor {
	switch name {
	case "openai":
		return collab.NewOpenAIPostProcessor(os.Getenv("OPENAI_API_KEY"), "")
	case "anthropic":
		return collab.NewAnthropicPostProcessor(os.Getenv("ANTHROPIC_API_KEY"), "")
	case "google":
		return collab.NewGooglePostProcessor(os.Getenv("GOOGLE_API_KEY"), "")
	default:
		return nil
	}
}

// historyAdapter narrows session.Controller's flat Save(audio, text,
// duration) call into collab.History's richer HistoryRecord shape.
type historyAdapter struct {
	inner collab.History
}

func (h historyAdapter) Save(ctx context.Context, audio []float32, text string, duration time.Duration) error {
	return h.inner.Save(ctx, collab.HistoryRecord{
		Audio:      audio,
		Text:       text,
		DurationS:  duration.Seconds(),
		FinishedAt: time.Now(),
	})
}

// noopInhibit is the default IdleInhibit when no OS-specific
// power-management integration is wired in.
type noopInhibit struct{}

func (noopInhibit) Inhibit() {}
func (noopInhibit) Release() {}

// overlayUI satisfies session.UI plus the partial-text/mic-level
// callbacks the coordinator and worker invoke directly. It renders to
// stderr until a renderer process connects over websocket at
// overlay-addr, after which state, partial-text and mic-level events route
// through that connection instead; a dropped connection falls back to the
// console again. Errors and mic-test results always print to stderr.
type overlayUI struct {
	log logging.Logger

	mu      sync.Mutex
	overlay collab.Overlay
}

func newOverlayUI(log logging.Logger) *overlayUI {
	return &overlayUI{log: log}
}

// serve accepts a single overlay renderer connection at a time on addr;
// a new connection replaces any prior one.
func (u *overlayUI) serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/overlay", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			u.log.Warn("overlay: accept failed", "error", err)
			return
		}
		ov := collab.NewWebsocketOverlay(conn)
		u.setOverlay(ov)
		u.log.Info("overlay: renderer connected")

		// block until the renderer disconnects, then fall back to console;
		// the renderer never sends anything, so any read error (including
		// a clean close) is the disconnect signal.
		var discard interface{}
		for {
			if err := wsjson.Read(r.Context(), conn, &discard); err != nil {
				break
			}
		}
		u.clearOverlay(ov)
		u.log.Info("overlay: renderer disconnected")
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		u.log.Warn("overlay: server stopped", "error", err)
	}
}

func (u *overlayUI) setOverlay(ov collab.Overlay) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.overlay = ov
}

// clearOverlay only clears the current overlay if it is still the one
// that disconnected, so a fresh connection racing the old one's
// teardown isn't wiped out.
func (u *overlayUI) clearOverlay(stale collab.Overlay) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.overlay == stale {
		u.overlay = nil
	}
}

func (u *overlayUI) current() collab.Overlay {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.overlay
}

func (u *overlayUI) ShowRecording() {
	if ov := u.current(); ov != nil {
		ov.Show(context.Background())
		ov.State(context.Background(), collab.OverlayRecording)
		return
	}
	fmt.Fprintln(os.Stderr, "[dictd] recording...")
}

func (u *overlayUI) ShowTranscribing() {
	if ov := u.current(); ov != nil {
		ov.State(context.Background(), collab.OverlayTranscribing)
		return
	}
	fmt.Fprintln(os.Stderr, "[dictd] transcribing...")
}

func (u *overlayUI) ShowGhostwriting() {
	if ov := u.current(); ov != nil {
		ov.State(context.Background(), collab.OverlayGhostwriting)
		return
	}
	fmt.Fprintln(os.Stderr, "[dictd] rewriting...")
}

func (u *overlayUI) ShowIdle() {
	if ov := u.current(); ov != nil {
		ov.Hide(context.Background())
	}
}

func (u *overlayUI) ShowError(err error) {
	fmt.Fprintf(os.Stderr, "[dictd] error: %v\n", err)
}

func (u *overlayUI) PlayStartChime() {}
func (u *overlayUI) PlayStopChime()  {}

func (u *overlayUI) ShowMicTestResult(peakAmplitude float32, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "[dictd] mic test: peak=%.3f duration=%s\n", peakAmplitude, duration)
}

func (u *overlayUI) Partial(text string) {
	if ov := u.current(); ov != nil {
		ov.Partial(context.Background(), text)
		return
	}
	fmt.Fprintf(os.Stderr, "\r[dictd] %s", text)
}

func (u *overlayUI) MicLevel(buckets [16]float32) {
	if ov := u.current(); ov != nil {
		ov.MicLevel(context.Background(), buckets)
	}
}
