package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCoordinator struct {
	mu         sync.Mutex
	started    int
	stopped    int
	latestText string
}

func (c *fakeCoordinator) StartRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

func (c *fakeCoordinator) StopRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped++
}

func (c *fakeCoordinator) LatestText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latestText
}

func (c *fakeCoordinator) setLatestText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latestText = s
}

type fakeWorker struct {
	started int
	stopped int
	samples []float32
}

func (w *fakeWorker) Start() { w.started++ }
func (w *fakeWorker) Stop() []float32 {
	w.stopped++
	return w.samples
}

type fakeASR struct {
	text  string
	err   error
	calls int
}

func (a *fakeASR) Transcribe(ctx context.Context, samples []float32) (string, error) {
	a.calls++
	return a.text, a.err
}

type fakePostProcessor struct {
	text  string
	err   error
	calls int
}

func (p *fakePostProcessor) Process(ctx context.Context, text, instructions string) (string, error) {
	p.calls++
	return p.text, p.err
}

type fakePaste struct {
	pasted []string
}

func (p *fakePaste) Paste(text string) error {
	p.pasted = append(p.pasted, text)
	return nil
}

type fakeHistory struct {
	saved []string
}

func (h *fakeHistory) Save(ctx context.Context, audio []float32, text string, duration time.Duration) error {
	h.saved = append(h.saved, text)
	return nil
}

type fakeUI struct {
	mu     sync.Mutex
	events []string
}

func (u *fakeUI) record(e string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.events = append(u.events, e)
}

func (u *fakeUI) ShowRecording()      { u.record("recording") }
func (u *fakeUI) ShowTranscribing()   { u.record("transcribing") }
func (u *fakeUI) ShowGhostwriting()   { u.record("ghostwriting") }
func (u *fakeUI) ShowIdle()           { u.record("idle") }
func (u *fakeUI) ShowError(err error) { u.record("error:" + err.Error()) }
func (u *fakeUI) PlayStartChime()     { u.record("start-chime") }
func (u *fakeUI) PlayStopChime()      { u.record("stop-chime") }
func (u *fakeUI) ShowMicTestResult(peakAmplitude float32, duration time.Duration) {
	u.record("mictest")
}

func (u *fakeUI) has(e string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, ev := range u.events {
		if ev == e {
			return true
		}
	}
	return false
}

type fakeInhibit struct {
	inhibited int
	released  int
}

func (f *fakeInhibit) Inhibit() { f.inhibited++ }
func (f *fakeInhibit) Release() { f.released++ }

func newTestController(coord *fakeCoordinator, worker *fakeWorker, asr *fakeASR, ui *fakeUI) (*Controller, *fakePaste, *fakeHistory, *fakeInhibit) {
	paste := &fakePaste{}
	history := &fakeHistory{}
	inhibit := &fakeInhibit{}
	c := New(Config{
		Coordinator: coord,
		Worker:      worker,
		ASR:         asr,
		Paste:       paste,
		History:     history,
		UI:          ui,
		IdleInhibit: inhibit,
	})
	return c, paste, history, inhibit
}

func TestController_StartFailsWhenAlreadyActive(t *testing.T) {
	coord := &fakeCoordinator{}
	worker := &fakeWorker{}
	asr := &fakeASR{}
	c, _, _, _ := newTestController(coord, worker, asr, &fakeUI{})

	require.True(t, c.Start("transcribe", ActionTranscribe))
	require.False(t, c.Start("transcribe", ActionTranscribe))
}

func TestController_QuickPressDiscardsWithoutFinalizing(t *testing.T) {
	coord := &fakeCoordinator{}
	worker := &fakeWorker{samples: make([]float32, 100)}
	asr := &fakeASR{text: "should not be called"}
	ui := &fakeUI{}
	c, paste, history, inhibit := newTestController(coord, worker, asr, ui)

	require.True(t, c.Start("transcribe", ActionTranscribe))
	c.Stop(context.Background(), "transcribe")

	require.Equal(t, 0, asr.calls, "fallback ASR must never run for a quick press")
	require.Empty(t, paste.pasted)
	require.Empty(t, history.saved)
	require.Equal(t, 1, inhibit.released)
	require.True(t, ui.has("idle"))
}

func TestController_FallsBackToASRWhenStreamingTextTooShort(t *testing.T) {
	coord := &fakeCoordinator{}
	worker := &fakeWorker{samples: make([]float32, 100)}
	asr := &fakeASR{text: "hello world"}
	ui := &fakeUI{}
	c, paste, history, _ := newTestController(coord, worker, asr, ui)

	c.active = &Session{BindingID: "transcribe", StartedAt: time.Now().Add(-2 * time.Second)}
	c.Stop(context.Background(), "transcribe")

	require.Equal(t, 1, asr.calls)
	require.Equal(t, []string{"hello world"}, paste.pasted)
	require.Equal(t, []string{"hello world"}, history.saved)
}

func TestController_UsesStreamingTextWhenLongEnough(t *testing.T) {
	coord := &fakeCoordinator{}
	coord.setLatestText("a sufficiently long committed transcript")
	worker := &fakeWorker{samples: make([]float32, 100)}
	asr := &fakeASR{text: "should not be called"}
	ui := &fakeUI{}
	c, paste, _, _ := newTestController(coord, worker, asr, ui)

	c.active = &Session{BindingID: "transcribe", StartedAt: time.Now().Add(-2 * time.Second)}
	c.Stop(context.Background(), "transcribe")

	require.Equal(t, 0, asr.calls)
	require.Equal(t, []string{"a sufficiently long committed transcript"}, paste.pasted)
}

func TestController_FallbackASRErrorAbortsWithoutPasting(t *testing.T) {
	coord := &fakeCoordinator{}
	worker := &fakeWorker{samples: make([]float32, 100)}
	asr := &fakeASR{err: errors.New("boom")}
	ui := &fakeUI{}
	c, paste, history, _ := newTestController(coord, worker, asr, ui)

	c.active = &Session{BindingID: "transcribe", StartedAt: time.Now().Add(-2 * time.Second)}
	c.Stop(context.Background(), "transcribe")

	require.Empty(t, paste.pasted)
	require.Empty(t, history.saved)
	require.True(t, ui.has("error:boom"))
}

func TestController_PostProcessFailureFallsBackToRawText(t *testing.T) {
	coord := &fakeCoordinator{}
	coord.setLatestText("a sufficiently long committed transcript")
	worker := &fakeWorker{samples: make([]float32, 100)}
	asr := &fakeASR{}
	ui := &fakeUI{}
	paste := &fakePaste{}
	c := New(Config{
		Coordinator:             coord,
		Worker:                  worker,
		ASR:                     asr,
		PostProcessor:           &fakePostProcessor{err: errors.New("rewrite failed")},
		Paste:                   paste,
		History:                 &fakeHistory{},
		UI:                      ui,
		PostProcessInstructions: func() string { return "rewrite formally" },
	})

	c.active = &Session{BindingID: "transcribe", StartedAt: time.Now().Add(-2 * time.Second)}
	c.Stop(context.Background(), "transcribe")

	require.Equal(t, []string{"a sufficiently long committed transcript"}, paste.pasted)
	require.True(t, ui.has("error:rewrite failed"))
}

func TestController_PostProcessSuccessPastesRewrittenText(t *testing.T) {
	coord := &fakeCoordinator{}
	coord.setLatestText("a sufficiently long committed transcript")
	worker := &fakeWorker{samples: make([]float32, 100)}
	asr := &fakeASR{}
	paste := &fakePaste{}
	c := New(Config{
		Coordinator:             coord,
		Worker:                  worker,
		ASR:                     asr,
		PostProcessor:           &fakePostProcessor{text: "A Sufficiently Long Committed Transcript."},
		Paste:                   paste,
		History:                 &fakeHistory{},
		UI:                      &fakeUI{},
		PostProcessInstructions: func() string { return "rewrite formally" },
	})

	c.active = &Session{BindingID: "transcribe", StartedAt: time.Now().Add(-2 * time.Second)}
	c.Stop(context.Background(), "transcribe")

	require.Equal(t, []string{"A Sufficiently Long Committed Transcript."}, paste.pasted)
}

func TestController_CancelAbortsWithoutFinalizing(t *testing.T) {
	coord := &fakeCoordinator{}
	coord.setLatestText("a sufficiently long committed transcript")
	worker := &fakeWorker{samples: make([]float32, 100)}
	asr := &fakeASR{}
	ui := &fakeUI{}
	c, paste, history, inhibit := newTestController(coord, worker, asr, ui)

	require.True(t, c.Start("transcribe", ActionTranscribe))
	c.Cancel()

	require.Empty(t, paste.pasted)
	require.Empty(t, history.saved)
	require.Equal(t, 1, inhibit.released)
	require.True(t, ui.has("idle"))
	require.True(t, c.Start("transcribe", ActionTranscribe), "a new session must be startable after cancel")
}

func TestController_TestActionSkipsTranscribeAndPaste(t *testing.T) {
	coord := &fakeCoordinator{}
	coord.setLatestText("a sufficiently long committed transcript")
	worker := &fakeWorker{samples: []float32{0, 0.5, -0.75, 0.1}}
	asr := &fakeASR{text: "should not be called"}
	ui := &fakeUI{}
	c, paste, history, _ := newTestController(coord, worker, asr, ui)

	c.active = &Session{BindingID: "test-mic", Action: ActionTest, StartedAt: time.Now().Add(-2 * time.Second)}
	c.Stop(context.Background(), "test-mic")

	require.Equal(t, 0, asr.calls, "a mic test must never reach the fallback ASR")
	require.Empty(t, paste.pasted)
	require.Empty(t, history.saved)
	require.True(t, ui.has("mictest"))
	require.True(t, ui.has("idle"))
}

func TestController_StopIgnoresMismatchedBinding(t *testing.T) {
	coord := &fakeCoordinator{}
	worker := &fakeWorker{}
	asr := &fakeASR{}
	c, paste, _, _ := newTestController(coord, worker, asr, &fakeUI{})

	require.True(t, c.Start("transcribe", ActionTranscribe))
	c.Stop(context.Background(), "test")

	require.Empty(t, paste.pasted)
	require.Equal(t, 0, worker.stopped)
}
