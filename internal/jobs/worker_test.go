package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"subtitle-player/internal/domain"
)

// fakeTranscriber delegates to injected behavior.
type fakeTranscriber struct {
	transcribe func(ctx context.Context, mediaPath string) (domain.Transcript, error)
}

// Transcribe delegates to injected behavior.
func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath string) (domain.Transcript, error) {
	return f.transcribe(ctx, mediaPath)
}

// detailedError carries extra diagnostic output like a failed command would.
type detailedError struct{ msg, detail string }

func (e *detailedError) Error() string  { return e.msg }
func (e *detailedError) Detail() string { return e.detail }

// recorder flattens observer callbacks into one ordered log.
type recorder struct {
	entries  []string
	percents []int
	result   *domain.Transcript
	failure  *Failure
}

func (r *recorder) observer() Observer {
	return ObserverFuncs{
		Progress: func(p Progress) {
			r.entries = append(r.entries, fmt.Sprintf("progress(%d)", p.Percent))
			r.percents = append(r.percents, p.Percent)
		},
		Result: func(t domain.Transcript) {
			r.entries = append(r.entries, fmt.Sprintf("result(%d,%d)", len(t.Cues), len(t.Words)))
			r.result = &t
		},
		Error: func(f Failure) {
			r.entries = append(r.entries, "error("+f.Message+")")
			r.failure = &f
		},
	}
}

func runWorker(t *testing.T, w *Worker) *recorder {
	t.Helper()
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec := &recorder{}
	if err := Deliver(ctx, w.Events(), rec.observer()); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	return rec
}

func sampleTranscript(cues, words int) domain.Transcript {
	out := domain.Transcript{
		Cues:  make([]domain.Cue, cues),
		Words: make([]domain.WordTimestamp, words),
	}
	for i := range out.Cues {
		out.Cues[i] = domain.Cue{Index: i + 1, StartMs: int64(i) * 1000, EndMs: int64(i)*1000 + 900, Text: "cue"}
	}
	for i := range out.Words {
		out.Words[i] = domain.WordTimestamp{Word: "w", StartMs: int64(i) * 30, EndMs: int64(i)*30 + 25}
	}
	return out
}

// TestWorkerSuccessOrder checks the 12 cue / 340 word scenario end to end.
func TestWorkerSuccessOrder(t *testing.T) {
	var gotPath string
	w := NewWorker(&fakeTranscriber{transcribe: func(ctx context.Context, mediaPath string) (domain.Transcript, error) {
		gotPath = mediaPath
		return sampleTranscript(12, 340), nil
	}}, "talk.mp4")

	rec := runWorker(t, w)

	want := []string{"progress(10)", "progress(90)", "result(12,340)", "progress(100)"}
	if strings.Join(rec.entries, " ") != strings.Join(want, " ") {
		t.Fatalf("events = %v, want %v", rec.entries, want)
	}
	if gotPath != "talk.mp4" {
		t.Fatalf("media path = %q, want talk.mp4", gotPath)
	}
	if rec.result.Cues[11].Index != 12 || rec.result.Words[339].StartMs != 339*30 {
		t.Fatal("result order not preserved")
	}
	if w.Status() != domain.JobStatusSucceeded {
		t.Fatalf("status = %s, want succeeded", w.Status())
	}
}

// TestWorkerFailureOrder checks the "model load failed" scenario.
func TestWorkerFailureOrder(t *testing.T) {
	w := NewWorker(&fakeTranscriber{transcribe: func(context.Context, string) (domain.Transcript, error) {
		return domain.Transcript{}, errors.New("model load failed")
	}}, "talk.mp4")

	rec := runWorker(t, w)

	want := []string{"progress(10)", "error(model load failed)"}
	if strings.Join(rec.entries, " ") != strings.Join(want, " ") {
		t.Fatalf("events = %v, want %v", rec.entries, want)
	}
	if rec.failure.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
	if !strings.Contains(rec.failure.Detail, "model load failed") {
		t.Fatalf("detail should include the cause: %q", rec.failure.Detail)
	}
	if rec.result != nil {
		t.Fatal("no result may follow a failure")
	}
	for _, p := range rec.percents {
		if p > PercentPreparing {
			t.Fatalf("progress %d observed after failure", p)
		}
	}
	if w.Status() != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", w.Status())
	}
}

// TestWorkerFailureIncludesErrorDetail checks extra diagnostics are kept.
func TestWorkerFailureIncludesErrorDetail(t *testing.T) {
	w := NewWorker(&fakeTranscriber{transcribe: func(context.Context, string) (domain.Transcript, error) {
		return domain.Transcript{}, fmt.Errorf("transcribing: %w", &detailedError{msg: "whisper exited", detail: "stderr: out of memory"})
	}}, "talk.mp4")

	rec := runWorker(t, w)

	if rec.failure == nil {
		t.Fatal("expected failure")
	}
	if rec.failure.Message != "transcribing: whisper exited" {
		t.Fatalf("message = %q", rec.failure.Message)
	}
	if !strings.Contains(rec.failure.Detail, "stderr: out of memory") {
		t.Fatalf("detail = %q, want command output", rec.failure.Detail)
	}
}

// TestWorkerRecoversPanic checks faults never escape the worker goroutine.
func TestWorkerRecoversPanic(t *testing.T) {
	log, hook := test.NewNullLogger()
	w := NewWorker(&fakeTranscriber{transcribe: func(context.Context, string) (domain.Transcript, error) {
		panic("index out of range")
	}}, "talk.mp4", WithLogger(log))

	rec := runWorker(t, w)

	want := []string{"progress(10)", "error(index out of range)"}
	if strings.Join(rec.entries, " ") != strings.Join(want, " ") {
		t.Fatalf("events = %v, want %v", rec.entries, want)
	}
	if !strings.Contains(rec.failure.Detail, "goroutine") {
		t.Fatalf("detail should carry a stack trace: %q", rec.failure.Detail)
	}

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			logged = true
		}
	}
	if !logged {
		t.Fatal("expected failure to be logged at error level")
	}
}

// TestWorkerNilTranscriberFails checks a missing collaborator becomes an error.
func TestWorkerNilTranscriberFails(t *testing.T) {
	rec := runWorker(t, NewWorker(nil, "talk.mp4"))
	if rec.failure == nil || rec.failure.Detail == "" {
		t.Fatalf("expected failure with detail, got %+v", rec.entries)
	}
}

// TestWorkerStartTwice checks the worker is single-use.
func TestWorkerStartTwice(t *testing.T) {
	release := make(chan struct{})
	w := NewWorker(&fakeTranscriber{transcribe: func(context.Context, string) (domain.Transcript, error) {
		<-release
		return domain.Transcript{}, nil
	}}, "talk.mp4", WithJobID("job-7"))

	if err := w.Start(); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if err := w.Start(); !errors.Is(err, ErrWorkerStarted) {
		t.Fatalf("second Start() error = %v, want %v", err, ErrWorkerStarted)
	}
	if w.Status() != domain.JobStatusRunning {
		t.Fatalf("status = %s, want running", w.Status())
	}
	if w.Job().ID != "job-7" {
		t.Fatalf("job id = %q, want job-7", w.Job().ID)
	}

	close(release)
	for range w.Events() {
	}
	if err := w.Start(); !errors.Is(err, ErrWorkerStarted) {
		t.Fatalf("Start() after completion error = %v, want %v", err, ErrWorkerStarted)
	}
}

// TestWorkerStartDoesNotBlock checks the caller returns while the job runs.
func TestWorkerStartDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	w := NewWorker(&fakeTranscriber{transcribe: func(context.Context, string) (domain.Transcript, error) {
		<-release
		return domain.Transcript{}, nil
	}}, "talk.mp4")

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked on the transcriber")
	}
}

// TestWorkerNeverBlocksOnUnreadEvents checks an abandoned worker still finishes.
func TestWorkerNeverBlocksOnUnreadEvents(t *testing.T) {
	finished := make(chan struct{})
	w := NewWorker(&fakeTranscriber{transcribe: func(context.Context, string) (domain.Transcript, error) {
		defer close(finished)
		return sampleTranscript(1, 1), nil
	}}, "talk.mp4", WithEventBuffer(1))

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-finished

	deadline := time.After(2 * time.Second)
	for w.Status() != domain.JobStatusSucceeded {
		select {
		case <-deadline:
			t.Fatalf("status = %s, want succeeded", w.Status())
		case <-time.After(5 * time.Millisecond):
		}
	}

	var types []WorkerEventType
	var last int
	for event := range w.Events() {
		types = append(types, event.Type)
		if event.Type == WorkerEventProgress {
			if event.Progress.Percent < last {
				t.Fatalf("progress went backwards: %d after %d", event.Progress.Percent, last)
			}
			last = event.Progress.Percent
		}
	}
	if len(types) == 0 || types[len(types)-1] != WorkerEventProgress || last != PercentComplete {
		t.Fatalf("events = %v, want trailing progress(100)", types)
	}

	results := 0
	for _, typ := range types {
		if typ == WorkerEventResult {
			results++
		}
	}
	if results != 1 {
		t.Fatalf("result events = %d, want 1", results)
	}
}

// TestDeliverStopsOnContext checks a host can stop listening.
func TestDeliverStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan WorkerEvent)
	if err := Deliver(ctx, events, ObserverFuncs{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Deliver() error = %v, want context.Canceled", err)
	}
}
