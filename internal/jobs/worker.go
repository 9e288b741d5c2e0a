package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"subtitle-player/internal/domain"
	"subtitle-player/internal/logging"
)

// ErrWorkerStarted is returned when Start is called on a worker more than once.
var ErrWorkerStarted = errors.New("worker already started")

// Progress stages reported by every run.
const (
	PercentPreparing = 10
	PercentRendering = 90
	PercentComplete  = 100

	MessagePreparing = "preparing transcription"
	MessageRendering = "transcription complete, preparing render"
	MessageComplete  = "transcription complete"
)

const defaultEventBuffer = 8

// Transcriber converts a media file into ordered cues and word timestamps.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (domain.Transcript, error)
}

// WorkerEventType tags the payload of a WorkerEvent.
type WorkerEventType string

const (
	WorkerEventProgress WorkerEventType = "progress"
	WorkerEventResult   WorkerEventType = "result"
	WorkerEventError    WorkerEventType = "error"
)

// Progress is an advisory completion update.
type Progress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Failure describes why a run ended without a result.
type Failure struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// WorkerEvent is one message on a worker's event channel.
type WorkerEvent struct {
	JobID      string            `json:"jobId"`
	Type       WorkerEventType   `json:"type"`
	Progress   Progress          `json:"progress"`
	Transcript domain.Transcript `json:"transcript"`
	Failure    Failure           `json:"failure"`
}

// WorkerOption customizes a Worker.
type WorkerOption func(*Worker)

// WithJobID overrides the generated job identifier.
func WithJobID(id string) WorkerOption {
	return func(w *Worker) {
		if strings.TrimSpace(id) != "" {
			w.id = id
		}
	}
}

// WithLogger sets the worker logger.
func WithLogger(log logrus.FieldLogger) WorkerOption {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// WithEventBuffer sets the event channel capacity. Values below 4 are raised to 4.
func WithEventBuffer(size int) WorkerOption {
	return func(w *Worker) {
		if size < 4 {
			size = 4
		}
		w.buffer = size
	}
}

// Worker runs one transcription off the caller's goroutine. It is single-use:
// Start may succeed once, and the run ends with exactly one result or error
// event, after which the event channel is closed.
type Worker struct {
	id          string
	mediaPath   string
	transcriber Transcriber
	log         logrus.FieldLogger
	buffer      int

	mu     sync.Mutex
	status domain.JobStatus
	events chan WorkerEvent
}

// NewWorker prepares a pending job for mediaPath.
func NewWorker(transcriber Transcriber, mediaPath string, opts ...WorkerOption) *Worker {
	w := &Worker{
		id:          uuid.NewString(),
		mediaPath:   mediaPath,
		transcriber: transcriber,
		log:         logging.Discard(),
		buffer:      defaultEventBuffer,
		status:      domain.JobStatusPending,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.events = make(chan WorkerEvent, w.buffer)
	return w
}

// ID returns the job identifier.
func (w *Worker) ID() string {
	return w.id
}

// Events returns the ordered event stream. Progress events may be dropped when
// the consumer falls behind; result and error events never are.
func (w *Worker) Events() <-chan WorkerEvent {
	return w.events
}

// Status returns the current lifecycle status.
func (w *Worker) Status() domain.JobStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Job returns a snapshot of the job.
func (w *Worker) Job() domain.Job {
	return domain.Job{ID: w.id, MediaPath: w.mediaPath, Status: w.Status()}
}

// Start launches the run and returns immediately.
func (w *Worker) Start() error {
	w.mu.Lock()
	if w.status != domain.JobStatusPending {
		w.mu.Unlock()
		return ErrWorkerStarted
	}
	w.status = domain.JobStatusRunning
	w.mu.Unlock()

	go w.run()
	return nil
}

func (w *Worker) run() {
	defer close(w.events)

	log := w.log.WithFields(logrus.Fields{"job": w.id, "media": w.mediaPath})
	w.progress(PercentPreparing, MessagePreparing)
	log.Info("transcription started")

	transcript, failure := w.invoke()
	if failure != nil {
		w.setStatus(domain.JobStatusFailed)
		log.WithField("detail", failure.Detail).Error("transcription failed: " + failure.Message)
		w.send(WorkerEvent{Type: WorkerEventError, Failure: *failure})
		return
	}

	w.progress(PercentRendering, MessageRendering)
	log.WithFields(logrus.Fields{
		"cues":  len(transcript.Cues),
		"words": len(transcript.Words),
	}).Info("transcription complete")

	w.setStatus(domain.JobStatusSucceeded)
	w.send(WorkerEvent{Type: WorkerEventResult, Transcript: transcript})
	w.send(WorkerEvent{Type: WorkerEventProgress, Progress: Progress{Percent: PercentComplete, Message: MessageComplete}})
}

// invoke calls the transcriber and converts any error or panic into a Failure.
func (w *Worker) invoke() (transcript domain.Transcript, failure *Failure) {
	defer func() {
		if r := recover(); r != nil {
			failure = &Failure{
				Message: fmt.Sprint(r),
				Detail:  fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack()),
			}
		}
	}()

	transcript, err := w.transcriber.Transcribe(context.Background(), w.mediaPath)
	if err != nil {
		f := describeFailure(err)
		return domain.Transcript{}, &f
	}
	return transcript, nil
}

// progress sends an advisory update, dropping it rather than eating into the two
// slots reserved for the terminal event and the final progress update.
func (w *Worker) progress(percent int, message string) {
	if len(w.events) >= cap(w.events)-2 {
		return
	}
	w.send(WorkerEvent{Type: WorkerEventProgress, Progress: Progress{Percent: percent, Message: message}})
}

// send enqueues an event. Only the run goroutine sends, so capacity checks made
// before calling cannot be invalidated by another producer.
func (w *Worker) send(event WorkerEvent) {
	event.JobID = w.id
	select {
	case w.events <- event:
	default:
		w.log.WithField("job", w.id).Warn("worker event dropped: " + string(event.Type))
	}
}

func (w *Worker) setStatus(status domain.JobStatus) {
	w.mu.Lock()
	w.status = status
	w.mu.Unlock()
}

// detailer is implemented by errors that carry diagnostic context beyond their
// message, such as captured command output.
type detailer interface {
	Detail() string
}

func describeFailure(err error) Failure {
	detail := fmt.Sprintf("%+v", errors.WithStack(err))

	var d detailer
	if errors.As(err, &d) {
		if extra := strings.TrimSpace(d.Detail()); extra != "" {
			detail = extra + "\n\n" + detail
		}
	}
	return Failure{Message: err.Error(), Detail: detail}
}

// Observer receives worker events on the goroutine running Deliver.
type Observer interface {
	OnProgress(p Progress)
	OnResult(t domain.Transcript)
	OnError(f Failure)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Progress func(Progress)
	Result   func(domain.Transcript)
	Error    func(Failure)
}

func (o ObserverFuncs) OnProgress(p Progress) {
	if o.Progress != nil {
		o.Progress(p)
	}
}

func (o ObserverFuncs) OnResult(t domain.Transcript) {
	if o.Result != nil {
		o.Result(t)
	}
}

func (o ObserverFuncs) OnError(f Failure) {
	if o.Error != nil {
		o.Error(f)
	}
}

// Deliver pumps events into obs on the calling goroutine, in order, until the
// stream closes or ctx ends. Returning early on ctx abandons the remaining
// events; the worker never blocks on an unread stream.
func Deliver(ctx context.Context, events <-chan WorkerEvent, obs Observer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Type {
			case WorkerEventProgress:
				obs.OnProgress(event.Progress)
			case WorkerEventResult:
				obs.OnResult(event.Transcript)
			case WorkerEventError:
				obs.OnError(event.Failure)
			}
		}
	}
}
