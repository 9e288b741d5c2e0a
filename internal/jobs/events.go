package jobs

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"subtitle-player/internal/domain"
)

// EventType classifies messages published to the UI.
type EventType string

const (
	EventTypeStatus   EventType = "status"
	EventTypeProgress EventType = "progress"
	EventTypeResult   EventType = "result"
	EventTypeError    EventType = "error"
	EventTypePlayback EventType = "playback"
)

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq        int64            `json:"seq"`
	Timestamp  time.Time        `json:"timestamp"`
	JobID      string           `json:"jobId,omitempty"`
	Type       EventType        `json:"type"`
	Status     domain.JobStatus `json:"status,omitempty"`
	Percent    int              `json:"percent,omitempty"`
	Message    string           `json:"message,omitempty"`
	Detail     string           `json:"detail,omitempty"`
	CueCount   int              `json:"cueCount,omitempty"`
	WordCount  int              `json:"wordCount,omitempty"`
	PositionMs int64            `json:"positionMs,omitempty"`
	DurationMs int64            `json:"durationMs,omitempty"`
	Playing    *bool            `json:"playing,omitempty"`
}

// EventBus stores recent events and provides incremental reads.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event and assigns sequence and timestamp.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// Since returns events with sequence strictly greater than seq. When types are
// given only those types are returned.
func (b *EventBus) Since(seq int64, types ...EventType) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	return lo.Filter(b.events, func(event Event, _ int) bool {
		return event.Seq > seq && (len(types) == 0 || lo.Contains(types, event.Type))
	})
}

// PublishWorkerEvent maps one worker event onto the bus.
func (b *EventBus) PublishWorkerEvent(event WorkerEvent) Event {
	out := Event{JobID: event.JobID}
	switch event.Type {
	case WorkerEventProgress:
		out.Type = EventTypeProgress
		out.Status = domain.JobStatusRunning
		out.Percent = event.Progress.Percent
		out.Message = event.Progress.Message
	case WorkerEventResult:
		out.Type = EventTypeResult
		out.Status = domain.JobStatusSucceeded
		out.Message = "transcript ready"
		out.CueCount = len(event.Transcript.Cues)
		out.WordCount = len(event.Transcript.Words)
	case WorkerEventError:
		out.Type = EventTypeError
		out.Status = domain.JobStatusFailed
		out.Message = event.Failure.Message
		out.Detail = event.Failure.Detail
	}
	return b.Publish(out)
}
