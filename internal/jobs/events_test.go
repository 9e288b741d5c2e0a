package jobs

import (
	"testing"

	"subtitle-player/internal/domain"
)

// TestEventBusSince verifies incremental event reads by sequence.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(3)
	bus.Publish(Event{Type: EventTypeStatus, Message: "1"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "2"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "3"})

	events := bus.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
}

// TestEventBusCapsHistory verifies buffer limit trimming behavior.
func TestEventBusCapsHistory(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Message: "1"})
	bus.Publish(Event{Message: "2"})
	bus.Publish(Event{Message: "3"})

	events := bus.Since(0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Message != "2" || events[1].Message != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

// TestEventBusSinceFiltersTypes verifies type filtering.
func TestEventBusSinceFiltersTypes(t *testing.T) {
	bus := NewEventBus(10)
	bus.Publish(Event{Type: EventTypePlayback, PositionMs: 200})
	bus.Publish(Event{Type: EventTypeProgress, Percent: 10})
	bus.Publish(Event{Type: EventTypePlayback, PositionMs: 400})

	events := bus.Since(0, EventTypeProgress)
	if len(events) != 1 || events[0].Percent != 10 {
		t.Fatalf("unexpected events: %+v", events)
	}
}

// TestPublishWorkerEvent verifies worker events map onto bus events.
func TestPublishWorkerEvent(t *testing.T) {
	bus := NewEventBus(10)

	got := bus.PublishWorkerEvent(WorkerEvent{
		JobID:      "job-1",
		Type:       WorkerEventResult,
		Transcript: domain.Transcript{Cues: make([]domain.Cue, 2), Words: make([]domain.WordTimestamp, 5)},
	})
	if got.Type != EventTypeResult || got.CueCount != 2 || got.WordCount != 5 || got.JobID != "job-1" {
		t.Fatalf("result event = %+v", got)
	}

	got = bus.PublishWorkerEvent(WorkerEvent{
		JobID:   "job-1",
		Type:    WorkerEventError,
		Failure: Failure{Message: "boom", Detail: "trace"},
	})
	if got.Type != EventTypeError || got.Status != domain.JobStatusFailed || got.Detail != "trace" {
		t.Fatalf("error event = %+v", got)
	}
}
