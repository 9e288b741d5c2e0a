package subtitle

import (
	"strings"
	"sync"

	nethtml "golang.org/x/net/html"

	"subtitle-player/internal/domain"
)

// Sink receives subtitle text. A nil text clears the overlay.
type Sink interface {
	SetSubtitle(text *string)
}

// PositionSource publishes throttled playback positions.
type PositionSource interface {
	OnPositionChanged(fn func(ms int64)) func()
}

// Syncer keeps a sink's subtitle text matched to the active cue. The sink is
// only called when the rendered text actually changes, and sink calls reach it
// in the order the changes were decided.
type Syncer struct {
	sink Sink

	mu          sync.Mutex
	track       *Track
	highlight   bool
	shown       bool
	current     string
	unsubscribe func()

	// pending sink calls; a nil entry clears the overlay.
	pending    []*string
	delivering bool
}

// NewSyncer creates a syncer with an empty track.
func NewSyncer(sink Sink) *Syncer {
	return &Syncer{sink: sink, track: NewTrack(domain.Transcript{})}
}

// Attach subscribes to src, replacing any previous subscription.
func (s *Syncer) Attach(src PositionSource) {
	unsubscribe := src.OnPositionChanged(s.Update)

	s.mu.Lock()
	previous := s.unsubscribe
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	if previous != nil {
		previous()
	}
}

// Detach drops the position subscription.
func (s *Syncer) Detach() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Load replaces the track and clears any subtitle currently shown.
func (s *Syncer) Load(t domain.Transcript) {
	s.mu.Lock()
	s.track = NewTrack(t)
	wasShown := s.shown
	s.shown = false
	s.current = ""
	if wasShown {
		s.pending = append(s.pending, nil)
	}
	s.mu.Unlock()

	s.deliver()
}

// Track returns the loaded track.
func (s *Syncer) Track() *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track
}

// SetHighlight toggles underlining of the word being spoken.
func (s *Syncer) SetHighlight(on bool) {
	s.mu.Lock()
	s.highlight = on
	s.mu.Unlock()
}

// Update renders the subtitle for ms.
func (s *Syncer) Update(ms int64) {
	s.mu.Lock()
	text, visible := s.render(ms)
	if visible == s.shown && text == s.current {
		s.mu.Unlock()
		return
	}
	s.shown = visible
	s.current = text
	if visible {
		s.pending = append(s.pending, &text)
	} else {
		s.pending = append(s.pending, nil)
	}
	s.mu.Unlock()

	s.deliver()
}

// deliver drains pending sink calls unless another goroutine already is. Calls
// queued while the sink runs, re-entrant ones included, are sent after it returns.
func (s *Syncer) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		text := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.mu.Unlock()
		s.sink.SetSubtitle(text)
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func (s *Syncer) render(ms int64) (string, bool) {
	cue, ok := s.track.At(ms)
	if !ok {
		return "", false
	}
	if !s.highlight {
		return nethtml.EscapeString(cue.Text), true
	}

	words := s.track.WordsFor(cue)
	if len(words) == 0 {
		return nethtml.EscapeString(cue.Text), true
	}

	parts := make([]string, 0, len(words))
	for _, w := range words {
		escaped := nethtml.EscapeString(w.Word)
		if ms >= w.StartMs && ms < w.EndMs {
			escaped = "<u>" + escaped + "</u>"
		}
		parts = append(parts, escaped)
	}
	return strings.Join(parts, " "), true
}
