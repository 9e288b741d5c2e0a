package subtitle

import (
	"sort"

	"github.com/samber/lo"

	"subtitle-player/internal/domain"
)

// Track is an immutable, start-ordered view of a transcript for position lookup.
type Track struct {
	cues  []domain.Cue
	words []domain.WordTimestamp
}

// NewTrack copies and sorts the transcript's cues and words by start time.
func NewTrack(t domain.Transcript) *Track {
	cues := append([]domain.Cue(nil), t.Cues...)
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].StartMs < cues[j].StartMs })

	words := append([]domain.WordTimestamp(nil), t.Words...)
	sort.SliceStable(words, func(i, j int) bool { return words[i].StartMs < words[j].StartMs })

	return &Track{cues: cues, words: words}
}

// Len returns the number of cues.
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cues)
}

// Cues returns a copy of the ordered cues.
func (t *Track) Cues() []domain.Cue {
	if t == nil {
		return nil
	}
	return append([]domain.Cue(nil), t.cues...)
}

// At returns the cue active at ms. When cues overlap, the one that started
// latest wins.
func (t *Track) At(ms int64) (domain.Cue, bool) {
	if t == nil {
		return domain.Cue{}, false
	}

	// first cue starting after ms
	i := sort.Search(len(t.cues), func(i int) bool { return t.cues[i].StartMs > ms })
	for j := i - 1; j >= 0; j-- {
		if t.cues[j].Contains(ms) {
			return t.cues[j], true
		}
		if ms-t.cues[j].StartMs > maxCueSpanMs {
			break
		}
	}
	return domain.Cue{}, false
}

// maxCueSpanMs bounds the backwards scan for overlapping cues.
const maxCueSpanMs = 60_000

// WordsFor returns the words whose start falls inside cue.
func (t *Track) WordsFor(cue domain.Cue) []domain.WordTimestamp {
	if t == nil {
		return nil
	}
	return lo.Filter(t.words, func(w domain.WordTimestamp, _ int) bool {
		return cue.Contains(w.StartMs)
	})
}
