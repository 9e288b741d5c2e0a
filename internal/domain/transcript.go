package domain

// Cue is a timed subtitle text span. Times are milliseconds from media start.
type Cue struct {
	Index   int    `json:"index"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
	Text    string `json:"text"`
}

// Contains reports whether positionMs falls inside [StartMs, EndMs).
func (c Cue) Contains(positionMs int64) bool {
	return positionMs >= c.StartMs && positionMs < c.EndMs
}

// WordTimestamp is one recognized word with its time span.
type WordTimestamp struct {
	Word    string `json:"word"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// Transcript is the ordered output of one transcription run.
type Transcript struct {
	Cues  []Cue           `json:"cues"`
	Words []WordTimestamp `json:"words"`
}
