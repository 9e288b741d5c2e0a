package domain

import (
	"time"

	"github.com/samber/lo"
)

// CheckArea names the player feature a check gates.
type CheckArea string

const (
	// AreaPlayback covers watching with subtitles and resume positions.
	AreaPlayback CheckArea = "playback"
	// AreaExport covers writing .srt files.
	AreaExport CheckArea = "export"
	// AreaTranscription covers generating subtitles with whisper.cpp.
	AreaTranscription CheckArea = "transcription"
)

// CheckAreas lists every area in display order.
var CheckAreas = []CheckArea{AreaPlayback, AreaExport, AreaTranscription}

// CheckStatus is the outcome of a single check. A warning leaves the area usable.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// Check is one readiness result.
type Check struct {
	ID      string      `json:"id"`
	Area    CheckArea   `json:"area"`
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// Readiness tells, per area, whether none of its checks failed.
type Readiness struct {
	Playback      bool `json:"playback"`
	Export        bool `json:"export"`
	Transcription bool `json:"transcription"`
}

// Ready reports readiness for one area.
func (r Readiness) Ready(area CheckArea) bool {
	switch area {
	case AreaPlayback:
		return r.Playback
	case AreaExport:
		return r.Export
	case AreaTranscription:
		return r.Transcription
	}
	return false
}

// DiagnosticReport collects the checks of one run.
type DiagnosticReport struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Ready       Readiness `json:"ready"`
	Checks      []Check   `json:"checks"`
}

// NewDiagnosticReport derives per-area readiness from checks.
func NewDiagnosticReport(at time.Time, checks []Check) DiagnosticReport {
	failed := func(area CheckArea) bool {
		return lo.ContainsBy(checks, func(c Check) bool {
			return c.Area == area && c.Status == CheckFail
		})
	}
	return DiagnosticReport{
		GeneratedAt: at,
		Ready: Readiness{
			Playback:      !failed(AreaPlayback),
			Export:        !failed(AreaExport),
			Transcription: !failed(AreaTranscription),
		},
		Checks: checks,
	}
}

// In returns the checks of area in run order.
func (r DiagnosticReport) In(area CheckArea) []Check {
	return lo.Filter(r.Checks, func(c Check, _ int) bool { return c.Area == area })
}

// Find returns the check with id.
func (r DiagnosticReport) Find(id string) (Check, bool) {
	return lo.Find(r.Checks, func(c Check) bool { return c.ID == id })
}
