package domain

// JobStatus tracks the lifecycle of a single transcription job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	ModelPath      string        `json:"modelPath" toml:"model_path"`
	OutputDir      string        `json:"outputDir" toml:"output_dir"`
	Language       string        `json:"language" toml:"language"`
	LibraryPath    string        `json:"libraryPath" toml:"library_path"`
	Volume         int           `json:"volume" toml:"volume"`
	HighlightWords bool          `json:"highlightWords" toml:"highlight_words"`
	Subtitle       SubtitleStyle `json:"subtitle" toml:"subtitle"`
}

// Job stores the identity, input media and lifecycle status of one run.
type Job struct {
	ID        string    `json:"id"`
	MediaPath string    `json:"mediaPath"`
	Status    JobStatus `json:"status"`
}
