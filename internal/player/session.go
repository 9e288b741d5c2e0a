package player

// Session is a snapshot of the controller's mirror of engine state. The engine
// stays authoritative; these values are refreshed from notifications. Only the
// reported media status feeds a transport decision, as an extra play gate.
type Session struct {
	MediaPath      string        `json:"mediaPath"`
	DurationMs     int64         `json:"durationMs"`
	PositionMs     int64         `json:"positionMs"`
	LastNotifiedMs int64         `json:"lastNotifiedMs"`
	Volume         float64       `json:"volume"`
	Muted          bool          `json:"muted"`
	State          PlaybackState `json:"state"`
	MediaStatus    MediaStatus   `json:"mediaStatus"`
	LastError      ErrorCode     `json:"lastError"`
}

// HasMedia reports whether a media path has been loaded.
func (s Session) HasMedia() bool {
	return s.MediaPath != ""
}

// Playing reports whether the last engine-reported state was playing.
func (s Session) Playing() bool {
	return s.State == StatePlaying
}

// PositionLabel is the current-time text shown next to the slider.
func (s Session) PositionLabel() string {
	return FormatClock(s.PositionMs)
}

// DurationLabel is the total-length text shown next to the slider.
func (s Session) DurationLabel() string {
	return FormatDuration(s.DurationMs)
}

// VolumePercent converts the mirrored volume back to slider units.
func (s Session) VolumePercent() int {
	return int(s.Volume*100 + 0.5)
}
