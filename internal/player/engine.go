// Package player mediates between a playback engine and UI-facing transport,
// position notification and subtitle overlay contracts.
package player

// PlaybackState is the engine-reported transport state.
type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StatePaused
	StatePlaying
)

func (s PlaybackState) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "stopped"
	}
}

// MediaStatus is the engine-reported readiness of the current source.
type MediaStatus int

const (
	MediaNoMedia MediaStatus = iota
	MediaLoading
	MediaLoaded
	MediaBuffered
	MediaStalled
	MediaEnd
	MediaInvalid
)

func (s MediaStatus) String() string {
	switch s {
	case MediaLoading:
		return "loading"
	case MediaLoaded:
		return "loaded"
	case MediaBuffered:
		return "buffered"
	case MediaStalled:
		return "stalled"
	case MediaEnd:
		return "end"
	case MediaInvalid:
		return "invalid"
	default:
		return "no-media"
	}
}

// playable reports whether play may be attempted in this status.
func (s MediaStatus) playable() bool {
	return s != MediaNoMedia && s != MediaInvalid
}

// ErrorCode is the fixed taxonomy of engine failures.
type ErrorCode int

const (
	ErrorNone ErrorCode = iota
	ErrorResource
	ErrorFormat
	ErrorNetwork
	ErrorAccessDenied
	ErrorUnknown
)

// Description is a human-readable explanation of the error class.
func (e ErrorCode) Description() string {
	switch e {
	case ErrorNone:
		return "no error"
	case ErrorResource:
		return "cannot load media resource"
	case ErrorFormat:
		return "unsupported media format"
	case ErrorNetwork:
		return "network error"
	case ErrorAccessDenied:
		return "access denied"
	default:
		return "unknown error"
	}
}

// Engine is the black-box media decode/render collaborator. Commands are
// fire-and-forget; effects are confirmed through the Listener.
type Engine interface {
	Open(path string)
	Play()
	Pause()
	Stop()
	SetPosition(ms int64)
	SetVolume(volume float64)
	SetMuted(muted bool)

	PlaybackState() PlaybackState
	MediaStatus() MediaStatus
	Position() int64
	Duration() int64
	HasVideo() bool

	// SetListener registers the receiver of engine notifications. Notifications may
	// arrive on any goroutine.
	SetListener(l Listener)
}

// Listener receives asynchronous engine notifications.
type Listener interface {
	PlaybackStateChanged(state PlaybackState)
	PositionChanged(ms int64)
	DurationChanged(ms int64)
	ErrorOccurred(code ErrorCode)
	MediaStatusChanged(status MediaStatus)
}
