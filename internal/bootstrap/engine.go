package bootstrap

import (
	"context"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"subtitle-player/internal/player"
)

// Frontend event names used by the webview engine bridge.
const (
	eventEngineCommand  = "engine:command"
	eventEngineState    = "engine:state"
	eventEnginePosition = "engine:position"
	eventEngineDuration = "engine:duration"
	eventEngineError    = "engine:error"
	eventEngineStatus   = "engine:status"
)

// eventBridge is the subset of the Wails runtime event API the host uses.
type eventBridge interface {
	Emit(name string, data ...interface{})
	On(name string, cb func(data ...interface{})) func()
}

// wailsBridge routes events through the Wails runtime bound to ctx.
type wailsBridge struct {
	ctx context.Context
}

func (b wailsBridge) Emit(name string, data ...interface{}) {
	wailsruntime.EventsEmit(b.ctx, name, data...)
}

func (b wailsBridge) On(name string, cb func(data ...interface{})) func() {
	return wailsruntime.EventsOn(b.ctx, name, cb)
}

// engineCommand is sent to the frontend <video> element.
type engineCommand struct {
	Op         string  `json:"op"`
	URL        string  `json:"url,omitempty"`
	PositionMs int64   `json:"positionMs,omitempty"`
	Volume     float64 `json:"volume"`
	Muted      bool    `json:"muted"`
}

// WebviewEngine implements player.Engine on top of an HTML5 video element
// living in the frontend. Commands are emitted as runtime events; the frontend
// reports state back through the engine:* events.
type WebviewEngine struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	bridge   eventBridge
	cancels  []func()
	listener player.Listener
	state    player.PlaybackState
	status   player.MediaStatus
	position int64
	duration int64
	hasVideo bool
	volume   float64
	muted    bool
}

// NewWebviewEngine creates an engine with no frontend attached. Commands issued
// before Attach are dropped.
func NewWebviewEngine(log logrus.FieldLogger) *WebviewEngine {
	return &WebviewEngine{log: log, volume: 1}
}

// Attach starts listening to frontend reports on bridge.
func (e *WebviewEngine) Attach(bridge eventBridge) {
	e.Detach()

	cancels := []func(){
		bridge.On(eventEngineState, e.onState),
		bridge.On(eventEnginePosition, e.onPosition),
		bridge.On(eventEngineDuration, e.onDuration),
		bridge.On(eventEngineError, e.onError),
		bridge.On(eventEngineStatus, e.onStatus),
	}

	e.mu.Lock()
	e.bridge = bridge
	e.cancels = cancels
	e.mu.Unlock()
}

// Detach stops listening and drops the bridge.
func (e *WebviewEngine) Detach() {
	e.mu.Lock()
	cancels := e.cancels
	e.cancels = nil
	e.bridge = nil
	e.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
}

func (e *WebviewEngine) Open(path string) {
	e.mu.Lock()
	e.state = player.StateStopped
	e.status = player.MediaLoading
	e.position = 0
	e.duration = 0
	e.hasVideo = false
	e.mu.Unlock()

	e.send(engineCommand{Op: "open", URL: mediaURL(path)})
}

func (e *WebviewEngine) Play()  { e.send(engineCommand{Op: "play"}) }
func (e *WebviewEngine) Pause() { e.send(engineCommand{Op: "pause"}) }
func (e *WebviewEngine) Stop()  { e.send(engineCommand{Op: "stop"}) }

func (e *WebviewEngine) SetPosition(ms int64) {
	e.send(engineCommand{Op: "seek", PositionMs: ms})
}

func (e *WebviewEngine) SetVolume(volume float64) {
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()
	e.send(engineCommand{Op: "volume"})
}

func (e *WebviewEngine) SetMuted(muted bool) {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
	e.send(engineCommand{Op: "mute"})
}

func (e *WebviewEngine) PlaybackState() player.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *WebviewEngine) MediaStatus() player.MediaStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *WebviewEngine) Position() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *WebviewEngine) Duration() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *WebviewEngine) HasVideo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasVideo
}

func (e *WebviewEngine) SetListener(l player.Listener) {
	e.mu.Lock()
	e.listener = l
	e.mu.Unlock()
}

// send stamps the current audio settings on cmd and emits it.
func (e *WebviewEngine) send(cmd engineCommand) {
	e.mu.Lock()
	bridge := e.bridge
	cmd.Volume = e.volume
	cmd.Muted = e.muted
	e.mu.Unlock()

	if bridge == nil {
		e.log.WithField("op", cmd.Op).Debug("engine command dropped: frontend not attached")
		return
	}
	bridge.Emit(eventEngineCommand, cmd)
}

func (e *WebviewEngine) onState(data ...interface{}) {
	state, ok := parsePlaybackState(stringField(data, "state"))
	if !ok {
		return
	}

	e.mu.Lock()
	e.state = state
	l := e.listener
	e.mu.Unlock()

	if l != nil {
		l.PlaybackStateChanged(state)
	}
}

func (e *WebviewEngine) onPosition(data ...interface{}) {
	ms, ok := intField(data, "ms")
	if !ok {
		return
	}

	e.mu.Lock()
	e.position = ms
	l := e.listener
	e.mu.Unlock()

	if l != nil {
		l.PositionChanged(ms)
	}
}

func (e *WebviewEngine) onDuration(data ...interface{}) {
	ms, ok := intField(data, "ms")
	if !ok {
		return
	}

	e.mu.Lock()
	e.duration = ms
	l := e.listener
	e.mu.Unlock()

	if l != nil {
		l.DurationChanged(ms)
	}
}

func (e *WebviewEngine) onError(data ...interface{}) {
	code := parseErrorCode(stringField(data, "code"))

	e.mu.Lock()
	e.status = player.MediaInvalid
	l := e.listener
	e.mu.Unlock()

	if l != nil {
		l.ErrorOccurred(code)
		l.MediaStatusChanged(player.MediaInvalid)
	}
}

func (e *WebviewEngine) onStatus(data ...interface{}) {
	status, ok := parseMediaStatus(stringField(data, "status"))
	if !ok {
		return
	}
	hasVideo, _ := boolField(data, "hasVideo")

	e.mu.Lock()
	e.status = status
	if status == player.MediaLoaded {
		e.hasVideo = hasVideo
	}
	l := e.listener
	e.mu.Unlock()

	if l != nil {
		l.MediaStatusChanged(status)
	}
}

// mediaURL is the asset server route serving the loaded file to the webview.
func mediaURL(path string) string {
	return mediaRoute + "?path=" + url.QueryEscape(path)
}

func parsePlaybackState(raw string) (player.PlaybackState, bool) {
	switch raw {
	case "playing":
		return player.StatePlaying, true
	case "paused":
		return player.StatePaused, true
	case "stopped":
		return player.StateStopped, true
	default:
		return player.StateStopped, false
	}
}

func parseMediaStatus(raw string) (player.MediaStatus, bool) {
	switch raw {
	case "no-media":
		return player.MediaNoMedia, true
	case "loading":
		return player.MediaLoading, true
	case "loaded":
		return player.MediaLoaded, true
	case "buffered":
		return player.MediaBuffered, true
	case "stalled":
		return player.MediaStalled, true
	case "end":
		return player.MediaEnd, true
	case "invalid":
		return player.MediaInvalid, true
	default:
		return player.MediaNoMedia, false
	}
}

// parseErrorCode maps HTML MediaError names onto the engine taxonomy.
func parseErrorCode(raw string) player.ErrorCode {
	switch raw {
	case "resource", "aborted":
		return player.ErrorResource
	case "format", "decode", "src-not-supported":
		return player.ErrorFormat
	case "network":
		return player.ErrorNetwork
	case "access-denied":
		return player.ErrorAccessDenied
	default:
		return player.ErrorUnknown
	}
}

// payload returns the first event argument as a JSON object.
func payload(data []interface{}) map[string]interface{} {
	if len(data) == 0 {
		return nil
	}
	m, _ := data[0].(map[string]interface{})
	return m
}

func stringField(data []interface{}, key string) string {
	s, _ := payload(data)[key].(string)
	return s
}

func intField(data []interface{}, key string) (int64, bool) {
	switch v := payload(data)[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func boolField(data []interface{}, key string) (bool, bool) {
	b, ok := payload(data)[key].(bool)
	return b, ok
}
