package player

import (
	"sync"

	"github.com/sirupsen/logrus"

	"subtitle-player/internal/domain"
	"subtitle-player/internal/logging"
	"subtitle-player/internal/overlay"
)

// DefaultVolume is the slider volume applied when a controller is created.
const DefaultVolume = 70

// Config holds the initial audio and subtitle appearance for a controller.
type Config struct {
	Volume        int
	SubtitleStyle domain.SubtitleStyle
}

// DefaultConfig returns 70% volume with the default subtitle style.
func DefaultConfig() Config {
	return Config{
		Volume:        DefaultVolume,
		SubtitleStyle: domain.DefaultSubtitleStyle(),
	}
}

// Controller owns a playback engine, mirrors its position and duration, emits
// throttled position notifications and owns the subtitle overlay.
//
// Public operations never fail: precondition violations and engine errors are
// logged and observed through state, not returned.
type Controller struct {
	engine Engine
	log    logrus.FieldLogger

	mu        sync.Mutex
	session   Session
	throttle  *positionThrottle
	positions subscriberList[int64]
	states    subscriberList[bool]
	durations subscriberList[int64]
	redraws   subscriberList[overlay.Frame]

	queue   serialQueue
	overlay *overlay.Overlay
}

// NewController wires a controller to engine and applies the initial volume.
// A nil engine yields a controller whose transport operations are logged no-ops.
func NewController(engine Engine, log logrus.FieldLogger, cfg Config) *Controller {
	if log == nil {
		log = logging.Discard()
	}

	c := &Controller{
		engine:   engine,
		log:      log,
		throttle: newPositionThrottle(PositionThreshold),
	}
	c.overlay = overlay.New(cfg.SubtitleStyle, c.requestRedraw)
	c.session.Volume = volumeFromPercent(cfg.Volume)

	if engine != nil {
		engine.SetListener(engineListener{c: c})
		engine.SetVolume(c.session.Volume)
	}
	return c
}

// LoadMedia records path, resets the mirrored position and duration, hands the
// path to the engine and stops playback. Open failures arrive later as engine
// errors or media status changes.
func (c *Controller) LoadMedia(path string) {
	c.mu.Lock()
	c.session.MediaPath = path
	c.session.PositionMs = 0
	c.session.DurationMs = 0
	c.session.LastNotifiedMs = 0
	c.session.LastError = ErrorNone
	c.session.MediaStatus = MediaLoading
	c.throttle.reset()
	c.mu.Unlock()

	c.log.WithField("path", path).Info("loading media")
	if c.engine == nil {
		c.log.Warn("playback engine is not initialized")
		return
	}
	c.engine.Open(path)
	c.engine.Stop()
}

// MediaPath returns the last loaded path, or "" when nothing was loaded.
func (c *Controller) MediaPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.MediaPath
}

// HasMedia reports whether LoadMedia has been called.
func (c *Controller) HasMedia() bool {
	return c.MediaPath() != ""
}

// Play starts playback when media is loaded and neither the engine nor its last
// status report marks the source unplayable. The playing indicator follows the
// engine's confirmation only.
func (c *Controller) Play() {
	c.mu.Lock()
	hasMedia := c.session.HasMedia()
	reported := c.session.MediaStatus
	c.mu.Unlock()

	if !hasMedia {
		c.log.Warn("play ignored: no media loaded")
		return
	}
	if !reported.playable() {
		c.log.WithField("status", reported.String()).Warn("play ignored: media reported as not playable")
		return
	}
	if c.engine == nil {
		c.log.Warn("play ignored: playback engine is not initialized")
		return
	}
	if status := c.engine.MediaStatus(); !status.playable() {
		c.log.WithField("status", status.String()).Warn("play ignored: media is not playable")
		return
	}
	c.engine.Play()
}

// Pause delegates to the engine. Safe in any state.
func (c *Controller) Pause() {
	if c.engine != nil {
		c.engine.Pause()
	}
}

// Stop delegates to the engine. Safe in any state.
func (c *Controller) Stop() {
	if c.engine != nil {
		c.engine.Stop()
	}
}

// TogglePlay pauses when the engine reports playing and plays otherwise. The
// decision uses the engine's current state, not the mirror.
func (c *Controller) TogglePlay() {
	if c.engine == nil {
		c.log.Warn("toggle ignored: playback engine is not initialized")
		return
	}
	if c.engine.PlaybackState() == StatePlaying {
		c.engine.Pause()
		return
	}
	c.Play()
}

// Seek moves playback to ms. Range checking is left to the engine. The next
// position tick is delivered regardless of the throttle.
func (c *Controller) Seek(ms int64) {
	c.mu.Lock()
	c.throttle.reset()
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.SetPosition(ms)
	}
}

// SetPosition is the slider-driven alias of Seek.
func (c *Controller) SetPosition(ms int64) {
	c.Seek(ms)
}

// GetPosition polls the engine position and always emits a position
// notification for it, bypassing the throttle.
func (c *Controller) GetPosition() int64 {
	c.mu.Lock()
	pos := c.session.PositionMs
	c.mu.Unlock()

	if c.engine != nil {
		pos = c.engine.Position()
	}

	c.mu.Lock()
	c.session.PositionMs = pos
	c.session.LastNotifiedMs = pos
	c.throttle.mark(pos)
	c.pushPositionLocked(pos)
	c.mu.Unlock()
	c.queue.drain()

	return pos
}

// GetDuration returns the engine's media duration.
func (c *Controller) GetDuration() int64 {
	if c.engine == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.session.DurationMs
	}
	return c.engine.Duration()
}

// SetVolume converts a 0-100 slider value to [0,1] and forwards it. The muted
// flag is left untouched.
func (c *Controller) SetVolume(percent int) {
	volume := volumeFromPercent(percent)

	c.mu.Lock()
	c.session.Volume = volume
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.SetVolume(volume)
	}
}

// ToggleMute flips the muted flag, forwards it and returns the new value so the
// caller can update its indicator immediately. Volume is preserved.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	c.session.Muted = !c.session.Muted
	muted := c.session.Muted
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.SetMuted(muted)
	}
	return muted
}

// Muted reports the current mute flag.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Muted
}

// IsPlaying queries the engine directly.
func (c *Controller) IsPlaying() bool {
	return c.engine != nil && c.engine.PlaybackState() == StatePlaying
}

// Session returns a snapshot of the mirrored playback state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSubtitle sets or, with nil, clears the overlay text. Exactly one redraw
// request follows.
func (c *Controller) SetSubtitle(text *string) {
	c.overlay.SetText(text)
}

// SetSubtitleFont changes the overlay font and requests one redraw.
func (c *Controller) SetSubtitleFont(font domain.Font) {
	c.overlay.SetFont(font)
}

// SetSubtitleColor changes the overlay text color and requests one redraw.
func (c *Controller) SetSubtitleColor(color domain.Color) {
	c.overlay.SetTextColor(color)
}

// SetSubtitleBackground changes the overlay box color and requests one redraw.
func (c *Controller) SetSubtitleBackground(color domain.Color) {
	c.overlay.SetBackground(color)
}

// SubtitleStyle returns the overlay style.
func (c *Controller) SubtitleStyle() domain.SubtitleStyle {
	return c.overlay.Style()
}

// Overlay returns the frame the next redraw should paint.
func (c *Controller) Overlay() overlay.Frame {
	return c.overlay.Frame()
}

// OnPositionChanged subscribes to throttled and polled position notifications.
// The returned func unsubscribes.
func (c *Controller) OnPositionChanged(fn func(ms int64)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.positions.add(fn)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.positions.remove(id)
	}
}

// OnStateChanged subscribes to play/pause indicator changes.
func (c *Controller) OnStateChanged(fn func(playing bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.states.add(fn)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.states.remove(id)
	}
}

// OnDurationChanged subscribes to slider range updates.
func (c *Controller) OnDurationChanged(fn func(ms int64)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.durations.add(fn)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.durations.remove(id)
	}
}

// OnRedraw subscribes to overlay redraw requests.
func (c *Controller) OnRedraw(fn func(frame overlay.Frame)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.redraws.add(fn)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.redraws.remove(id)
	}
}

// requestRedraw snapshots the overlay under c.mu so queued frames never go
// backwards when two goroutines mutate the overlay at once.
func (c *Controller) requestRedraw() {
	c.mu.Lock()
	frame := c.overlay.Frame()
	subs := c.redraws.snapshot()
	c.queue.push(func() {
		for _, fn := range subs {
			fn(frame)
		}
	})
	c.mu.Unlock()
	c.queue.drain()
}

// pushPositionLocked queues a position notification. c.mu must be held.
func (c *Controller) pushPositionLocked(ms int64) {
	subs := c.positions.snapshot()
	c.queue.push(func() {
		for _, fn := range subs {
			fn(ms)
		}
	})
}

func (c *Controller) handleStateChanged(state PlaybackState) {
	c.mu.Lock()
	if state == c.session.State {
		c.mu.Unlock()
		return
	}
	c.session.State = state
	playing := state == StatePlaying
	subs := c.states.snapshot()
	c.queue.push(func() {
		for _, fn := range subs {
			fn(playing)
		}
	})
	c.mu.Unlock()
	c.queue.drain()

	c.log.WithField("state", state.String()).Debug("playback state changed")
}

func (c *Controller) handlePositionChanged(ms int64) {
	c.mu.Lock()
	c.session.PositionMs = ms
	if c.throttle.allow(ms) {
		c.session.LastNotifiedMs = ms
		c.pushPositionLocked(ms)
	}
	c.mu.Unlock()
	c.queue.drain()
}

func (c *Controller) handleDurationChanged(ms int64) {
	c.mu.Lock()
	c.session.DurationMs = ms
	subs := c.durations.snapshot()
	c.queue.push(func() {
		for _, fn := range subs {
			fn(ms)
		}
	})
	c.mu.Unlock()
	c.queue.drain()

	c.log.WithFields(logrus.Fields{
		"duration_ms": ms,
		"label":       FormatDuration(ms),
	}).Debug("media duration changed")
}

func (c *Controller) handleError(code ErrorCode) {
	if code == ErrorNone {
		return
	}

	c.mu.Lock()
	c.session.LastError = code
	path := c.session.MediaPath
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"path": path,
		"code": int(code),
	}).Warn("player error: " + code.Description())
}

func (c *Controller) handleMediaStatus(status MediaStatus) {
	c.mu.Lock()
	c.session.MediaStatus = status
	path := c.session.MediaPath
	c.mu.Unlock()

	entry := c.log.WithFields(logrus.Fields{
		"path":   path,
		"status": status.String(),
	})
	switch status {
	case MediaLoaded:
		hasVideo := c.engine != nil && c.engine.HasVideo()
		entry.WithField("has_video", hasVideo).Info("media loaded")
	case MediaInvalid:
		entry.Warn("invalid media file")
	case MediaNoMedia:
		entry.Warn("no media loaded")
	case MediaStalled:
		entry.Info("media playback stalled")
	default:
		entry.Debug("media status changed")
	}
}

// engineListener adapts engine notifications onto the controller without
// exporting the callbacks on Controller itself.
type engineListener struct {
	c *Controller
}

func (l engineListener) PlaybackStateChanged(state PlaybackState) { l.c.handleStateChanged(state) }
func (l engineListener) PositionChanged(ms int64)                 { l.c.handlePositionChanged(ms) }
func (l engineListener) DurationChanged(ms int64)                 { l.c.handleDurationChanged(ms) }
func (l engineListener) ErrorOccurred(code ErrorCode)             { l.c.handleError(code) }
func (l engineListener) MediaStatusChanged(status MediaStatus)    { l.c.handleMediaStatus(status) }

func volumeFromPercent(percent int) float64 {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return float64(percent) / 100
}
