package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"subtitle-player/internal/config"
	"subtitle-player/internal/diagnostics"
	"subtitle-player/internal/domain"
	"subtitle-player/internal/jobs"
	"subtitle-player/internal/library"
	"subtitle-player/internal/logging"
	"subtitle-player/internal/overlay"
	"subtitle-player/internal/player"
	"subtitle-player/internal/subtitle"
	"subtitle-player/internal/transcribe"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Push event names consumed by the frontend.
const (
	eventJob            = "job:event"
	eventPlayerPosition = "player:position"
	eventOverlayFrame   = "overlay:frame"
)

const (
	settingsSaveDelay = 500 * time.Millisecond
	positionSaveDelay = 2 * time.Second
)

var mediaDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Media files",
		Pattern:     "*.mp4;*.mov;*.mkv;*.avi;*.webm;*.m4v;*.mp3;*.wav;*.m4a;*.flac;*.ogg",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

var modelDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Whisper models",
		Pattern:     "*.bin;*.gguf",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

var subtitleDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Subtitles",
		Pattern:     "*.srt;*.vtt",
	},
}

// transcriptLibrary persists transcripts and resume positions.
type transcriptLibrary interface {
	LoadTranscript(ctx context.Context, mediaPath string) (domain.Transcript, bool, error)
	SaveTranscript(ctx context.Context, mediaPath string, t domain.Transcript) error
	SavePosition(ctx context.Context, mediaPath string, positionMs, durationMs int64) error
	Position(ctx context.Context, mediaPath string) (library.Resume, bool, error)
	Close() error
}

// Options configures how New locates its settings and logs.
type Options struct {
	ConfigPath string
	Log        logrus.FieldLogger
	Assets     fs.FS
}

// Deps are the collaborators an App is built from.
type Deps struct {
	Store          config.Store
	Library        transcriptLibrary
	Checker        *diagnostics.Checker
	Engine         *WebviewEngine
	NewTranscriber func(domain.Settings) jobs.Transcriber
	Log            logrus.FieldLogger
	Assets         fs.FS
}

// PlayerState is the transport view returned to the frontend.
type PlayerState struct {
	MediaPath     string `json:"mediaPath"`
	HasMedia      bool   `json:"hasMedia"`
	Playing       bool   `json:"playing"`
	PositionMs    int64  `json:"positionMs"`
	DurationMs    int64  `json:"durationMs"`
	PositionLabel string `json:"positionLabel"`
	DurationLabel string `json:"durationLabel"`
	Volume        int    `json:"volume"`
	Muted         bool   `json:"muted"`
	Status        string `json:"status"`
	LastError     string `json:"lastError,omitempty"`
}

// App wires settings, the player, transcription jobs and the UI runtime.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Player      *player.Controller
	Engine      *WebviewEngine
	Syncer      *subtitle.Syncer
	Library     transcriptLibrary
	Diagnostics domain.DiagnosticReport

	log            logrus.FieldLogger
	assets         fs.FS
	checker        *diagnostics.Checker
	newTranscriber func(domain.Settings) jobs.Transcriber
	events         *jobs.EventBus
	saveSettings   func(func())
	savePosition   func(func())
	download       func(ctx context.Context, dst, url string) error

	mu           sync.Mutex
	bridge       eventBridge
	runtimeCtx   context.Context
	transcript   domain.Transcript
	resumeMs     int64
	pendingSave  *domain.Settings
	unsubscribes []func()
}

// New builds the application with persisted settings, the library database and
// startup diagnostics.
func New(opts Options) (*App, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	configPath := strings.TrimSpace(opts.ConfigPath)
	if configPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}

	store := config.Open(configPath)
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	lib, err := library.Open(settings.LibraryPath)
	if err != nil {
		log.WithError(err).Warn("library unavailable; transcripts and positions will not be kept")
	}

	deps := Deps{
		Store:   store,
		Checker: diagnostics.NewChecker(),
		Engine:  NewWebviewEngine(log),
		NewTranscriber: func(s domain.Settings) jobs.Transcriber {
			return transcribe.NewTranscriber(s.ModelPath, s.Language, log)
		},
		Log:    log,
		Assets: opts.Assets,
	}
	if lib != nil {
		deps.Library = lib
	}

	return NewWithDeps(settings, deps), nil
}

// DefaultConfigPath returns ~/.subtitle-player/settings.json.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(homeDir, ".subtitle-player", "settings.json"), nil
}

// NewWithDeps assembles an App from explicit collaborators.
func NewWithDeps(settings domain.Settings, deps Deps) *App {
	log := deps.Log
	if log == nil {
		log = logging.Discard()
	}
	engine := deps.Engine
	if engine == nil {
		engine = NewWebviewEngine(log)
	}

	controller := player.NewController(engine, log, player.Config{
		Volume:        settings.Volume,
		SubtitleStyle: settings.Subtitle,
	})
	syncer := subtitle.NewSyncer(controller)
	syncer.SetHighlight(settings.HighlightWords)
	syncer.Attach(controller)

	a := &App{
		Settings:       settings,
		Store:          deps.Store,
		Jobs:           jobs.NewManager(),
		Player:         controller,
		Engine:         engine,
		Syncer:         syncer,
		Library:        deps.Library,
		log:            log,
		assets:         deps.Assets,
		checker:        deps.Checker,
		newTranscriber: deps.NewTranscriber,
		events:         jobs.NewEventBus(1000),
		saveSettings:   debounce.New(settingsSaveDelay),
		savePosition:   debounce.New(positionSaveDelay),
	}
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(settings)
		a.logReadiness(a.Diagnostics)
	}

	a.unsubscribes = []func(){
		controller.OnPositionChanged(a.onPosition),
		controller.OnStateChanged(a.onPlaying),
		controller.OnDurationChanged(a.onDuration),
		controller.OnRedraw(a.onRedraw),
	}
	return a
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{
		Handler: a.assetHandler(http.FileServer(http.Dir("./frontend"))),
	}
	if a.assets != nil {
		assetOptions.Assets = a.assets
		assetOptions.Handler = a.assetHandler(http.NotFoundHandler())
	}

	return wails.Run(&options.App{
		Title:       "Subtitle Player",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup attaches the frontend bridge once the Wails runtime exists.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	a.attach(wailsBridge{ctx: ctx})
}

// attach connects the engine and push events to bridge.
func (a *App) attach(bridge eventBridge) {
	a.mu.Lock()
	a.bridge = bridge
	a.mu.Unlock()

	a.Engine.Attach(bridge)
}

// Shutdown flushes pending writes and releases the library.
func (a *App) Shutdown(ctx context.Context) {
	a.flushPosition()
	a.flushSettings()

	a.Engine.Detach()
	a.Syncer.Detach()

	a.mu.Lock()
	unsubscribes := a.unsubscribes
	a.unsubscribes = nil
	a.runtimeCtx = nil
	a.bridge = nil
	a.mu.Unlock()
	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}

	if a.Library != nil {
		if err := a.Library.Close(); err != nil {
			a.log.WithError(err).Warn("close library")
		}
	}
}

// OpenMedia loads path into the player, restores a cached transcript and
// remembers the resume position to apply once the duration is known.
func (a *App) OpenMedia(path string) (PlayerState, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return PlayerState{}, fmt.Errorf("media path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return PlayerState{}, fmt.Errorf("open media: %w", err)
	}

	a.flushPosition()

	a.mu.Lock()
	a.transcript = domain.Transcript{}
	a.resumeMs = 0
	a.mu.Unlock()
	a.Syncer.Load(domain.Transcript{})
	a.Player.LoadMedia(path)

	if a.Library != nil {
		ctx := context.Background()
		cached, ok, err := a.Library.LoadTranscript(ctx, path)
		switch {
		case err != nil:
			a.log.WithError(err).WithField("media", path).Warn("load cached transcript")
		case ok:
			a.applyTranscript(path, cached)
			a.publishEvent(jobs.Event{
				Type:      jobs.EventTypeResult,
				Message:   "transcript loaded from library",
				CueCount:  len(cached.Cues),
				WordCount: len(cached.Words),
			})
		}

		resume, ok, err := a.Library.Position(ctx, path)
		if err != nil {
			a.log.WithError(err).WithField("media", path).Warn("load resume position")
		} else if ok && resume.PositionMs > 0 {
			a.mu.Lock()
			a.resumeMs = resume.PositionMs
			a.mu.Unlock()
		}
	}

	return a.PlayerState(), nil
}

// Play starts playback.
func (a *App) Play() { a.Player.Play() }

// Pause pauses playback.
func (a *App) Pause() { a.Player.Pause() }

// Stop stops playback.
func (a *App) Stop() { a.Player.Stop() }

// TogglePlay flips between play and pause.
func (a *App) TogglePlay() { a.Player.TogglePlay() }

// Seek moves playback to ms.
func (a *App) Seek(ms int64) { a.Player.Seek(ms) }

// GetPosition polls the current position.
func (a *App) GetPosition() int64 { return a.Player.GetPosition() }

// GetDuration returns the media duration.
func (a *App) GetDuration() int64 { return a.Player.GetDuration() }

// SetVolume applies a 0-100 volume and persists it.
func (a *App) SetVolume(percent int) {
	a.Player.SetVolume(percent)

	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()
	settings.Volume = a.Player.Session().VolumePercent()
	a.persistSettings(settings)
}

// ToggleMute flips mute and returns the new flag.
func (a *App) ToggleMute() bool { return a.Player.ToggleMute() }

// PlayerState returns the transport view.
func (a *App) PlayerState() PlayerState {
	s := a.Player.Session()
	state := PlayerState{
		MediaPath:     s.MediaPath,
		HasMedia:      s.HasMedia(),
		Playing:       s.Playing(),
		PositionMs:    s.PositionMs,
		DurationMs:    s.DurationMs,
		PositionLabel: s.PositionLabel(),
		DurationLabel: s.DurationLabel(),
		Volume:        s.VolumePercent(),
		Muted:         s.Muted,
		Status:        s.MediaStatus.String(),
	}
	if s.LastError != player.ErrorNone {
		state.LastError = s.LastError.Description()
	}
	return state
}

// GetOverlay returns the subtitle frame currently shown.
func (a *App) GetOverlay() overlay.Frame {
	return a.Player.Overlay()
}

// SetSubtitleText shows text on the overlay; an empty string clears it.
func (a *App) SetSubtitleText(text string) {
	if text == "" {
		a.Player.SetSubtitle(nil)
		return
	}
	a.Player.SetSubtitle(&text)
}

// SetSubtitleStyle applies and persists the overlay appearance.
func (a *App) SetSubtitleStyle(style domain.SubtitleStyle) domain.SubtitleStyle {
	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()

	settings.Subtitle = style
	normalized := config.Normalize(settings)
	a.applyStyle(normalized.Subtitle)
	a.persistSettings(normalized)
	return normalized.Subtitle
}

// SetHighlightWords toggles underlining of the spoken word.
func (a *App) SetHighlightWords(on bool) {
	a.Syncer.SetHighlight(on)
	a.Syncer.Update(a.Player.Session().PositionMs)

	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()
	settings.HighlightWords = on
	a.persistSettings(settings)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings returns the current settings.
func (a *App) GetSettings() domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Settings
}

// SaveSettings normalizes settings, applies them to the player and schedules a
// write, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(trimSettings(settings))

	a.Player.SetVolume(normalized.Volume)
	a.applyStyle(normalized.Subtitle)
	a.Syncer.SetHighlight(normalized.HighlightWords)
	a.persistSettings(normalized)

	if a.checker != nil {
		report := a.checker.Run(normalized)
		a.mu.Lock()
		a.Diagnostics = report
		a.mu.Unlock()
	}
	return normalized, nil
}

// logReadiness warns once per area that cannot be used with the current settings.
func (a *App) logReadiness(report domain.DiagnosticReport) {
	for _, area := range domain.CheckAreas {
		if report.Ready.Ready(area) {
			continue
		}
		failed := lo.FilterMap(report.In(area), func(c domain.Check, _ int) (string, bool) {
			return c.ID, c.Status == domain.CheckFail
		})
		a.log.WithFields(logrus.Fields{"area": area, "checks": failed}).Warn("feature unavailable")
	}
}

// RefreshDiagnostics reruns dependency checks against the current settings.
func (a *App) RefreshDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()
	if a.checker == nil {
		return domain.DiagnosticReport{}
	}

	report := a.checker.Run(settings)
	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report
}

// StartTranscription runs a transcription worker for mediaPath, or for the
// loaded media when mediaPath is empty.
func (a *App) StartTranscription(mediaPath string) (domain.Job, error) {
	mediaPath = strings.TrimSpace(mediaPath)
	if mediaPath == "" {
		mediaPath = a.Player.MediaPath()
	}
	if mediaPath == "" {
		return domain.Job{}, fmt.Errorf("no media to transcribe")
	}
	if a.newTranscriber == nil {
		return domain.Job{}, fmt.Errorf("transcriber is not configured")
	}

	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()

	worker := jobs.NewWorker(a.newTranscriber(settings), mediaPath, jobs.WithLogger(a.log))
	if err := a.Jobs.Start(worker.ID(), mediaPath); err != nil {
		return domain.Job{}, err
	}
	if err := worker.Start(); err != nil {
		_ = a.Jobs.Transition(worker.ID(), domain.JobStatusFailed)
		return domain.Job{}, err
	}
	_ = a.Jobs.Transition(worker.ID(), domain.JobStatusRunning)
	a.publishEvent(jobs.Event{
		JobID:   worker.ID(),
		Type:    jobs.EventTypeStatus,
		Status:  domain.JobStatusRunning,
		Message: "transcription started",
	})

	go a.consumeWorker(worker, mediaPath)
	return a.Jobs.Current(), nil
}

// DiscardTranscription abandons the active job so another can start. The
// abandoned worker still runs to completion; its events are dropped.
func (a *App) DiscardTranscription() error {
	job := a.Jobs.Current()
	if !a.Jobs.IsRunning() {
		return fmt.Errorf("no transcription is running")
	}

	a.Jobs.Reset()
	a.log.WithFields(logrus.Fields{"job": job.ID, "media": job.MediaPath}).Info("transcription discarded")
	a.publishEvent(jobs.Event{
		JobID:   job.ID,
		Type:    jobs.EventTypeStatus,
		Message: "transcription discarded",
	})
	return nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// ExportSubtitles writes the current transcript to path, or to the output
// directory next to a name derived from the media when path is empty.
func (a *App) ExportSubtitles(path string) (string, error) {
	a.mu.Lock()
	transcript := a.transcript
	outputDir := a.Settings.OutputDir
	a.mu.Unlock()

	if len(transcript.Cues) == 0 {
		return "", fmt.Errorf("no transcript to export")
	}

	target := strings.TrimSpace(path)
	if target == "" {
		media := a.Player.MediaPath()
		base := strings.TrimSuffix(filepath.Base(media), filepath.Ext(media))
		target = filepath.Join(outputDir, base+".srt")
	}

	if err := subtitle.ExportFile(target, transcript); err != nil {
		return "", err
	}
	a.log.WithField("path", target).Info("subtitles exported")
	return target, nil
}

// PickMediaFile opens a native file dialog for media selection.
func (a *App) PickMediaFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Open video",
		Filters: mediaDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickModelFile opens a native file dialog for whisper model selection.
func (a *App) PickModelFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select whisper model",
		Filters: modelDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for subtitle exports.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickExportFile opens a save dialog for subtitle export.
func (a *App) PickExportFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	media := a.Player.MediaPath()
	path, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:           "Export subtitles",
		DefaultFilename: strings.TrimSuffix(filepath.Base(media), filepath.Ext(media)) + ".srt",
		Filters:         subtitleDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// consumeWorker forwards worker events to the bus and applies the outcome.
func (a *App) consumeWorker(worker *jobs.Worker, mediaPath string) {
	log := a.log.WithFields(logrus.Fields{"job": worker.ID(), "media": mediaPath})

	for event := range worker.Events() {
		if a.Jobs.Current().ID != worker.ID() {
			log.WithField("event", string(event.Type)).Debug("event from discarded job")
			continue
		}
		switch event.Type {
		case jobs.WorkerEventResult:
			if err := a.Jobs.Transition(worker.ID(), domain.JobStatusSucceeded); err != nil {
				log.WithError(err).Debug("result from discarded job")
				continue
			}
			a.storeTranscript(mediaPath, event.Transcript)
			if a.Player.MediaPath() == mediaPath {
				a.applyTranscript(mediaPath, event.Transcript)
			}
		case jobs.WorkerEventError:
			if err := a.Jobs.Transition(worker.ID(), domain.JobStatusFailed); err != nil {
				log.WithError(err).Debug("failure from discarded job")
				continue
			}
		}
		a.emit(eventJob, a.events.PublishWorkerEvent(event))
	}
}

func (a *App) storeTranscript(mediaPath string, t domain.Transcript) {
	if a.Library == nil {
		return
	}
	if err := a.Library.SaveTranscript(context.Background(), mediaPath, t); err != nil {
		a.log.WithError(err).WithField("media", mediaPath).Warn("cache transcript")
	}
}

// applyTranscript makes t the active subtitle track.
func (a *App) applyTranscript(mediaPath string, t domain.Transcript) {
	a.mu.Lock()
	a.transcript = t
	a.mu.Unlock()

	a.Syncer.Load(t)
	a.Syncer.Update(a.Player.Session().PositionMs)
	a.log.WithFields(logrus.Fields{
		"media": mediaPath,
		"cues":  len(t.Cues),
	}).Info("subtitle track loaded")
}

func (a *App) applyStyle(style domain.SubtitleStyle) {
	current := a.Player.SubtitleStyle()
	if style.Font != current.Font {
		a.Player.SetSubtitleFont(style.Font)
	}
	if style.Text != current.Text {
		a.Player.SetSubtitleColor(style.Text)
	}
	if style.Background != current.Background {
		a.Player.SetSubtitleBackground(style.Background)
	}
}

// persistSettings records settings and schedules a debounced write.
func (a *App) persistSettings(settings domain.Settings) {
	a.mu.Lock()
	a.Settings = settings
	pending := settings
	a.pendingSave = &pending
	a.mu.Unlock()

	a.saveSettings(a.flushSettings)
}

func (a *App) flushSettings() {
	a.mu.Lock()
	pending := a.pendingSave
	a.pendingSave = nil
	a.mu.Unlock()

	if pending == nil || a.Store == nil {
		return
	}
	if err := a.Store.Save(*pending); err != nil {
		a.log.WithError(err).Warn("save settings")
	}
}

// flushPosition stores the resume point for the loaded media.
func (a *App) flushPosition() {
	s := a.Player.Session()
	if a.Library == nil || !s.HasMedia() || s.DurationMs <= 0 {
		return
	}
	if err := a.Library.SavePosition(context.Background(), s.MediaPath, s.PositionMs, s.DurationMs); err != nil {
		a.log.WithError(err).WithField("media", s.MediaPath).Warn("save resume position")
	}
}

func (a *App) onPosition(ms int64) {
	a.emit(eventPlayerPosition, map[string]interface{}{
		"ms":    ms,
		"label": player.FormatClock(ms),
	})
	a.savePosition(a.flushPosition)
}

func (a *App) onPlaying(playing bool) {
	s := a.Player.Session()
	a.publishEvent(jobs.Event{
		Type:       jobs.EventTypePlayback,
		Message:    s.State.String(),
		PositionMs: s.PositionMs,
		DurationMs: s.DurationMs,
		Playing:    &playing,
	})
}

// onDuration publishes the slider range and applies a pending resume seek.
func (a *App) onDuration(ms int64) {
	a.publishEvent(jobs.Event{
		Type:       jobs.EventTypePlayback,
		Message:    player.FormatDuration(ms),
		DurationMs: ms,
	})
	if ms <= 0 {
		return
	}

	a.mu.Lock()
	resume := a.resumeMs
	if resume > 0 && resume < ms {
		a.resumeMs = 0
	} else {
		resume = 0
	}
	a.mu.Unlock()

	if resume > 0 {
		a.log.WithField("position_ms", resume).Info("resuming playback position")
		a.Player.Seek(resume)
	}
}

func (a *App) onRedraw(frame overlay.Frame) {
	a.emit(eventOverlayFrame, frame)
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	a.emit(eventJob, a.events.Publish(event))
}

func (a *App) emit(name string, data interface{}) {
	a.mu.Lock()
	bridge := a.bridge
	a.mu.Unlock()
	if bridge != nil {
		bridge.Emit(name, data)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// trimSettings trims user-entered paths.
func trimSettings(settings domain.Settings) domain.Settings {
	settings.ModelPath = strings.TrimSpace(settings.ModelPath)
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.LibraryPath = strings.TrimSpace(settings.LibraryPath)
	settings.Language = strings.TrimSpace(settings.Language)
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
