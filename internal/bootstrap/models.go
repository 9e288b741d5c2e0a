package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subtitle-player/internal/config"
	"subtitle-player/internal/jobs"
	"subtitle-player/internal/transcribe"
)

const modelDownloadTimeout = 45 * time.Minute

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// ModelPreset is one downloadable whisper.cpp model.
type ModelPreset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FileName    string `json:"fileName"`
	SizeLabel   string `json:"sizeLabel"`
	Description string `json:"description"`
	Downloaded  bool   `json:"downloaded"`
	LocalPath   string `json:"localPath,omitempty"`
}

// URL is the download location of the preset.
func (m ModelPreset) URL() string {
	return modelBaseURL + m.FileName
}

var modelCatalog = []ModelPreset{
	{ID: "tiny", Name: "Tiny", FileName: "ggml-tiny.bin", SizeLabel: "~75 MB", Description: "Fastest; rough subtitles."},
	{ID: "base", Name: "Base", FileName: "ggml-base.bin", SizeLabel: "~142 MB", Description: "Good default for subtitles."},
	{ID: "small", Name: "Small", FileName: "ggml-small.bin", SizeLabel: "~466 MB", Description: "Better word timing and accuracy."},
	{ID: "medium", Name: "Medium", FileName: "ggml-medium.bin", SizeLabel: "~1.5 GB", Description: "High quality, slower."},
	{ID: "large-v3-turbo", Name: "Large v3 Turbo", FileName: "ggml-large-v3-turbo.bin", SizeLabel: "~1.6 GB", Description: "Near large-v3 quality at medium speed."},
}

// ListModels returns the catalog with presets already present in the model
// directory marked as downloaded.
func (a *App) ListModels() []ModelPreset {
	models := make([]ModelPreset, len(modelCatalog))
	copy(models, modelCatalog)

	dir, err := modelDirectory(a.GetSettings().ModelPath)
	if err != nil {
		return models
	}
	for i := range models {
		candidate := filepath.Join(dir, models[i].FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			models[i].Downloaded = true
			models[i].LocalPath = candidate
		}
	}
	return models
}

// DownloadModel fetches a catalog model into the model directory and selects it.
func (a *App) DownloadModel(modelID string) (ModelPreset, error) {
	model, ok := findModel(strings.TrimSpace(modelID))
	if !ok {
		return ModelPreset{}, fmt.Errorf("unknown model id: %s", modelID)
	}

	settings := a.GetSettings()
	dir, err := modelDirectory(settings.ModelPath)
	if err != nil {
		return ModelPreset{}, err
	}

	target := filepath.Join(dir, model.FileName)
	a.publishEvent(jobs.Event{Type: jobs.EventTypeStatus, Message: "downloading model " + model.Name})

	ctx, cancel := context.WithTimeout(context.Background(), modelDownloadTimeout)
	defer cancel()
	download := a.download
	if download == nil {
		download = downloadURLToFile
	}
	if err := download(ctx, target, model.URL()); err != nil {
		a.publishEvent(jobs.Event{Type: jobs.EventTypeError, Message: "model download failed", Detail: err.Error()})
		return ModelPreset{}, fmt.Errorf("download model %s: %w", model.Name, err)
	}

	settings.ModelPath = target
	a.persistSettings(config.Normalize(settings))
	a.RefreshDiagnostics()
	a.publishEvent(jobs.Event{Type: jobs.EventTypeStatus, Message: "model ready: " + model.Name})

	model.Downloaded = true
	model.LocalPath = target
	return model, nil
}

func findModel(id string) (ModelPreset, bool) {
	for _, model := range modelCatalog {
		if model.ID == id {
			return model, true
		}
	}
	return ModelPreset{}, false
}

// modelDirectory resolves where models live for a configured model path,
// which may name a model file or a directory.
func modelDirectory(modelPath string) (string, error) {
	trimmed := strings.TrimSpace(modelPath)
	if trimmed == "" {
		return config.DefaultSettings().ModelPath, nil
	}

	info, err := os.Stat(trimmed)
	switch {
	case err == nil && info.IsDir():
		return trimmed, nil
	case err == nil && transcribe.IsModelFile(trimmed):
		return filepath.Dir(trimmed), nil
	case err == nil:
		return "", fmt.Errorf("model path points to a non-model file: %s", trimmed)
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("check model path: %w", err)
	case transcribe.IsModelFile(trimmed):
		return filepath.Dir(trimmed), nil
	default:
		return trimmed, nil
	}
}

// downloadURLToFile streams sourceURL into destinationPath via a temp file.
func downloadURLToFile(ctx context.Context, destinationPath, sourceURL string) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return fmt.Errorf("prepare destination directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "subtitle-player")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	tmpPath := destinationPath + ".download"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write destination file: %w", errors.Join(copyErr, closeErr))
	}

	if err := os.Rename(tmpPath, destinationPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move downloaded file into place: %w", err)
	}
	return nil
}
