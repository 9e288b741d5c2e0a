package config

import (
	"os"
	"path/filepath"
	"testing"

	"subtitle-player/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Language != "auto" {
		t.Fatalf("language = %q, want auto", cfg.Language)
	}
	if cfg.ModelPath == "" {
		t.Fatal("expected non-empty model path")
	}
	if cfg.OutputDir == "" {
		t.Fatal("expected non-empty output dir")
	}
	if cfg.LibraryPath == "" {
		t.Fatal("expected non-empty library path")
	}
	if cfg.Volume != DefaultVolume {
		t.Fatalf("volume = %d, want %d", cfg.Volume, DefaultVolume)
	}
	if cfg.Subtitle != domain.DefaultSubtitleStyle() {
		t.Fatalf("subtitle style = %+v", cfg.Subtitle)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Language != "auto" {
		t.Fatalf("language = %q, want auto", got.Language)
	}
}

func sampleSettings() domain.Settings {
	style := domain.DefaultSubtitleStyle()
	style.Font = domain.Font{Family: "Helvetica", PointSize: 22, Bold: true}
	style.Text = domain.Color{R: 255, G: 255, A: 255}

	return domain.Settings{
		ModelPath:      "/models/base.bin",
		OutputDir:      "/out",
		Language:       "en",
		LibraryPath:    "/data/library.db",
		Volume:         35,
		HighlightWords: true,
		Subtitle:       style,
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := sampleSettings()

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadKeepsDefaultsForMissingFields checks partial files from older versions.
func TestJSONStoreLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"modelPath":"/m.bin","language":"de"}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ModelPath != "/m.bin" || got.Language != "de" {
		t.Fatalf("settings = %+v", got)
	}
	if got.Volume != DefaultVolume || got.Subtitle.Font.Family != "Arial" {
		t.Fatalf("missing fields should keep defaults, got %+v", got)
	}
}

// TestJSONStoreLoadRejectsMalformed checks decoding errors surface.
func TestJSONStoreLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if _, err := NewJSONStore(path).Load(); err == nil {
		t.Fatal("expected decode error")
	}
}

// TestTOMLStoreSaveAndLoadRoundTrip checks the TOML format keeps every field.
func TestTOMLStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.toml")
	store := NewTOMLStore(path)
	want := sampleSettings()

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestTOMLStoreLoadHandWritten checks snake_case keys and clamping.
func TestTOMLStoreLoadHandWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := `
model_path = "/models"
volume = 250
highlight_words = true

[subtitle.font]
family = "Verdana"
point_size = 18
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	got, err := NewTOMLStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ModelPath != "/models" || !got.HighlightWords {
		t.Fatalf("settings = %+v", got)
	}
	if got.Volume != 100 {
		t.Fatalf("volume = %d, want clamped 100", got.Volume)
	}
	if got.Subtitle.Font.Family != "Verdana" || got.Subtitle.Font.PointSize != 18 {
		t.Fatalf("font = %+v", got.Subtitle.Font)
	}
	if got.Subtitle.Background.A != 128 {
		t.Fatalf("background alpha = %d, want default 128", got.Subtitle.Background.A)
	}
}

// TestTOMLStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestTOMLStoreLoadMissingReturnsDefaults(t *testing.T) {
	got, err := NewTOMLStore(filepath.Join(t.TempDir(), "none.toml")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Volume != DefaultVolume {
		t.Fatalf("volume = %d, want %d", got.Volume, DefaultVolume)
	}
}

// TestOpenPicksFormatByExtension checks store selection.
func TestOpenPicksFormatByExtension(t *testing.T) {
	if _, ok := Open("/cfg/settings.TOML").(*TOMLStore); !ok {
		t.Fatal("expected TOML store for .TOML")
	}
	if _, ok := Open("/cfg/settings.json").(*JSONStore); !ok {
		t.Fatal("expected JSON store for .json")
	}
	if _, ok := Open("/cfg/settings").(*JSONStore); !ok {
		t.Fatal("expected JSON store without extension")
	}
}
