package config

import (
	"os"
	"path/filepath"
	"strings"

	"subtitle-player/internal/domain"
)

// DefaultVolume is the initial volume percentage.
const DefaultVolume = 70

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		ModelPath:   filepath.Join(homeDir, ".subtitle-player", "models"),
		OutputDir:   filepath.Join(homeDir, "Documents", "Subtitles"),
		Language:    "auto",
		LibraryPath: filepath.Join(homeDir, ".subtitle-player", "library.db"),
		Volume:      DefaultVolume,
		Subtitle:    domain.DefaultSubtitleStyle(),
	}
}

// Normalize clamps out-of-range values and fills blank fields from defaults.
func Normalize(cfg domain.Settings) domain.Settings {
	defaults := DefaultSettings()

	if cfg.Volume < 0 {
		cfg.Volume = 0
	}
	if cfg.Volume > 100 {
		cfg.Volume = 100
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = defaults.Language
	}
	if strings.TrimSpace(cfg.LibraryPath) == "" {
		cfg.LibraryPath = defaults.LibraryPath
	}
	if strings.TrimSpace(cfg.Subtitle.Font.Family) == "" {
		cfg.Subtitle.Font.Family = defaults.Subtitle.Font.Family
	}
	if cfg.Subtitle.Font.PointSize <= 0 {
		cfg.Subtitle.Font.PointSize = defaults.Subtitle.Font.PointSize
	}

	return cfg
}
