package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"subtitle-player/internal/domain"
)

// Store persists transcripts and resume positions per media file.
type Store struct {
	db   *sql.DB
	stat func(name string) (os.FileInfo, error)
	now  func() time.Time
}

// Resume is the last saved playback position for a media file.
type Resume struct {
	PositionMs int64
	DurationMs int64
	UpdatedAt  time.Time
}

// Open opens (and creates when missing) the library database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open library database: %w", err)
	}

	s := &Store{db: db, stat: os.Stat, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize library schema: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcripts (
		media_path TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS positions (
		media_path TEXT PRIMARY KEY,
		position_ms INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTranscript caches t for mediaPath, keyed by the file's current size and
// modification time.
func (s *Store) SaveTranscript(ctx context.Context, mediaPath string, t domain.Transcript) error {
	size, modTime, err := s.identity(mediaPath)
	if err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcripts (media_path, size, mod_time, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(media_path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			data = excluded.data,
			created_at = excluded.created_at`,
		mediaPath, size, modTime, string(data), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// LoadTranscript returns the cached transcript for mediaPath. It reports false
// when nothing is cached or the file changed since the transcript was saved.
func (s *Store) LoadTranscript(ctx context.Context, mediaPath string) (domain.Transcript, bool, error) {
	size, modTime, err := s.identity(mediaPath)
	if err != nil {
		return domain.Transcript{}, false, err
	}

	var (
		cachedSize, cachedMod int64
		data                  string
	)
	err = s.db.QueryRowContext(ctx,
		"SELECT size, mod_time, data FROM transcripts WHERE media_path = ?",
		mediaPath,
	).Scan(&cachedSize, &cachedMod, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transcript{}, false, nil
	}
	if err != nil {
		return domain.Transcript{}, false, fmt.Errorf("load transcript: %w", err)
	}
	if cachedSize != size || cachedMod != modTime {
		return domain.Transcript{}, false, nil
	}

	var t domain.Transcript
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return domain.Transcript{}, false, fmt.Errorf("decode transcript: %w", err)
	}
	return t, true, nil
}

// SavePosition records the resume point for mediaPath.
func (s *Store) SavePosition(ctx context.Context, mediaPath string, positionMs, durationMs int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (media_path, position_ms, duration_ms, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(media_path) DO UPDATE SET
			position_ms = excluded.position_ms,
			duration_ms = excluded.duration_ms,
			updated_at = excluded.updated_at`,
		mediaPath, positionMs, durationMs, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// Position returns the saved resume point for mediaPath.
func (s *Store) Position(ctx context.Context, mediaPath string) (Resume, bool, error) {
	var r Resume
	err := s.db.QueryRowContext(ctx,
		"SELECT position_ms, duration_ms, updated_at FROM positions WHERE media_path = ?",
		mediaPath,
	).Scan(&r.PositionMs, &r.DurationMs, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, false, nil
	}
	if err != nil {
		return Resume{}, false, fmt.Errorf("load position: %w", err)
	}
	return r, true, nil
}

func (s *Store) identity(mediaPath string) (int64, int64, error) {
	info, err := s.stat(mediaPath)
	if err != nil {
		return 0, 0, fmt.Errorf("stat media: %w", err)
	}
	return info.Size(), info.ModTime().UnixNano(), nil
}
