package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subtitle-player/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "library.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func writeMedia(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return path
}

// TestTranscriptRoundTrip checks a cached transcript comes back intact.
func TestTranscriptRoundTrip(t *testing.T) {
	s := openTestStore(t)
	media := writeMedia(t, "media")
	ctx := context.Background()

	if _, ok, err := s.LoadTranscript(ctx, media); err != nil || ok {
		t.Fatalf("LoadTranscript() before save = %v, %v", ok, err)
	}

	want := domain.Transcript{
		Cues:  []domain.Cue{{Index: 1, StartMs: 0, EndMs: 900, Text: "hi"}},
		Words: []domain.WordTimestamp{{Word: "hi", StartMs: 0, EndMs: 400}},
	}
	if err := s.SaveTranscript(ctx, media, want); err != nil {
		t.Fatalf("SaveTranscript() error = %v", err)
	}

	got, ok, err := s.LoadTranscript(ctx, media)
	if err != nil || !ok {
		t.Fatalf("LoadTranscript() = %v, %v", ok, err)
	}
	if len(got.Cues) != 1 || got.Cues[0].Text != "hi" || len(got.Words) != 1 {
		t.Fatalf("transcript = %+v", got)
	}
}

// TestTranscriptInvalidatedByChange checks edited media is not served stale cues.
func TestTranscriptInvalidatedByChange(t *testing.T) {
	s := openTestStore(t)
	media := writeMedia(t, "media")
	ctx := context.Background()

	if err := s.SaveTranscript(ctx, media, domain.Transcript{}); err != nil {
		t.Fatalf("SaveTranscript() error = %v", err)
	}
	if err := os.WriteFile(media, []byte("re-encoded media"), 0o644); err != nil {
		t.Fatalf("rewrite media: %v", err)
	}

	if _, ok, err := s.LoadTranscript(ctx, media); err != nil || ok {
		t.Fatalf("LoadTranscript() after change = %v, %v, want miss", ok, err)
	}
}

// TestLoadTranscriptMissingMedia checks stat failures surface as errors.
func TestLoadTranscriptMissingMedia(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.LoadTranscript(context.Background(), filepath.Join(t.TempDir(), "gone.mp4")); err == nil {
		t.Fatal("expected error for missing media")
	}
}

// TestPositionUpsert checks the latest resume point wins.
func TestPositionUpsert(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if _, ok, err := s.Position(ctx, "/m/a.mp4"); err != nil || ok {
		t.Fatalf("Position() before save = %v, %v", ok, err)
	}

	if err := s.SavePosition(ctx, "/m/a.mp4", 1000, 125000); err != nil {
		t.Fatalf("SavePosition() error = %v", err)
	}
	if err := s.SavePosition(ctx, "/m/a.mp4", 64000, 125000); err != nil {
		t.Fatalf("SavePosition() error = %v", err)
	}

	got, ok, err := s.Position(ctx, "/m/a.mp4")
	if err != nil || !ok {
		t.Fatalf("Position() = %v, %v", ok, err)
	}
	if got.PositionMs != 64000 || got.DurationMs != 125000 {
		t.Fatalf("resume = %+v", got)
	}
	if !got.UpdatedAt.Equal(s.now()) {
		t.Fatalf("updated at = %v, want %v", got.UpdatedAt, s.now())
	}
}
