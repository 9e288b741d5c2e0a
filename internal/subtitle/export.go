package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"subtitle-player/internal/domain"
)

// WriteSRT writes cues in SubRip format.
func WriteSRT(w io.Writer, t domain.Transcript) error {
	bw := bufio.NewWriter(w)
	for i, cue := range NewTrack(t).Cues() {
		if i > 0 {
			fmt.Fprint(bw, "\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n", i+1, timestamp(cue.StartMs, ","), timestamp(cue.EndMs, ","), cue.Text)
	}
	return bw.Flush()
}

// WriteVTT writes cues in WebVTT format.
func WriteVTT(w io.Writer, t domain.Transcript) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "WEBVTT\n")
	for _, cue := range NewTrack(t).Cues() {
		fmt.Fprintf(bw, "\n%s --> %s\n%s\n", timestamp(cue.StartMs, "."), timestamp(cue.EndMs, "."), cue.Text)
	}
	return bw.Flush()
}

// ExportFile writes t to path, picking the format from the extension.
// Unknown extensions fall back to SRT.
func ExportFile(path string, t domain.Transcript) error {
	write := WriteSRT
	if strings.EqualFold(filepath.Ext(path), ".vtt") {
		write = WriteVTT
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create subtitle directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	if err := write(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write subtitle file: %w", err)
	}
	return f.Close()
}

func timestamp(ms int64, sep string) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms%1000)
}
