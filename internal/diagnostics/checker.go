package diagnostics

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"subtitle-player/internal/domain"
	"subtitle-player/internal/transcribe"
)

// Readable subtitle sizes in points; outside this range the check warns.
const (
	minReadablePointSize = 10
	maxReadablePointSize = 48
)

// minContrast is the text/background ratio below which subtitles are hard to
// read over a dark frame.
const minContrast = 3.0

// System is the filesystem and PATH surface used by the checker. Nil fields
// fall back to the os and os/exec functions.
type System struct {
	LookPath   func(string) (string, error)
	Stat       func(string) (os.FileInfo, error)
	ReadDir    func(string) ([]os.DirEntry, error)
	MkdirAll   func(string, os.FileMode) error
	CreateTemp func(string, string) (*os.File, error)
	Remove     func(string) error
}

func (s System) withDefaults() System {
	if s.LookPath == nil {
		s.LookPath = exec.LookPath
	}
	if s.Stat == nil {
		s.Stat = os.Stat
	}
	if s.ReadDir == nil {
		s.ReadDir = os.ReadDir
	}
	if s.MkdirAll == nil {
		s.MkdirAll = os.MkdirAll
	}
	if s.CreateTemp == nil {
		s.CreateTemp = os.CreateTemp
	}
	if s.Remove == nil {
		s.Remove = os.Remove
	}
	return s
}

// Checker reports whether the player can play with subtitles, export them and
// generate them, each as a separate area.
type Checker struct {
	sys System
	now func() time.Time
}

// NewChecker builds a checker on the real OS.
func NewChecker() *Checker {
	return NewCheckerWith(System{})
}

// NewCheckerWith builds a checker on sys.
func NewCheckerWith(sys System) *Checker {
	return &Checker{sys: sys.withDefaults(), now: time.Now}
}

// Run checks settings and groups the results by area.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	checks := []domain.Check{
		checkSubtitleStyle(settings.Subtitle),
		c.checkLibrary(settings.LibraryPath),
		c.checkExportDir(settings.OutputDir),
		c.checkExecutable("ffmpeg", "extracts the audio track"),
		c.checkExecutable("whisper.cpp", "turns audio into cues"),
		c.checkModel(settings.ModelPath),
	}
	return domain.NewDiagnosticReport(c.now().UTC(), checks)
}

func passed(c domain.Check, format string, args ...any) domain.Check {
	c.Status = domain.CheckPass
	c.Message = fmt.Sprintf(format, args...)
	return c
}

func warned(c domain.Check, hint, format string, args ...any) domain.Check {
	c.Status = domain.CheckWarn
	c.Message = fmt.Sprintf(format, args...)
	c.Hint = hint
	return c
}

func failed(c domain.Check, hint, format string, args ...any) domain.Check {
	c.Status = domain.CheckFail
	c.Message = fmt.Sprintf(format, args...)
	c.Hint = hint
	return c
}

// checkSubtitleStyle fails when the overlay text cannot be seen at all and
// warns when it is likely hard to read.
func checkSubtitleStyle(style domain.SubtitleStyle) domain.Check {
	c := domain.Check{ID: "subtitle_style", Area: domain.AreaPlayback, Name: "Subtitle style"}
	const fix = "Adjust the subtitle font and colours in settings."

	family := strings.TrimSpace(style.Font.Family)
	switch {
	case family == "":
		return failed(c, fix, "No subtitle font family is set.")
	case style.Font.PointSize <= 0:
		return failed(c, fix, "Subtitle size %dpt cannot be rendered.", style.Font.PointSize)
	case style.Text.A == 0:
		return failed(c, fix, "Subtitle text colour is fully transparent.")
	}

	if style.Font.PointSize < minReadablePointSize || style.Font.PointSize > maxReadablePointSize {
		return warned(c, fmt.Sprintf("Sizes between %d and %dpt read best.", minReadablePointSize, maxReadablePointSize),
			"%s %dpt is outside the readable range.", family, style.Font.PointSize)
	}
	if ratio := darkFrameContrast(style); ratio < minContrast {
		return warned(c, "Use a lighter text colour or a more opaque background.",
			"Text contrast over a dark frame is %.1f:1.", ratio)
	}
	return passed(c, "%s %dpt, %s on %s", family, style.Font.PointSize, style.Text.RGBA(), style.Background.RGBA())
}

// darkFrameContrast composites the background box and then the text over a
// black frame and returns their WCAG contrast ratio.
func darkFrameContrast(style domain.SubtitleStyle) float64 {
	black := [3]float64{}
	box := blend(style.Background, black)
	text := blend(style.Text, box)
	hi, low := luminance(text), luminance(box)
	if low > hi {
		hi, low = low, hi
	}
	return (hi + 0.05) / (low + 0.05)
}

func blend(top domain.Color, under [3]float64) [3]float64 {
	a := float64(top.A) / 255
	return [3]float64{
		float64(top.R)/255*a + under[0]*(1-a),
		float64(top.G)/255*a + under[1]*(1-a),
		float64(top.B)/255*a + under[2]*(1-a),
	}
}

func luminance(rgb [3]float64) float64 {
	lin := lo.Map(rgb[:], func(v float64, _ int) float64 {
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	})
	return 0.2126*lin[0] + 0.7152*lin[1] + 0.0722*lin[2]
}

// checkLibrary warns when resume positions and cached transcripts cannot be
// stored. Playback itself still works.
func (c *Checker) checkLibrary(path string) domain.Check {
	check := domain.Check{ID: "library", Area: domain.AreaPlayback, Name: "Library"}

	if strings.TrimSpace(path) == "" {
		return warned(check, "Set library_path to keep resume positions between sessions.",
			"No library database configured.")
	}
	if info, err := c.sys.Stat(path); err == nil && info.IsDir() {
		return warned(check, "Point library_path at a file such as library.db.",
			"%s is a directory, resume positions will not be saved.", path)
	}
	if err := c.sys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return warned(check, "Pick a location the current user can write to.",
			"Cannot create %s, resume positions will not be saved.", filepath.Dir(path))
	}
	return passed(check, "Resume positions and transcripts kept in %s", path)
}

// checkExportDir confirms .srt files can be written to dir.
func (c *Checker) checkExportDir(dir string) domain.Check {
	check := domain.Check{ID: "export_dir", Area: domain.AreaExport, Name: "Export directory"}
	const fix = "Set output_dir to a writable directory."

	if strings.TrimSpace(dir) == "" {
		return failed(check, fix, "No export directory configured.")
	}
	if err := c.sys.MkdirAll(dir, 0o755); err != nil {
		return failed(check, fix, "Cannot create %s.", dir)
	}
	f, err := c.sys.CreateTemp(dir, ".srt-write-*")
	if err != nil {
		return failed(check, fix, "Cannot write subtitle files to %s.", dir)
	}
	name := f.Name()
	_ = f.Close()
	_ = c.sys.Remove(name)
	return passed(check, "Subtitles export to %s", dir)
}

// checkExecutable looks up a transcription tool on PATH.
func (c *Checker) checkExecutable(name, role string) domain.Check {
	check := domain.Check{ID: "tool_" + name, Area: domain.AreaTranscription, Name: name}

	path, err := c.sys.LookPath(name)
	if err != nil {
		return failed(check, "Install "+name+" and put it on PATH to generate subtitles.",
			"%s (%s) is not on PATH.", name, role)
	}
	return passed(check, "%s", path)
}

// checkModel accepts either a model file or a directory holding one.
func (c *Checker) checkModel(path string) domain.Check {
	check := domain.Check{ID: "model", Area: domain.AreaTranscription, Name: "Whisper model"}
	const fix = "Download a whisper.cpp model or set model_path."

	if strings.TrimSpace(path) == "" {
		return failed(check, fix, "No whisper model configured.")
	}
	info, err := c.sys.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return failed(check, fix, "%s does not exist.", path)
	case err != nil:
		return failed(check, "Check the permissions of "+path+".", "Cannot access %s.", path)
	case !info.IsDir():
		return passed(check, "%s", path)
	}

	entries, err := c.sys.ReadDir(path)
	if err != nil {
		return failed(check, "Check the permissions of "+path+".", "Cannot list %s.", path)
	}
	model, ok := lo.Find(entries, func(e os.DirEntry) bool {
		return !e.IsDir() && transcribe.IsModelFile(e.Name())
	})
	if !ok {
		return failed(check, fix, "%s holds no .bin or .gguf model.", path)
	}
	return passed(check, "%s", filepath.Join(path, model.Name()))
}
