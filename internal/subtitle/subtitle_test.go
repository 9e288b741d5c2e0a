package subtitle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"subtitle-player/internal/domain"
)

// fakeSink records every subtitle call.
type fakeSink struct {
	calls []*string
}

func (f *fakeSink) SetSubtitle(text *string) {
	if text == nil {
		f.calls = append(f.calls, nil)
		return
	}
	v := *text
	f.calls = append(f.calls, &v)
}

func (f *fakeSink) last() string {
	if len(f.calls) == 0 || f.calls[len(f.calls)-1] == nil {
		return "<nil>"
	}
	return *f.calls[len(f.calls)-1]
}

// fakeSource hands position callbacks to the test.
type fakeSource struct {
	fn           func(int64)
	unsubscribed int
}

func (f *fakeSource) OnPositionChanged(fn func(ms int64)) func() {
	f.fn = fn
	return func() {
		f.unsubscribed++
		f.fn = nil
	}
}

func sample() domain.Transcript {
	return domain.Transcript{
		Cues: []domain.Cue{
			{Index: 2, StartMs: 2000, EndMs: 3500, Text: "second line"},
			{Index: 1, StartMs: 0, EndMs: 1500, Text: "hello there"},
		},
		Words: []domain.WordTimestamp{
			{Word: "hello", StartMs: 0, EndMs: 700},
			{Word: "there", StartMs: 800, EndMs: 1400},
			{Word: "second", StartMs: 2000, EndMs: 2600},
			{Word: "line", StartMs: 2700, EndMs: 3400},
		},
	}
}

func TestTrackAt(t *testing.T) {
	track := NewTrack(sample())

	tests := []struct {
		ms   int64
		want string
	}{
		{ms: 0, want: "hello there"},
		{ms: 1499, want: "hello there"},
		{ms: 1500, want: ""},
		{ms: 2000, want: "second line"},
		{ms: 3499, want: "second line"},
		{ms: 9000, want: ""},
		{ms: -5, want: ""},
	}
	for _, tc := range tests {
		cue, ok := track.At(tc.ms)
		got := ""
		if ok {
			got = cue.Text
		}
		if got != tc.want {
			t.Fatalf("At(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestTrackAtOverlapPrefersLatestStart(t *testing.T) {
	track := NewTrack(domain.Transcript{Cues: []domain.Cue{
		{StartMs: 0, EndMs: 5000, Text: "long"},
		{StartMs: 1000, EndMs: 2000, Text: "short"},
	}})

	if cue, _ := track.At(1500); cue.Text != "short" {
		t.Fatalf("At(1500) = %q, want short", cue.Text)
	}
	if cue, _ := track.At(3000); cue.Text != "long" {
		t.Fatalf("At(3000) = %q, want long", cue.Text)
	}
}

func TestTrackWordsFor(t *testing.T) {
	track := NewTrack(sample())
	cue, _ := track.At(2100)

	words := track.WordsFor(cue)
	if len(words) != 2 || words[0].Word != "second" || words[1].Word != "line" {
		t.Fatalf("WordsFor = %+v", words)
	}
}

func TestSyncerOnlyCallsSinkOnChange(t *testing.T) {
	sink := &fakeSink{}
	src := &fakeSource{}
	s := NewSyncer(sink)
	s.Attach(src)
	s.Load(sample())

	for _, ms := range []int64{0, 200, 400, 1600, 1800, 2000, 2200} {
		src.fn(ms)
	}

	if len(sink.calls) != 3 {
		t.Fatalf("sink calls = %d, want 3", len(sink.calls))
	}
	if *sink.calls[0] != "hello there" || sink.calls[1] != nil || *sink.calls[2] != "second line" {
		t.Fatalf("unexpected sink sequence")
	}
}

func TestSyncerHighlightsCurrentWord(t *testing.T) {
	sink := &fakeSink{}
	s := NewSyncer(sink)
	s.SetHighlight(true)
	s.Load(sample())

	s.Update(100)
	if got := sink.last(); got != "<u>hello</u> there" {
		t.Fatalf("text = %q", got)
	}
	s.Update(750)
	if got := sink.last(); got != "hello there" {
		t.Fatalf("text between words = %q", got)
	}
	s.Update(900)
	if got := sink.last(); got != "hello <u>there</u>" {
		t.Fatalf("text = %q", got)
	}
}

func TestSyncerEscapesTranscriptText(t *testing.T) {
	sink := &fakeSink{}
	s := NewSyncer(sink)
	s.Load(domain.Transcript{Cues: []domain.Cue{{StartMs: 0, EndMs: 1000, Text: "a < b & c"}}})

	s.Update(10)
	if got := sink.last(); got != "a &lt; b &amp; c" {
		t.Fatalf("text = %q", got)
	}
}

func TestSyncerLoadClearsShownSubtitle(t *testing.T) {
	sink := &fakeSink{}
	s := NewSyncer(sink)
	s.Load(sample())
	s.Update(100)

	s.Load(domain.Transcript{})
	if got := sink.last(); got != "<nil>" {
		t.Fatalf("last call = %q, want clear", got)
	}

	calls := len(sink.calls)
	s.Load(domain.Transcript{})
	if len(sink.calls) != calls {
		t.Fatal("loading over an empty overlay should not clear again")
	}
}

// gatedSink parks the first non-nil call until release is closed.
type gatedSink struct {
	mu      sync.Mutex
	calls   []*string
	entered chan struct{}
	release chan struct{}
	gated   bool
}

func newGatedSink() *gatedSink {
	return &gatedSink{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSink) SetSubtitle(text *string) {
	g.mu.Lock()
	park := text != nil && !g.gated
	if park {
		g.gated = true
	}
	g.mu.Unlock()

	if park {
		close(g.entered)
		<-g.release
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if text == nil {
		g.calls = append(g.calls, nil)
		return
	}
	v := *text
	g.calls = append(g.calls, &v)
}

func (g *gatedSink) last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.calls) == 0 || g.calls[len(g.calls)-1] == nil {
		return "<nil>"
	}
	return *g.calls[len(g.calls)-1]
}

// TestSyncerLoadDuringSlowSinkStillClears checks a Load racing an in-flight
// update leaves the overlay cleared.
func TestSyncerLoadDuringSlowSinkStillClears(t *testing.T) {
	sink := newGatedSink()
	s := NewSyncer(sink)
	s.Load(sample())

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Update(100)
	}()
	<-sink.entered

	s.Load(domain.Transcript{})
	close(sink.release)
	<-done

	s.Update(200)
	s.Update(5000)
	if got := sink.last(); got != "<nil>" {
		t.Fatalf("overlay shows %q after the track was replaced", got)
	}
}

func TestSyncerDetach(t *testing.T) {
	src := &fakeSource{}
	s := NewSyncer(&fakeSink{})
	s.Attach(src)
	s.Attach(src)
	if src.unsubscribed != 1 {
		t.Fatalf("re-attach unsubscribed = %d, want 1", src.unsubscribed)
	}

	s.Detach()
	s.Detach()
	if src.unsubscribed != 2 {
		t.Fatalf("unsubscribed = %d, want 2", src.unsubscribed)
	}
}

func TestWriteSRT(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSRT(&buf, sample()); err != nil {
		t.Fatalf("WriteSRT() error = %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:01,500\nhello there\n\n2\n00:00:02,000 --> 00:00:03,500\nsecond line\n"
	if buf.String() != want {
		t.Fatalf("srt =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteVTT(t *testing.T) {
	var buf bytes.Buffer
	err := WriteVTT(&buf, domain.Transcript{Cues: []domain.Cue{{StartMs: 3_723_456, EndMs: 3_724_000, Text: "late"}}})
	if err != nil {
		t.Fatalf("WriteVTT() error = %v", err)
	}

	want := "WEBVTT\n\n01:02:03.456 --> 01:02:04.000\nlate\n"
	if buf.String() != want {
		t.Fatalf("vtt = %q, want %q", buf.String(), want)
	}
}

func TestExportFileByExtension(t *testing.T) {
	dir := t.TempDir()

	vttPath := filepath.Join(dir, "nested", "talk.vtt")
	if err := ExportFile(vttPath, sample()); err != nil {
		t.Fatalf("ExportFile(vtt) error = %v", err)
	}
	data, err := os.ReadFile(vttPath)
	if err != nil {
		t.Fatalf("read vtt: %v", err)
	}
	if !strings.HasPrefix(string(data), "WEBVTT") {
		t.Fatalf("vtt file = %q", data)
	}

	srtPath := filepath.Join(dir, "talk.srt")
	if err := ExportFile(srtPath, sample()); err != nil {
		t.Fatalf("ExportFile(srt) error = %v", err)
	}
	data, err = os.ReadFile(srtPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if !strings.HasPrefix(string(data), "1\n00:00:00,000") {
		t.Fatalf("srt file = %q", data)
	}
}
