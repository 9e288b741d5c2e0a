package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"subtitle-player/internal/jobs"
)

func TestModelDirectory(t *testing.T) {
	root := t.TempDir()
	modelFile := filepath.Join(root, "ggml-base.bin")
	if err := os.WriteFile(modelFile, []byte("model"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	notes := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(notes, []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	cases := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "directory", path: root, want: root},
		{name: "model file", path: modelFile, want: root},
		{name: "missing model file", path: filepath.Join(root, "sub", "ggml-tiny.bin"), want: filepath.Join(root, "sub")},
		{name: "missing directory", path: filepath.Join(root, "models"), want: filepath.Join(root, "models")},
		{name: "non-model file", path: notes, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := modelDirectory(tc.path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("modelDirectory(%q) = %q, want error", tc.path, got)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("modelDirectory(%q) = %q, %v, want %q", tc.path, got, err, tc.want)
			}
		})
	}
}

func TestListModelsMarksDownloaded(t *testing.T) {
	settings := testSettings(t)
	settings.ModelPath = t.TempDir()
	if err := os.WriteFile(filepath.Join(settings.ModelPath, "ggml-small.bin"), []byte("m"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	app := newTestApp(t, settings, &fakeTranscriber{})

	for _, m := range app.ListModels() {
		if m.Downloaded != (m.ID == "small") {
			t.Fatalf("model %s downloaded = %v", m.ID, m.Downloaded)
		}
	}
}

func TestDownloadModelSelectsModel(t *testing.T) {
	settings := testSettings(t)
	settings.ModelPath = t.TempDir()
	app := newTestApp(t, settings, &fakeTranscriber{})

	var gotURL string
	app.download = func(_ context.Context, dst, url string) error {
		gotURL = url
		return os.WriteFile(dst, []byte("model"), 0o644)
	}

	model, err := app.DownloadModel("base")
	if err != nil {
		t.Fatalf("DownloadModel() error = %v", err)
	}
	want := filepath.Join(settings.ModelPath, "ggml-base.bin")
	if model.LocalPath != want || !model.Downloaded {
		t.Fatalf("model = %+v", model)
	}
	if gotURL != modelBaseURL+"ggml-base.bin" {
		t.Fatalf("url = %q", gotURL)
	}
	if app.GetSettings().ModelPath != want {
		t.Fatalf("model path = %q", app.GetSettings().ModelPath)
	}
	if saved, ok := app.store.last(); !ok || saved.ModelPath != want {
		t.Fatalf("saved = %+v, %v", saved, ok)
	}
}

func TestDownloadModelFailure(t *testing.T) {
	settings := testSettings(t)
	settings.ModelPath = t.TempDir()
	app := newTestApp(t, settings, &fakeTranscriber{})
	app.download = func(context.Context, string, string) error {
		return errors.New("connection reset")
	}

	if _, err := app.DownloadModel("tiny"); err == nil {
		t.Fatal("expected download error")
	}
	if app.GetSettings().ModelPath != settings.ModelPath {
		t.Fatal("model path changed after failed download")
	}
	assertEventTypeExists(t, app.JobEvents(0), jobs.EventTypeError)

	if _, err := app.DownloadModel("enormous"); err == nil {
		t.Fatal("expected unknown model error")
	}
}

func TestDownloadURLToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("weights"))
	}))
	defer server.Close()

	dst := filepath.Join(t.TempDir(), "models", "ggml-tiny.bin")
	if err := downloadURLToFile(context.Background(), dst, server.URL+"/ggml-tiny.bin"); err != nil {
		t.Fatalf("download error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "weights" {
		t.Fatalf("file = %q, %v", data, err)
	}
	if _, err := os.Stat(dst + ".download"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	if err := downloadURLToFile(context.Background(), dst+"2", server.URL+"/missing"); err == nil {
		t.Fatal("expected status error")
	}
}
