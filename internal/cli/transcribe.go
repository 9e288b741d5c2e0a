package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"subtitle-player/internal/domain"
	"subtitle-player/internal/jobs"
	"subtitle-player/internal/library"
	"subtitle-player/internal/subtitle"
)

type transcribeFlags struct {
	output   string
	model    string
	language string
	noCache  bool
}

type transcriberFactory func(settings domain.Settings, log logrus.FieldLogger) jobs.Transcriber

func newTranscribeCommand(flags *globalFlags, newTranscriber transcriberFactory) *cobra.Command {
	tf := &transcribeFlags{}

	cmd := &cobra.Command{
		Use:   "transcribe <media>",
		Short: "Generate a subtitle file without the UI",
		Long: `Runs the same transcription worker the player uses and writes the cues as
SubRip (.srt) or WebVTT (.vtt), chosen by the output extension. The transcript
is cached in the library so the player shows it on next open.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, flags, tf, newTranscriber, args[0])
		},
	}

	cmd.Flags().StringVarP(&tf.output, "output", "o", "", "subtitle file (default: <output dir>/<media name>.srt)")
	cmd.Flags().StringVar(&tf.model, "model", "", "whisper model file or directory (overrides settings)")
	cmd.Flags().StringVar(&tf.language, "language", "", "spoken language or auto (overrides settings)")
	cmd.Flags().BoolVar(&tf.noCache, "no-cache", false, "do not read or write the transcript library")
	return cmd
}

func runTranscribe(cmd *cobra.Command, flags *globalFlags, tf *transcribeFlags, newTranscriber transcriberFactory, mediaPath string) error {
	log := flags.logger(cmd)
	out := cmd.OutOrStdout()

	settings, err := flags.loadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if tf.model != "" {
		settings.ModelPath = tf.model
	}
	if tf.language != "" {
		settings.Language = tf.language
	}

	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("open media: %w", err)
	}

	target := tf.output
	if target == "" {
		base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
		target = filepath.Join(settings.OutputDir, base+".srt")
	}

	var lib *library.Store
	if !tf.noCache {
		lib, err = library.Open(settings.LibraryPath)
		if err != nil {
			log.WithError(err).Warn("library unavailable; transcript will not be cached")
			lib = nil
		} else {
			defer lib.Close()
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if lib != nil {
		if cached, ok, err := lib.LoadTranscript(ctx, mediaPath); err == nil && ok {
			fmt.Fprintf(out, "using cached transcript (%d cues)\n", len(cached.Cues))
			return export(out, target, cached)
		}
	}

	worker := jobs.NewWorker(newTranscriber(settings, log), mediaPath, jobs.WithLogger(log))
	if err := worker.Start(); err != nil {
		return err
	}

	var (
		result  *domain.Transcript
		failure *jobs.Failure
	)
	err = jobs.Deliver(ctx, worker.Events(), jobs.ObserverFuncs{
		Progress: func(p jobs.Progress) {
			fmt.Fprintf(out, "[%3d%%] %s\n", p.Percent, p.Message)
		},
		Result: func(t domain.Transcript) {
			result = &t
		},
		Error: func(f jobs.Failure) {
			failure = &f
		},
	})
	if err != nil {
		return err
	}

	if failure != nil {
		log.WithFields(logrus.Fields{
			"media":  mediaPath,
			"detail": failure.Detail,
		}).Error("transcription failed")
		return fmt.Errorf("transcription failed: %s", failure.Message)
	}
	if result == nil {
		return fmt.Errorf("transcription ended without a result")
	}

	if lib != nil {
		if err := lib.SaveTranscript(ctx, mediaPath, *result); err != nil {
			log.WithError(err).Warn("cache transcript")
		}
	}
	return export(out, target, *result)
}

func export(out io.Writer, target string, t domain.Transcript) error {
	if err := subtitle.ExportFile(target, t); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d cues to %s\n", len(t.Cues), target)
	return nil
}
