package transcribe

import (
	"context"

	"github.com/sirupsen/logrus"

	"subtitle-player/internal/domain"
	"subtitle-player/internal/logging"
)

// Transcriber runs the pipeline for one media file with fixed model settings.
// It satisfies jobs.Transcriber.
type Transcriber struct {
	Pipeline  *Pipeline
	ModelPath string
	Language  string
	Log       logrus.FieldLogger
}

// NewTranscriber builds a Transcriber backed by the production pipeline.
func NewTranscriber(modelPath, language string, log logrus.FieldLogger) *Transcriber {
	return &Transcriber{
		Pipeline:  NewPipeline(),
		ModelPath: modelPath,
		Language:  language,
		Log:       log,
	}
}

// Transcribe runs ffmpeg and whisper.cpp and returns the parsed transcript.
// Temporary artifacts are removed before returning.
func (t *Transcriber) Transcribe(ctx context.Context, mediaPath string) (domain.Transcript, error) {
	log := t.logger().WithField("media", mediaPath)

	pipeline := t.Pipeline
	if pipeline == nil {
		pipeline = NewPipeline()
	}

	result, err := pipeline.Run(ctx, Request{
		InputPath: mediaPath,
		ModelPath: t.ModelPath,
		Language:  t.Language,
		OnStage: func(stage string) {
			log.WithField("stage", stage).Debug("pipeline stage")
		},
		OnLog: func(cmd CommandLog) {
			log.WithFields(logrus.Fields{
				"command": cmd.Command,
				"exit":    cmd.ExitCode,
			}).Debug("pipeline command finished")
		},
	})
	if err != nil {
		return domain.Transcript{}, err
	}
	defer func() {
		if cleanupErr := result.Cleanup(); cleanupErr != nil {
			log.WithError(cleanupErr).Warn("failed to remove transcription workspace")
		}
	}()

	if result.Language != "" {
		log.WithField("language", result.Language).Info("detected transcript language")
	}
	return result.Transcript, nil
}

func (t *Transcriber) logger() logrus.FieldLogger {
	if t.Log != nil {
		return t.Log
	}
	return logging.Discard()
}
