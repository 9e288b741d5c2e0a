package cli

import (
	"io/fs"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"subtitle-player/internal/bootstrap"
	"subtitle-player/internal/config"
	"subtitle-player/internal/diagnostics"
	"subtitle-player/internal/domain"
	"subtitle-player/internal/jobs"
	"subtitle-player/internal/logging"
	"subtitle-player/internal/transcribe"
)

// Version is stamped at build time.
var Version = "dev"

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
}

// services builds the collaborators the headless commands run against.
type services struct {
	transcriber transcriberFactory
	checker     func() *diagnostics.Checker
}

func defaultServices() services {
	return services{
		transcriber: func(settings domain.Settings, log logrus.FieldLogger) jobs.Transcriber {
			return transcribe.NewTranscriber(settings.ModelPath, settings.Language, log)
		},
		checker: diagnostics.NewChecker,
	}
}

// NewRootCommand builds the command tree. Without a subcommand the desktop
// player starts, serving frontend from assets when non-nil.
func NewRootCommand(assets fs.FS) *cobra.Command {
	return newRootCommand(assets, defaultServices())
}

func newRootCommand(assets fs.FS, svc services) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "subtitle-player",
		Short: "Video player with generated subtitles",
		Long: `subtitle-player plays local video files and renders subtitles on top
of the picture. Subtitles are generated offline with ffmpeg and whisper.cpp.

Commands:
  run         - start the desktop player (default)
  transcribe  - generate a subtitle file without the UI
  diagnose    - report playback, export and transcription readiness`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, flags, assets)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "settings file, .json or .toml (default: ~/.subtitle-player/settings.json)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "emit logs as JSON")

	root.AddCommand(
		newRunCommand(flags, assets),
		newTranscribeCommand(flags, svc.transcriber),
		newDiagnoseCommand(flags, svc.checker),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute(assets fs.FS) error {
	return NewRootCommand(assets).Execute()
}

func newRunCommand(flags *globalFlags, assets fs.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the desktop player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, flags, assets)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("subtitle-player %s\n", Version)
		},
	}
}

func runGUI(cmd *cobra.Command, flags *globalFlags, assets fs.FS) error {
	log := flags.logger(cmd)
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: flags.configPath,
		Log:        log,
		Assets:     assets,
	})
	if err != nil {
		return err
	}
	return app.Run()
}

func (f *globalFlags) logger(cmd *cobra.Command) *logrus.Logger {
	return logging.New(logging.Options{
		Level:  f.logLevel,
		JSON:   f.logJSON,
		Output: cmd.ErrOrStderr(),
	})
}

// loadSettings reads settings from --config or the default location.
func (f *globalFlags) loadSettings() (domain.Settings, error) {
	path := f.configPath
	if path == "" {
		def, err := bootstrap.DefaultConfigPath()
		if err != nil {
			return domain.Settings{}, err
		}
		path = def
	}
	return config.Open(path).Load()
}
