package cli

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"subtitle-player/internal/diagnostics"
	"subtitle-player/internal/domain"
)

var statusIcons = map[domain.CheckStatus]string{
	domain.CheckPass: "[+]",
	domain.CheckWarn: "[!]",
	domain.CheckFail: "[-]",
}

func newDiagnoseCommand(flags *globalFlags, newChecker func() *diagnostics.Checker) *cobra.Command {
	var require []string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report playback, export and transcription readiness",
		Long: `Checks each area the player depends on and prints the results grouped by area:

  playback       subtitle style is legible, library database is usable
  export         the output directory accepts subtitle files
  transcription  ffmpeg and whisper.cpp are on PATH and a model is configured

The command fails when any area named by --require is not ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			areas, err := parseAreas(require)
			if err != nil {
				return err
			}
			settings, err := flags.loadSettings()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			report := newChecker().Run(settings)
			out := cmd.OutOrStdout()
			for _, area := range domain.CheckAreas {
				state := "ready"
				if !report.Ready.Ready(area) {
					state = "not ready"
				}
				fmt.Fprintf(out, "%s: %s\n", area, state)
				for _, c := range report.In(area) {
					fmt.Fprintf(out, "  %s %-18s %s\n", statusIcons[c.Status], c.Name, c.Message)
					if c.Hint != "" && c.Status != domain.CheckPass {
						fmt.Fprintf(out, "      %s\n", c.Hint)
					}
				}
			}

			blocked := lo.Reject(areas, func(a domain.CheckArea, _ int) bool { return report.Ready.Ready(a) })
			if len(blocked) > 0 {
				return fmt.Errorf("not ready: %s", strings.Join(lo.Map(blocked, func(a domain.CheckArea, _ int) string {
					return string(a)
				}), ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&require, "require", []string{"playback", "export", "transcription"},
		"areas that must be ready for the command to succeed")
	return cmd
}

func parseAreas(names []string) ([]domain.CheckArea, error) {
	areas := make([]domain.CheckArea, 0, len(names))
	for _, name := range names {
		area := domain.CheckArea(strings.ToLower(strings.TrimSpace(name)))
		if !lo.Contains(domain.CheckAreas, area) {
			return nil, fmt.Errorf("unknown area %q", name)
		}
		areas = append(areas, area)
	}
	return lo.Uniq(areas), nil
}
