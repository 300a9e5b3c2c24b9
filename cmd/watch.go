package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/featwalk/featwalk/internal/engine"
	"github.com/featwalk/featwalk/internal/powerset"
	"github.com/featwalk/featwalk/internal/runner"
	"github.com/featwalk/featwalk/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-run the powerset after filesystem changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		cat, err := m.Catalog()
		if err != nil {
			return err
		}
		depth := m.EffectiveDepth()
		wd, _ := os.Getwd()
		sh := runner.NewShell(m.Commands, wd, depth)
		log := newLogger()

		runOnce := func() {
			report, err := engine.Run(cmd.Context(), cat, depth, sh, engine.Options{
				Policy: engine.ContinueOnFailure,
				Enum:   powerset.Options{ExcludeNoDefault: m.ExcludeNoDefault},
				Logger: log,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			printReport(report)
		}

		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}

		runOnce()
		fmt.Printf("Watching %v for changes...\n", paths)
		return watch.Run(cmd.Context(), paths, watchDebounce, log, runOnce)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")
	rootCmd.AddCommand(watchCmd)
}
