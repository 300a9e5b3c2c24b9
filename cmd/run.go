package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/featwalk/featwalk/internal/artifact"
	"github.com/featwalk/featwalk/internal/engine"
	"github.com/featwalk/featwalk/internal/powerset"
	"github.com/featwalk/featwalk/internal/runner"
)

var (
	runDepth       int
	runFailFast    bool
	runWorkers     int
	runNoArtifacts bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch the build commands for every feasible combination",
	Args:  cobra.NoArgs,
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
		if cmd.Flags().Changed("depth") {
			depth = runDepth
		}
		policy := engine.ContinueOnFailure
		if m.FailFast || runFailFast {
			policy = engine.FailFast
		}
		workers := m.Workers
		if cmd.Flags().Changed("workers") {
			workers = runWorkers
		}

		wd, _ := os.Getwd()
		sh := runner.NewShell(m.Commands, wd, depth)
		log := newLogger()
		report, err := engine.Run(cmd.Context(), cat, depth, sh, engine.Options{
			Policy:  policy,
			Workers: workers,
			Enum:    powerset.Options{ExcludeNoDefault: m.ExcludeNoDefault},
			Logger:  log,
		})
		if err != nil {
			return err
		}

		if !runNoArtifacts {
			persistArtifacts(report, wd, log)
		}

		if jsonOutput {
			if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
				return err
			}
		} else {
			printReport(report)
		}

		switch {
		case report.Halted:
			os.Exit(2)
		case !report.AllSucceeded():
			os.Exit(1)
		}
		return nil
	},
}

// persistArtifacts writes the run report and per-combination logs under
// .featwalk. Persistence is best-effort, but every failure is surfaced as a
// warning so missing artifacts are never silent.
func persistArtifacts(report *engine.Report, workDir string, log *slog.Logger) {
	store, err := artifact.New(report.RunID, workDir)
	if err != nil {
		log.Warn("artifact store unavailable, skipping artifacts", "err", err)
		return
	}
	for _, o := range report.Outcomes {
		if err := store.WriteOutcome(o); err != nil {
			log.Warn("writing combination artifact", "features", o.Combination.String(), "err", err)
		}
	}
	if err := store.WriteReport(report); err != nil {
		log.Warn("writing run report", "err", err)
	}
}

func printReport(report *engine.Report) {
	fmt.Printf("Attempted %d combinations: %d succeeded, %d failed, %d skipped (%d filtered).\n",
		report.Attempted, report.Succeeded, report.Failed, report.Skipped, report.Filtered)
	if report.Halted {
		fmt.Println("Run halted after the first failure (fail-fast).")
	}
	for _, o := range report.Failing() {
		fmt.Printf("\nFAILED %s (exit %d)\n", o.Combination, o.ExitCode)
		if o.Stderr != "" {
			fmt.Printf("%s\n", o.Stderr)
		}
	}
	fmt.Printf("Run ID: %s\n", report.RunID)
}

func init() {
	runCmd.Flags().IntVar(&runDepth, "depth", 0, "Maximum combination size (overrides manifest)")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop after the first failing combination")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Parallel dispatches (requires isolated build outputs)")
	runCmd.Flags().BoolVar(&runNoArtifacts, "no-artifacts", false, "Skip writing .featwalk run artifacts")
	rootCmd.AddCommand(runCmd)
}
