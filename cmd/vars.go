package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		wd, _ := os.Getwd()

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"manifest":           manifestPath,
				"workdir":            wd,
				"depth":              m.EffectiveDepth(),
				"commands":           m.Commands,
				"fail_fast":          m.FailFast,
				"workers":            m.Workers,
				"exclude_no_default": m.ExcludeNoDefault,
				"features":           len(m.Features),
			})
		}

		fmt.Printf("manifest: %s\n", manifestPath)
		fmt.Printf("workdir: %s\n", wd)
		fmt.Printf("depth: %d\n", m.EffectiveDepth())
		fmt.Printf("fail_fast: %v\n", m.FailFast)
		fmt.Printf("workers: %d\n", m.Workers)
		fmt.Printf("exclude_no_default: %v\n", m.ExcludeNoDefault)
		fmt.Printf("features: %d\n", len(m.Features))
		for _, c := range m.Commands {
			fmt.Printf("command: %s\n", c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(varsCmd)
}
