package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/featwalk/featwalk/internal/powerset"
)

var planDepth int

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the combinations a run would attempt, without dispatching",
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
			depth = planDepth
		}

		enum, err := powerset.New(cat, depth, powerset.Options{ExcludeNoDefault: m.ExcludeNoDefault})
		if err != nil {
			return err
		}
		combos := enum.Collect()

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"depth":        depth,
				"combinations": combos,
				"filtered":     enum.Filtered(),
				"candidates":   enum.Candidates(),
			})
		}

		fmt.Printf("Depth %d: %d combinations (%d candidates, %d filtered)\n",
			depth, len(combos), enum.Candidates(), enum.Filtered())
		for i, c := range combos {
			fmt.Printf("%3d  %s\n", i+1, c)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().IntVar(&planDepth, "depth", 0, "Maximum combination size (overrides manifest)")
	rootCmd.AddCommand(planCmd)
}
