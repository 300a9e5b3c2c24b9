package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/featwalk/featwalk/internal/ops"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <glob>",
	Short: "Remove files matching a glob pattern (supports **)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ops.CleanFiles(args[0]); err != nil {
			return err
		}
		fmt.Printf("Cleaned %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
