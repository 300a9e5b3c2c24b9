package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/featwalk/featwalk/internal/powerset"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the manifest and feature catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := func() error {
			m, err := loadManifest()
			if err != nil {
				return err
			}
			cat, err := m.Catalog()
			if err != nil {
				return err
			}
			_, err = powerset.New(cat, m.EffectiveDepth(), powerset.Options{})
			return err
		}()
		if err != nil {
			printValidationError(os.Stdout, os.Stderr, err, jsonOutput)
			os.Exit(1)
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{"valid": true})
		}
		fmt.Println("Manifest is valid.")
		return nil
	},
}

// printValidationError reports a failed validation on w (JSON) or errw (text).
// An encoder failure is itself reported so the result is never silently lost.
func printValidationError(w, errw io.Writer, verr error, asJSON bool) {
	if asJSON {
		payload := map[string]any{"valid": false, "error": verr.Error()}
		if encErr := json.NewEncoder(w).Encode(payload); encErr != nil {
			fmt.Fprintf(errw, "Validation failed: %s (writing JSON result: %s)\n", verr, encErr)
		}
		return
	}
	fmt.Fprintf(errw, "Validation failed: %s\n", verr)
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
