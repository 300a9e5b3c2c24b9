package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/featwalk/featwalk/internal/config"
)

var (
	jsonOutput   bool
	manifestPath string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "featwalk",
	Short: "Run project tasks across feature combinations",
	Long: "featwalk enumerates valid feature combinations up to a depth and runs your\n" +
		"build/test commands against each one, reporting regressions that only\n" +
		"manifest under specific combinations.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", config.DefaultManifest, "Manifest file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	_ = godotenv.Load() // optional .env, absence is fine
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
