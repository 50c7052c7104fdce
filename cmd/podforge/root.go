package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "podforge",
	Short: "Two-host podcast generation pipeline powered by LLM agents",
	Long: `Podforge turns a short brief (topic, duration, mood, style) into a
complete two-host audio podcast with machine-readable artifacts.

The pipeline includes:
  - Episode planning, research, and outline stages
  - Per-chapter script writing with word-budget convergence
  - Tone annotation and a final editing pass
  - Speech synthesis and ffmpeg episode assembly`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.podforge/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "podforge home directory (default: ~/.podforge)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Load .env (for API keys) and set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
