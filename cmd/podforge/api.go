package main

import (
	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Podforge server via HTTP.

These commands require a running server (podforge serve).
Use --server to specify a custom server URL.

Examples:
  podforge api health                  # Check server health
  podforge api podcasts create --topic "The history of the bicycle"
  podforge api podcasts get <id>       # Track a generation job
  podforge api podcasts audio <id>     # Download the finished episode`,
}

var podcastsCmd = &cobra.Command{
	Use:   "podcasts",
	Short: "Podcast generation job commands",
}

var llmcallsCmd = &cobra.Command{
	Use:   "llmcalls",
	Short: "LLM call history commands",
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Metrics and token usage commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Podcasts as subcommand group
	for _, ep := range endpoints.PodcastCommands() {
		podcastsCmd.AddCommand(ep.Command(getServerURL))
	}

	// LLM calls as subcommand group
	for _, ep := range endpoints.LLMCallCommands() {
		llmcallsCmd.AddCommand(ep.Command(getServerURL))
	}

	// Metrics as subcommand group
	metricsCmd.AddCommand((&endpoints.MetricsSummaryEndpoint{}).Command(getServerURL))

	// Voices, settings, and API docs at top level
	apiCmd.AddCommand((&endpoints.ListVoicesEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.GetSettingsEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerUIEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(podcastsCmd)
	apiCmd.AddCommand(llmcallsCmd)
	apiCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(apiCmd)
}
