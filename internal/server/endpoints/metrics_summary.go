package endpoints

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/svcctx"
)

// MetricsSummaryEndpoint handles GET /api/v1/metrics/summary.
type MetricsSummaryEndpoint struct{}

func (e *MetricsSummaryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/metrics/summary", e.handler
}

func (e *MetricsSummaryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get metrics summary
//	@Description	Aggregate all retained call metrics across jobs, with per-stage and per-provider breakdowns
//	@Tags			metrics
//	@Produce		json
//	@Success		200	{object}	metrics.Summary
//	@Router			/api/v1/metrics/summary [get]
func (e *MetricsSummaryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.MetricsStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics store not initialized")
		return
	}

	writeJSON(w, http.StatusOK, store.Summary())
}

func (e *MetricsSummaryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Get metrics summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())

			var resp metrics.Summary
			if err := client.Get(ctx, "/api/v1/metrics/summary", &resp); err != nil {
				return err
			}
			if raw {
				return api.Output(resp)
			}

			fmt.Printf("Metrics Summary\n")
			fmt.Printf("===============\n")
			fmt.Printf("  Jobs:    %d\n", resp.Jobs)
			fmt.Printf("  Calls:   %d\n", resp.Calls)
			fmt.Printf("  Retries: %d\n", resp.Retries)
			fmt.Printf("  Errors:  %d\n", resp.Errors)
			fmt.Println()
			fmt.Printf("  Prompt Tokens:     %d\n", resp.PromptTokens)
			fmt.Printf("  Completion Tokens: %d\n", resp.CompletionTokens)
			fmt.Printf("  Total Tokens:      %d\n", resp.TotalTokens)
			fmt.Println()
			fmt.Printf("  Total Time: %s\n", time.Duration(resp.TotalSeconds*float64(time.Second)).Round(time.Millisecond))
			if len(resp.ByStage) > 0 {
				fmt.Println()
				fmt.Printf("  By Stage:\n")
				for _, s := range resp.ByStage {
					fmt.Printf("    %-12s calls=%d tokens=%d avg=%.2fs\n", s.Stage, s.Calls, s.TotalTokens, s.AvgSeconds)
				}
			}
			if len(resp.CallsByProvider) > 0 {
				fmt.Println()
				fmt.Printf("  By Provider:\n")
				for provider, count := range resp.CallsByProvider {
					fmt.Printf("    %-12s calls=%d\n", provider, count)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw summary instead of the formatted view")
	return cmd
}
