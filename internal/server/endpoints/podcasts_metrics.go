package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/svcctx"
)

// PodcastMetricsEndpoint handles GET /api/v1/podcasts/{id}/metrics.
type PodcastMetricsEndpoint struct{}

func (e *PodcastMetricsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/podcasts/{id}/metrics", e.handler
}

func (e *PodcastMetricsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get per-job metrics
//	@Description	Aggregate the LLM call metrics of one job: calls, retries, errors, tokens, and per-stage rollups
//	@Tags			podcasts
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"
//	@Success		200	{object}	metrics.JobSummary
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/podcasts/{id}/metrics [get]
func (e *PodcastMetricsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	svc := svcctx.ServiceFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline service not initialized")
		return
	}
	if _, err := svc.Status(id); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	store := svcctx.MetricsStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics store not initialized")
		return
	}

	writeJSON(w, http.StatusOK, store.JobSummary(id))
}

func (e *PodcastMetricsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <id>",
		Short: "Get aggregated metrics for a podcast job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp metrics.JobSummary
			if err := client.Get(ctx, "/api/v1/podcasts/"+args[0]+"/metrics", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
