package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/svcctx"
)

// ValidateBriefEndpoint handles POST /api/v1/podcasts/validate.
type ValidateBriefEndpoint struct{}

func (e *ValidateBriefEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/podcasts/validate", e.handler
}

func (e *ValidateBriefEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Validate a podcast brief
//	@Description	Evaluate a brief without queueing a job; returns errors, warnings, recommendations, and estimates. The response is 200 even when the brief is invalid.
//	@Tags			podcasts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BriefRequest	true	"Episode brief"
//	@Success		200		{object}	podcast.Validation
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/podcasts/validate [post]
func (e *ValidateBriefEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req BriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := svcctx.ServiceFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline service not initialized")
		return
	}

	writeJSON(w, http.StatusOK, svc.Validate(req.Brief()))
}

func (e *ValidateBriefEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req BriefRequest
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a brief without starting a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp podcast.Validation
			if err := client.Post(ctx, "/api/v1/podcasts/validate", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	briefFlags(cmd, &req)
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
