package endpoints

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/svcctx"
)

// PodcastArtifactsResponse is the response for fetching job artifacts.
type PodcastArtifactsResponse struct {
	ID        string             `json:"id"`
	Artifacts *podcast.Artifacts `json:"artifacts"`
}

// PodcastArtifactsEndpoint handles GET /api/v1/podcasts/{id}/artifacts.
type PodcastArtifactsEndpoint struct{}

func (e *PodcastArtifactsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/podcasts/{id}/artifacts", e.handler
}

func (e *PodcastArtifactsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get job artifacts
//	@Description	Get the intermediate documents for a completed job: plan, research, outline, scripts, tone pass, and final script
//	@Tags			podcasts
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"
//	@Success		200	{object}	PodcastArtifactsResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/podcasts/{id}/artifacts [get]
func (e *PodcastArtifactsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	artifacts, err := svc.Artifacts(id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PodcastArtifactsResponse{ID: id, Artifacts: artifacts})
}

func (e *PodcastArtifactsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts <id>",
		Short: "Get the intermediate documents for a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp PodcastArtifactsResponse
			if err := client.Get(ctx, "/api/v1/podcasts/"+args[0]+"/artifacts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// PodcastAudioEndpoint handles GET /api/v1/podcasts/{id}/audio.
type PodcastAudioEndpoint struct{}

func (e *PodcastAudioEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/podcasts/{id}/audio", e.handler
}

func (e *PodcastAudioEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Download episode audio
//	@Description	Stream the final MP3 for a completed job
//	@Tags			podcasts
//	@Produce		audio/mpeg
//	@Param			id	path		string	true	"Job ID"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/podcasts/{id}/audio [get]
func (e *PodcastAudioEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	path, err := svc.AudioFile(id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("audio file missing for job %s", id))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".mp3"))
	http.ServeFile(w, r, path)
}

func (e *PodcastAudioEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "audio <id>",
		Short: "Download the final MP3 for a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			client := api.NewClient(getServerURL())

			data, err := client.GetRaw(ctx, "/api/v1/podcasts/"+id+"/audio")
			if err != nil {
				return err
			}

			dest := outputFile
			if dest == "" {
				dest = id + ".mp3"
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", dest, err)
			}

			abs, err := filepath.Abs(dest)
			if err != nil {
				abs = dest
			}
			cmd.Printf("Saved episode to %s (%d bytes)\n", abs, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default <id>.mp3)")
	return cmd
}
