package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/home"
	"github.com/podforge/podforge/internal/llmcall"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/pipeline"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
)

var generateFlags struct {
	topic    string
	focus    string
	mood     string
	style    string
	chapters int
	duration int
	source   string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a podcast locally without a server",
	Long: `Generate runs the full pipeline in-process for a single brief and
prints the output paths. Progress is logged to stderr.

Example:
  podforge generate --topic "The history of the bicycle" --chapters 3 --duration 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfgPath := cfgFile
		if cfgPath == "" && h.ConfigExists() {
			cfgPath = h.ConfigPath()
		}
		mgr, err := config.NewManager(cfgPath)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		// Progress goes to stderr so stdout carries only the result.
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slogLevel(cfg.Log.Level),
		}))

		registry := providers.NewRegistryFromConfig(cfg.ToRegistryConfig())
		registry.SetLogger(logger)

		svc := pipeline.NewService(pipeline.ServiceConfig{
			Home:      h,
			Config:    cfg,
			Providers: registry,
			Calls:     llmcall.NewStore(0),
			Metrics:   metrics.NewStore(0),
			Logger:    logger,
		})
		defer svc.Close()

		if err := svc.Ready(); err != nil {
			return fmt.Errorf("cannot generate: %w", err)
		}

		brief := podcast.Brief{
			Topic:       generateFlags.topic,
			Focus:       generateFlags.focus,
			Mood:        podcast.Mood(generateFlags.mood),
			Style:       podcast.Style(generateFlags.style),
			Chapters:    generateFlags.chapters,
			DurationMin: generateFlags.duration,
			Source:      generateFlags.source,
		}

		job, err := svc.Generate(ctx, brief)
		if err != nil {
			return err
		}

		// Read the persisted document back so what we report is what is
		// actually on disk.
		doc, err := podcast.ReadArtifactsFile(h.ArtifactsPath(job.ID))
		if err != nil {
			return fmt.Errorf("episode written but artifact document is unreadable: %w", err)
		}

		fmt.Printf("Episode:   %s\n", job.AudioPath)
		fmt.Printf("Artifacts: %s (%d chapter scripts)\n", h.ArtifactsPath(job.ID), len(doc.Artifacts.Scripts))
		if m := job.Metadata; m != nil {
			fmt.Printf("Duration:  %.1fs (%d words, %.0f wpm, %s)\n",
				m.DurationSec, m.WordCount, m.ActualWordsPerMinute, m.Accuracy)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFlags.topic, "topic", "", "Podcast topic (required)")
	generateCmd.Flags().StringVar(&generateFlags.focus, "focus", "", "Optional focus or angle within the topic")
	generateCmd.Flags().StringVar(&generateFlags.mood, "mood", "neutral", "Mood: neutral, excited, calm, reflective, enthusiastic")
	generateCmd.Flags().StringVar(&generateFlags.style, "style", "conversational", "Style: storytelling, conversational, interview, educational, narrative")
	generateCmd.Flags().IntVar(&generateFlags.chapters, "chapters", 3, "Number of chapters (1-10)")
	generateCmd.Flags().IntVar(&generateFlags.duration, "duration", 10, "Target duration in minutes (1-120)")
	generateCmd.Flags().StringVar(&generateFlags.source, "source", "", "Optional source URL or file for research grounding")
	_ = generateCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(generateCmd)
}
