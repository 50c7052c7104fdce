// Package audio turns the annotated final script into the finished
// episode: per-utterance speech synthesis into scratch files, ffmpeg
// concatenation into chapter files and the final MP3, and a probe of
// the result.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
	"github.com/podforge/podforge/internal/script"
)

const (
	defaultHost1Voice = "alloy"
	defaultHost2Voice = "echo"
)

// SynthConfig wires a Synthesizer.
type SynthConfig struct {
	TTS     providers.TTSClient
	Metrics *metrics.Store
	Logger  *slog.Logger
	JobID   string

	Model      string
	Speed      float64
	Format     string
	Host1Voice string
	Host2Voice string
}

// Synthesizer converts the utterance sequence into one MP3 file per
// utterance. Synthesis is serial: utterance order in the chapter file
// must match parse order, and the provider rate limiter paces calls
// anyway.
type Synthesizer struct {
	tts     providers.TTSClient
	metrics *metrics.Store
	logger  *slog.Logger
	jobID   string

	model  string
	speed  float64
	format string
	voices map[script.Speaker]string
}

// NewSynthesizer returns a synthesizer with unset voices mapped to the
// defaults.
func NewSynthesizer(cfg SynthConfig) *Synthesizer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Host1Voice == "" {
		cfg.Host1Voice = defaultHost1Voice
	}
	if cfg.Host2Voice == "" {
		cfg.Host2Voice = defaultHost2Voice
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	return &Synthesizer{
		tts:     cfg.TTS,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		jobID:   cfg.JobID,
		model:   cfg.Model,
		speed:   cfg.Speed,
		format:  cfg.Format,
		voices: map[script.Speaker]string{
			script.SpeakerHost1: cfg.Host1Voice,
			script.SpeakerHost2: cfg.Host2Voice,
		},
	}
}

// UtteranceFile is one synthesized utterance on disk.
type UtteranceFile struct {
	Chapter int
	Index   int
	Path    string
}

// SynthesizeChapter synthesizes every utterance of one chapter into the
// scratch directory, in order. Any synthesis or write failure is fatal;
// the caller discards the scratch directory.
func (s *Synthesizer) SynthesizeChapter(ctx context.Context, scratchDir string, chapter int, utterances []script.Utterance) ([]UtteranceFile, error) {
	if s.tts == nil {
		return nil, podcast.NewError(podcast.ErrAudio, podcast.StepAudio, "no speech backend configured")
	}

	stamp := time.Now().UnixMilli()
	files := make([]UtteranceFile, 0, len(utterances))
	for i, u := range utterances {
		path := filepath.Join(scratchDir, fmt.Sprintf("chapter-%d-utterance-%d-%d.mp3", chapter, i, stamp))
		if err := s.synthesize(ctx, u, path); err != nil {
			return nil, podcast.WrapError(podcast.ErrAudio, podcast.StepAudio,
				fmt.Errorf("chapter %d utterance %d: %w", chapter, i, err))
		}
		files = append(files, UtteranceFile{Chapter: chapter, Index: i, Path: path})
	}

	s.logger.Info("chapter synthesized",
		"job_id", s.jobID,
		"chapter", chapter,
		"utterances", len(files))
	return files, nil
}

func (s *Synthesizer) synthesize(ctx context.Context, u script.Utterance, path string) error {
	start := time.Now()
	audio, err := s.tts.Speak(ctx, &providers.SpeechRequest{
		Text:   u.Text,
		Voice:  s.VoiceFor(u.Speaker),
		Model:  s.model,
		Speed:  s.speed,
		Format: s.format,
	})
	s.record(time.Since(start), err)
	if err != nil {
		return err
	}
	return writeAtomic(path, audio)
}

// VoiceFor maps a speaker to the configured synthesis voice.
func (s *Synthesizer) VoiceFor(sp script.Speaker) string {
	if v, ok := s.voices[sp]; ok {
		return v
	}
	return s.voices[script.SpeakerHost1]
}

func (s *Synthesizer) record(latency time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.Record(&metrics.Metric{
		JobID:            s.jobID,
		Stage:            podcast.StepAudio,
		Provider:         s.tts.Name(),
		Model:            s.model,
		ExecutionSeconds: latency.Seconds(),
		Attempt:          1,
		Success:          err == nil,
		ErrorType:        providers.ErrorClass(err),
	})
}

// writeAtomic lands bytes under the final name only when the write
// completed, so a crash never leaves a truncated MP3 for the assembler
// to pick up.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize audio file: %w", err)
	}
	return nil
}
