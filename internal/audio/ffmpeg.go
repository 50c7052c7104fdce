package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/podforge/podforge/internal/podcast"
)

// Assembler drives the external ffmpeg/ffprobe tools: utterance files
// into chapter files, chapter files (jingle first when present) into the
// final episode, and a probe of the result.
type Assembler struct {
	logger *slog.Logger
	jobID  string
}

// NewAssembler returns an assembler for one job.
func NewAssembler(logger *slog.Logger, jobID string) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger, jobID: jobID}
}

// CheckTools verifies ffmpeg and ffprobe are on PATH. Called once at
// startup; generation cannot proceed without them.
func CheckTools() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return nil
}

// CombineChapter concatenates one chapter's utterance files, in order,
// into a combined chapter MP3 in the scratch directory.
func (a *Assembler) CombineChapter(ctx context.Context, scratchDir string, chapter int, files []UtteranceFile) (string, error) {
	inputs := make([]string, len(files))
	for i, f := range files {
		inputs[i] = f.Path
	}

	out := filepath.Join(scratchDir, fmt.Sprintf("chapter-%d-combined-%d.mp3", chapter, time.Now().UnixMilli()))
	if err := a.concat(ctx, inputs, out); err != nil {
		return "", podcast.WrapError(podcast.ErrAudio, podcast.StepAudio,
			fmt.Errorf("chapter %d: %w", chapter, err))
	}

	a.logger.Debug("chapter combined",
		"job_id", a.jobID, "chapter", chapter, "segments", len(inputs), "file", out)
	return out, nil
}

// AssembleEpisode concatenates the chapter files into the final episode
// at outputPath. A non-empty jinglePath is always the first input.
func (a *Assembler) AssembleEpisode(ctx context.Context, chapterFiles []string, jinglePath, outputPath string) error {
	inputs := chapterFiles
	if jinglePath != "" {
		inputs = append([]string{jinglePath}, chapterFiles...)
	}
	if err := a.concat(ctx, inputs, outputPath); err != nil {
		return podcast.WrapError(podcast.ErrAudio, podcast.StepAudio,
			fmt.Errorf("final assembly: %w", err))
	}

	a.logger.Info("episode assembled",
		"job_id", a.jobID, "chapters", len(chapterFiles), "jingle", jinglePath != "", "file", outputPath)
	return nil
}

// concat merges inputs into outputPath through ffmpeg's concat filter.
// The filter re-encodes, so inputs with different bitrates (the jingle
// against synthesized speech) still produce one clean stream. A failed
// run removes the partial output.
func (a *Assembler) concat(ctx context.Context, inputs []string, outputPath string) error {
	switch len(inputs) {
	case 0:
		return fmt.Errorf("no input files")
	case 1:
		data, err := os.ReadFile(inputs[0])
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		return os.WriteFile(outputPath, data, 0o644)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", concatArgs(inputs, outputPath)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg failed: %w\noutput: %s", err, tailOf(output))
	}
	return nil
}

// concatArgs builds the ffmpeg argument list: every input declared with
// -i, all audio streams joined by the concat filter, and the result
// encoded with libmp3lame.
func concatArgs(inputs []string, outputPath string) []string {
	args := make([]string, 0, 2*len(inputs)+9)
	var filter strings.Builder
	for i, in := range inputs {
		args = append(args, "-i", in)
		fmt.Fprintf(&filter, "[%d:a]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[out]", len(inputs))

	return append(args,
		"-filter_complex", filter.String(),
		"-map", "[out]",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		"-y",
		outputPath,
	)
}

// tailOf keeps the end of a tool transcript, where ffmpeg puts the
// actual error.
func tailOf(output []byte) string {
	const keep = 2048
	if len(output) > keep {
		output = output[len(output)-keep:]
	}
	return string(output)
}

// ProbeResult is the stream shape of an assembled file.
type ProbeResult struct {
	DurationSec float64 `json:"durationSec"`
	BitRate     int     `json:"bitRate"`
	Codec       string  `json:"codec"`
	SampleRate  int     `json:"sampleRate"`
}

// Probe reads duration, bitrate, codec, and sample rate from a file
// through ffprobe's JSON output.
func (a *Assembler) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, podcast.WrapError(podcast.ErrAudio, podcast.StepAudio,
			fmt.Errorf("ffprobe failed: %w", err))
	}

	result, err := parseProbeOutput(output)
	if err != nil {
		return nil, podcast.WrapError(podcast.ErrAudio, podcast.StepAudio, err)
	}
	return result, nil
}

type probeDocument struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
	} `json:"streams"`
}

func parseProbeOutput(output []byte) (*ProbeResult, error) {
	var doc probeDocument
	if err := json.Unmarshal(output, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	duration, err := strconv.ParseFloat(doc.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration %q: %w", doc.Format.Duration, err)
	}

	result := &ProbeResult{DurationSec: duration}
	if doc.Format.BitRate != "" {
		result.BitRate, _ = strconv.Atoi(doc.Format.BitRate)
	}
	for _, s := range doc.Streams {
		if s.CodecType != "audio" {
			continue
		}
		result.Codec = s.CodecName
		if s.SampleRate != "" {
			result.SampleRate, _ = strconv.Atoi(s.SampleRate)
		}
		break
	}
	return result, nil
}
