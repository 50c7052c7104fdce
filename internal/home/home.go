package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the podforge home directory.
	DefaultDirName = ".podforge"

	// OutputDirName holds finished episodes and their artifact documents.
	OutputDirName = "output"

	// TempDirName holds per-job scratch directories, removed on job exit.
	TempDirName = "tmp"

	// AssetsDirName holds process-wide read-only assets such as the jingle.
	AssetsDirName = "assets"

	// JingleFileName is the optional intro jingle, prepended when present.
	JingleFileName = "jingle.mp3"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the podforge home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.podforge).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// OutputPath returns the directory for final episode files.
func (d *Dir) OutputPath() string {
	return filepath.Join(d.path, OutputDirName)
}

// TempPath returns the root of the per-job scratch area.
func (d *Dir) TempPath() string {
	return filepath.Join(d.path, TempDirName)
}

// AssetsPath returns the read-only assets directory.
func (d *Dir) AssetsPath() string {
	return filepath.Join(d.path, AssetsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, p := range []string{d.OutputPath(), d.TempPath(), d.AssetsPath()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// EpisodePath returns the final MP3 path for a job.
func (d *Dir) EpisodePath(jobID string) string {
	return filepath.Join(d.OutputPath(), jobID+".mp3")
}

// ArtifactsPath returns the artifact JSON document path for a job.
func (d *Dir) ArtifactsPath(jobID string) string {
	return filepath.Join(d.OutputPath(), jobID+"-artifacts.json")
}

// ScratchDir returns the scratch directory for a job.
// The directory is exclusive to that job and removed when the job exits.
func (d *Dir) ScratchDir(jobID string) string {
	return filepath.Join(d.TempPath(), jobID)
}

// EnsureScratchDir creates the scratch directory for a job.
func (d *Dir) EnsureScratchDir(jobID string) (string, error) {
	p := d.ScratchDir(jobID)
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return p, nil
}

// RemoveScratchDir deletes a job's scratch directory and everything in it.
func (d *Dir) RemoveScratchDir(jobID string) error {
	return os.RemoveAll(d.ScratchDir(jobID))
}

// SweepScratch removes every leftover scratch directory. Called at server
// startup so a crash never leaks per-job temp trees.
func (d *Dir) SweepScratch() ([]string, error) {
	entries, err := os.ReadDir(d.TempPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read temp directory: %w", err)
	}

	var removed []string
	for _, e := range entries {
		p := filepath.Join(d.TempPath(), e.Name())
		if err := os.RemoveAll(p); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", p, err)
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}

// JinglePath returns the jingle asset path.
func (d *Dir) JinglePath() string {
	return filepath.Join(d.AssetsPath(), JingleFileName)
}

// JingleExists reports whether the optional jingle asset is installed.
func (d *Dir) JingleExists() bool {
	_, err := os.Stat(d.JinglePath())
	return err == nil
}
