package entities

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MediaResult is a file materialized by the media job runner
type MediaResult struct {
	Path      string
	Title     string
	Performer string
	Kind      MediaKind
}

// Track is a song recognition match
type Track struct {
	Title        string
	Subtitle     string
	ReferenceURL string
	ArtworkURL   string
}

// Query returns the "artist - title" search query for the full song
func (t Track) Query() string {
	return t.Subtitle + " - " + t.Title
}

// PendingJob is one in-flight download or recognition task and owns its temp artifacts
type PendingJob struct {
	ID     string
	Source string
	Kind   MediaKind
	Dir    string
	paths  []string
}

// NewPendingJob creates a job whose artifacts live in dir
func NewPendingJob(dir, source string, kind MediaKind) *PendingJob {
	return &PendingJob{
		ID:     uuid.NewString(),
		Source: source,
		Kind:   kind,
		Dir:    dir,
	}
}

// Own registers a file the job is responsible for removing
func (j *PendingJob) Own(path string) {
	if path != "" {
		j.paths = append(j.paths, path)
	}
}

// TempPath returns a path inside the job directory named after the job
func (j *PendingJob) TempPath(ext string) string {
	p := filepath.Join(j.Dir, j.ID+ext)
	j.Own(p)
	return p
}

// Paths returns the files registered so far
func (j *PendingJob) Paths() []string {
	return append([]string(nil), j.paths...)
}

// Cleanup removes every tracked file and every leftover "<dir>/<id>.*" artifact.
// It returns the paths it failed to remove; missing files are not failures.
func (j *PendingJob) Cleanup() []string {
	var failed []string

	candidates := j.paths
	if matches, err := filepath.Glob(filepath.Join(j.Dir, j.ID+".*")); err == nil {
		candidates = append(candidates, matches...)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, p := range candidates {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			failed = append(failed, p)
		}
	}

	return failed
}
