// Package media contains the media job runner: yt-dlp downloads, song
// recognition and the bounded pool both run behind
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

const (
	videoFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/bestvideo+bestaudio/best"
	audioFormat = "bestaudio[ext=m4a]/bestaudio/best"
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// stderrTail bounds how much of yt-dlp's stderr ends up in errors
	stderrTail = 512
)

// commandRunner executes the binary and returns its stdout
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// YtDlp downloads media by shelling out to yt-dlp
type YtDlp struct {
	binary  string
	cookies string
	run     commandRunner
	logger  zerolog.Logger
}

// NewYtDlp creates a new yt-dlp wrapper
func NewYtDlp(cfg *config.MediaConfig, logger zerolog.Logger) *YtDlp {
	return &YtDlp{
		binary:  cfg.YtDlpBinary,
		cookies: cfg.CookiesFile,
		run:     execCommand,
		logger:  logger.With().Str("component", "yt-dlp").Logger(),
	}
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > stderrTail {
			msg = msg[len(msg)-stderrTail:]
		}
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
	}
	return stdout.Bytes(), nil
}

// Download fetches job.Source into the job directory
func (y *YtDlp) Download(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error) {
	args := []string{
		"-f", videoFormat,
		"--merge-output-format", "mp4",
		"--concurrent-fragments", "16",
		"--retries", "5",
		"--socket-timeout", "15",
		"--add-header", "Accept-Language:en-US,en;q=0.9",
		"--user-agent", userAgent,
		"--extractor-args", "tiktok:webpage_download_timeout=15",
	}
	if y.hasCookies() {
		args = append(args, "--cookies", y.cookies)
	}
	args = append(args, y.commonArgs(job)...)
	args = append(args, "--", job.Source)

	return y.fetch(ctx, job, args)
}

// SearchAndFetch searches YouTube for job.Source and extracts the first hit as MP3
func (y *YtDlp) SearchAndFetch(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error) {
	args := []string{
		"-f", audioFormat,
		"-x", "--audio-format", "mp3", "--audio-quality", "128K",
		"--concurrent-fragments", "8",
		"--socket-timeout", "10",
	}
	args = append(args, y.commonArgs(job)...)
	args = append(args, "--", "ytsearch1:"+job.Source)

	res, err := y.fetch(ctx, job, args)
	if err != nil {
		return nil, err
	}
	res.Kind = entities.MediaAudio
	return res, nil
}

// commonArgs names every output after the job id and prints the final path,
// title and uploader once post-processing is done
func (y *YtDlp) commonArgs(job *entities.PendingJob) []string {
	return []string{
		"--no-playlist",
		"--no-warnings",
		"--no-progress",
		"--geo-bypass",
		"--no-simulate",
		"-o", filepath.Join(job.Dir, job.ID+".%(ext)s"),
		"--print", "after_move:filepath",
		"--print", "after_move:title",
		"--print", "after_move:uploader",
	}
}

func (y *YtDlp) fetch(ctx context.Context, job *entities.PendingJob, args []string) (*entities.MediaResult, error) {
	if err := os.MkdirAll(job.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	out, err := y.run(ctx, y.binary, args...)
	if err != nil {
		return nil, err
	}

	res, err := parsePrinted(out)
	if err != nil {
		return nil, err
	}
	job.Own(res.Path)

	if _, err := os.Stat(res.Path); err != nil {
		return nil, fmt.Errorf("downloaded file missing: %w", err)
	}

	y.logger.Debug().Str("job_id", job.ID).Str("kind", string(res.Kind)).Msg("Media fetched")
	return res, nil
}

// parsePrinted reads the lines produced by the --print flags
func parsePrinted(out []byte) (*entities.MediaResult, error) {
	lines := strings.Split(strings.TrimRight(string(out), "\r\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("yt-dlp printed no file path")
	}

	field := func(i string) string {
		if i == "NA" {
			return ""
		}
		return i
	}

	res := &entities.MediaResult{Path: strings.TrimSpace(lines[0]), Title: "Media"}
	if len(lines) > 1 {
		if t := field(strings.TrimSpace(lines[1])); t != "" {
			res.Title = t
		}
	}
	if len(lines) > 2 {
		res.Performer = field(strings.TrimSpace(lines[2]))
	}
	res.Kind = KindForPath(res.Path)
	return res, nil
}

// KindForPath classifies a downloaded file by extension
func KindForPath(path string) entities.MediaKind {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "jpg", "jpeg", "png", "webp":
		return entities.MediaImage
	case "mp3", "m4a", "wav", "opus":
		return entities.MediaAudio
	default:
		return entities.MediaVideo
	}
}

func (y *YtDlp) hasCookies() bool {
	if y.cookies == "" {
		return false
	}
	_, err := os.Stat(y.cookies)
	return err == nil
}
