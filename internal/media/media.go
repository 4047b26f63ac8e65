// Package media shells out to ffmpeg and ffprobe for audio conversion and
// duration probing.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"newscast/internal/config"
	"newscast/internal/logging"
	"newscast/internal/services"
)

// Converter runs the external audio tools configured for the pipeline.
type Converter struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
}

// NewConverter builds a converter using the configured binaries.
func NewConverter(cfg *config.Config, logger *slog.Logger) *Converter {
	return &Converter{
		ffmpeg:  cfg.FFmpegBinary(),
		ffprobe: cfg.FFprobeBinary(),
		logger:  logging.NewComponentLogger(logger, "media"),
	}
}

// ProbeDuration returns the playback length of an audio file in whole
// seconds. Probe failures are logged and reported as zero; an episode with
// an unknown duration still publishes.
func (c *Converter) ProbeDuration(ctx context.Context, path string) int {
	cmd := exec.CommandContext(ctx, c.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		c.logger.Warn("duration probe failed",
			logging.String("path", path),
			logging.Error(err),
		)
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil {
		c.logger.Warn("unparseable probe output",
			logging.String("path", path),
			logging.String("output", strings.TrimSpace(out.String())),
		)
		return 0
	}
	return int(seconds)
}

// ConvertToMP3 transcodes a WAV file to MP3 at the given bitrate (for
// example "128k") and removes the WAV on success.
func (c *Converter) ConvertToMP3(ctx context.Context, wavPath, mp3Path, bitrate string) error {
	if bitrate == "" {
		bitrate = "128k"
	}
	cmd := exec.CommandContext(ctx, c.ffmpeg,
		"-y",
		"-i", wavPath,
		"-codec:a", "libmp3lame",
		"-b:a", bitrate,
		mp3Path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, lastLine(detail))
		}
		return services.Wrap(services.ErrExternalTool, "media", "convert", "ffmpeg failed", err)
	}

	if err := os.Remove(wavPath); err != nil {
		c.logger.Warn("failed to remove intermediate wav",
			logging.String("path", wavPath),
			logging.Error(err),
		)
	}
	c.logger.Info("converted to mp3",
		logging.String("path", mp3Path),
		logging.String("bitrate", bitrate),
	)
	return nil
}

// FileSize returns the size of path in bytes, or zero when it cannot be
// read.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
