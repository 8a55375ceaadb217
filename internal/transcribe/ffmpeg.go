package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpeg converts audio by running the ffmpeg binary.
type FFmpeg struct {
	Path string
}

// NewFFmpeg returns a converter running the binary at path ("ffmpeg" when empty).
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{Path: path}
}

// ToWAV writes 16 kHz mono 16-bit PCM to dst, overwriting it.
func (f *FFmpeg) ToWAV(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.Path,
		"-hide_banner", "-loglevel", "error",
		"-y", "-i", src,
		"-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le",
		"-f", "wav", dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, msg)
	}
	return nil
}
