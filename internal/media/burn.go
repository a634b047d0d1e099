package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/captioner/internal/caption"
	"github.com/mgpai22/captioner/internal/subtitle"
)

// options for rendering captions into the picture
type BurnOptions struct {
	FontSize int    // overrides the subtitle style when > 0
	VideoCRF int    // x264 quality, 0 keeps ffmpeg's default
	Preset   string // x264 preset
}

func DefaultBurnOptions() BurnOptions {
	return BurnOptions{Preset: "medium"}
}

// BurnCaptions renders captions as an ASS script next to the output and
// burns it into a re-encoded copy of the video.
func BurnCaptions(
	ctx context.Context,
	videoPath string,
	captions []caption.Caption,
	outputPath string,
	opts BurnOptions,
) error {
	if len(captions) == 0 {
		return fmt.Errorf("no captions to burn")
	}

	tmpDir, err := os.MkdirTemp("", "captioner-burn-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	subsPath := filepath.Join(tmpDir, "captions.ass")
	if err := subtitle.WriteFile(subsPath, subtitle.FormatASS, captions); err != nil {
		return err
	}
	return Burn(ctx, videoPath, subsPath, outputPath, opts)
}

// Burn re-encodes videoPath with the subtitles file drawn onto every frame.
// Audio is copied untouched.
func Burn(ctx context.Context, videoPath, subsPath, outputPath string, opts BurnOptions) error {
	if !isRemote(videoPath) {
		if _, err := os.Stat(videoPath); err != nil {
			return fmt.Errorf("video not found: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}

	args := burnArgs(videoPath, subsPath, outputPath, opts)
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg burn failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func burnArgs(videoPath, subsPath, outputPath string, opts BurnOptions) []string {
	filter := "subtitles=" + escapeFilterValue(subsPath)
	if opts.FontSize > 0 {
		filter += fmt.Sprintf(":force_style='Fontsize=%d'", opts.FontSize)
	}

	kwargs := ffmpeg.KwArgs{
		"vf":  filter,
		"c:a": "copy",
	}
	if opts.Preset != "" {
		kwargs["preset"] = opts.Preset
	}
	if opts.VideoCRF > 0 {
		kwargs["crf"] = opts.VideoCRF
	}

	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs()
}

// filter arguments treat \ ' : as syntax
func escapeFilterValue(path string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	return "'" + r.Replace(path) + "'"
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
