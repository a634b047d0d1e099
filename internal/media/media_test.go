package media

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
			{"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 240}
		],
		"format": {"duration": "63.480000", "format_name": "mov,mp4,m4a"}
	}`)

	info, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if info.Duration != 63.48 {
		t.Errorf("duration = %v", info.Duration)
	}
	if info.Codec != "h264" || info.Width != 1920 || info.Height != 1080 {
		t.Errorf("video stream = %+v", info)
	}
	if !info.HasAudio {
		t.Error("expected audio stream")
	}
}

func TestParseProbeUnknownDuration(t *testing.T) {
	info, err := parseProbe([]byte(`{"format": {"duration": "N/A"}}`))
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if info.Duration != 0 {
		t.Errorf("duration = %v, want 0", info.Duration)
	}

	if _, err := parseProbe([]byte(`{"format": {"duration": "abc"}}`)); err == nil {
		t.Error("expected error for bad duration")
	}
	if _, err := parseProbe([]byte(`not json`)); err == nil {
		t.Error("expected error for bad json")
	}
}

func TestBurnArgs(t *testing.T) {
	args := burnArgs("in.mp4", "/tmp/x/captions.ass", "out.mp4", BurnOptions{FontSize: 28, Preset: "fast"})

	if args[0] != "-i" || args[1] != "in.mp4" {
		t.Fatalf("input args = %v", args[:2])
	}
	if args[len(args)-1] != "-y" && !slices.Contains(args, "-y") {
		t.Errorf("missing overwrite flag in %v", args)
	}
	if !slices.Contains(args, "out.mp4") {
		t.Errorf("missing output in %v", args)
	}

	i := slices.Index(args, "-vf")
	if i < 0 || i+1 >= len(args) {
		t.Fatalf("missing -vf in %v", args)
	}
	want := `subtitles='/tmp/x/captions.ass':force_style='Fontsize=28'`
	if args[i+1] != want {
		t.Errorf("filter = %q, want %q", args[i+1], want)
	}
	if j := slices.Index(args, "-c:a"); j < 0 || args[j+1] != "copy" {
		t.Errorf("audio not copied in %v", args)
	}
}

func TestEscapeFilterValue(t *testing.T) {
	got := escapeFilterValue(`C:\subs\it's.ass`)
	want := `'C\:\\subs\\it\'s.ass'`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResolve(t *testing.T) {
	origEnv, origLook := getenv, lookPath
	t.Cleanup(func() { getenv, lookPath = origEnv, origLook })

	getenv = func(key string) string {
		if key == EnvFFprobePath {
			return "/opt/ffprobe"
		}
		return ""
	}
	lookPath = func(name string) (string, error) {
		if name == "ffmpeg" {
			return "/usr/bin/ffmpeg", nil
		}
		return "", errors.New("not found")
	}

	paths, err := locate()
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if paths.FFmpeg != "/usr/bin/ffmpeg" || paths.FFprobe != "/opt/ffprobe" {
		t.Errorf("paths = %+v", paths)
	}

	getenv = func(string) string { return "" }
	if _, err := locate(); !errors.Is(err, ErrBinaryNotFound) {
		t.Errorf("err = %v, want ErrBinaryNotFound", err)
	}
}

func TestBurnCaptionsRequiresCaptions(t *testing.T) {
	err := BurnCaptions(context.Background(), "in.mp4", nil, "out.mp4", DefaultBurnOptions())
	if err == nil || !strings.Contains(err.Error(), "no captions") {
		t.Errorf("err = %v", err)
	}
}

func TestProbeMissingFile(t *testing.T) {
	if _, err := Probe(context.Background(), "/nonexistent/video.mp4"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsRemote(t *testing.T) {
	if !isRemote("https://example.com/v.mp4") {
		t.Error("https URL should be remote")
	}
	if isRemote("/home/me/v.mp4") || isRemote("v.mp4") {
		t.Error("paths should be local")
	}
}
