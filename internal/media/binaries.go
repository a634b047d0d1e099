// Package media wraps the ffmpeg tools used to probe videos and burn
// captions into them.
package media

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

const (
	EnvFFmpegPath  = "CAPTIONER_FFMPEG_PATH"
	EnvFFprobePath = "CAPTIONER_FFPROBE_PATH"
)

var ErrBinaryNotFound = errors.New("ffmpeg binary not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// seams for tests
var (
	getenv   = os.Getenv
	lookPath = exec.LookPath
)

var (
	locateOnce sync.Once
	locatePath BinaryPaths
	locateErr  error
)

// Locate resolves ffmpeg and ffprobe once per process, preferring the
// environment overrides over PATH.
func Locate() (BinaryPaths, error) {
	locateOnce.Do(func() {
		locatePath, locateErr = locate()
	})
	return locatePath, locateErr
}

func FFmpegPath() (string, error) {
	paths, err := Locate()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Locate()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func locate() (BinaryPaths, error) {
	ffmpegPath, err := resolve(EnvFFmpegPath, "ffmpeg")
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobePath, err := resolve(EnvFFprobePath, "ffprobe")
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func resolve(env, name string) (string, error) {
	if p := getenv(env); p != "" {
		return p, nil
	}
	found, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not on PATH (set %s): %v", ErrBinaryNotFound, name, env, err)
	}
	return found, nil
}
