package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/captioner/internal/caption"
)

func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatVTT:
		return VTTParser{}, nil
	case FormatSRT:
		return SRTParser{}, nil
	case FormatASS:
		return ASSParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
}

// Parse reads captions in the given format. Entries are not validated;
// callers add them through the store, which does.
func Parse(r io.Reader, format Format) ([]caption.Caption, error) {
	p, err := NewParser(format)
	if err != nil {
		return nil, err
	}
	return p.Parse(r)
}

// Open parses a subtitle file, choosing the format from its extension.
func Open(path string) ([]caption.Caption, Format, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		format = FormatVTT
	case ".srt":
		format = FormatSRT
	case ".ass", ".ssa":
		format = FormatASS
	default:
		return nil, "", fmt.Errorf("unsupported subtitle format: %s", filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	captions, err := Parse(file, format)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	return captions, format, nil
}
