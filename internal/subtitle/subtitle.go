// Package subtitle reads and writes caption lists as subtitle files.
package subtitle

import (
	"io"

	"github.com/mgpai22/captioner/internal/caption"
)

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// DefaultFilename is the download name of an export.
const DefaultFilename = "captions.vtt"

// interface for writing captions in one subtitle format
type Writer interface {
	Write(w io.Writer, captions []caption.Caption) error
	ContentType() string
	Extension() string
}

// interface for reading captions from one subtitle format
type Parser interface {
	Parse(r io.Reader) ([]caption.Caption, error)
}
