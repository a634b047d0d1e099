package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/mgpai22/captioner/internal/caption"
	"github.com/mgpai22/captioner/internal/timecode"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format, used for burn-in
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "Captioner Export",
			FontName: "Arial",
			FontSize: 20,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportVTT renders the whole caption list as a WebVTT document.
func ExportVTT(captions []caption.Caption) string {
	var buf bytes.Buffer
	_ = (&VTTWriter{}).Write(&buf, captions)
	return buf.String()
}

// writes captions as numbered cues after the WEBVTT header
func (w *VTTWriter) Write(out io.Writer, captions []caption.Caption) error {
	bw := bufio.NewWriter(out)
	bw.WriteString("WEBVTT\n\n")
	for i, c := range captions {
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1,
			timecode.FormatVTT(c.StartTime),
			timecode.FormatVTT(c.EndTime),
			c.Text)
	}
	return bw.Flush()
}

func (w *VTTWriter) ContentType() string { return "text/vtt" }
func (w *VTTWriter) Extension() string   { return ".vtt" }

// writes captions as SubRip blocks
func (w *SRTWriter) Write(out io.Writer, captions []caption.Caption) error {
	bw := bufio.NewWriter(out)
	for i, c := range captions {
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1,
			timecode.FormatSRT(c.StartTime),
			timecode.FormatSRT(c.EndTime),
			c.Text)
	}
	return bw.Flush()
}

func (w *SRTWriter) ContentType() string { return "application/x-subrip" }
func (w *SRTWriter) Extension() string   { return ".srt" }

// writes captions as a single-style ASS script
func (w *ASSWriter) Write(out io.Writer, captions []caption.Caption) error {
	bw := bufio.NewWriter(out)

	bw.WriteString("[Script Info]\n")
	fmt.Fprintf(bw, "Title: %s\n", w.Title)
	bw.WriteString("ScriptType: v4.00+\n")
	bw.WriteString("Collisions: Normal\n")
	bw.WriteString("PlayDepth: 0\n\n")

	bw.WriteString("[V4+ Styles]\n")
	bw.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(bw, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize)

	bw.WriteString("[Events]\n")
	bw.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range captions {
		fmt.Fprintf(bw, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			timecode.FormatASS(c.StartTime),
			timecode.FormatASS(c.EndTime),
			escapeASSText(c.Text))
	}
	return bw.Flush()
}

func (w *ASSWriter) ContentType() string { return "text/x-ssa" }
func (w *ASSWriter) Extension() string   { return ".ass" }

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\\N")
}

// WriteFile renders captions and atomically replaces path with the result.
func WriteFile(path string, format Format, captions []caption.Caption) error {
	w, err := NewWriter(format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, captions); err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// subtitle format based on file extension, VTT when unknown
func FormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatVTT
	}
}

// ParseFormat accepts a format name as typed on the command line.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))); f {
	case FormatVTT, FormatSRT, FormatASS:
		return f, nil
	case "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}
