package subtitle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mgpai22/captioner/internal/caption"
)

func TestExportVTT(t *testing.T) {
	tests := []struct {
		name     string
		captions []caption.Caption
		want     string
	}{
		{
			name:     "empty",
			captions: nil,
			want:     "WEBVTT\n\n",
		},
		{
			name:     "single",
			captions: []caption.Caption{{Text: "Hi", StartTime: 0, EndTime: 1.5}},
			want:     "WEBVTT\n\n1\n00:00:00.000 --> 00:00:01.500\nHi\n\n",
		},
		{
			name: "numbered in list order",
			captions: []caption.Caption{
				{Text: "late", StartTime: 3661.25, EndTime: 3662},
				{Text: "early", StartTime: 1, EndTime: 2},
			},
			want: "WEBVTT\n\n" +
				"1\n01:01:01.250 --> 01:01:02.000\nlate\n\n" +
				"2\n00:00:01.000 --> 00:00:02.000\nearly\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExportVTT(tt.captions); got != tt.want {
				t.Errorf("ExportVTT() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSRTWriter(t *testing.T) {
	var buf bytes.Buffer
	err := (&SRTWriter{}).Write(&buf, []caption.Caption{
		{Text: "one", StartTime: 1.25, EndTime: 2},
		{Text: "two", StartTime: 3, EndTime: 4.5},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "1\n00:00:01,250 --> 00:00:02,000\none\n\n2\n00:00:03,000 --> 00:00:04,500\ntwo\n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestASSWriterEscapesNewlines(t *testing.T) {
	w, err := NewWriter(FormatASS)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, []caption.Caption{{Text: "top\nbottom", StartTime: 1, EndTime: 2.5}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Dialogue: 0,0:00:01.00,0:00:02.50,Default,,0,0,0,,top\\Nbottom\n") {
		t.Errorf("dialogue line missing, got:\n%s", out)
	}
	if !strings.Contains(out, "Style: Default,Arial,20") {
		t.Error("default style missing")
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	captions := []caption.Caption{
		{Text: "Hello", StartTime: 0, EndTime: 1.5},
		{Text: "two\nlines", StartTime: 2, EndTime: 4.25},
	}

	for _, format := range []Format{FormatVTT, FormatSRT, FormatASS} {
		t.Run(string(format), func(t *testing.T) {
			w, _ := NewWriter(format)
			path := filepath.Join(t.TempDir(), "nested", "out"+w.Extension())
			if err := WriteFile(path, format, captions); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			got, gotFormat, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if gotFormat != format {
				t.Errorf("format = %s, want %s", gotFormat, format)
			}
			if diff := cmp.Diff(captions, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, FormatVTT, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "WEBVTT\n\n" {
		t.Errorf("content = %q", data)
	}
}

func TestFormatFromExtension(t *testing.T) {
	tests := map[string]Format{
		"captions.vtt": FormatVTT,
		"a/b/c.SRT":    FormatSRT,
		"x.ass":        FormatASS,
		"x.ssa":        FormatASS,
		"noext":        FormatVTT,
	}
	for path, want := range tests {
		if got := FormatFromExtension(path); got != want {
			t.Errorf("FormatFromExtension(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"vtt", "VTT", ".srt", " ass ", "ssa"} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q): %v", in, err)
		}
	}
	if _, err := ParseFormat("txt"); err == nil {
		t.Error("expected error for txt")
	}
}

func TestContentType(t *testing.T) {
	w, _ := NewWriter(FormatVTT)
	if w.ContentType() != "text/vtt" {
		t.Errorf("content type = %q", w.ContentType())
	}
}
