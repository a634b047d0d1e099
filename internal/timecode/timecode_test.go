package timecode

import (
	"errors"
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00.000"},
		{1.5, "00:01.500"},
		{1.005, "00:01.005"},
		{59.999, "00:59.999"},
		{61.25, "01:01.250"},
		{3599.999, "59:59.999"},
		// minutes come from the epoch clock and wrap past the hour
		{3600, "00:00.000"},
		{3723.4, "02:03.400"},
		{math.NaN(), "00:00.000"},
		{math.Inf(1), "00:00.000"},
	}

	for _, tt := range tests {
		if got := Format(tt.seconds); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatTruncatesMilliseconds(t *testing.T) {
	if got := Format(1.2349); got != "00:01.234" {
		t.Errorf("Format(1.2349) = %q, want 00:01.234", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"00:00.000", 0, true},
		{"01:30.250", 90.25, true},
		{"59:59.999", 3599.999, true},
		{"00:99.000", 99, true},
		{"1:00.000", 0, false},
		{"00:00.0000", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"00:00:00.000", 0, false},
		{" 00:01.000", 0, false},
		{"00:01,000", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	// every whole millisecond would be 3.6M cases; step through a prime stride
	for ms := 0; ms < 3600*1000; ms += 997 {
		v := float64(ms/1000) + float64(ms%1000)/1000
		got, ok := Parse(Format(v))
		if !ok {
			t.Fatalf("Parse(Format(%v)) failed for %q", v, Format(v))
		}
		if math.Abs(got-v) > 1e-9 {
			t.Fatalf("round trip of %v gave %v via %q", v, got, Format(v))
		}
	}
}

func TestParseFormatRoundTripSubMillisecond(t *testing.T) {
	for _, v := range []float64{0.0004, 12.3456789, 599.9999, 3599.9995} {
		got, ok := Parse(Format(v))
		if !ok {
			t.Fatalf("Parse(Format(%v)) failed", v)
		}
		if diff := v - got; diff < 0 || diff >= 0.001 {
			t.Errorf("round trip of %v gave %v, outside millisecond precision", v, got)
		}
	}
}

func TestExportFormats(t *testing.T) {
	tests := []struct {
		seconds float64
		vtt     string
		srt     string
		ass     string
	}{
		{0, "00:00:00.000", "00:00:00,000", "0:00:00.00"},
		{1.5, "00:00:01.500", "00:00:01,500", "0:00:01.50"},
		{3723.456, "01:02:03.456", "01:02:03,456", "1:02:03.45"},
		{90000, "25:00:00.000", "25:00:00,000", "25:00:00.00"},
		{math.NaN(), "00:00:00.000", "00:00:00,000", "0:00:00.00"},
	}

	for _, tt := range tests {
		if got := FormatVTT(tt.seconds); got != tt.vtt {
			t.Errorf("FormatVTT(%v) = %q, want %q", tt.seconds, got, tt.vtt)
		}
		if got := FormatSRT(tt.seconds); got != tt.srt {
			t.Errorf("FormatSRT(%v) = %q, want %q", tt.seconds, got, tt.srt)
		}
		if got := FormatASS(tt.seconds); got != tt.ass {
			t.Errorf("FormatASS(%v) = %q, want %q", tt.seconds, got, tt.ass)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{65.9, "1:05"},
		{3725, "1:02:05"},
		{math.NaN(), "00:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.seconds); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"01:02.500", 62.5, false},
		{"01:00:00.000", 3600, false},
		{"00:00:01,250", 1.25, false},
		{"12.75", 12.75, false},
		{" 3 ", 3, false},
		{"-1", 0, true},
		{"NaN", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInput(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimestamp) {
					t.Fatalf("ParseInput(%q) error = %v, want ErrInvalidTimestamp", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInput(%q) unexpected error: %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseInput(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
