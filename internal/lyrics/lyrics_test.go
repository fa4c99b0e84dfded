package lyrics

import (
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOffset float64
		wantText   string
		wantOK     bool
	}{
		{
			name:       "simple line",
			input:      "[00:12.34] hello world",
			wantOffset: 12.34,
			wantText:   " hello world",
			wantOK:     true,
		},
		{
			name:       "minutes converted to seconds",
			input:      "[02:05.50]chorus",
			wantOffset: 125.5,
			wantText:   "chorus",
			wantOK:     true,
		},
		{
			name:       "empty text after tag",
			input:      "[01:00.00]",
			wantOffset: 60,
			wantText:   "",
			wantOK:     true,
		},
		{
			name:       "minutes beyond conventional bounds still parse",
			input:      "[99:59.99]outro",
			wantOffset: 99*60 + 59.99,
			wantText:   "outro",
			wantOK:     true,
		},
		{
			name:   "no timestamp",
			input:  "just some words",
			wantOK: false,
		},
		{
			name:   "single digit minutes rejected",
			input:  "[1:02.03] x",
			wantOK: false,
		},
		{
			name:   "missing hundredths rejected",
			input:  "[01:02] x",
			wantOK: false,
		},
		{
			name:   "tag not at start of line",
			input:  "x [01:02.03] y",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := ParseLine(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if line.Offset != tt.wantOffset {
				t.Errorf("Offset = %v, want %v", line.Offset, tt.wantOffset)
			}
			if line.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", line.Text, tt.wantText)
			}
		})
	}
}

func TestParse(t *testing.T) {
	blob := "[00:01.00]first\n\n   \nnot a timestamp\n[00:02.00]second\r\n[00:03.00]third"

	track := Parse(blob)
	if len(track) != 3 {
		t.Fatalf("Parse() returned %d lines, want 3", len(track))
	}

	want := []Line{
		{Offset: 1, Text: "first"},
		{Offset: 2, Text: "second"},
		{Offset: 3, Text: "third"},
	}
	for i, w := range want {
		if track[i] != w {
			t.Errorf("track[%d] = %+v, want %+v", i, track[i], w)
		}
	}
}

func TestParsePreservesInputOrder(t *testing.T) {
	// The builder does not re-sort; out-of-order input comes back as given.
	blob := "[00:20.00]late\n[00:10.00]early"

	track := Parse(blob)
	if len(track) != 2 {
		t.Fatalf("Parse() returned %d lines, want 2", len(track))
	}
	if track[0].Offset != 20 || track[1].Offset != 10 {
		t.Errorf("order changed: got offsets %v, %v", track[0].Offset, track[1].Offset)
	}
}

func TestParseEmptyAndPlainOnly(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Errorf("Parse(empty) = %d lines, want 0", len(got))
	}
	if got := Parse("verse one\nverse two\n"); len(got) != 0 {
		t.Errorf("Parse(plain lyrics) = %d lines, want 0", len(got))
	}
}
