// Package lyrics implements parsing and playback-position lookup for
// LRC-style synchronized lyrics.
package lyrics

import (
	"regexp"
	"strconv"
	"strings"
)

// Line is a single lyric line anchored to a playback position. Offset is
// elapsed seconds from the start of the track.
type Line struct {
	Offset float64 `json:"offset_seconds"`
	Text   string  `json:"text"`
}

// timestampRE matches one synced-lyrics line: a leading [MM:SS.CC] tag
// followed by the lyric text. Minutes, seconds and hundredths are exactly
// two digits each.
var timestampRE = regexp.MustCompile(`^\[(\d{2}):(\d{2})\.(\d{2})\](.*)$`)

// ParseLine parses one line of a synced-lyrics blob. The second return value
// is false when the line carries no leading timestamp; callers skip such
// lines rather than treating them as errors. Component values are not bounds
// checked, so a tag like [99:99.99] still produces an offset.
func ParseLine(s string) (Line, bool) {
	m := timestampRE.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	min, _ := strconv.Atoi(m[1])
	sec, _ := strconv.Atoi(m[2])
	cs, _ := strconv.Atoi(m[3])
	return Line{
		Offset: float64(min*60+sec) + float64(cs)/100,
		Text:   m[4],
	}, true
}

// Parse applies ParseLine to every non-blank line of a synced-lyrics blob
// and collects the results in input order. Lyrics providers emit lines
// sorted ascending by timestamp and Parse trusts that: no re-sorting is
// applied.
func Parse(synced string) []Line {
	var track []Line
	for _, raw := range strings.Split(synced, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if line, ok := ParseLine(raw); ok {
			track = append(track, line)
		}
	}
	return track
}
