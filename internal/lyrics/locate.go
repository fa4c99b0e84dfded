package lyrics

const (
	// LookaheadSeconds is the fixed horizon ahead of the playback position
	// within which upcoming lines are surfaced.
	LookaheadSeconds = 30.0

	// MaxUpcoming bounds how many upcoming lines a lookup returns.
	MaxUpcoming = 5
)

// Position is the result of locating a playback offset within a track.
// Current is nil before the first line's timestamp.
type Position struct {
	Current  *Line  `json:"current_line,omitempty"`
	Upcoming []Line `json:"upcoming_lines,omitempty"`
}

// Locate finds the line whose validity interval contains offset, plus up to
// MaxUpcoming lines within the look-ahead horizon, in one forward pass.
//
// Current is reassigned whenever a line starts at or before offset and its
// immediate successor (if any) starts strictly after. On a track that is not
// sorted ascending this can differ from "closest preceding line"; the scan
// semantics are deliberate and must not be replaced with a max-search.
// Upcoming keeps the first MaxUpcoming lines in sequence order whose offset
// lies in (offset, offset+LookaheadSeconds], not the nearest by offset.
//
// An empty track or an offset outside every interval yields a zero Position;
// Locate never fails.
func Locate(track []Line, offset float64) Position {
	var pos Position
	for i := range track {
		line := track[i]
		if line.Offset <= offset && (i == len(track)-1 || track[i+1].Offset > offset) {
			pos.Current = &track[i]
		}
		if line.Offset > offset && line.Offset <= offset+LookaheadSeconds && len(pos.Upcoming) < MaxUpcoming {
			pos.Upcoming = append(pos.Upcoming, line)
		}
	}
	return pos
}
