package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/lrclib"
	"github.com/tessro/verse/internal/tui"
)

var (
	lyricsPlain   bool
	lyricsRefresh time.Duration
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics [title] [artist]",
	Short: "Show lyrics for the current or a named track",
	Long: `Without arguments, opens a live view that follows the currently
playing track line by line. With a title (and optionally an artist), prints
the full lyrics for that track. --plain prints instead of opening the live
view, and is implied when stdout is not a terminal.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runLyrics,
}

func init() {
	lyricsCmd.Flags().BoolVarP(&lyricsPlain, "plain", "p", false, "print lyrics instead of the live view")
	lyricsCmd.Flags().DurationVar(&lyricsRefresh, "refresh", time.Second, "live view refresh interval")
	rootCmd.AddCommand(lyricsCmd)
}

func runLyrics(cmd *cobra.Command, args []string) error {
	source, err := newLyricsSource()
	if err != nil {
		return err
	}

	// A named track always prints.
	if len(args) > 0 {
		title := args[0]
		artist := ""
		if len(args) > 1 {
			artist = args[1]
		}
		return printLyrics(cmd, source, title, artist)
	}

	p, err := newPlayer()
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if lyricsPlain || JSONOutput() || !interactive {
		state, err := p.GetState(cmd.Context())
		if err != nil {
			return err
		}
		if !state.HasTrack() {
			fmt.Println("No active playback")
			return nil
		}
		return printLyrics(cmd, source, state.Track.Title, state.Track.Artist)
	}

	assembler := newAssembler(p, source)
	return tui.RunLyrics(assembler, lyricsRefresh)
}

func printLyrics(cmd *cobra.Command, source *lrclib.Source, title, artist string) error {
	lyr, err := source.Lookup(cmd.Context(), title, artist)
	if err != nil {
		return err
	}
	if lyr == nil {
		return verrors.ErrLyricsNotFound
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"track":        lyr.TrackName,
			"artist":       lyr.ArtistName,
			"album":        lyr.AlbumName,
			"instrumental": lyr.Instrumental,
			"plain_lyrics": lyr.Plain,
			"has_synced":   lyr.Synced != "",
		})
	}

	fmt.Printf("%s — %s\n\n", lyr.TrackName, lyr.ArtistName)
	switch {
	case lyr.Instrumental:
		fmt.Println("(instrumental)")
	case lyr.Plain != "":
		fmt.Println(lyr.Plain)
	default:
		fmt.Println("(no lyric text)")
	}
	return nil
}
