package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/perception"
	"github.com/tessro/verse/internal/spotify/client"
	"github.com/tessro/verse/internal/spotify/player"
)

var (
	statusFollow   bool
	statusInterval time.Duration
	statusDevices  bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current playback status",
	Long: `Shows the current playback status with the active lyric line when
synced lyrics are available.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusFollow, "follow", "f", false, "keep printing as the lyric line changes")
	statusCmd.Flags().DurationVarP(&statusInterval, "interval", "i", time.Second, "poll interval for --follow")
	statusCmd.Flags().BoolVar(&statusDevices, "devices", false, "list available playback devices")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := newPlayer()
	if err != nil {
		return err
	}

	if statusDevices {
		return printDevices(cmd.Context(), p)
	}

	source, err := newLyricsSource()
	if err != nil {
		return err
	}
	assembler := newAssembler(p, source)

	if statusFollow {
		printRecentlyPlayed(cmd.Context(), p)
		return followStatus(cmd.Context(), assembler)
	}

	res, err := assembler.Perceive(cmd.Context())
	if err != nil {
		return err
	}
	return printStatus(res)
}

func printDevices(ctx context.Context, p deviceLister) error {
	devices, err := p.GetDevices(ctx)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices available.")
		return nil
	}

	table := NewTable("NAME", "TYPE", "ACTIVE", "VOLUME")
	for _, d := range devices {
		active := ""
		if d.IsActive {
			active = "*"
		}
		table.Row(d.Name, d.Type, active, fmt.Sprintf("%d%%", d.Volume))
	}
	table.Flush()
	return nil
}

func printStatus(res *perception.Result) error {
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(res)
	}

	if res.Title == "" {
		fmt.Println("No active playback")
		return nil
	}

	marker := "⏸"
	if res.Playing {
		marker = "▶"
	}
	fmt.Printf("%s %s — %s\n", marker, res.Title, strings.Join(res.Artists, ", "))
	if res.Album != "" {
		fmt.Printf("  %s\n", res.Album)
	}
	fmt.Printf("  %s / %s\n", formatDuration(res.ProgressMS), formatDuration(res.DurationMS))

	switch res.LyricStatus {
	case perception.StatusSynced:
		if res.CurrentLine != nil {
			fmt.Printf("  ♪ %s\n", strings.TrimSpace(res.CurrentLine.Text))
		}
	case perception.StatusPlainOnly:
		fmt.Println("  (lyrics available, not synced)")
	case perception.StatusInstrumental:
		fmt.Println("  (instrumental)")
	}
	return nil
}

// printRecentlyPlayed shows a short history before following, so the stream
// has context. Failures here are not fatal.
func printRecentlyPlayed(ctx context.Context, p *player.Player) {
	recent, err := p.Client().GetRecentlyPlayed(ctx, 3)
	if err != nil || len(recent.Items) == 0 {
		return
	}
	for i := len(recent.Items) - 1; i >= 0; i-- {
		track := recent.Items[i].Track
		fmt.Printf("  %s — %s\n", track.Name, artistNames(track))
	}
}

func artistNames(t client.Track) string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// followStatus polls and prints the lyric line every time it changes, tail
// style. Ctrl+C stops it.
func followStatus(ctx context.Context, assembler *perception.Assembler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	var lastTitle, lastLine string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		res, err := assembler.Perceive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		if res.Title != lastTitle {
			lastTitle = res.Title
			lastLine = ""
			if res.Title != "" {
				fmt.Printf("\n%s — %s\n", res.Title, strings.Join(res.Artists, ", "))
			}
		}

		if res.LyricStatus == perception.StatusSynced && res.CurrentLine != nil {
			line := strings.TrimSpace(res.CurrentLine.Text)
			if line != "" && line != lastLine {
				lastLine = line
				fmt.Printf("  %s\n", line)
			}
		}
	}
}

func formatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

type deviceLister interface {
	GetDevices(ctx context.Context) ([]core.Device, error)
}
