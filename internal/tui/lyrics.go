// Package tui renders a live synced-lyrics view in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/verse/internal/perception"
	"github.com/tessro/verse/internal/tui/styles"
)

// Perceiver assembles the now-playing view the lyric screen renders.
type Perceiver interface {
	Perceive(ctx context.Context) (*perception.Result, error)
}

type tickMsg time.Time

type perceiveMsg struct {
	result *perception.Result
	err    error
}

// LyricsModel is the bubbletea model for the live lyric view.
type LyricsModel struct {
	perceiver Perceiver
	refresh   time.Duration

	width  int
	height int

	result *perception.Result
	err    error

	quitting bool
}

// NewLyricsModel creates the lyric view model.
func NewLyricsModel(perceiver Perceiver, refresh time.Duration) LyricsModel {
	if refresh <= 0 {
		refresh = time.Second
	}
	return LyricsModel{perceiver: perceiver, refresh: refresh}
}

// RunLyrics runs the lyric view until the user quits.
func RunLyrics(perceiver Perceiver, refresh time.Duration) error {
	p := tea.NewProgram(NewLyricsModel(perceiver, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m LyricsModel) Init() tea.Cmd {
	return tea.Batch(m.perceive(), m.tick())
}

func (m LyricsModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m LyricsModel) perceive() tea.Cmd {
	perceiver := m.perceiver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		result, err := perceiver.Perceive(ctx)
		return perceiveMsg{result: result, err: err}
	}
}

func (m LyricsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, tea.Batch(m.perceive(), m.tick())

	case perceiveMsg:
		m.result = msg.result
		m.err = msg.err
	}

	return m, nil
}

func (m LyricsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render("error: " + m.err.Error()))
	case m.result == nil:
		b.WriteString(styles.Dim.Render("loading..."))
	case !m.result.Playing && m.result.Title == "":
		b.WriteString(styles.Dim.Render("nothing is playing"))
	default:
		b.WriteString(m.renderNowPlaying())
	}

	b.WriteString("\n\n")
	b.WriteString(styles.Dim.Render("q: quit"))

	content := styles.Panel.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m LyricsModel) renderNowPlaying() string {
	res := m.result

	var b strings.Builder

	marker := styles.Subtitle.Render("⏸")
	if res.Playing {
		marker = styles.Playing.Render("▶")
	}
	b.WriteString(fmt.Sprintf("%s %s\n", marker, styles.Title.Render(res.Title)))
	b.WriteString(styles.Subtitle.Render(res.Artist))
	if res.Album != "" {
		b.WriteString(styles.Dim.Render(" · " + res.Album))
	}
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("%s / %s",
		formatMS(res.ProgressMS), formatMS(res.DurationMS))))
	b.WriteString("\n\n")

	switch res.LyricStatus {
	case perception.StatusSynced:
		if res.CurrentLine != nil {
			b.WriteString(styles.CurrentLine.Render("♪ " + strings.TrimSpace(res.CurrentLine.Text)))
		} else {
			b.WriteString(styles.Dim.Render("♪ ..."))
		}
		for _, line := range res.UpcomingLines {
			b.WriteString("\n")
			b.WriteString(styles.UpcomingLine.Render("  " + strings.TrimSpace(line.Text)))
		}
	case perception.StatusPlainOnly:
		b.WriteString(styles.Dim.Render("lyrics available, but not synced"))
	case perception.StatusInstrumental:
		b.WriteString(styles.Dim.Render("instrumental"))
	case perception.StatusNotFound:
		b.WriteString(styles.Dim.Render("no lyrics found"))
	case perception.StatusLookupFailed:
		b.WriteString(styles.Dim.Render("lyrics lookup failed"))
	}

	return b.String()
}

func formatMS(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
