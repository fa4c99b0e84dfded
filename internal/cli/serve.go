package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Serves the Model Context Protocol over stdin/stdout for an AI
assistant to connect to. Stdout carries protocol frames only; configure
log.file to capture logs while serving.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := newPlayer()
	if err != nil {
		return err
	}

	source, err := newLyricsSource()
	if err != nil {
		return err
	}

	assembler := newAssembler(p, source)

	server := mcp.NewServer(mcp.Options{
		Name:      "verse",
		Version:   Version,
		Player:    p,
		Perceiver: assembler,
		Search:    p.Client(),
		Lyrics:    source,
		Features:  p.Client(),
		Log:       log,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	log.Info().Msg("mcp server listening on stdio")
	return server.Serve(ctx, os.Stdin, os.Stdout)
}
