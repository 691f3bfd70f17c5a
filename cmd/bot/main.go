package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// CLI is the bot client's command-line surface.
type CLI struct {
	Server string `kong:"default='ws://localhost:8080/ws',help='Game server websocket URL'"`
	Name   string `kong:"default='bot',help='Display name to join the table with'"`
	TUI    bool   `kong:"name='tui',help='Show a status panel instead of log lines'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("headsup-holdem-bot"),
		kong.Description("Uniform-random bot client for the heads-up hold'em server"),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	if _, err := url.Parse(cli.Server); err != nil {
		kctx.FatalIfErrorf(fmt.Errorf("invalid server url: %w", err))
	}

	conn, _, err := websocket.DefaultDialer.Dial(cli.Server, nil)
	if err != nil {
		kctx.FatalIfErrorf(fmt.Errorf("dial %s: %w", cli.Server, err))
	}
	defer conn.Close()

	if !cli.TUI {
		runHeadless(conn, cli.Name, logger)
		return
	}
	runWithTUI(conn, cli.Name, logger)
}

func runHeadless(conn *websocket.Conn, name string, logger *log.Logger) {
	c := newClient(conn, name, logger, nil)
	if err := c.run(); err != nil {
		logger.Info("connection closed", "error", err)
	}
}

// runWithTUI drives the same client but pipes its status lines into a
// bubbletea program instead of the logger's stderr stream.
func runWithTUI(conn *websocket.Conn, name string, logger *log.Logger) {
	status := make(chan string, 32)
	c := newClient(conn, name, logger, status)

	done := make(chan error, 1)
	go func() { done <- c.run() }()

	program := newTUIProgram(status)
	if _, err := program.Run(); err != nil {
		logger.Error("tui exited", "error", err)
	}

	select {
	case err := <-done:
		if err != nil {
			logger.Info("connection closed", "error", err)
		}
	case <-time.After(time.Second):
	}
}
