package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/headsup-holdem/internal/config"
	"github.com/lox/headsup-holdem/internal/session"
)

// CLI is the heads-up hold'em server's command-line surface.
type CLI struct {
	Port                  int    `kong:"default='8080',help='HTTP/WebSocket listen port'"`
	ConfigFile            string `kong:"name='config',help='Optional HCL table configuration file'"`
	ActionTimeoutMs       int    `kong:"name='action-timeout',default='30000',help='Milliseconds a player has to act before being auto-folded'"`
	DisconnectGraceTimeMs int    `kong:"name='disconnect-grace-time',default='30000',help='Milliseconds to wait for a disconnected player to reconnect before sitting them out'"`
	AmpleTimeSec          int    `kong:"name='ample-time',help='Legacy alias for --disconnect-grace-time, in seconds'"`
	RemovalTimeoutMs      int    `kong:"name='removal-timeout',default='60000',help='Milliseconds after the grace period before a still-disconnected player is removed'"`
	Debug                 bool   `kong:"help='Enable debug logging'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("headsup-holdem-server"),
		kong.Description("Two-seat heads-up No-Limit Hold'em game server"),
		kong.UsageOnError(),
	)

	tableSettings, err := config.Load(cli.ConfigFile)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}
	if err := tableSettings.Validate(); err != nil {
		kctx.FatalIfErrorf(err)
	}

	// --ample-time is the legacy alias for --disconnect-grace-time, but
	// spelled in seconds rather than milliseconds; convert it rather
	// than aliasing the field directly.
	if cli.AmpleTimeSec > 0 {
		cli.DisconnectGraceTimeMs = cli.AmpleTimeSec * 1000
	}

	if cli.ActionTimeoutMs <= 0 || cli.DisconnectGraceTimeMs <= 0 || cli.RemovalTimeoutMs <= 0 {
		kctx.FatalIfErrorf(errors.New("timeouts must be positive"))
	}

	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	sessionCfg := session.Config{
		SmallBlind:     tableSettings.SmallBlind,
		BigBlind:       tableSettings.BigBlind,
		StartingStack:  tableSettings.StartingStack,
		ActionTimeout:  time.Duration(cli.ActionTimeoutMs) * time.Millisecond,
		GraceTimeout:   time.Duration(cli.DisconnectGraceTimeMs) * time.Millisecond,
		RemovalTimeout: time.Duration(cli.RemovalTimeoutMs) * time.Millisecond,
	}

	connLogger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cli.Debug {
		connLogger.SetLevel(log.DebugLevel)
	}

	hub := session.New(sessionCfg, quartz.NewReal(), connLogger)
	httpServer := newHTTPServer(cli.Port, hub, connLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		zlog.Info().Int("port", cli.Port).
			Int("small_blind", sessionCfg.SmallBlind).
			Int("big_blind", sessionCfg.BigBlind).
			Int("starting_stack", sessionCfg.StartingStack).
			Msg("server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		zlog.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		zlog.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func newHTTPServer(port int, hub *session.Hub, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", session.NewWebSocketHandler(hub, logger))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
}
