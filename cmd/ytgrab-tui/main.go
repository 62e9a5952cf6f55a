// ytgrab TUI - terminal front end for resolving YouTube links into direct
// download links.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/iconidentify/ytgrab/cmd/ytgrab-tui/internal/ui"
	"github.com/iconidentify/ytgrab/internal/config"
	"github.com/iconidentify/ytgrab/internal/download"
	"github.com/iconidentify/ytgrab/internal/resolver"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the screen; logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client := resolver.NewClient(cfg.Resolver)
	client.SetLogger(logger.With("component", "resolver"))

	app := ui.NewApp(client, download.NewSystemOpener(logger), ui.Options{
		Timeout: cfg.Resolver.Timeout,
		Logger:  logger,
	})

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
