// ytgrab resolves a single YouTube link into a direct download link and
// prints it, optionally opening it with the system URL handler.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/iconidentify/ytgrab/internal/config"
	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/download"
	"github.com/iconidentify/ytgrab/internal/present"
	"github.com/iconidentify/ytgrab/internal/resolver"
	"github.com/iconidentify/ytgrab/internal/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// env carries the process dependencies run needs.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func(w io.Writer) bool
	// newResolver builds the resolver from the loaded config.
	newResolver func(cfg *config.Config, logger *slog.Logger) resolver.Resolver
	opener      download.Opener
}

// result is the JSON shape printed with -json.
type result struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	Format      string `json:"format"`
	Title       string `json:"title,omitempty"`
	Uploader    string `json:"uploader,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Filesize    *int64 `json:"filesize,omitempty"`
	Ext         string `json:"ext,omitempty"`
	Filename    string `json:"filename,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	code := run(ctx, os.Args[1:], env{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: isTerminal,
		newResolver: func(cfg *config.Config, logger *slog.Logger) resolver.Resolver {
			c := resolver.NewClient(cfg.Resolver)
			c.SetLogger(logger)
			return c
		},
		opener: download.NewSystemOpener(logger),
	})
	stop()
	os.Exit(code)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func run(ctx context.Context, args []string, e env) int {
	fs := flag.NewFlagSet("ytgrab", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	configPath := fs.String("config", "", "Path to config file")
	rawURL := fs.String("url", "", "YouTube link to resolve (or pass it as the first argument)")
	formatFlag := fs.String("format", "video", "Target format: video or audio")
	openFlag := fs.Bool("open", false, "Open the download link with the system handler")
	jsonFlag := fs.Bool("json", false, "Print the result as JSON (default when stdout is not a terminal)")
	verbose := fs.Bool("v", false, "Log resolver activity to stderr")
	showVersion := fs.Bool("version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintf(e.stdout, "ytgrab %s (built %s)\n", Version, BuildTime)
		return exitOK
	}

	link := *rawURL
	if link == "" && fs.NArg() > 0 {
		link = fs.Arg(0)
	}

	format, err := domain.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintf(e.stderr, "ytgrab: %v\n", err)
		return exitUsage
	}

	asJSON := *jsonFlag
	jsonSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "json" {
			jsonSet = true
		}
	})
	if !jsonSet {
		asJSON = !e.isTerminal(e.stdout)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(e.stderr, "ytgrab: %v\n", err)
		return exitFailed
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: level}))

	sess := session.New(e.newResolver(cfg, logger.With("component", "resolver")),
		session.WithTimeout(cfg.Resolver.Timeout),
		session.WithLogger(logger.With("component", "session")),
	)

	st, err := sess.Submit(ctx, link, format)
	if err != nil {
		fmt.Fprintf(e.stderr, "ytgrab: %v\n", err)
		return exitFailed
	}

	out := toResult(st)
	if asJSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(e.stderr, "ytgrab: %v\n", err)
			return exitFailed
		}
	} else {
		printHuman(e.stdout, e.stderr, st)
	}

	if st.Mode != session.ModeReady {
		return exitFailed
	}

	if *openFlag {
		trigger := download.NewTrigger(e.opener, logger.With("component", "download"))
		if err := trigger.TriggerSession(sess); err != nil {
			if errors.Is(err, download.ErrUnsafeURL) {
				fmt.Fprintf(e.stderr, "ytgrab: refusing to open link: %v\n", err)
			} else {
				fmt.Fprintf(e.stderr, "ytgrab: %v\n", err)
			}
			return exitFailed
		}
	}
	return exitOK
}

func toResult(st session.State) result {
	r := result{Format: st.SelectedFormat.String()}
	if st.Mode != session.ModeReady || st.Result == nil {
		r.Error = st.ErrorMessage
		return r
	}
	info := st.Result
	r.OK = true
	r.Title = info.Title
	r.Uploader = info.Uploader
	r.Thumbnail = info.Thumbnail
	r.Duration = info.Duration
	r.Filesize = info.Filesize
	r.Ext = info.Ext
	r.Filename = download.Filename(info)
	r.DownloadURL = info.DownloadURL
	return r
}

func printHuman(stdout, stderr io.Writer, st session.State) {
	if st.Mode != session.ModeReady || st.Result == nil {
		fmt.Fprintln(stderr, st.ErrorMessage)
		return
	}
	info := st.Result
	fmt.Fprintln(stdout, present.Truncate(info.Title, present.TitleDisplayLength))
	if info.Uploader != "" {
		fmt.Fprintln(stdout, info.Uploader)
	}
	if meta := present.Meta(info); meta != "" {
		fmt.Fprintln(stdout, meta)
	}
	fmt.Fprintf(stdout, "Archivo: %s\n", download.Filename(info))
	fmt.Fprintf(stdout, "%s: %s\n", present.DownloadLabel(st.SelectedFormat), info.DownloadURL)
}
