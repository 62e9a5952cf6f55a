// Package download hands a resolved video to whatever performs the actual
// save: a browser, the OS URL handler, or an HTTP redirect. It never fetches
// media bytes itself.
package download

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/iconidentify/ytgrab/internal/domain"
)

// MaxNameLength is the longest sanitized title, in characters.
const MaxNameLength = 200

// ErrUnsafeURL is returned for download links that are not absolute http(s) URLs.
var ErrUnsafeURL = errors.New("download URL is not an absolute http(s) URL")

var replacer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_",
	"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
)

// Sanitize replaces characters that are invalid in file names on common
// platforms and truncates the result to MaxNameLength characters.
func Sanitize(name string) string {
	s := replacer.Replace(name)
	if r := []rune(s); len(r) > MaxNameLength {
		s = string(r[:MaxNameLength])
	}
	return s
}

// Filename returns the suggested save name for info.
func Filename(info *domain.VideoInfo) string {
	return Sanitize(info.Title) + "." + info.Ext
}

// Target is what an Opener receives.
type Target struct {
	URL      string
	Filename string
}

// Opener starts a save or navigation action for a target.
type Opener interface {
	Open(t Target) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(Target) error

// Open calls f(t).
func (f OpenerFunc) Open(t Target) error {
	return f(t)
}

// ResultSource exposes a resolved video; session.Session satisfies it.
type ResultSource interface {
	Result() (*domain.VideoInfo, error)
}

// Trigger initiates downloads through an Opener.
type Trigger struct {
	opener Opener
	logger *slog.Logger
}

// NewTrigger creates a Trigger.
func NewTrigger(opener Opener, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{opener: opener, logger: logger}
}

// Trigger starts the save action for info. Calling it again re-opens the
// same target.
func (t *Trigger) Trigger(info *domain.VideoInfo) error {
	if !info.HasDownloadURL() {
		return domain.ErrNoDownloadLink
	}
	target, err := TargetFor(info)
	if err != nil {
		return err
	}

	t.logger.Info("triggering download", "filename", target.Filename)
	if err := t.opener.Open(target); err != nil {
		return fmt.Errorf("open download: %w", err)
	}
	return nil
}

// TriggerSession triggers the download held by src, or returns
// domain.ErrNotReady when there is none.
func (t *Trigger) TriggerSession(src ResultSource) error {
	info, err := src.Result()
	if err != nil {
		return err
	}
	return t.Trigger(info)
}

// TargetFor validates info's download URL and builds the open target.
func TargetFor(info *domain.VideoInfo) (Target, error) {
	raw := strings.TrimSpace(info.DownloadURL)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Target{}, fmt.Errorf("%q: %w", raw, ErrUnsafeURL)
	}
	return Target{URL: raw, Filename: Filename(info)}, nil
}
