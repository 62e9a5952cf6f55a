package download

import (
	"fmt"
	"log/slog"
)

// SystemOpener hands targets to the operating system's URL handler, which
// normally opens the default browser.
type SystemOpener struct {
	logger *slog.Logger
	open   func(url string) error
}

// NewSystemOpener creates an opener for the current platform.
func NewSystemOpener(logger *slog.Logger) *SystemOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemOpener{logger: logger, open: openURL}
}

// Open launches the platform handler for t.URL. The browser decides the
// final file name; t.Filename is only logged.
func (o *SystemOpener) Open(t Target) error {
	o.logger.Debug("opening URL with system handler", "filename", t.Filename)
	if err := o.open(t.URL); err != nil {
		return fmt.Errorf("system handler: %w", err)
	}
	return nil
}
