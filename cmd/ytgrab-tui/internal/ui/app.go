// Package ui provides the terminal user interface for ytgrab.
package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/ytgrab/internal/download"
	"github.com/iconidentify/ytgrab/internal/resolver"
	"github.com/iconidentify/ytgrab/internal/session"
)

// Options tunes the application.
type Options struct {
	// Timeout bounds each resolution. Zero keeps the session default.
	Timeout time.Duration
	Logger  *slog.Logger
}

// App is the main TUI application.
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	session *session.Session
	trigger *download.Trigger
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc

	// UI components
	mainFlex    *tview.Flex
	header      *tview.TextView
	footer      *tview.TextView
	statusBar   *tview.TextView
	searchView  *tview.Flex
	input       *tview.InputField
	videoBtn    *tview.Button
	audioBtn    *tview.Button
	searchBtn   *tview.Button
	errorView   *tview.TextView
	resultView  *tview.TextView
	downloadBtn *tview.Button
	helpView    *tview.TextView

	// focusables is the Tab order on the search page.
	focusables []tview.Primitive
	showHelp   bool
}

// NewApp creates a new TUI application backed by r. Downloads are handed to
// opener.
func NewApp(r resolver.Resolver, opener download.Opener, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		trigger: download.NewTrigger(opener, logger),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	sessOpts := []session.Option{
		session.WithLogger(logger.With("component", "session")),
		session.WithListener(a.onState),
	}
	if opts.Timeout > 0 {
		sessOpts = append(sessOpts, session.WithTimeout(opts.Timeout))
	}
	a.session = session.New(r, sessOpts...)

	a.setupUI()
	a.render(a.session.State())
	return a
}

// setupUI initializes all UI components.
func (a *App) setupUI() {
	// Header
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("\n[white::b]ytgrab[white] - [yellow]Descarga videos de YouTube")
	a.header.SetBackgroundColor(tcell.ColorDarkRed)

	// Footer with keybindings
	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]Enter[white]:Buscar [yellow]Tab[white]:Siguiente [yellow]F2[white]:Video/Audio [yellow]F1[white]:Ayuda [yellow]Ctrl+C[white]:Salir")
	a.footer.SetBackgroundColor(tcell.ColorDarkRed)

	// Status bar
	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	a.createSearchPanel()
	a.createHelpPanel()

	a.pages.AddPage("search", a.searchView, true, true)
	a.pages.AddPage("help", a.helpView, true, false)

	// Main layout
	a.mainFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	a.app.SetInputCapture(a.handleGlobalKeys)
	a.app.SetRoot(a.mainFlex, true).SetFocus(a.input)
}

// handleGlobalKeys handles global keyboard shortcuts.
func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	if a.showHelp {
		if event.Key() == tcell.KeyEscape || event.Key() == tcell.KeyF1 {
			a.toggleHelp()
			return nil
		}
		return event
	}

	switch event.Key() {
	case tcell.KeyF1:
		a.toggleHelp()
		return nil
	case tcell.KeyF2:
		a.toggleFormat()
		return nil
	case tcell.KeyTab:
		a.cycleFocus(1)
		return nil
	case tcell.KeyBacktab:
		a.cycleFocus(-1)
		return nil
	}
	return event
}

// cycleFocus moves focus by step through the search page widgets.
func (a *App) cycleFocus(step int) {
	current := a.app.GetFocus()
	idx := 0
	for i, p := range a.focusables {
		if p == current {
			idx = i
			break
		}
	}
	n := len(a.focusables)
	for i := 1; i <= n; i++ {
		next := a.focusables[((idx+step*i)%n+n)%n]
		if next == a.downloadBtn && !a.hasResult() {
			continue
		}
		a.app.SetFocus(next)
		return
	}
}

func (a *App) toggleHelp() {
	a.showHelp = !a.showHelp
	if a.showHelp {
		a.pages.SwitchToPage("help")
		return
	}
	a.pages.SwitchToPage("search")
	a.app.SetFocus(a.input)
}

// setStatus updates the status bar. Must run on the UI goroutine.
func (a *App) setStatus(msg string) {
	a.statusBar.SetText(" " + msg)
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.cancel()
	return a.app.Run()
}

// Stop stops the TUI application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
