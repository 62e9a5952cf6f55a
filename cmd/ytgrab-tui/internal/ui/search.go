package ui

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/download"
	"github.com/iconidentify/ytgrab/internal/present"
	"github.com/iconidentify/ytgrab/internal/session"
)

var (
	selectedStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed)
	unselectedStyle = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorDarkSlateGray)
)

// createSearchPanel creates the link input, format selectors and result panel.
func (a *App) createSearchPanel() {
	a.input = tview.NewInputField().
		SetLabel("Link de YouTube: ").
		SetPlaceholder("https://www.youtube.com/watch?v=...").
		SetFieldWidth(0)
	a.input.SetChangedFunc(func(text string) {
		a.session.SetInput(text)
	})
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.submit()
		}
	})

	a.videoBtn = tview.NewButton(present.LabelVideo).SetSelectedFunc(func() {
		a.selectFormat(domain.FormatVideo)
	})
	a.audioBtn = tview.NewButton(present.LabelAudio).SetSelectedFunc(func() {
		a.selectFormat(domain.FormatAudio)
	})
	a.searchBtn = tview.NewButton(present.LabelSearch).SetSelectedFunc(a.submit)
	a.searchBtn.SetDisabledStyle(unselectedStyle)

	buttons := tview.NewFlex().
		AddItem(a.videoBtn, 14, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(a.audioBtn, 14, 0, false).
		AddItem(nil, 3, 0, false).
		AddItem(a.searchBtn, 22, 0, false).
		AddItem(nil, 0, 1, false)

	a.errorView = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)

	a.resultView = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	a.resultView.SetBorder(true).SetTitle(" Resultado ")

	a.downloadBtn = tview.NewButton("").SetSelectedFunc(a.startDownload)
	downloadRow := tview.NewFlex().
		AddItem(a.downloadBtn, 22, 0, false).
		AddItem(nil, 0, 1, false)

	hint := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[gray]Pega el link de un video, short o youtu.be y elige el formato.")

	a.searchView = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.input, 1, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(buttons, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(a.errorView, 2, 0, false).
		AddItem(a.resultView, 0, 1, false).
		AddItem(downloadRow, 1, 0, false).
		AddItem(hint, 1, 0, false)
	a.searchView.SetBorder(true).SetTitle(" Buscar ")

	a.focusables = []tview.Primitive{a.input, a.videoBtn, a.audioBtn, a.searchBtn, a.downloadBtn}
}

// onState is the session listener. It may run on any goroutine.
func (a *App) onState(st session.State) {
	a.app.QueueUpdateDraw(func() {
		a.render(st)
	})
}

// render reflects st in the widgets. Must run on the UI goroutine.
func (a *App) render(st session.State) {
	loading := st.Mode == session.ModeLoading
	a.searchBtn.SetLabel(present.SearchLabel(loading))
	a.searchBtn.SetDisabled(loading)

	a.videoBtn.SetStyle(unselectedStyle)
	a.audioBtn.SetStyle(unselectedStyle)
	if st.SelectedFormat == domain.FormatAudio {
		a.audioBtn.SetStyle(selectedStyle)
	} else {
		a.videoBtn.SetStyle(selectedStyle)
	}

	if st.Mode == session.ModeError {
		a.errorView.SetText("[red]" + tview.Escape(st.ErrorMessage))
	} else {
		a.errorView.SetText("")
	}

	if st.Mode == session.ModeReady && st.Result != nil {
		info := st.Result
		text := fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(present.Truncate(info.Title, present.TitleDisplayLength)))
		if info.Uploader != "" {
			text += fmt.Sprintf("[gray]%s\n", tview.Escape(info.Uploader))
		}
		if meta := present.Meta(info); meta != "" {
			text += fmt.Sprintf("[gray]%s\n", meta)
		}
		if info.Thumbnail != "" {
			text += fmt.Sprintf("\n[darkcyan]%s", tview.Escape(info.Thumbnail))
		}
		a.resultView.SetText(text)
		a.downloadBtn.SetLabel(present.DownloadLabel(st.SelectedFormat))
	} else {
		a.resultView.SetText("")
		a.downloadBtn.SetLabel("")
		if a.app.GetFocus() == a.downloadBtn {
			a.app.SetFocus(a.input)
		}
	}

	switch st.Mode {
	case session.ModeLoading:
		a.setStatus("[yellow]" + present.LabelSearching)
	case session.ModeReady:
		a.setStatus("[green]Listo. Presiona " + present.DownloadLabel(st.SelectedFormat))
	case session.ModeError:
		a.setStatus("[red]Error")
	default:
		a.setStatus("Esperando un link")
	}
}

// submit starts a search for the current input unless one is in flight.
func (a *App) submit() {
	if a.session.Loading() {
		return
	}
	raw := a.input.GetText()
	format := a.session.State().SelectedFormat
	go func() {
		if _, err := a.session.Submit(a.ctx, raw, format); errors.Is(err, domain.ErrBusy) {
			a.logger.Debug("search already in flight")
		}
	}()
}

func (a *App) selectFormat(f domain.Format) {
	a.session.SetFormat(f)
	a.render(a.session.State())
}

func (a *App) toggleFormat() {
	if a.session.State().SelectedFormat == domain.FormatAudio {
		a.selectFormat(domain.FormatVideo)
		return
	}
	a.selectFormat(domain.FormatAudio)
}

func (a *App) hasResult() bool {
	_, err := a.session.Result()
	return err == nil
}

// startDownload hands the ready result to the opener.
func (a *App) startDownload() {
	info, err := a.session.Result()
	if err != nil {
		return
	}
	if err := a.trigger.TriggerSession(a.session); err != nil {
		a.logger.Warn("download failed", "error", err)
		a.setStatus(fmt.Sprintf("[red]No se pudo abrir la descarga: %s", tview.Escape(err.Error())))
		return
	}
	a.setStatus("[green]Descarga iniciada: " + tview.Escape(download.Filename(info)))
}
