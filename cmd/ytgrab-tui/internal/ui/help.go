package ui

import (
	"github.com/rivo/tview"
)

// createHelpPanel creates the help panel.
func (a *App) createHelpPanel() {
	a.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.helpView.SetBorder(true).SetTitle(" Ayuda ")

	helpText := `[yellow::b]ytgrab[white]

Convierte un link de YouTube en un link de descarga directo.

[yellow::b]LINKS ACEPTADOS[white]
  youtube.com/watch?v=ID
  youtu.be/ID
  youtube.com/shorts/ID

[yellow::b]TECLAS[white]
[cyan]Enter[white]        Buscar el link escrito
[cyan]Tab[white]          Siguiente control
[cyan]Shift+Tab[white]    Control anterior
[cyan]F2[white]           Alternar Video / Solo Audio
[cyan]F1[white]           Mostrar u ocultar esta ayuda
[cyan]Escape[white]       Volver
[cyan]Ctrl+C[white]       Salir

[yellow::b]DESCARGA[white]
El boton de descarga abre el link en el navegador del sistema.
`
	a.helpView.SetText(helpText)
}
