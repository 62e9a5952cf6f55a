// Package present formats session data for display.
package present

import (
	"fmt"
	"strings"

	"github.com/iconidentify/ytgrab/internal/domain"
)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// Labels shown by the front ends.
const (
	LabelSearch      = "Obtener video"
	LabelSearching   = "Buscando video..."
	LabelVideo       = "Video"
	LabelAudio       = "Solo Audio"
	LabelDownloadVid = "Descargar Video"
	LabelDownloadAud = "Descargar Audio"
)

// TitleDisplayLength is how many characters of a title the result panel shows.
const TitleDisplayLength = 80

// Duration renders seconds as m:ss, or h:mm:ss from one hour up.
func Duration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Filesize renders a byte count in KB, MB or GB. Unknown sizes render empty.
func Filesize(bytes int64) string {
	switch {
	case bytes <= 0:
		return ""
	case bytes < mib:
		return fmt.Sprintf("%.0f KB", float64(bytes)/kib)
	case bytes < gib:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mib)
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gib)
	}
}

// Meta joins duration and size the way the result panel shows them.
func Meta(info *domain.VideoInfo) string {
	var parts []string
	if d := Duration(info.Duration); d != "" {
		parts = append(parts, d)
	}
	if s := Filesize(info.Size()); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " · ")
}

// Truncate shortens s to at most n characters, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return strings.TrimRight(string(r[:n-1]), " ") + "…"
}

// SearchLabel is the primary button label.
func SearchLabel(loading bool) string {
	if loading {
		return LabelSearching
	}
	return LabelSearch
}

// FormatLabel names a format selector.
func FormatLabel(f domain.Format) string {
	if f == domain.FormatAudio {
		return LabelAudio
	}
	return LabelVideo
}

// DownloadLabel is the download button label for the selected format.
func DownloadLabel(f domain.Format) string {
	if f == domain.FormatAudio {
		return LabelDownloadAud
	}
	return LabelDownloadVid
}
