package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrEmptyInput is returned when the user submits without entering a link.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidURL is returned when the input does not look like a YouTube video link.
	ErrInvalidURL = errors.New("invalid YouTube URL")

	// ErrTimeout is returned when resolution exceeds its time budget.
	ErrTimeout = errors.New("resolution timed out")

	// ErrUnreachable is returned when the resolution endpoint cannot be reached.
	ErrUnreachable = errors.New("resolution endpoint unreachable")

	// ErrNoDownloadLink is returned when the backend succeeds without a download URL.
	ErrNoDownloadLink = errors.New("no download link in response")

	// ErrBusy is returned when a search is submitted while another is in flight.
	ErrBusy = errors.New("search already in progress")

	// ErrNotReady is returned when a download is requested without a resolved video.
	ErrNotReady = errors.New("no resolved video")
)

// User-facing messages, one per error kind.
const (
	MsgEmptyInput      = "Por favor, pega un link de YouTube."
	MsgInvalidURL      = "Ese link no parece ser de YouTube. Asegurate de copiar el link completo del video."
	MsgTimeout         = "La busqueda tardo demasiado. Intenta de nuevo."
	MsgUnreachable     = "No se pudo conectar al servidor. Revisa tu conexion a internet."
	MsgBackendFallback = "No se pudo obtener el video. Puede que sea privado o esté restringido."
	MsgNoDownloadLink  = "No se encontro un link de descarga para este video."
)

// BackendError is returned when the resolution endpoint answers with a
// non-success status. Message is the backend's own error text, possibly empty.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend rejected request (status %d)", e.Status)
}

// Message maps an error to the text shown to the user.
func Message(err error) string {
	var be *BackendError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return MsgEmptyInput
	case errors.Is(err, ErrInvalidURL):
		return MsgInvalidURL
	case errors.Is(err, ErrTimeout):
		return MsgTimeout
	case errors.Is(err, ErrUnreachable):
		return MsgUnreachable
	case errors.Is(err, ErrNoDownloadLink):
		return MsgNoDownloadLink
	case errors.As(err, &be):
		if be.Message != "" {
			return be.Message
		}
		return MsgBackendFallback
	default:
		return MsgBackendFallback
	}
}
