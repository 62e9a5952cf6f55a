package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/download"
	"github.com/iconidentify/ytgrab/internal/present"
	"github.com/iconidentify/ytgrab/internal/session"
	"github.com/iconidentify/ytgrab/pkg/ui"
)

// SessionCookie names the cookie carrying the browser's session id.
const SessionCookie = "ytgrab_session"

var indexTemplate = template.Must(template.New("index").Parse(ui.IndexTemplate))

// SearchHandler serves the search page and its JSON counterpart.
type SearchHandler struct {
	store  *session.Store
	logger *slog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(store *session.Store, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		store:  store,
		logger: logger,
	}
}

// SearchRequest is the JSON request body for a search.
type SearchRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// StateResponse is the JSON view of a session.
type StateResponse struct {
	Mode            string            `json:"mode"`
	Error           string            `json:"error,omitempty"`
	InputURL        string            `json:"input_url"`
	Format          string            `json:"format"`
	Result          *domain.VideoInfo `json:"result,omitempty"`
	Filename        string            `json:"filename,omitempty"`
	DurationDisplay string            `json:"duration_display,omitempty"`
	SizeDisplay     string            `json:"size_display,omitempty"`
}

type pageData struct {
	InputURL       string
	Format         string
	Loading        bool
	SearchLabel    string
	SearchingLabel string
	VideoLabel     string
	AudioLabel     string
	Error          string
	Result         *resultView
}

type resultView struct {
	Title         string
	FullTitle     string
	Thumbnail     string
	Uploader      string
	Meta          string
	Filename      string
	DownloadLabel string
}

// Page handles GET / - renders the caller's session.
func (h *SearchHandler) Page(w http.ResponseWriter, r *http.Request) {
	st := h.peekState(r)

	data := pageData{
		InputURL:       st.InputURL,
		Format:         st.SelectedFormat.String(),
		Loading:        st.Mode == session.ModeLoading,
		SearchLabel:    present.SearchLabel(st.Mode == session.ModeLoading),
		SearchingLabel: present.LabelSearching,
		VideoLabel:     present.FormatLabel(domain.FormatVideo),
		AudioLabel:     present.FormatLabel(domain.FormatAudio),
		Error:          st.ErrorMessage,
	}
	if st.Mode == session.ModeReady && st.Result != nil {
		info := st.Result
		data.Result = &resultView{
			Title:         present.Truncate(info.Title, present.TitleDisplayLength),
			FullTitle:     info.Title,
			Thumbnail:     info.Thumbnail,
			Uploader:      info.Uploader,
			Meta:          present.Meta(info),
			Filename:      download.Filename(info),
			DownloadLabel: present.DownloadLabel(st.SelectedFormat),
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTemplate.Execute(w, data); err != nil {
		h.logger.Error("render page failed", "error", err)
	}
}

// Submit handles POST /search - runs a search and redirects back to the page.
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)

	format, err := domain.ParseFormat(r.PostForm.Get("format"))
	if err != nil {
		format = sess.State().SelectedFormat
	}

	// Detached from the request; the session deadline bounds the search.
	ctx := context.WithoutCancel(r.Context())
	if _, err := sess.Submit(ctx, r.PostForm.Get("url"), format); errors.Is(err, domain.ErrBusy) {
		h.logger.Debug("search ignored while loading")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Download handles GET /download - sends the browser to the ready result.
func (h *SearchHandler) Download(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	trigger := download.NewTrigger(redirectOpener{w: w, r: r}, h.logger)
	if err := trigger.TriggerSession(sess); err != nil {
		if errors.Is(err, domain.ErrNotReady) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.logger.Warn("download trigger failed", "error", err)
		http.Error(w, domain.Message(err), http.StatusBadGateway)
	}
}

// State handles GET /api/v1/session
func (h *SearchHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toStateResponse(h.peekState(r)))
}

// APISearch handles POST /api/v1/search
func (h *SearchHandler) APISearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := h.session(w, r)
	st, err := sess.Submit(context.WithoutCancel(r.Context()), req.URL, format)
	if errors.Is(err, domain.ErrBusy) {
		h.writeJSON(w, http.StatusConflict, toStateResponse(st))
		return
	}

	h.writeJSON(w, http.StatusOK, toStateResponse(st))
}

// lookup finds the caller's existing session without creating one.
func (h *SearchHandler) lookup(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return h.store.Lookup(c.Value)
}

// peekState returns the caller's state, or a fresh Idle state when the
// caller has no session yet.
func (h *SearchHandler) peekState(r *http.Request) session.State {
	if sess, ok := h.lookup(r); ok {
		return sess.State()
	}
	return session.InitialState()
}

// session resolves the caller's session, creating one and setting its
// cookie when needed. Only submissions call it.
func (h *SearchHandler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, newID := h.store.Get(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(24 * time.Hour),
		})
	}
	return sess
}

func toStateResponse(st session.State) StateResponse {
	resp := StateResponse{
		Mode:     st.Mode.String(),
		Error:    st.ErrorMessage,
		InputURL: st.InputURL,
		Format:   st.SelectedFormat.String(),
	}
	if st.Mode == session.ModeReady && st.Result != nil {
		resp.Result = st.Result
		resp.Filename = download.Filename(st.Result)
		resp.DurationDisplay = present.Duration(st.Result.Duration)
		resp.SizeDisplay = present.Filesize(st.Result.Size())
	}
	return resp
}

// redirectOpener answers the current request with a redirect to the target.
type redirectOpener struct {
	w http.ResponseWriter
	r *http.Request
}

func (o redirectOpener) Open(t download.Target) error {
	http.Redirect(o.w, o.r, t.URL, http.StatusFound)
	return nil
}

func (h *SearchHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *SearchHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
