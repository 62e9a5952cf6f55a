package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/ytgrab/internal/domain"
)

const testLink = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func postForm(h http.HandlerFunc, cookie *http.Cookie, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func get(h http.HandlerFunc, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestSearchHandler_Page_Fresh(t *testing.T) {
	handler, store := newTestSearchHandler(&mockResolver{})

	w := get(handler.Page, "/", nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Obtener video") {
		t.Error("page should show the search label")
	}
	if strings.Contains(body, `class="error"`) {
		t.Error("fresh page should not show an error")
	}
	if sessionCookie(w) != nil {
		t.Error("viewing the page should not create a session")
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", store.Len())
	}
}

func TestSearchHandler_Submit_InvalidLink(t *testing.T) {
	res := &mockResolver{info: sampleInfo()}
	handler, _ := newTestSearchHandler(res)

	w := postForm(handler.Submit, nil, url.Values{"url": {"not a url"}, "format": {"video"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	cookie := sessionCookie(w)

	page := get(handler.Page, "/", cookie)
	if !strings.Contains(page.Body.String(), "Ese link no parece ser de YouTube.") {
		t.Error("page should show the invalid link message")
	}
	if res.Calls() != 0 {
		t.Errorf("resolver called %d times, want 0", res.Calls())
	}
}

func TestSearchHandler_Submit_Ready(t *testing.T) {
	res := &mockResolver{info: sampleInfo()}
	handler, _ := newTestSearchHandler(res)

	w := postForm(handler.Submit, nil, url.Values{"url": {testLink}, "format": {"audio"}})
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("session cookie should be set")
	}

	page := get(handler.Page, "/", cookie)
	body := page.Body.String()

	for _, want := range []string{"3:32 · 5.0 MB", "Descargar Audio", "th.jpg", `download="T.mp4"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page should contain %q", want)
		}
	}
	if sessionCookie(page) != nil {
		t.Error("known session should not get a new cookie")
	}
}

func TestSearchHandler_Download(t *testing.T) {
	res := &mockResolver{info: sampleInfo()}
	handler, _ := newTestSearchHandler(res)

	// Not ready yet
	w := get(handler.Download, "/download", nil)
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d before a result exists", w.Code, http.StatusSeeOther)
	}
	cookie := sessionCookie(postForm(handler.Submit, nil, url.Values{"url": {testLink}}))

	for i := 0; i < 2; i++ {
		w = get(handler.Download, "/download", cookie)
		if w.Code != http.StatusFound {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
		}
		if loc := w.Header().Get("Location"); loc != "http://x/y.mp4" {
			t.Errorf("Location = %q, want download URL", loc)
		}
	}
	if res.Calls() != 1 {
		t.Errorf("resolver called %d times, download must not re-resolve", res.Calls())
	}
}

func TestSearchHandler_Download_UnsafeURL(t *testing.T) {
	info := sampleInfo()
	info.DownloadURL = "file:///etc/passwd"
	handler, _ := newTestSearchHandler(&mockResolver{info: info})

	w := postForm(handler.Submit, nil, url.Values{"url": {testLink}})
	w = get(handler.Download, "/download", sessionCookie(w))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestSearchHandler_APISearch(t *testing.T) {
	handler, _ := newTestSearchHandler(&mockResolver{info: sampleInfo()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"url":"`+testLink+`","format":"video"}`))
	w := httptest.NewRecorder()
	handler.APISearch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp StateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Mode != "ready" {
		t.Errorf("mode = %q, want ready", resp.Mode)
	}
	if resp.DurationDisplay != "3:32" {
		t.Errorf("duration_display = %q, want 3:32", resp.DurationDisplay)
	}
	if resp.SizeDisplay != "5.0 MB" {
		t.Errorf("size_display = %q, want 5.0 MB", resp.SizeDisplay)
	}
	if resp.Result == nil || resp.Result.DownloadURL != "http://x/y.mp4" {
		t.Errorf("result = %+v", resp.Result)
	}
	if resp.Filename != "T.mp4" {
		t.Errorf("filename = %q, want T.mp4", resp.Filename)
	}
}

func TestSearchHandler_APISearch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		resolveErr error
		wantStatus int
		wantMode   string
		wantError  string
	}{
		{"bad body", `{`, nil, http.StatusBadRequest, "", ""},
		{"bad format", `{"url":"` + testLink + `","format":"flac"}`, nil, http.StatusBadRequest, "", ""},
		{"empty url", `{"url":"  "}`, nil, http.StatusOK, "error", domain.MsgEmptyInput},
		{"backend rejected", `{"url":"` + testLink + `"}`, &domain.BackendError{Status: 500, Message: "Este video tiene restriccion de edad."}, http.StatusOK, "error", "Este video tiene restriccion de edad."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestSearchHandler(&mockResolver{err: tt.resolveErr})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.APISearch(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantMode == "" {
				return
			}

			var resp StateResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", resp.Mode, tt.wantMode)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestSearchHandler_APISearch_Busy(t *testing.T) {
	res := &mockResolver{
		info:    sampleInfo(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	handler, _ := newTestSearchHandler(res)

	// Establish a session first.
	first := httptest.NewRecorder()
	handler.APISearch(first, httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"url":""}`)))
	cookie := sessionCookie(first)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"url":"`+testLink+`"}`))
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		handler.APISearch(w, req)
		done <- w
	}()

	select {
	case <-res.started:
	case <-time.After(time.Second):
		t.Fatal("first search never reached the resolver")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"url":"`+testLink+`"}`))
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	handler.APISearch(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	state := get(handler.State, "/api/v1/session", cookie)
	var resp StateResponse
	if err := json.NewDecoder(state.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Mode != "loading" {
		t.Errorf("mode = %q, want loading", resp.Mode)
	}

	close(res.block)
	if first := <-done; first.Code != http.StatusOK {
		t.Errorf("first search status = %d, want %d", first.Code, http.StatusOK)
	}
	if res.Calls() != 1 {
		t.Errorf("resolver called %d times, want 1", res.Calls())
	}
}

func TestSearchHandler_State_Idle(t *testing.T) {
	handler, _ := newTestSearchHandler(&mockResolver{})

	w := get(handler.State, "/api/v1/session", nil)

	var resp StateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Mode != "idle" || resp.Format != "video" {
		t.Errorf("resp = %+v, want idle/video", resp)
	}
	if resp.Result != nil {
		t.Error("idle state should carry no result")
	}
}

func TestSearchHandler_SearchSurvivesClientDisconnect(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		handle      func(h *SearchHandler) http.HandlerFunc
	}{
		{
			name:        "form",
			path:        "/search",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"url": {testLink}}.Encode(),
			handle:      func(h *SearchHandler) http.HandlerFunc { return h.Submit },
		},
		{
			name:        "api",
			path:        "/api/v1/search",
			contentType: "application/json",
			body:        `{"url":"` + testLink + `"}`,
			handle:      func(h *SearchHandler) http.HandlerFunc { return h.APISearch },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &mockResolver{
				info:    sampleInfo(),
				block:   make(chan struct{}),
				started: make(chan struct{}, 1),
			}
			handler, _ := newTestSearchHandler(res)
			cookie := sessionCookie(postForm(handler.Submit, nil, url.Values{"url": {""}}))

			ctx, cancel := context.WithCancel(context.Background())
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)).WithContext(ctx)
			req.Header.Set("Content-Type", tt.contentType)
			req.AddCookie(cookie)

			done := make(chan struct{})
			go func() {
				tt.handle(handler)(httptest.NewRecorder(), req)
				close(done)
			}()

			select {
			case <-res.started:
			case <-time.After(time.Second):
				t.Fatal("search never reached the resolver")
			}

			cancel()
			time.Sleep(50 * time.Millisecond)

			if got := stateOf(t, handler, cookie); got.Mode != "loading" {
				t.Fatalf("mode after disconnect = %q (error %q), want loading", got.Mode, got.Error)
			}

			close(res.block)
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("search did not finish after the resolver returned")
			}

			got := stateOf(t, handler, cookie)
			if got.Mode != "ready" {
				t.Errorf("mode = %q (error %q), want ready", got.Mode, got.Error)
			}
			if got.Error == domain.MsgUnreachable {
				t.Error("disconnect must not surface as a connection error")
			}
		})
	}
}

func TestSearchHandler_ReadsDoNotCreateSessions(t *testing.T) {
	handler, store := newTestSearchHandler(&mockResolver{})

	get(handler.Page, "/", nil)
	get(handler.State, "/api/v1/session", nil)
	w := get(handler.Download, "/download", nil)

	if w.Code != http.StatusSeeOther {
		t.Errorf("download status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	unknown := &http.Cookie{Name: SessionCookie, Value: "4b1d7a52-3f5e-4d0c-9a6e-2c8f1b7e9d10"}
	if resp := stateOf(t, handler, unknown); resp.Mode != "idle" {
		t.Errorf("unknown session mode = %q, want idle", resp.Mode)
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", store.Len())
	}
}

func stateOf(t *testing.T, handler *SearchHandler, cookie *http.Cookie) StateResponse {
	t.Helper()
	w := get(handler.State, "/api/v1/session", cookie)
	var resp StateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}
