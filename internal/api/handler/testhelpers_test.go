package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/session"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockResolver is a test implementation of resolver.Resolver.
type mockResolver struct {
	mu      sync.Mutex
	calls   int
	info    *domain.VideoInfo
	err     error
	block   chan struct{}
	started chan struct{}
}

func (m *mockResolver) Resolve(ctx context.Context, url string, format domain.Format) (*domain.VideoInfo, error) {
	m.mu.Lock()
	m.calls++
	block, started := m.block, m.started
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return m.info, m.err
}

func (m *mockResolver) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func sampleInfo() *domain.VideoInfo {
	size := int64(5242880)
	return &domain.VideoInfo{
		Title:       "T",
		Thumbnail:   "th.jpg",
		Duration:    212,
		Uploader:    "U",
		DownloadURL: "http://x/y.mp4",
		Ext:         "mp4",
		Filesize:    &size,
	}
}

func newTestSearchHandler(res *mockResolver) (*SearchHandler, *session.Store) {
	store := session.NewStore(func() *session.Session {
		return session.New(res, session.WithLogger(testLogger()))
	}, testLogger())
	return NewSearchHandler(store, testLogger()), store
}

// sessionCookie extracts the session cookie set on a response.
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}
