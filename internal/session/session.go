// Package session drives one validate, resolve and present cycle for a
// single user.
//
// A Session is a small state machine with four modes. Submit is the only
// transition trigger; State returns a snapshot that is safe to read from any
// goroutine. At most one resolution is in flight per session: a Submit made
// while Loading returns domain.ErrBusy and changes nothing.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iconidentify/ytgrab/internal/config"
	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/linkcheck"
	"github.com/iconidentify/ytgrab/internal/resolver"
)

// Mode is the mutually exclusive phase of a session.
type Mode int

const (
	ModeIdle Mode = iota
	ModeLoading
	ModeError
	ModeReady
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeLoading:
		return "loading"
	case ModeError:
		return "error"
	case ModeReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is a read-only snapshot of a session.
type State struct {
	Mode Mode
	// ErrorMessage is set only in ModeError.
	ErrorMessage string
	// Err is the classified error behind ErrorMessage.
	Err error
	// Result is set only in ModeReady.
	Result *domain.VideoInfo

	InputURL       string
	SelectedFormat domain.Format
	// Attempt counts submissions that reached ModeLoading.
	Attempt uint64
}

// Listener is notified with the new state after every transition.
type Listener func(State)

// Option configures a Session.
type Option func(*Session)

// WithListener registers a transition listener. Listeners run on the
// goroutine that caused the transition, outside the session lock.
func WithListener(l Listener) Option {
	return func(s *Session) {
		s.listeners = append(s.listeners, l)
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTimeout sets the deadline raced against each resolution.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Session is the search state machine. The zero value is not usable; use New.
type Session struct {
	resolver  resolver.Resolver
	timeout   time.Duration
	logger    *slog.Logger
	listeners []Listener

	mu    sync.Mutex
	state State
	// settled guards the current attempt: only the first settle may mutate state.
	settled bool
}

// InitialState is the state of a fresh session: Idle with video selected.
func InitialState() State {
	return State{
		Mode:           ModeIdle,
		SelectedFormat: domain.FormatVideo,
	}
}

// New creates an Idle session with the video format selected.
func New(r resolver.Resolver, opts ...Option) *Session {
	s := &Session{
		resolver: r,
		timeout:  config.DefaultResolveTimeout,
		logger:   slog.Default(),
		state:    InitialState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the resolved video if the session is Ready.
func (s *Session) Result() (*domain.VideoInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Mode != ModeReady || s.state.Result == nil {
		return nil, domain.ErrNotReady
	}
	return s.state.Result, nil
}

// Loading reports whether a resolution is in flight.
func (s *Session) Loading() bool {
	return s.State().Mode == ModeLoading
}

// SetInput records the link being edited without changing mode.
func (s *Session) SetInput(raw string) {
	s.mu.Lock()
	s.state.InputURL = raw
	s.mu.Unlock()
}

// SetFormat records the selected format without changing mode.
func (s *Session) SetFormat(f domain.Format) {
	if !f.Valid() {
		return
	}
	s.mu.Lock()
	s.state.SelectedFormat = f
	s.mu.Unlock()
}

// Submit validates rawURL and, if it is a video link, resolves it.
// It blocks until the attempt settles and returns the resulting state.
// The returned error is domain.ErrBusy when another attempt is in flight;
// resolution failures are reported through State, not the error.
func (s *Session) Submit(ctx context.Context, rawURL string, format domain.Format) (State, error) {
	s.mu.Lock()
	if s.state.Mode == ModeLoading {
		st := s.state
		s.mu.Unlock()
		return st, domain.ErrBusy
	}

	s.state.InputURL = rawURL
	if format.Valid() {
		s.state.SelectedFormat = format
	}
	format = s.state.SelectedFormat

	if err := linkcheck.Check(rawURL); err != nil {
		s.setErrorLocked(err)
		st := s.state
		s.mu.Unlock()
		s.logger.Debug("search rejected", "error", err)
		s.notify(st)
		return st, nil
	}

	s.state.Mode = ModeLoading
	s.state.ErrorMessage = ""
	s.state.Err = nil
	s.state.Result = nil
	s.state.Attempt++
	s.settled = false
	attempt := s.state.Attempt
	loading := s.state
	s.mu.Unlock()

	s.notify(loading)

	info, err := s.resolve(ctx, strings.TrimSpace(rawURL), format)

	st, ok := s.settle(attempt, info, err)
	if !ok {
		s.logger.Warn("discarding late resolution", "attempt", attempt)
		return s.State(), nil
	}
	s.notify(st)
	return st, nil
}

type outcome struct {
	info *domain.VideoInfo
	err  error
}

// resolve races the resolver against the session deadline. When the deadline
// wins the resolver's context is canceled and its eventual result is dropped.
func (s *Session) resolve(ctx context.Context, url string, format domain.Format) (*domain.VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		info, err := s.resolver.Resolve(ctx, url, format)
		done <- outcome{info: info, err: err}
	}()

	select {
	case out := <-done:
		return out.info, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("no result within %s: %w", s.timeout, domain.ErrTimeout)
		}
		return nil, fmt.Errorf("%v: %w", ctx.Err(), domain.ErrUnreachable)
	}
}

// settle applies the outcome of attempt exactly once.
func (s *Session) settle(attempt uint64, info *domain.VideoInfo, err error) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settled || s.state.Attempt != attempt || s.state.Mode != ModeLoading {
		return s.state, false
	}
	s.settled = true

	switch {
	case err != nil:
		s.setErrorLocked(err)
		s.logger.Info("search failed", "attempt", attempt, "error", err)
	case !info.HasDownloadURL():
		s.setErrorLocked(domain.ErrNoDownloadLink)
		s.logger.Info("search failed", "attempt", attempt, "error", domain.ErrNoDownloadLink)
	default:
		s.state.Mode = ModeReady
		s.state.Result = info
		s.logger.Info("search ready", "attempt", attempt, "title", info.Title)
	}
	return s.state, true
}

func (s *Session) setErrorLocked(err error) {
	s.state.Mode = ModeError
	s.state.Err = err
	s.state.ErrorMessage = domain.Message(err)
	s.state.Result = nil
}

func (s *Session) notify(st State) {
	for _, l := range s.listeners {
		l(st)
	}
}
