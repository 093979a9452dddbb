// Package engine evaluates action trees against the injection primitive.
package engine

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/actuator"
	"github.com/pleimann/marionette/internal/inject"
)

// ErrUnavailable means the injection resource could not be acquired.
var ErrUnavailable = errors.New("injection resource unavailable")

// ErrInvalidAction is returned for a tree that fails action.Validate, such
// as one built in code with a nil child. Nothing is injected.
var ErrInvalidAction = errors.New("invalid action")

// Result describes one top-level execution.
type Result struct {
	Description string
	Duration    time.Duration
}

// Millis returns the elapsed time in whole milliseconds.
func (r Result) Millis() int64 {
	return r.Duration.Milliseconds()
}

// ExecError is returned when evaluation aborted. Partial holds the report
// of everything that ran before the failure.
type ExecError struct {
	Partial string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execution aborted: %v", e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Executor owns the injection resource. Execute calls are serialised: a
// second caller blocks until the first action tree, including all of its
// delays, has finished.
type Executor struct {
	mu     sync.Mutex
	inj    inject.Injector
	closed bool
	sleep  actuator.Sleeper
	log    zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithSleeper replaces time.Sleep for every suspension point.
func WithSleeper(sleep actuator.Sleeper) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// WithLogger sets the executor's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// NewExecutor creates an executor that injects through inj.
func NewExecutor(inj inject.Injector, opts ...Option) (*Executor, error) {
	if inj == nil {
		return nil, fmt.Errorf("%w: no injector", ErrUnavailable)
	}
	e := &Executor{
		inj:   inj,
		sleep: time.Sleep,
		log:   log.With().Str("component", "engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Executor) acquire() (*Session, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: executor closed", ErrUnavailable)
	}
	return &Session{inj: e.inj, release: e.mu.Unlock}, nil
}

// Execute runs a to completion and reports what happened and how long it
// took. Unmapped keys and buttons never fail; errors come only from a tree
// that does not validate (ErrInvalidAction), the injection primitive
// (*inject.Error inside an *ExecError), or an unavailable resource
// (ErrUnavailable). The returned Result is filled in on failure too.
func (e *Executor) Execute(a action.Action) (Result, error) {
	if err := action.Validate(a); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	session, err := e.acquire()
	if err != nil {
		return Result{}, err
	}
	defer session.Release()

	start := time.Now()
	desc, err := newInterpreter(session, e.sleep, e.log).evaluate(a)
	res := Result{Description: desc, Duration: time.Since(start)}

	if err != nil {
		e.log.Error().Err(err).Str("type", typeOf(a)).Int64("duration_ms", res.Millis()).Msg("Action failed")
		return res, &ExecError{Partial: desc, Err: err}
	}

	e.log.Info().Str("type", typeOf(a)).Int64("duration_ms", res.Millis()).Msg("Action executed")
	return res, nil
}

func typeOf(a action.Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.Type()
}

// ScreenSize reports the target's size when the backend knows it.
func (e *Executor) ScreenSize() (int, int, error) {
	if s, ok := e.inj.(inject.ScreenSizer); ok {
		return s.ScreenSize()
	}
	return 0, 0, fmt.Errorf("screen size: %w", inject.ErrUnsupported)
}

// Close waits for any running execution, then releases the backend.
// Later Execute calls return ErrUnavailable.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if c, ok := e.inj.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
