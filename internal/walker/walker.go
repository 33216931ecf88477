// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package walker implements the walker's C5 component: the
// single-threaded, cooperatively-scheduled orchestrator that drives a
// [source.Source]'s references through a [Pipeline] with a bounded
// concurrency budget, per spec §4.5 and §5.
package walker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/internal/source"
)

// VisitFunc processes one [model.DocumentReference] end-to-end and
// reports the terminal [model.State] it reached. [Pipeline.Visit] is
// the production implementation; tests substitute simpler stand-ins.
type VisitFunc func(ctx context.Context, ref model.DocumentReference) (model.State, error)

// Observer receives every state transition a Walker run produces. The
// Report (C11) and any CLI progress bar are Observers.
type Observer func(model.Transition)

// fatalError marks a per-document error that should also stop the
// Walker from dispatching further references, per §4.5's "if any
// visitor signals a fatal error, remaining pending invocations are
// allowed to finish while new ones are not dispatched." Ordinary
// per-document failures (digest mismatch, invalid signature, ...) are
// not fatal in this sense — the run continues past them.
type fatalError struct{ err error }

func (f *fatalError) Error() string { return f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

// Fatal wraps err so the Walker stops dispatching new references after
// it, without aborting the references already in flight.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err}
}

// IsFatal reports whether err (or anything it wraps) was marked with
// [Fatal].
func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}

// Config controls a Walker's concurrency and cancellation behavior.
type Config struct {
	// Concurrency bounds in-flight Visit invocations. Zero or
	// negative uses the spec's default of 4.
	Concurrency int
	// GracePeriod bounds how long Run waits for in-flight Visit calls
	// to finish after ctx is cancelled before returning anyway. Zero
	// uses the spec's default of 30s.
	GracePeriod time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 30 * time.Second
	}
	return c
}

// Result aggregates the outcome of one Walker run, per §4.5's "exit
// value aggregates: total seen, succeeded, failed, skipped."
type Result struct {
	Seen      int
	Succeeded int
	Failed    int
	Skipped   int
}

// Walker drives src's references through visit with bounded
// concurrency.
type Walker struct {
	Source  source.Source
	Visit   VisitFunc
	Observe Observer
	Config  Config
	Logger  *slog.Logger
}

// New creates a Walker.
func New(src source.Source, visit VisitFunc, cfg Config, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{Source: src, Visit: visit, Config: cfg.withDefaults(), Logger: logger}
}

// Run enumerates Source, dispatches each reference to Visit with at
// most Config.Concurrency in flight, and returns the aggregate
// [Result]. It never panics on a per-document error; the returned
// error is non-nil only if Source.Enumerate fails or once a Visit call
// reports a [Fatal] error, at which point no further references are
// dispatched but already
// in-flight ones are allowed to finish (bounded by Config.GracePeriod
// once ctx is also cancelled).
func (w *Walker) Run(ctx context.Context) (Result, error) {
	refs, err := w.Source.Enumerate(ctx)
	if err != nil {
		return Result{}, err
	}

	sem := make(chan struct{}, w.Config.Concurrency)
	var (
		mu     sync.Mutex
		res    Result
		fatal  error
		wg     sync.WaitGroup
		halted bool
	)

	dispatch := func(ref model.DocumentReference) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			w.run(ctx, ref, &mu, &res, &fatal, &halted)
		}()
	}

	for _, ref := range refs {
		mu.Lock()
		stop := halted
		mu.Unlock()
		if stop {
			break
		}
		if ctx.Err() != nil {
			break
		}
		mu.Lock()
		res.Seen++
		mu.Unlock()
		dispatch(ref)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-ctx.Done():
		select {
		case <-done:
		case <-time.After(w.Config.GracePeriod):
			w.Logger.Warn("walker: grace period expired with visitors still pending")
		}
	}

	return res, fatal
}

func (w *Walker) run(
	ctx context.Context,
	ref model.DocumentReference,
	mu *sync.Mutex,
	res *Result,
	fatal *error,
	halted *bool,
) {
	state, err := w.Visit(ctx, ref)

	mu.Lock()
	defer mu.Unlock()

	switch state {
	case model.Skipped:
		res.Skipped++
	case model.Failed:
		res.Failed++
		if IsFatal(err) {
			*fatal = err
			*halted = true
		}
	default:
		res.Succeeded++
	}

	if w.Observe != nil {
		w.Observe(model.Transition{Reference: ref, To: state, Err: err, At: time.Now()})
	}
}
