// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package walker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/internal/source"
)

func refs(n int) source.Static {
	out := make(source.Static, n)
	for i := range out {
		out[i] = model.DocumentReference{ID: string(rune('a' + i))}
	}
	return out
}

func TestWalkerRunCountsOutcomes(t *testing.T) {
	visit := func(_ context.Context, ref model.DocumentReference) (model.State, error) {
		switch ref.ID {
		case "a":
			return model.Failed, errors.New("boom")
		case "b":
			return model.Skipped, nil
		default:
			return model.Sunk, nil
		}
	}

	w := New(refs(3), visit, Config{Concurrency: 2}, nil)
	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("non-fatal failure should not abort the run: %v", err)
	}
	if res.Seen != 3 || res.Failed != 1 || res.Skipped != 1 || res.Succeeded != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestWalkerRunStopsOnFatal(t *testing.T) {
	var dispatched sync.Map
	visit := func(_ context.Context, ref model.DocumentReference) (model.State, error) {
		dispatched.Store(ref.ID, true)
		if ref.ID == "a" {
			return model.Failed, Fatal(errors.New("fatal"))
		}
		return model.Sunk, nil
	}

	w := New(refs(1), visit, Config{Concurrency: 1}, nil)
	_, err := w.Run(context.Background())
	if err == nil || !IsFatal(err) {
		t.Fatalf("expected a fatal error, got %v", err)
	}
}

func TestWalkerObserveFiresOncePerDocument(t *testing.T) {
	var mu sync.Mutex
	var transitions []model.Transition

	visit := func(_ context.Context, ref model.DocumentReference) (model.State, error) {
		return model.Sunk, nil
	}

	w := New(refs(5), visit, Config{Concurrency: 3}, nil)
	w.Observe = func(t model.Transition) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, t)
	}

	if _, err := w.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(transitions) != 5 {
		t.Fatalf("got %d transitions, want 5 (one per document)", len(transitions))
	}
	for _, tr := range transitions {
		if tr.To != model.Sunk {
			t.Errorf("transition for %s: got final state %s, want sunk", tr.Reference.ID, tr.To)
		}
	}
}

func TestWalkerConcurrencyIsBounded(t *testing.T) {
	const concurrency = 2
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	visit := func(_ context.Context, ref model.DocumentReference) (model.State, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return model.Sunk, nil
	}

	w := New(refs(20), visit, Config{Concurrency: concurrency}, nil)
	if _, err := w.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if maxInFlight > concurrency {
		t.Errorf("observed %d concurrent visits, want at most %d", maxInFlight, concurrency)
	}
}
