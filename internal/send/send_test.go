// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package send

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

func newDoc(body string) *model.VerifiedDocument {
	return &model.VerifiedDocument{
		ValidatedDocument: model.ValidatedDocument{
			RetrievedDocument: model.RetrievedDocument{
				Reference: model.DocumentReference{Kind: model.CSAF, ID: "2024/advisory.json"},
				Body:      []byte(body),
			},
		},
	}
}

func TestSinkSuccess(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := New(srv.Client(), srv.URL, "Bearer secret", nil)
	if err := s.Sink(context.Background(), newDoc(`{"ok":true}`)); err != nil {
		t.Fatalf("Sink: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

func TestSinkPermanentFailureNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := New(srv.Client(), srv.URL, "", nil)
	s.Sleep = func(time.Duration) {}
	err := s.Sink(context.Background(), newDoc("x"))
	var perm *ErrPermanent
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.As(err, &perm) {
		t.Fatalf("expected ErrPermanent, got %v (%T)", err, err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestSinkTransientRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(srv.Client(), srv.URL, "", nil)
	s.Sleep = func(time.Duration) {}
	if err := s.Sink(context.Background(), newDoc("x")); err != nil {
		t.Fatalf("Sink: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
