// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/internal/trust"
	"github.com/csaf-poc/csaf_distribution/v3/internal/walker"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		res  walker.Result
		err  error
		want int
	}{
		{"success", walker.Result{}, nil, ExitSuccess},
		{"some failed", walker.Result{Failed: 1}, nil, ExitPartialFailure},
		{"trust root unavailable", walker.Result{}, trust.ErrTrustRootUnavailable, ExitTrustRootUnavailable},
		{"trust root message without wrapping", walker.Result{}, errors.New("open source: wrap: " + trust.ErrTrustRootUnavailable.Error()), ExitPartialFailure},
		{"retries exhausted", walker.Result{}, errors.New("fetch x: exhausted retries: boom"), ExitNetworkFailure},
		{"other error", walker.Result{}, errors.New("boom"), ExitPartialFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.res, tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCodeWrapsTrustRootUnavailable(t *testing.T) {
	wrapped := errors.New("wrap")
	err := errWrap(trust.ErrTrustRootUnavailable, wrapped)
	if got := exitCode(walker.Result{}, err); got != ExitTrustRootUnavailable {
		t.Errorf("exitCode() = %d, want ExitTrustRootUnavailable", got)
	}
}

func errWrap(target, _ error) error {
	return &wrappedErr{target}
}

type wrappedErr struct{ err error }

func (w *wrappedErr) Error() string { return w.err.Error() }
func (w *wrappedErr) Unwrap() error { return w.err }

const sampleFeed = `{
	"id": "feed",
	"title": "feed",
	"updated": "2024-01-01T00:00:00Z",
	"entry": [{
		"id": "1",
		"title": "advisory-1",
		"published": "2024-01-01T00:00:00Z",
		"updated": "2024-01-01T00:00:00Z",
		"content": {"type": "application/json", "src": "advisory-1.json"},
		"format": {"schema": "https://docs.oasis-open.org/csaf/csaf/v2.0/csaf_json_schema.json", "version": "2.0"},
		"link": [{"rel": "self", "href": "advisory-1.json"}]
	}]
}`

const sampleAdvisory = `{"document": {"tracking": {"id": "advisory-1"}, "publisher": {"namespace": "example.com"}, "lang": "en"}}`

func newTestProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/.well-known/csaf/provider-metadata.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"canonical_url": "` + srv.URL + `/.well-known/csaf/provider-metadata.json",
			"distributions": [{"rolie": {"feeds": [{"url": "` + srv.URL + `/feed.json"}]}}]
		}`))
	})
	mux.HandleFunc("/feed.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})
	mux.HandleFunc("/advisory-1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleAdvisory))
	})
	srv = httptest.NewServer(mux)
	return srv
}

func testRunner(t *testing.T, cfg *Config) *runner {
	t.Helper()
	if err := cfg.compileIgnorePatterns(); err != nil {
		t.Fatal(err)
	}
	return &runner{cfg: cfg, kind: model.CSAF, logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))}
}

func TestRunnerDiscover(t *testing.T) {
	srv := newTestProvider(t)
	defer srv.Close()

	a := testRunner(t, &Config{Worker: 2})
	rs, fetcher, err := a.openSource(context.Background(), srv.URL+"/.well-known/csaf/provider-metadata.json")
	if err != nil {
		t.Fatal(err)
	}
	refs, err := rs.src.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	refs, err = a.applyTracker(context.Background(), rs, fetcher, refs)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].URL != srv.URL+"/advisory-1.json" {
		t.Fatalf("got %+v", refs)
	}
}

func TestRunnerDownloadWritesToDirectory(t *testing.T) {
	srv := newTestProvider(t)
	defer srv.Close()
	dir := t.TempDir()

	a := testRunner(t, &Config{Worker: 2, Directory: dir})
	code, err := a.download([]string{srv.URL + "/.well-known/csaf/provider-metadata.json"})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitSuccess {
		t.Fatalf("got exit code %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "advisory-1.json")); err != nil {
		t.Errorf("mirrored file missing: %v", err)
	}
}

func TestRunnerScanIntoUnsignedDocumentReportsClean(t *testing.T) {
	srv := newTestProvider(t)
	defer srv.Close()

	a := testRunner(t, &Config{Worker: 2})
	acc, code, err := a.scanInto(context.Background(), srv.URL+"/.well-known/csaf/provider-metadata.json")
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitSuccess {
		t.Fatalf("got exit code %d", code)
	}
	report := acc.Report()
	if report.Total != 1 || report.Valid != 1 {
		t.Fatalf("got %+v", report)
	}
}

func TestRunnerOpenSourcePrefersLocalDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "changes.csv"), []byte(`"advisory-1.json","2024-01-01T00:00:00Z"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := testRunner(t, &Config{})
	rs, _, err := a.openSource(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if rs.root != dir || rs.pmd != nil {
		t.Fatalf("got %+v, want a local-tree resolvedSource", rs)
	}
}
