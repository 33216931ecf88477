// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

const samplePMD = `{
	"canonical_url": "https://example.com/.well-known/csaf/provider-metadata.json",
	"publisher": {"name": "Example", "namespace": "https://example.com"},
	"pgp_keys": [{"fingerprint": "ABCDEF0123456789ABCDEF0123456789ABCDEF01", "url": "https://example.com/key.asc"}],
	"distributions": [{"rolie": {"feeds": [{"url": "https://example.com/feed.json"}]}}]
}`

func newDiscoverer(t *testing.T, handler http.Handler) (*Discoverer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	d := New(fetch.New(srv.Client(), nil), nil)
	d.Lookup = func(string) ([]string, error) { return nil, nil }
	return d, srv
}

func TestDiscoverWellKnown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/csaf/provider-metadata.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePMD))
	})
	d, srv := newDiscoverer(t, mux)
	defer srv.Close()

	d.candidateURLsFn = func(domain string, kind model.Kind) ([]string, error) {
		return []string{srv.URL + kind.WellKnownPath()}, nil
	}

	pmd, err := d.Discover(context.Background(), "example.com", model.CSAF)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if !pmd.Valid() {
		t.Fatal("expected a valid provider metadata")
	}
	if pmd.Publisher.Name != "Example" {
		t.Errorf("Publisher.Name: got %q", pmd.Publisher.Name)
	}
	if len(pmd.Keys) != 1 || pmd.Keys[0].Fingerprint == "" {
		t.Errorf("Keys: got %v", pmd.Keys)
	}
	if len(pmd.Distributions) != 1 || pmd.Distributions[0].ROLIEFeedURL == "" {
		t.Errorf("Distributions: got %v", pmd.Distributions)
	}
}

func TestExtractFieldURLs(t *testing.T) {
	body := "Contact: mailto:sec@example.com\nCSAF: https://example.com/provider-metadata.json\n"
	urls, err := extractFieldURLs(strings.NewReader(body), "CSAF")
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/provider-metadata.json" {
		t.Errorf("got %v", urls)
	}
}

func TestResolveDirectURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/provider-metadata.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePMD))
	})
	d, srv := newDiscoverer(t, mux)
	defer srv.Close()

	pmd, err := d.Resolve(context.Background(), srv.URL+"/provider-metadata.json", model.CSAF)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !pmd.Valid() || pmd.Publisher.Name != "Example" {
		t.Fatalf("unexpected pmd: %+v", pmd)
	}
}

func TestResolveFileURL(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/provider-metadata.json"
	if err := os.WriteFile(path, []byte(samplePMD), 0o644); err != nil {
		t.Fatal(err)
	}
	d := New(fetch.New(http.DefaultClient, nil), nil)

	pmd, err := d.Resolve(context.Background(), "file://"+path, model.SBOM)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !pmd.Valid() || pmd.Kind != model.SBOM {
		t.Fatalf("unexpected pmd: %+v", pmd)
	}
}

func TestDiscoverNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	d, srv := newDiscoverer(t, mux)
	defer srv.Close()

	d.candidateURLsFn = func(domain string, kind model.Kind) ([]string, error) {
		return []string{srv.URL + "/nope.json"}, nil
	}

	if _, err := d.Discover(context.Background(), "example.com", model.CSAF); err == nil {
		t.Fatal("expected an error for a domain with no provider metadata")
	}
}
