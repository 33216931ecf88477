// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

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
		"link": [
			{"rel": "self", "href": "advisory-1.json"},
			{"rel": "hash", "href": "advisory-1.json.sha256"}
		]
	}]
}`

func TestHTTPSourceEnumerateROLIE(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pmd := &model.ProviderMetadata{
		Kind:          model.CSAF,
		URL:           srv.URL + "/.well-known/csaf/provider-metadata.json",
		Distributions: []model.Distribution{{ROLIEFeedURL: srv.URL + "/feed.json"}},
	}
	s := NewHTTPSource(fetch.New(srv.Client(), nil), pmd, nil)

	refs, err := s.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	ref := refs[0]
	if ref.URL != srv.URL+"/advisory-1.json" {
		t.Errorf("URL: got %q", ref.URL)
	}
	if ref.SHA256URL != srv.URL+"/advisory-1.json.sha256" {
		t.Errorf("SHA256URL: got %q", ref.SHA256URL)
	}
	if ref.SignURL != ref.URL+".asc" {
		t.Errorf("SignURL: got %q, want derived default", ref.SignURL)
	}
}

func TestHTTPSourceEnumerateHTMLListingFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
<a href="../">../</a>
<a href="?C=N;O=D">Name</a>
<a href="advisory-1.json">advisory-1.json</a>
<a href="advisory-1.json.sha256">advisory-1.json.sha256</a>
<a href="advisory-1.json.asc">advisory-1.json.asc</a>
</body></html>`))
	})
	mux.HandleFunc("/index.txt", http.NotFound)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pmd := &model.ProviderMetadata{
		Kind:          model.CSAF,
		URL:           srv.URL + "/.well-known/csaf/provider-metadata.json",
		Distributions: []model.Distribution{{DirectoryURL: srv.URL + "/"}},
	}
	s := NewHTTPSource(fetch.New(srv.Client(), nil), pmd, nil)

	refs, err := s.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1: %v", len(refs), refs)
	}
	if refs[0].URL != srv.URL+"/advisory-1.json" {
		t.Errorf("URL: got %q", refs[0].URL)
	}
}

func TestFileSourceEnumerate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "changes.csv"),
		[]byte(`"advisory-1.json","2024-01-01T00:00:00Z"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSource(dir, model.CSAF)
	refs, err := fs.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].ID != "advisory-1.json" {
		t.Fatalf("got %v", refs)
	}
}
