// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package retriever

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

func TestRetrieve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/advisory.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/advisory.json.sha256", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("aabbcc advisory.json\n"))
	})
	mux.HandleFunc("/advisory.json.asc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("-----BEGIN PGP SIGNATURE-----\nstub\n-----END PGP SIGNATURE-----\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := New(fetch.New(srv.Client(), nil), nil)
	ref := model.DocumentReference{
		URL:       srv.URL + "/advisory.json",
		SHA256URL: srv.URL + "/advisory.json.sha256",
		SignURL:   srv.URL + "/advisory.json.asc",
	}

	doc, err := r.Retrieve(context.Background(), ref)
	if err != nil {
		t.Fatal(err)
	}
	if string(doc.Body) != `{"ok":true}` {
		t.Errorf("Body: got %q", doc.Body)
	}
	if len(doc.SHA256) != 3 {
		t.Errorf("SHA256: got %x", doc.SHA256)
	}
	if len(doc.Signature) == 0 {
		t.Error("Signature: got none")
	}
}

func TestRetrieveBodyTooLarge(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/big.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 16))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := New(fetch.New(srv.Client(), nil), nil)
	r.MaxBodySize = 8

	_, err := r.Retrieve(context.Background(), model.DocumentReference{URL: srv.URL + "/big.json"})
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("got %v, want ErrBodyTooLarge", err)
	}
}

func TestRetrieveAll(t *testing.T) {
	mux := http.NewServeMux()
	for _, p := range []string{"/a.json", "/b.json"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := New(fetch.New(srv.Client(), nil), nil)
	refs := []model.DocumentReference{
		{URL: srv.URL + "/a.json"},
		{URL: srv.URL + "/b.json"},
	}
	results := r.RetrieveAll(context.Background(), refs, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("%s: %v", res.Reference.URL, res.Err)
		}
	}
}
