// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package store

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

func verifiedDoc(id string, published time.Time) *model.VerifiedDocument {
	return &model.VerifiedDocument{
		ValidatedDocument: model.ValidatedDocument{
			RetrievedDocument: model.RetrievedDocument{
				Reference: model.DocumentReference{
					ID:        id,
					URL:       "https://example.com/" + id,
					Published: published,
				},
				Body:   []byte(`{"document":{}}`),
				SHA256: []byte{0xde, 0xad, 0xbe, 0xef},
				Header: http.Header{"Etag": []string{`"abc"`}},
			},
		},
	}
}

func TestSinkWritesBodyAndSidecar(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	doc := verifiedDoc("2024/advisory-1.json", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err := s.Sink(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	body, err := os.ReadFile(filepath.Join(root, "2024", "advisory-1.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"document":{}}` {
		t.Errorf("body mismatch: %q", body)
	}

	if _, err := os.Stat(filepath.Join(root, "2024", "advisory-1.json.sha256")); err != nil {
		t.Errorf("missing sha256 sidecar: %v", err)
	}

	changesBody, err := os.ReadFile(filepath.Join(root, "changes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(changesBody), "2024/advisory-1.json") {
		t.Errorf("changes.csv missing entry: %q", changesBody)
	}
}

func TestSinkDedupsChangesOnRepeatedWrite(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	doc := verifiedDoc("advisory.json", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := s.Sink(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	doc2 := verifiedDoc("advisory.json", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := s.Sink(context.Background(), doc2); err != nil {
		t.Fatal(err)
	}

	if len(s.entries) != 1 {
		t.Fatalf("got %d entries, want 1 after dedup", len(s.entries))
	}
	if !s.entries[0].Time.Equal(doc2.Reference.Published) {
		t.Errorf("kept entry has wrong time: %v", s.entries[0].Time)
	}
}

func TestOpenFailsWhenLocked(t *testing.T) {
	root := t.TempDir()
	s1, err := Open(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s1.Close()

	if _, err := Open(root, nil); err == nil {
		t.Fatal("expected second Open against a locked root to fail")
	}
}
