// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

func TestAccumulatorTotals(t *testing.T) {
	acc := New(model.CSAF, "example.com")

	acc.Observe(model.Transition{
		Reference: model.DocumentReference{ID: "2024/a.json"},
		To:        model.Sunk,
	})
	acc.Observe(model.Transition{
		Reference: model.DocumentReference{ID: "2024/b.json"},
		To:        model.Skipped,
	})
	acc.Observe(model.Transition{
		Reference: model.DocumentReference{ID: "2024/c.json"},
		To:        model.Failed,
		Err:       errDigest{},
	})
	acc.AttachFindings(&model.VerifiedDocument{
		ValidatedDocument: model.ValidatedDocument{
			RetrievedDocument: model.RetrievedDocument{Reference: model.DocumentReference{ID: "2024/a.json"}},
		},
		Findings: []model.Finding{
			{Check: "schema", Severity: model.Error, Message: "missing field"},
			{Check: "mandatory", Severity: model.Warning, Message: "no lang"},
		},
	})

	r := acc.Report()
	if r.Total != 3 || r.Valid != 1 || r.Skipped != 1 || r.Failed != 1 {
		t.Fatalf("unexpected totals: %+v", r)
	}
	if r.Errors != 1 || r.Warnings != 1 {
		t.Fatalf("unexpected finding totals: %+v", r)
	}
	if r.ChecksHistogram["schema"] != 1 {
		t.Fatalf("histogram: %+v", r.ChecksHistogram)
	}
	if len(r.Documents) != 3 {
		t.Fatalf("documents: %+v", r.Documents)
	}
}

func TestAccumulatorAttachesAdvisorySummary(t *testing.T) {
	acc := New(model.CSAF, "example.com")
	acc.Observe(model.Transition{Reference: model.DocumentReference{ID: "a.json"}, To: model.Sunk})

	body := []byte(`{
		"document": {
			"title": "Example Advisory",
			"publisher": {"category": "vendor", "name": "Example Org", "namespace": "https://example.com"},
			"distribution": {"tlp": {"label": "WHITE"}},
			"tracking": {"id": "ADV-1"}
		}
	}`)
	acc.AttachFindings(&model.VerifiedDocument{
		ValidatedDocument: model.ValidatedDocument{
			RetrievedDocument: model.RetrievedDocument{
				Reference: model.DocumentReference{Kind: model.CSAF, ID: "a.json"},
				Body:      body,
			},
		},
	})

	r := acc.Report()
	if len(r.Documents) != 1 {
		t.Fatalf("documents: %+v", r.Documents)
	}
	d := r.Documents[0]
	if d.Title != "Example Advisory" || d.Publisher != "Example Org" || d.TLPLabel != "WHITE" {
		t.Fatalf("got %+v, want title/publisher/tlp_label filled in from the document body", d)
	}
}

type errDigest struct{}

func (errDigest) Error() string { return "digest mismatch" }

func TestWriteTextIncludesFindings(t *testing.T) {
	acc := New(model.CSAF, "example.com")
	acc.Observe(model.Transition{Reference: model.DocumentReference{ID: "a.json"}, To: model.Sunk})
	acc.AttachFindings(&model.VerifiedDocument{
		ValidatedDocument: model.ValidatedDocument{
			RetrievedDocument: model.RetrievedDocument{Reference: model.DocumentReference{ID: "a.json"}},
		},
		Findings: []model.Finding{{Check: "schema", Severity: model.Error, Message: "bad"}},
	})

	var buf bytes.Buffer
	r := acc.Report()
	if err := r.writeText(nopCloser{&buf}); err != nil {
		t.Fatalf("writeText: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "a.json") || !strings.Contains(out, "bad") {
		t.Errorf("report missing expected content: %s", out)
	}
}
