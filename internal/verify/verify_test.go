// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package verify

import (
	"context"
	"testing"

	"github.com/csaf-poc/csaf_distribution/v3/csaf"
	"github.com/csaf-poc/csaf_distribution/v3/internal/filter"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

func doc(id, body string) *model.ValidatedDocument {
	return &model.ValidatedDocument{
		RetrievedDocument: model.RetrievedDocument{
			Reference: model.DocumentReference{Kind: model.CSAF, ID: id},
			Body:      []byte(body),
		},
	}
}

func TestVerifyMandatoryChecksFlagMissingVulnIdentifier(t *testing.T) {
	v, err := New(Options{RuleSets: []string{RuleSetMandatory}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	body := `{"document": {"tracking": {"id": "ADV-1"}}, "vulnerabilities": [{"notes": []}]}`
	verified, err := v.Verify(context.Background(), doc("ADV-1.json", body))
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, f := range verified.Findings {
		if f.Check == "mandatory/vulnerability-identifier" {
			found = true
		}
	}
	if !found {
		t.Errorf("got %+v, want a mandatory/vulnerability-identifier finding", verified.Findings)
	}
}

func TestVerifyIgnoreFiltersFindings(t *testing.T) {
	pm, err := filter.NewPatternMatcher([]string{"^mandatory/vulnerability-identifier$"})
	if err != nil {
		t.Fatal(err)
	}
	v, err := New(Options{RuleSets: []string{RuleSetMandatory}, Ignore: pm}, nil)
	if err != nil {
		t.Fatal(err)
	}

	body := `{"document": {"tracking": {"id": "ADV-1"}}, "vulnerabilities": [{"notes": []}]}`
	verified, err := v.Verify(context.Background(), doc("ADV-1.json", body))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range verified.Findings {
		if f.Check == "mandatory/vulnerability-identifier" {
			t.Errorf("finding %q should have been filtered by Ignore", f.Check)
		}
	}
}

func TestVerifyOptionalChecksFlagEmptyNamespace(t *testing.T) {
	v, err := New(Options{RuleSets: []string{RuleSetOptional}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	body := `{"document": {"publisher": {"namespace": ""}}}`
	verified, err := v.Verify(context.Background(), doc("ADV-1.json", body))
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]bool{}
	for _, f := range verified.Findings {
		checks[f.Check] = true
	}
	if !checks["optional/publisher-namespace"] || !checks["optional/document-language"] {
		t.Errorf("got %+v", verified.Findings)
	}
}

type fakeRemoteValidator struct {
	result csaf.RemoteValidationResult
}

func (f *fakeRemoteValidator) Validate(any) (csaf.RemoteValidationResult, error) {
	return f.result, nil
}

func (f *fakeRemoteValidator) Close() error { return nil }

func TestVerifyConsultsRemoteValidatorForOptionalRuleSet(t *testing.T) {
	remote := &fakeRemoteValidator{result: csaf.RemoteValidationResult{
		Tests: []csaf.RemoteTest{{
			Name:  "remote-check",
			Error: []csaf.RemoteTestResults{{Message: "something is wrong", InstancePath: "/document"}},
		}},
	}}

	v, err := New(Options{RuleSets: []string{RuleSetOptional}, Remote: remote}, nil)
	if err != nil {
		t.Fatal(err)
	}

	body := `{"document": {"publisher": {"namespace": "example.com"}, "lang": "en"}}`
	verified, err := v.Verify(context.Background(), doc("ADV-1.json", body))
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, f := range verified.Findings {
		if f.Check == "optional/remote-check" && f.Severity == model.Error {
			found = true
		}
	}
	if !found {
		t.Errorf("got %+v, want a finding from the remote validator", verified.Findings)
	}
}

func TestVerifySBOMUnknownFormat(t *testing.T) {
	v, err := New(Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	d := &model.ValidatedDocument{RetrievedDocument: model.RetrievedDocument{
		Reference: model.DocumentReference{Kind: model.SBOM, ID: "sbom.json"},
		Body:      []byte(`{"foo": "bar"}`),
	}}
	verified, err := v.Verify(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if len(verified.Findings) != 1 || verified.Findings[0].Check != "schema" {
		t.Fatalf("got %+v, want a single schema finding for an unrecognized SBOM", verified.Findings)
	}
}
