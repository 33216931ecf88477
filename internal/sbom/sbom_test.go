// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package sbom

import (
	"encoding/json"
	"testing"

	"github.com/csaf-poc/csaf_distribution/v3/util"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Format
	}{
		{"cyclonedx", `{"bomFormat": "CycloneDX"}`, CycloneDX},
		{"spdx", `{"spdxVersion": "SPDX-2.3"}`, SPDX},
		{"unknown", `{"foo": "bar"}`, Unknown},
		{"not an object", `[1,2,3]`, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw any
			if err := json.Unmarshal([]byte(tt.doc), &raw); err != nil {
				t.Fatal(err)
			}
			if got := Detect(raw); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComponentsCycloneDX(t *testing.T) {
	var raw any
	doc := `{"bomFormat": "CycloneDX", "components": [
		{"bom-ref": "pkg:npm/a@1.0", "name": "a"},
		{"bom-ref": "", "name": "b"}
	]}`
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatal(err)
	}

	eval := util.NewPathEval()
	components, err := Components(eval, CycloneDX, raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(components) != 2 {
		t.Fatalf("got %d components, want 2", len(components))
	}
	if components[0].ID != "pkg:npm/a@1.0" || components[0].Name != "a" {
		t.Errorf("got %+v", components[0])
	}

	findings := CheckComponentIdentifiers(components)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1 (the empty bom-ref)", len(findings))
	}
	if findings[0].Check != "sbom-component-id" {
		t.Errorf("check = %q", findings[0].Check)
	}
}

func TestComponentsSPDX(t *testing.T) {
	var raw any
	doc := `{"spdxVersion": "SPDX-2.3", "packages": [
		{"SPDXID": "SPDXRef-a", "name": "a"}
	]}`
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatal(err)
	}

	eval := util.NewPathEval()
	components, err := Components(eval, SPDX, raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(components) != 1 || components[0].ID != "SPDXRef-a" {
		t.Fatalf("got %+v", components)
	}
	if findings := CheckComponentIdentifiers(components); len(findings) != 0 {
		t.Errorf("got %d findings, want 0", len(findings))
	}
}
