// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package verify

import "testing"

func TestAdvisoryStructuralChecksFlagsIncompleteDocument(t *testing.T) {
	body := []byte(`{"document": {"tracking": {"id": "ADV-1"}}, "vulnerabilities": []}`)

	findings := advisoryStructuralChecks(body)
	found := false
	for _, f := range findings {
		if f.check == "mandatory/advisory-structure" {
			found = true
		}
	}
	if !found {
		t.Errorf("got %+v, want a mandatory/advisory-structure finding for a document missing required fields", findings)
	}
}

func TestAdvisoryStructuralChecksIgnoresUnparseableBody(t *testing.T) {
	if findings := advisoryStructuralChecks([]byte("not json")); findings != nil {
		t.Errorf("got %+v, want no findings for a body that isn't valid JSON", findings)
	}
}

func TestProductIdentificationChecksFlagsUnresolvableProduct(t *testing.T) {
	body := []byte(`{
		"product_tree": {
			"full_product_names": [
				{"product_id": "CSAFPID-9999999999", "name": "Example 1.0"},
				{
					"product_id": "CSAFPID-0000000000",
					"name": "Example 2.0",
					"product_identification_helper": {"purl": "pkg:generic/example@2.0"}
				}
			]
		},
		"vulnerabilities": [
			{
				"product_status": {
					"known_affected": ["CSAFPID-9999999999", "CSAFPID-0000000000"]
				}
			}
		]
	}`)

	findings := productIdentificationChecks(body)
	if len(findings) != 1 {
		t.Fatalf("got %+v, want exactly one finding for the product with no identification helper", findings)
	}
	if findings[0].check != "optional/product-identification-helper" {
		t.Errorf("got check %q, want optional/product-identification-helper", findings[0].check)
	}
}

func TestProductIdentificationChecksNoProductTree(t *testing.T) {
	if findings := productIdentificationChecks([]byte(`{"vulnerabilities": []}`)); findings != nil {
		t.Errorf("got %+v, want no findings when the document has no product tree", findings)
	}
}
