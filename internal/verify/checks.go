// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package verify

import (
	"encoding/json"
	"fmt"

	"github.com/csaf-poc/csaf_distribution/v3/csaf"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// mandatoryCSAFChecks runs the structural checks §4.8 groups under the
// `mandatory` rule set: ones a CSAF 2.0 producer must get right for
// the document to be usable at all, beyond bare schema conformance.
func mandatoryCSAFChecks(eval *util.PathEval, ref model.DocumentReference, body []byte, raw any) []findingSpec {
	var findings []findingSpec

	if err := util.IDMatchesFilename(eval, raw, util.CleanFileName(ref.ID)); err != nil && ref.ID != "" {
		findings = append(findings, findingSpec{
			check:   "mandatory/filename",
			message: err.Error(),
			path:    "$.document.tracking.id",
		})
	}

	var vulns []any
	if v, err := eval.Eval("$.vulnerabilities[*]", raw); err == nil {
		if arr, ok := v.([]any); ok {
			vulns = arr
		}
	}
	for i := range vulns {
		if _, err := eval.Eval(fmt.Sprintf("$.vulnerabilities[%d].cve", i), raw); err != nil {
			if _, err := eval.Eval(fmt.Sprintf("$.vulnerabilities[%d].ids[*]", i), raw); err != nil {
				findings = append(findings, findingSpec{
					check:   "mandatory/vulnerability-identifier",
					message: "vulnerability has neither a cve nor an ids entry",
					path:    fmt.Sprintf("$.vulnerabilities[%d]", i),
				})
			}
		}
	}

	findings = append(findings, advisoryStructuralChecks(body)...)

	return findings
}

// advisoryStructuralChecks parses body into the full [csaf.Advisory]
// model and runs its cascading Validate, catching structural defects
// (malformed product references, inconsistent CVSS vectors, missing
// required tracking fields) the JSON-schema and JSONPath-based checks
// above never look at field-by-field.
func advisoryStructuralChecks(body []byte) []findingSpec {
	var adv csaf.Advisory
	if err := json.Unmarshal(body, &adv); err != nil {
		return nil
	}
	if err := adv.Validate(); err != nil {
		return []findingSpec{{
			check:   "mandatory/advisory-structure",
			message: err.Error(),
			path:    "$.document",
		}}
	}
	return nil
}

// productIdentificationChecks flags every product ID a vulnerability's
// product_status references that the document's product tree cannot
// resolve to a product_identification_helper, using the same
// [csaf.ProductTree.CollectProductIdentificationHelpers] lookup a
// downstream VEX/SBOM matcher would need to act on the advisory.
func productIdentificationChecks(body []byte) []findingSpec {
	var adv csaf.Advisory
	if err := json.Unmarshal(body, &adv); err != nil {
		return nil
	}
	if adv.ProductTree == nil {
		return nil
	}

	var findings []findingSpec
	seen := map[csaf.ProductID]bool{}

	check := func(ids *csaf.Products) {
		if ids == nil {
			return
		}
		for _, id := range *ids {
			if id == nil || seen[*id] {
				continue
			}
			seen[*id] = true
			if len(adv.ProductTree.CollectProductIdentificationHelpers(*id)) == 0 {
				findings = append(findings, findingSpec{
					check:   "optional/product-identification-helper",
					message: fmt.Sprintf("product %q has no product_identification_helper in the product tree", *id),
					path:    "$.product_tree",
				})
			}
		}
	}

	for _, v := range adv.Vulnerabilities {
		if v == nil || v.ProductStatus == nil {
			continue
		}
		ps := v.ProductStatus
		for _, ids := range []*csaf.Products{
			ps.FirstAffected, ps.FirstFixed, ps.Fixed, ps.KnownAffected,
			ps.KnownNotAffected, ps.LastAffected, ps.Recommended, ps.UnderInvestigation,
		} {
			check(ids)
		}
	}

	return findings
}

// optionalCSAFChecks runs the walker-native half of the `optional`
// rule set — checks worth running but not required for a document to
// be considered usable. The upstream csaf-validator-lib's own
// JS-hosted optional checks are reached separately, through
// [RemoteValidator], per SPEC_FULL.md's Open Question decision.
func optionalCSAFChecks(eval *util.PathEval, body []byte, raw any) []findingSpec {
	var findings []findingSpec

	findings = append(findings, productIdentificationChecks(body)...)

	var namespace string
	_ = eval.Extract("$.document.publisher.namespace", util.StringMatcher(&namespace), false, raw)
	if namespace == "" {
		findings = append(findings, findingSpec{
			check:   "optional/publisher-namespace",
			message: "document.publisher.namespace is empty",
			path:    "$.document.publisher.namespace",
		})
	}

	var lang string
	_ = eval.Extract("$.document.lang", util.StringMatcher(&lang), false, raw)
	if lang == "" {
		findings = append(findings, findingSpec{
			check:   "optional/document-language",
			message: "document.lang is not set",
			path:    "$.document.lang",
		})
	}

	return findings
}

// RemoteValidator is the capability [csaf.RemoteValidator] provides:
// an external checker (typically the upstream csaf-validator-lib,
// proxied over HTTP per design note 9's Open Question decision) that
// can run presets the walker's own native checks don't implement.
type RemoteValidator = csaf.RemoteValidator

// remoteFindings turns a [csaf.RemoteValidationResult] into findings
// under the `optional` rule set, one per test per severity bucket.
func remoteFindings(result csaf.RemoteValidationResult) []findingSpec {
	var findings []findingSpec
	add := func(test csaf.RemoteTest, results []csaf.RemoteTestResults, severity model.Severity) {
		for _, e := range results {
			findings = append(findings, findingSpec{
				check:    "optional/" + test.Name,
				message:  e.Message,
				path:     e.InstancePath,
				severity: severity,
			})
		}
	}
	for _, test := range result.Tests {
		add(test, test.Error, model.Error)
		add(test, test.Warning, model.Warning)
		add(test, test.Info, model.Note)
	}
	return findings
}
