// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package sbom implements the SBOM half of the walker's C8 component:
// detecting whether a document is CycloneDX or SPDX, and the minimal
// semantic sanity checks §4.8 names for either variant.
package sbom

import (
	"fmt"
	"strings"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// Format distinguishes the two SBOM variants the walker recognizes.
type Format int

const (
	// Unknown means Detect could not classify the document.
	Unknown Format = iota
	// CycloneDX is OWASP's Software Bill of Materials standard.
	CycloneDX
	// SPDX is the Linux Foundation's Software Package Data Exchange.
	SPDX
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case CycloneDX:
		return "cyclonedx"
	case SPDX:
		return "spdx"
	default:
		return "unknown"
	}
}

// Detect classifies raw (a decoded JSON document) as CycloneDX or SPDX
// by its distinguishing top-level field, the same field-presence
// heuristic original_source's sbom crate uses before picking a schema.
func Detect(raw any) Format {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Unknown
	}
	if _, ok := obj["bomFormat"]; ok {
		return CycloneDX
	}
	if _, ok := obj["spdxVersion"]; ok {
		return SPDX
	}
	return Unknown
}

// Component is the variant-agnostic shape the semantic checks need:
// CycloneDX's `components[*]` and SPDX's `packages[*]` projected down
// to an identifier and a display name.
type Component struct {
	ID   string
	Name string
}

// Components extracts every component/package identifier from raw for
// the given format via JSONPath, so the same caller can run semantic
// checks without knowing which variant it was handed.
func Components(eval *util.PathEval, format Format, raw any) ([]Component, error) {
	var idPath, namePath string
	switch format {
	case CycloneDX:
		idPath, namePath = "$.components[*].bom-ref", "$.components[*].name"
	case SPDX:
		idPath, namePath = "$.packages[*].SPDXID", "$.packages[*].name"
	default:
		return nil, fmt.Errorf("sbom: unknown format")
	}

	ids, err := eval.Eval(idPath, raw)
	if err != nil {
		ids = nil
	}
	names, err := eval.Eval(namePath, raw)
	if err != nil {
		names = nil
	}
	idStrs, _ := util.AsStrings(ids)
	nameStrs, _ := util.AsStrings(names)

	n := len(nameStrs)
	if len(idStrs) > n {
		n = len(idStrs)
	}
	components := make([]Component, n)
	for i := range components {
		if i < len(idStrs) {
			components[i].ID = idStrs[i]
		}
		if i < len(nameStrs) {
			components[i].Name = nameStrs[i]
		}
	}
	return components, nil
}

// CheckComponentIdentifiers is §4.8's minimal SBOM semantic sanity
// check: every component/package identifier must be non-empty.
func CheckComponentIdentifiers(components []Component) []model.Finding {
	var findings []model.Finding
	for i, c := range components {
		if strings.TrimSpace(c.ID) == "" {
			findings = append(findings, model.Finding{
				Check:    "sbom-component-id",
				Severity: model.Error,
				Message:  fmt.Sprintf("component %d (%q) has an empty identifier", i, c.Name),
				Path:     fmt.Sprintf("$.components[%d]", i),
			})
		}
	}
	return findings
}
