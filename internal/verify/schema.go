// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package verify implements the walker's C8 component: JSON-schema
// validation and named rule-set checks against a [model.ValidatedDocument]'s
// content, for both CSAF and SBOM documents.
package verify

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

//go:embed schema/csaf-2.0.json
var csafSchemaJSON []byte

//go:embed schema/cyclonedx.json
var cycloneDXSchemaJSON []byte

//go:embed schema/spdx.json
var spdxSchemaJSON []byte

// compileSchema compiles the embedded schema document data, registered
// at resourceURL, into a [jsonschema.Schema].
func compileSchema(resourceURL string, data []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("verify: add schema resource %s: %w", resourceURL, err)
	}
	schema, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("verify: compile schema %s: %w", resourceURL, err)
	}
	return schema, nil
}

// schemaFindings runs schema against raw, turning every leaf
// validation error it reports into a [model.Finding] of the named
// check. Non-leaf causes (the "doesn't match any of the sub-schemas of
// allOf" wrapper a single concrete failure usually sits behind) are
// walked through rather than reported themselves, so one real failure
// doesn't echo as several near-duplicate findings.
func schemaFindings(schema *jsonschema.Schema, raw any, check string) []findingSpec {
	err := schema.Validate(raw)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []findingSpec{{check: check, message: err.Error()}}
	}
	var findings []findingSpec
	collectValidationLeaves(ve, check, &findings)
	return findings
}

func collectValidationLeaves(ve *jsonschema.ValidationError, check string, out *[]findingSpec) {
	if len(ve.Causes) == 0 {
		*out = append(*out, findingSpec{
			check:   check,
			message: ve.Message,
			path:    ve.InstanceLocation,
		})
		return
	}
	for _, cause := range ve.Causes {
		collectValidationLeaves(cause, check, out)
	}
}

// findingSpec is the shape schemaFindings/rule checks produce; Verify
// applies the ignore filter and turns it into a [model.Finding].
// Severity defaults to [model.Error] (its zero value) unless a check
// that natively distinguishes severities (the remote validator) sets
// it explicitly.
type findingSpec struct {
	check    string
	message  string
	path     string
	severity model.Severity
}
