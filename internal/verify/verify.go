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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/csaf-poc/csaf_distribution/v3/internal/filter"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/internal/sbom"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// RuleSets names the three named groups §4.8 selects checks by.
const (
	RuleSetSchema    = "schema"
	RuleSetMandatory = "mandatory"
	RuleSetOptional  = "optional"
)

// Options configures a Verifier.
type Options struct {
	// RuleSets restricts which named groups run, per the `--validations`
	// CLI flag. Empty means all three.
	RuleSets []string
	// Ignore suppresses findings from checks whose name matches, per
	// the repeated `--ignore <check-name>` flag.
	Ignore filter.PatternMatcher
	// Remote, if set, is consulted for the `optional` rule set's
	// CSAF-validator-lib-hosted checks.
	Remote RemoteValidator
}

func (o Options) wants(set string) bool {
	if len(o.RuleSets) == 0 {
		return true
	}
	for _, s := range o.RuleSets {
		if s == set {
			return true
		}
	}
	return false
}

// Verifier runs §4.8's content checks against a [model.ValidatedDocument].
type Verifier struct {
	opts Options

	csafSchema      *jsonschema.Schema
	cycloneDXSchema *jsonschema.Schema
	spdxSchema      *jsonschema.Schema

	eval   *util.PathEval
	logger *slog.Logger
}

// New compiles the embedded schemas and creates a Verifier.
func New(opts Options, logger *slog.Logger) (*Verifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	csafSchema, err := compileSchema("csaf-2.0.json", csafSchemaJSON)
	if err != nil {
		return nil, err
	}
	cdxSchema, err := compileSchema("cyclonedx.json", cycloneDXSchemaJSON)
	if err != nil {
		return nil, err
	}
	spdxSchema, err := compileSchema("spdx.json", spdxSchemaJSON)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		opts:            opts,
		csafSchema:      csafSchema,
		cycloneDXSchema: cdxSchema,
		spdxSchema:      spdxSchema,
		eval:            util.NewPathEval(),
		logger:          logger,
	}, nil
}

// Verify implements [walker.Verify]: it parses doc's body as JSON and
// runs every enabled rule set against it, attaching findings rather
// than rejecting the document — per §4.8, "the verifier never rejects
// a document."
func (v *Verifier) Verify(_ context.Context, doc *model.ValidatedDocument) (*model.VerifiedDocument, error) {
	var raw any
	if err := json.Unmarshal(doc.Body, &raw); err != nil {
		return nil, fmt.Errorf("verify: parse failed: %w", err)
	}

	var specs []findingSpec
	switch doc.Reference.Kind {
	case model.SBOM:
		specs = v.verifySBOM(raw)
	default:
		specs = v.verifyCSAF(doc.Reference, doc.Body, raw)
	}

	findings := make([]model.Finding, 0, len(specs))
	for _, s := range specs {
		if v.opts.Ignore.Matches(s.check) {
			continue
		}
		findings = append(findings, model.Finding{
			Check:    s.check,
			Severity: s.severity,
			Message:  s.message,
			Path:     s.path,
		})
	}

	return &model.VerifiedDocument{ValidatedDocument: *doc, Findings: findings}, nil
}

func (v *Verifier) verifyCSAF(ref model.DocumentReference, body []byte, raw any) []findingSpec {
	var specs []findingSpec
	if v.opts.wants(RuleSetSchema) {
		specs = append(specs, schemaFindings(v.csafSchema, raw, "schema")...)
	}
	if v.opts.wants(RuleSetMandatory) {
		specs = append(specs, mandatoryCSAFChecks(v.eval, ref, body, raw)...)
	}
	if v.opts.wants(RuleSetOptional) {
		specs = append(specs, optionalCSAFChecks(v.eval, body, raw)...)
		if v.opts.Remote != nil {
			result, err := v.opts.Remote.Validate(raw)
			if err != nil {
				v.logger.Warn("remote validation failed", "error", err)
			} else {
				specs = append(specs, remoteFindings(result)...)
			}
		}
	}
	return specs
}

func (v *Verifier) verifySBOM(raw any) []findingSpec {
	format := sbom.Detect(raw)

	var specs []findingSpec
	var schema *jsonschema.Schema
	switch format {
	case sbom.CycloneDX:
		schema = v.cycloneDXSchema
	case sbom.SPDX:
		schema = v.spdxSchema
	default:
		return []findingSpec{{
			check:   "schema",
			message: "document is neither recognizable CycloneDX nor SPDX",
		}}
	}

	if v.opts.wants(RuleSetSchema) {
		specs = append(specs, schemaFindings(schema, raw, "schema")...)
	}
	if v.opts.wants(RuleSetMandatory) {
		components, err := sbom.Components(v.eval, format, raw)
		if err != nil {
			v.logger.Warn("sbom: component extraction failed", "error", err)
		} else {
			specs = append(specs, toFindingSpecs(sbom.CheckComponentIdentifiers(components))...)
		}
	}
	return specs
}

func toFindingSpecs(findings []model.Finding) []findingSpec {
	specs := make([]findingSpec, len(findings))
	for i, f := range findings {
		specs[i] = findingSpec{check: f.Check, message: f.Message, path: f.Path, severity: f.Severity}
	}
	return specs
}
