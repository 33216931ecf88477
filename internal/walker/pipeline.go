// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package walker

import (
	"context"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

// Retrieve fetches a reference's body and sidecars, the C6 stage.
type Retrieve func(ctx context.Context, ref model.DocumentReference) (*model.RetrievedDocument, error)

// Validate checks a retrieved document's digests and signature, the
// C7 stage.
type Validate func(ctx context.Context, doc *model.RetrievedDocument) (*model.ValidatedDocument, error)

// Verify runs content-level checks against a validated document, the
// C8 stage.
type Verify func(ctx context.Context, doc *model.ValidatedDocument) (*model.VerifiedDocument, error)

// SinkFunc persists or forwards a verified document, the C9/C10 stage.
// More than one may be attached to a Pipeline (e.g. Storage Sink and
// Send Sink both running over the same run).
type SinkFunc func(ctx context.Context, doc *model.VerifiedDocument) error

// Pipeline composes the Retriever → Validator → Verifier → Sink chain
// behind the single [VisitFunc] capability the Walker needs, per
// design note 9.1: stages are plain functions chained by a builder,
// not a dynamic-dispatch base class.
type Pipeline struct {
	retrieve         Retrieve
	validate         Validate
	verify           Verify
	sinks            []SinkFunc
	observe          Observer
	requireSignature bool
}

// NewPipeline creates a Pipeline whose only mandatory stage is
// retrieve. Validate, Verify and sinks are optional: a Pipeline with
// none of them is the `discover` subcommand's dry run.
func NewPipeline(retrieve Retrieve) *Pipeline {
	return &Pipeline{retrieve: retrieve}
}

// WithValidate attaches the C7 stage.
func (p *Pipeline) WithValidate(v Validate) *Pipeline {
	p.validate = v
	return p
}

// WithVerify attaches the C8 stage.
func (p *Pipeline) WithVerify(v Verify) *Pipeline {
	p.verify = v
	return p
}

// WithSink appends a C9/C10 stage. Sinks run in the order attached;
// the first to fail stops the rest for that document.
func (p *Pipeline) WithSink(s SinkFunc) *Pipeline {
	p.sinks = append(p.sinks, s)
	return p
}

// WithObserver attaches a transition Observer, invoked synchronously
// from within Visit — the Walker's own Observer still fires for the
// terminal state, so this is for stages that want intermediate detail
// (Retrieving, Validating, ...) the Walker itself does not see.
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	p.observe = o
	return p
}

// RequireSignature upgrades a [model.NoSignature] validation outcome
// to a hard failure instead of a forwardable warning, per §4.7's
// require_signature option (default true for CSAF).
func (p *Pipeline) RequireSignature(require bool) *Pipeline {
	p.requireSignature = require
	return p
}

// Visit implements [VisitFunc].
func (p *Pipeline) Visit(ctx context.Context, ref model.DocumentReference) (model.State, error) {
	p.observeAt(ref, model.Discovered, model.Retrieving, nil)
	retrieved, err := p.retrieve(ctx, ref)
	if err != nil {
		p.observeAt(ref, model.Retrieving, model.Failed, err)
		return model.Failed, err
	}
	p.observeAt(ref, model.Retrieving, model.Retrieved, nil)

	validated := &model.ValidatedDocument{RetrievedDocument: *retrieved}
	if p.validate != nil {
		p.observeAt(ref, model.Retrieved, model.Validating, nil)
		v, err := p.validate(ctx, retrieved)
		if err != nil {
			p.observeAt(ref, model.Validating, model.Failed, err)
			return model.Failed, err
		}
		validated = v
		if !validated.Validation.Forwardable(p.requireSignature) {
			p.observeAt(ref, model.Validating, model.Failed, validationError(validated.Validation))
			return model.Failed, validationError(validated.Validation)
		}
		p.observeAt(ref, model.Validating, model.Validated, nil)
	}

	verified := &model.VerifiedDocument{ValidatedDocument: *validated}
	if p.verify != nil {
		p.observeAt(ref, model.Validated, model.Verifying, nil)
		out, err := p.verify(ctx, validated)
		if err != nil {
			p.observeAt(ref, model.Verifying, model.Failed, err)
			return model.Failed, err
		}
		verified = out
		p.observeAt(ref, model.Verifying, model.Verified, nil)
	}

	for _, sink := range p.sinks {
		if err := sink(ctx, verified); err != nil {
			p.observeAt(ref, model.Verified, model.Failed, err)
			return model.Failed, err
		}
	}
	p.observeAt(ref, model.Verified, model.Sunk, nil)
	return model.Sunk, nil
}

func (p *Pipeline) observeAt(ref model.DocumentReference, from, to model.State, err error) {
	if p.observe != nil {
		p.observe(model.Transition{Reference: ref, From: from, To: to, Err: err, At: time.Now()})
	}
}

// validationError turns a non-forwardable [model.ValidationResult]
// into an error carrying its Outcome, for Visit's Failed transition.
func validationError(vr model.ValidationResult) error {
	return &validationFailure{vr}
}

type validationFailure struct{ model.ValidationResult }

func (v *validationFailure) Error() string {
	switch v.Outcome {
	case model.DigestMismatch:
		return "digest mismatch (" + v.Kind.String() + "): expected " + v.Expected + ", got " + v.Actual
	case model.SignatureInvalid:
		return "signature invalid: " + v.Reason
	case model.PolicyRejected:
		return "policy rejected: " + v.Reason
	case model.NoSignature:
		return "no signature present"
	case model.NoKey:
		return "signing key unknown to trust root"
	default:
		return "validation failed"
	}
}

// SkipVisitor is the no-op terminal sink original_source's
// visitors::skip.rs supplies for subcommands (`discover`, `scan`) that
// must not touch the filesystem or a remote endpoint.
func SkipVisitor(context.Context, *model.VerifiedDocument) error { return nil }
