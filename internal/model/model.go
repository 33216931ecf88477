// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package model holds the data types shared by every stage of the
// walker pipeline: discovery, source enumeration, retrieval,
// validation and verification.
package model

import (
	"fmt"
	"net/http"
	"time"
)

// Kind distinguishes the two document families the walker mirrors.
// The pipeline stages are identical for both; only the discovery
// root, schema and a handful of content checks differ by Kind.
type Kind int

const (
	// CSAF is the Common Security Advisory Framework.
	CSAF Kind = iota
	// SBOM is a Software Bill of Materials (CycloneDX or SPDX).
	SBOM
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case CSAF:
		return "csaf"
	case SBOM:
		return "sbom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// WellKnownPath is the `.well-known` suffix used by discovery step (1).
func (k Kind) WellKnownPath() string {
	return "/.well-known/" + k.String() + "/provider-metadata.json"
}

// SecurityTXTField is the field security.txt entries carry for this kind.
func (k Kind) SecurityTXTField() string {
	switch k {
	case SBOM:
		return "SBOM"
	default:
		return "CSAF"
	}
}

// ContentType is the HTTP content type used for Send Sink requests.
func (k Kind) ContentType() string {
	if k == SBOM {
		return "application/vnd.cyclonedx+json"
	}
	return "application/json"
}

// KeyLocator is a public-key URL/fingerprint pair as advertised by
// provider metadata.
type KeyLocator struct {
	URL         string
	Fingerprint string // 40+ char hex, lower or upper case.
}

// Distribution is one logical feed within a provider metadata
// document: either a ROLIE feed URL or a directory listing URL.
type Distribution struct {
	ROLIEFeedURL string
	DirectoryURL string
}

// Publisher identifies who issues the documents behind a provider.
type Publisher struct {
	Name      string
	Namespace string
}

// ProviderMetadata is the root index resolved by Discovery.
//
// Unlike [github.com/csaf-poc/csaf_distribution/v3/csaf.ProviderMetadata],
// which is the strict, schema-validated CSAF 2.0 type, this is the
// generic shape the walker needs to drive Source enumeration for
// either Kind, extracted from the raw document via JSONPath.
type ProviderMetadata struct {
	// Kind is the document family this metadata was resolved for.
	Kind Kind
	// URL is the location the document was found at.
	URL string
	// CanonicalURL is the `canonical_url` field, if present.
	CanonicalURL  string
	Publisher     Publisher
	Keys          []KeyLocator
	Distributions []Distribution
	// Raw is the decoded JSON document, kept for content-level lookups
	// (e.g. the Verifier re-reading fields the generic shape dropped).
	Raw any
}

// Valid reports whether pmd carries at least one distribution, per
// the ProviderMetadata invariant.
func (pmd *ProviderMetadata) Valid() bool {
	return pmd != nil && len(pmd.Distributions) > 0
}

// DocumentReference is a pending item to retrieve: the absolute URL
// of a document plus the (possibly absent) sidecar URLs and the
// logical identifier assigned to it by the provider.
type DocumentReference struct {
	Kind Kind
	// ID is the provider-assigned path, relative to the content root.
	ID string
	// URL is the absolute URL of the document body.
	URL string
	// SHA256URL, SHA512URL, SignURL are the sidecar URLs, empty if the
	// source has no opinion on where they would live.
	SHA256URL string
	SHA512URL string
	SignURL   string
	// Publisher is the distribution context this reference came from.
	Publisher Publisher
	// Published is the ROLIE entry's `updated` timestamp, if the
	// source enumerated it from a feed. Zero when unknown (e.g. a
	// directory-index listing, which carries no per-entry date).
	Published time.Time
}

// RetrievedDocument is a DocumentReference's bytes plus whichever
// sidecars were actually present.
type RetrievedDocument struct {
	Reference DocumentReference
	Body      []byte
	SHA256    []byte // hex-decoded, nil if absent
	SHA512    []byte // hex-decoded, nil if absent
	Signature []byte // armored detached signature, nil if absent
	// Header carries the upstream response metadata, notably
	// Last-Modified and ETag.
	Header http.Header
}

// DigestKind names which digest a DigestMismatch outcome refers to.
type DigestKind int

const (
	// SHA256Digest is the sha256 sidecar.
	SHA256Digest DigestKind = iota
	// SHA512Digest is the sha512 sidecar.
	SHA512Digest
)

// String implements fmt.Stringer.
func (dk DigestKind) String() string {
	if dk == SHA512Digest {
		return "sha512"
	}
	return "sha256"
}

// Outcome enumerates the results the Validator can produce for a
// RetrievedDocument.
type Outcome int

const (
	// Valid means every present integrity artifact checked out and at
	// least one cryptographic artifact was present.
	Valid Outcome = iota
	// DigestMismatch means a present digest did not match the body.
	DigestMismatch
	// SignatureInvalid means a present signature failed verification.
	SignatureInvalid
	// NoSignature means no signature sidecar was present.
	NoSignature
	// NoKey means the signature's key fingerprint is unknown to the
	// trust root.
	NoKey
	// PolicyRejected means the signature used algorithms the dated
	// policy disallows.
	PolicyRejected
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case DigestMismatch:
		return "digest-mismatch"
	case SignatureInvalid:
		return "signature-invalid"
	case NoSignature:
		return "no-signature"
	case NoKey:
		return "no-key"
	case PolicyRejected:
		return "policy-rejected"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ValidationResult carries the Outcome plus whatever detail applies to it.
type ValidationResult struct {
	Outcome  Outcome
	Kind     DigestKind // only meaningful for DigestMismatch
	Expected string
	Actual   string
	Reason   string // SignatureInvalid / PolicyRejected detail
}

// Forwardable reports whether a ValidationResult is good enough to
// hand to a Sink, given whether signatures are required.
func (vr ValidationResult) Forwardable(requireSignature bool) bool {
	switch vr.Outcome {
	case Valid:
		return true
	case NoSignature:
		return !requireSignature
	default:
		return false
	}
}

// ValidatedDocument is a RetrievedDocument whose integrity artifacts
// have been checked.
type ValidatedDocument struct {
	RetrievedDocument
	Validation ValidationResult
}

// Severity classifies a content finding.
type Severity int

const (
	// Error is a hard content-check failure.
	Error Severity = iota
	// Warning is a soft content-check failure.
	Warning
	// Note is informational.
	Note
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Finding is one result emitted by a content check.
type Finding struct {
	Check    string
	Severity Severity
	Message  string
	Path     string // JSON path into the document, if applicable
}

// VerifiedDocument is a ValidatedDocument augmented with content findings.
type VerifiedDocument struct {
	ValidatedDocument
	Findings []Finding
}

// HasErrors reports whether any finding is of Error severity.
func (vd *VerifiedDocument) HasErrors() bool {
	for i := range vd.Findings {
		if vd.Findings[i].Severity == Error {
			return true
		}
	}
	return false
}

// State is a position in the per-document state machine of §4.11.
type State int

const (
	Discovered State = iota
	Filtered
	Retrieving
	Retrieved
	Validating
	Validated
	Verifying
	Verified
	Sunk
	Skipped
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Filtered:
		return "filtered"
	case Retrieving:
		return "retrieving"
	case Retrieved:
		return "retrieved"
	case Validating:
		return "validating"
	case Validated:
		return "validated"
	case Verifying:
		return "verifying"
	case Verified:
		return "verified"
	case Sunk:
		return "sunk"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition is one observed state change for a document, surfaced by
// the Walker to the Report.
type Transition struct {
	Reference DocumentReference
	From, To  State
	Err       error
	At        time.Time
}
