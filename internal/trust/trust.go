// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package trust implements the walker's C7 component: comparing a
// retrieved document's digests against its sidecars and verifying its
// detached OpenPGP signature against a trust root, gated by a dated
// algorithm policy.
package trust

import (
	"bytes"
	stdcrypto "crypto"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"golang.org/x/crypto/openpgp/packet"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

// weakAlgorithmCutoff is the date the CSAF ecosystem settled on for
// retiring SHA-1 digests and v3 signature packets. A Policy whose Date
// is on or after this no longer accepts them unless AllowWeak is set.
var weakAlgorithmCutoff = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Policy controls which OpenPGP signature algorithms are acceptable.
type Policy struct {
	// Date is the reference date the policy is evaluated as of. The
	// zero value means "now". Tests and the --policy-date flag (if a
	// caller wants reproducible runs) set this explicitly.
	Date time.Time
	// AllowWeak mirrors the `-3` / --allow-weak-algorithms CLI flag:
	// accept SHA-1 digests and version-3 signature packets that the
	// dated policy would otherwise reject.
	AllowWeak bool
}

func (p Policy) referenceDate() time.Time {
	if p.Date.IsZero() {
		return time.Now()
	}
	return p.Date
}

// allowsWeak reports whether SHA-1/v3 signatures are acceptable under
// this policy: either because the flag says so, or because the
// reference date predates the cutoff.
func (p Policy) allowsWeak() bool {
	return p.AllowWeak || p.referenceDate().Before(weakAlgorithmCutoff)
}

// TrustRoot is a keyring of OpenPGP keys addressable by fingerprint,
// the set of keys a Validator will accept signatures from.
type TrustRoot struct {
	keyring      *crypto.KeyRing
	fingerprints map[string]bool
}

// NewTrustRoot creates an empty TrustRoot.
func NewTrustRoot() *TrustRoot {
	return &TrustRoot{fingerprints: map[string]bool{}}
}

// AddArmoredKey adds the key armored in data to the trust root, after
// checking its fingerprint matches want (case-insensitively), the same
// check the teacher's provider-metadata key loader performs before
// trusting a downloaded public key.
func (tr *TrustRoot) AddArmoredKey(armored, want string) error {
	key, err := crypto.NewKeyFromArmored(armored)
	if err != nil {
		return err
	}
	if want != "" && !strings.EqualFold(key.GetFingerprint(), want) {
		return errMismatch(want, key.GetFingerprint())
	}
	if tr.keyring == nil {
		kr, err := crypto.NewKeyRing(key)
		if err != nil {
			return err
		}
		tr.keyring = kr
	} else if err := tr.keyring.AddKey(key); err != nil {
		return err
	}
	tr.fingerprints[strings.ToLower(key.GetFingerprint())] = true
	return nil
}

// Known reports whether fingerprint is in the trust root.
func (tr *TrustRoot) Known(fingerprint string) bool {
	return tr.fingerprints[strings.ToLower(fingerprint)]
}

// Validator checks a [model.RetrievedDocument]'s digests and signature.
type Validator struct {
	Trust  *TrustRoot
	Policy Policy
}

// New creates a Validator.
func New(trust *TrustRoot, policy Policy) *Validator {
	return &Validator{Trust: trust, Policy: policy}
}

// Validate runs the digest and signature checks and returns the first
// failure, or [model.Valid] if every present artifact checked out and
// at least one cryptographic artifact (digest or signature) was
// present.
func (v *Validator) Validate(doc *model.RetrievedDocument) model.ValidationResult {
	sawArtifact := false

	if len(doc.SHA256) > 0 {
		sawArtifact = true
		sum := sha256.Sum256(doc.Body)
		if subtle.ConstantTimeCompare(sum[:], doc.SHA256) != 1 {
			return model.ValidationResult{
				Outcome:  model.DigestMismatch,
				Kind:     model.SHA256Digest,
				Expected: hex.EncodeToString(doc.SHA256),
				Actual:   hex.EncodeToString(sum[:]),
			}
		}
	}
	if len(doc.SHA512) > 0 {
		sawArtifact = true
		sum := sha512.Sum512(doc.Body)
		if subtle.ConstantTimeCompare(sum[:], doc.SHA512) != 1 {
			return model.ValidationResult{
				Outcome:  model.DigestMismatch,
				Kind:     model.SHA512Digest,
				Expected: hex.EncodeToString(doc.SHA512),
				Actual:   hex.EncodeToString(sum[:]),
			}
		}
	}

	if len(doc.Signature) == 0 {
		if sawArtifact {
			return model.ValidationResult{Outcome: model.Valid}
		}
		return model.ValidationResult{Outcome: model.NoSignature}
	}

	sig, err := crypto.NewPGPSignatureFromArmored(string(doc.Signature))
	if err != nil {
		return model.ValidationResult{Outcome: model.SignatureInvalid, Reason: err.Error()}
	}

	if !v.Policy.allowsWeak() {
		if weak, reason := isWeak(sig); weak {
			return model.ValidationResult{Outcome: model.PolicyRejected, Reason: reason}
		}
	}

	if v.Trust == nil || v.Trust.keyring == nil {
		return model.ValidationResult{Outcome: model.NoKey}
	}

	pm := crypto.NewPlainMessage(doc.Body)
	if err := v.Trust.keyring.VerifyDetached(pm, sig, crypto.GetUnixTime()); err != nil {
		return model.ValidationResult{Outcome: model.SignatureInvalid, Reason: err.Error()}
	}

	return model.ValidationResult{Outcome: model.Valid}
}

// isWeak inspects the raw signature packet for the algorithms the
// dated policy retires: a version-3 packet, or a version-4+ packet
// hashed with SHA-1.
func isWeak(sig *crypto.PGPSignature) (bool, string) {
	p, err := packet.Read(bytes.NewReader(sig.GetBinary()))
	if err != nil {
		return false, ""
	}
	switch s := p.(type) {
	case *packet.SignatureV3:
		return true, "version 3 signature packet"
	case *packet.Signature:
		if s.Hash == stdcrypto.SHA1 {
			return true, "SHA-1 digest signature"
		}
	}
	return false, ""
}

type mismatchError struct{ want, got string }

func (e *mismatchError) Error() string {
	return "fingerprint mismatch: want " + e.want + ", got " + e.got
}

func errMismatch(want, got string) error { return &mismatchError{want, got} }

// ErrTrustRootUnavailable is returned by [Load] when not a single
// advertised key could be fetched and verified — per §4.7, this
// aborts the run rather than degrading every signature check to
// [model.NoKey].
var ErrTrustRootUnavailable = errors.New("trust: no usable key could be loaded")

// KeyFetcher fetches the armored OpenPGP key at url. Its signature
// matches [*internal/fetch.Fetcher.Text] so callers pass that method
// directly.
type KeyFetcher func(url string) (string, error)

// Load builds a TrustRoot from the key locators advertised by provider
// metadata, fetching each with fetchKey. A key whose fingerprint does
// not match its locator is logged and skipped rather than aborting the
// whole load — an upstream typo in one key must not deny every other
// key in the same provider.
func Load(keys []model.KeyLocator, fetchKey KeyFetcher, logger *slog.Logger) (*TrustRoot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tr := NewTrustRoot()
	for _, k := range keys {
		armored, err := fetchKey(k.URL)
		if err != nil {
			logger.Warn("cannot fetch trust key", "url", k.URL, "fingerprint", k.Fingerprint, "error", err)
			continue
		}
		if err := tr.AddArmoredKey(armored, k.Fingerprint); err != nil {
			logger.Warn("cannot add trust key", "url", k.URL, "fingerprint", k.Fingerprint, "error", err)
			continue
		}
	}
	if len(keys) > 0 && tr.keyring == nil {
		return nil, ErrTrustRootUnavailable
	}
	return tr, nil
}

// Fingerprints returns every fingerprint currently in the trust root,
// the set the Storage Sink exports to keys/<fingerprint>.asc.
func (tr *TrustRoot) Fingerprints() []string {
	out := make([]string, 0, len(tr.fingerprints))
	for fp := range tr.fingerprints {
		out = append(out, fp)
	}
	return out
}

// Armored returns the armored form of the key with fingerprint fp, for
// the Storage Sink's keys/<fingerprint>.asc export.
func (tr *TrustRoot) Armored(fp string) (string, error) {
	if tr.keyring == nil {
		return "", errors.New("trust: empty trust root")
	}
	for _, k := range tr.keyring.GetKeys() {
		if strings.EqualFold(k.GetFingerprint(), fp) {
			return k.Armor()
		}
	}
	return "", fmt.Errorf("trust: unknown fingerprint %q", fp)
}
