// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package retriever implements the walker's C6 component: fetching a
// document's body and whatever sidecars (SHA256, SHA512, signature)
// are present, without judging their validity — that is
// [github.com/csaf-poc/csaf_distribution/v3/internal/trust]'s job.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// defaultMaxBodySize is the spec's default body-size limit (256 MiB).
const defaultMaxBodySize = 256 * 1024 * 1024

// ErrBodyTooLarge is returned when a document body exceeds MaxBodySize.
var ErrBodyTooLarge = errors.New("retriever: body too large")

// Retriever fetches a [model.DocumentReference]'s body and sidecars.
type Retriever struct {
	Fetcher *fetch.Fetcher
	Logger  *slog.Logger
	// MaxBodySize bounds a document body's size. Zero uses the
	// spec's default of 256 MiB.
	MaxBodySize int64
}

// New creates a Retriever.
func New(fetcher *fetch.Fetcher, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{Fetcher: fetcher, Logger: logger, MaxBodySize: defaultMaxBodySize}
}

// Retrieve fetches ref's body, then its sidecars. A sidecar that fails
// to fetch or parse is logged and left absent on the result — the
// failure only becomes fatal if the Validator later requires it.
func (r *Retriever) Retrieve(ctx context.Context, ref model.DocumentReference) (*model.RetrievedDocument, error) {
	body, header, err := r.Fetcher.Bytes(ref.URL, fetch.Options{})
	if err != nil {
		return nil, err
	}

	maxSize := r.MaxBodySize
	if maxSize <= 0 {
		maxSize = defaultMaxBodySize
	}
	if int64(len(body)) > maxSize {
		return nil, fmt.Errorf("%w: %s: %d bytes exceeds limit of %d", ErrBodyTooLarge, ref.URL, len(body), maxSize)
	}

	doc := &model.RetrievedDocument{
		Reference: ref,
		Body:      body,
		Header:    header,
	}

	if ref.SHA256URL != "" {
		if sum, err := r.loadHash(ref.SHA256URL); err != nil {
			r.Logger.Warn("cannot fetch sha256 sidecar", "url", ref.SHA256URL, "error", err)
		} else {
			doc.SHA256 = sum
		}
	}
	if ref.SHA512URL != "" {
		if sum, err := r.loadHash(ref.SHA512URL); err != nil {
			r.Logger.Warn("cannot fetch sha512 sidecar", "url", ref.SHA512URL, "error", err)
		} else {
			doc.SHA512 = sum
		}
	}
	if ref.SignURL != "" {
		if sig, err := r.loadSignature(ref.SignURL); err != nil {
			r.Logger.Warn("cannot fetch signature sidecar", "url", ref.SignURL, "error", err)
		} else {
			doc.Signature = sig
		}
	}

	return doc, nil
}

// loadHash fetches and hex-decodes a ".sha256"/".sha512" sidecar,
// which conventionally holds "<hex digest> <filename>".
func (r *Retriever) loadHash(url string) ([]byte, error) {
	text, _, err := r.Fetcher.Text(url, fetch.Options{})
	if err != nil {
		return nil, err
	}
	return util.HashFromReader(strings.NewReader(text))
}

// loadSignature fetches an armored detached ".asc" signature sidecar.
func (r *Retriever) loadSignature(url string) ([]byte, error) {
	body, _, err := r.Fetcher.Bytes(url, fetch.Options{})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Result pairs a fetched document with the error that prevented it,
// for a worker pool to report individually.
type Result struct {
	Reference model.DocumentReference
	Document  *model.RetrievedDocument
	Err       error
}

// RetrieveAll fetches every reference with workers concurrent workers,
// returning one Result per reference in no particular order. A
// workers value below 1 is treated as 1.
func (r *Retriever) RetrieveAll(ctx context.Context, refs []model.DocumentReference, workers int) []Result {
	if workers < 1 {
		workers = 1
	}

	in := make(chan model.DocumentReference)
	out := make(chan Result)

	go func() {
		defer close(in)
		for _, ref := range refs {
			select {
			case in <- ref:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for ref := range in {
				doc, err := r.Retrieve(ctx, ref)
				select {
				case out <- Result{Reference: ref, Document: doc, Err: err}:
				case <-ctx.Done():
				}
			}
			done <- struct{}{}
		}()
	}

	results := make([]Result, 0, len(refs))
	go func() {
		for i := 0; i < workers; i++ {
			<-done
		}
		close(out)
	}()
	for res := range out {
		results = append(results, res)
	}
	return results
}
