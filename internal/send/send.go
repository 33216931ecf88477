// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package send implements the walker's C10 component: POSTing a
// verified document's body to a remote ingestion endpoint, per §4.10.
// Unlike [github.com/csaf-poc/csaf_distribution/v3/cmd/csaf_uploader]'s
// multipart form upload to the legacy provider-side endpoint, this is
// the spec's plain "body verbatim, one Content-Type header" wire shape
// — no envelope, no validation-status field.
package send

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

const (
	defaultMaxRetries     = 5
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 60 * time.Second
)

// Sink POSTs verified documents to Endpoint. 2xx is success; 4xx is a
// permanent failure that is logged and not retried; 5xx and transport
// errors are retried with the same exponential-backoff shape as
// [internal/fetch.Fetcher].
type Sink struct {
	Client   util.Client
	Endpoint string
	// Auth, if non-empty, is sent as the Authorization header value,
	// conventionally populated from an environment variable per §6.
	Auth   string
	Logger *slog.Logger

	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Sleep is used between retries. Defaults to time.Sleep; tests
	// substitute a no-op.
	Sleep func(time.Duration)
}

// New creates a Sink.
func New(client util.Client, endpoint, auth string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		Client:   client,
		Endpoint: endpoint,
		Auth:     auth,
		Logger:   logger,
		Sleep:    time.Sleep,
	}
}

func (s *Sink) withDefaults() (maxRetries int, initial, maxBackoff time.Duration) {
	maxRetries = s.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	initial = s.InitialBackoff
	if initial == 0 {
		initial = defaultInitialBackoff
	}
	maxBackoff = s.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = defaultMaxBackoff
	}
	return
}

// ErrPermanent wraps a 4xx response, so callers can tell a rejected
// document from one that merely ran out of retries.
type ErrPermanent struct {
	StatusCode int
	Body       string
}

func (e *ErrPermanent) Error() string {
	return fmt.Sprintf("send: permanent failure: status %d: %s", e.StatusCode, e.Body)
}

// Sink implements [walker.SinkFunc]: POST doc.Body to s.Endpoint with
// a Content-Type derived from the document's [model.Kind].
func (s *Sink) Sink(ctx context.Context, doc *model.VerifiedDocument) error {
	maxRetries, backoff, maxBackoff := s.withDefaults()
	contentType := doc.Reference.Kind.ContentType()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			s.Logger.Debug("retrying send", "url", s.Endpoint, "attempt", attempt)
			s.sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(doc.Body))
		if err != nil {
			return fmt.Errorf("send: build request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		if s.Auth != "" {
			req.Header.Set("Authorization", s.Auth)
		}

		resp, err := s.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			s.Logger.Debug("send succeeded", "url", s.Endpoint, "document", doc.Reference.ID)
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return &ErrPermanent{StatusCode: resp.StatusCode, Body: string(body)}
		default:
			lastErr = fmt.Errorf("send: server error %s: %s", resp.Status, string(body))
		}
	}

	return fmt.Errorf("send: %s: exhausted retries: %w", s.Endpoint, lastErr)
}

func (s *Sink) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}
