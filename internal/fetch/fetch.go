// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package fetch implements the walker's C1 Fetcher: retrying,
// conditional, decompressing HTTP GETs on top of [util.Client].
package fetch

import (
	"bytes"
	"compress/bzip2"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// ErrNotFound is returned when the remote answered 404.
var ErrNotFound = errors.New("fetch: not found")

// ErrNotModified is returned when the remote answered 304 for a
// conditional request.
var ErrNotModified = errors.New("fetch: not modified")

// Options configures a single Fetch call.
type Options struct {
	// IfModifiedSince, when non-zero, is sent as an If-Modified-Since header.
	IfModifiedSince time.Time
	// Accept is the value of the Accept header, if any.
	Accept string
	// MaxRetries bounds retry attempts on transport errors and 5xx. Zero uses the default.
	MaxRetries int
	// InitialBackoff is the first retry delay. Zero uses the default.
	InitialBackoff time.Duration
	// MaxBackoff caps the backoff. Zero uses the default.
	MaxBackoff time.Duration
}

const (
	defaultMaxRetries     = 5
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 60 * time.Second
)

func (o Options) withDefaults() Options {
	if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.InitialBackoff == 0 {
		o.InitialBackoff = defaultInitialBackoff
	}
	if o.MaxBackoff == 0 {
		o.MaxBackoff = defaultMaxBackoff
	}
	return o
}

// Fetcher performs HTTP GETs with retry, conditional requests and
// transparent decompression. It is stateless across calls except for
// the shared [util.Client] it wraps.
type Fetcher struct {
	Client util.Client
	Logger *slog.Logger
	// Sleep is used between retries. Defaults to time.Sleep; tests
	// substitute a no-op.
	Sleep func(time.Duration)
}

// New creates a Fetcher around client.
func New(client util.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{Client: client, Logger: logger, Sleep: time.Sleep}
}

// Bytes fetches url and returns the decompressed body.
func (f *Fetcher) Bytes(url string, opts Options) ([]byte, http.Header, error) {
	opts = opts.withDefaults()

	var lastErr error
	backoff := opts.InitialBackoff

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			f.Logger.Debug("retrying fetch", "url", url, "attempt", attempt)
			f.sleep(backoff)
			backoff *= 2
			if backoff > opts.MaxBackoff {
				backoff = opts.MaxBackoff
			}
		}

		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, nil, err
		}
		if opts.Accept != "" {
			req.Header.Set("Accept", opts.Accept)
		}
		if !opts.IfModifiedSince.IsZero() {
			req.Header.Set("If-Modified-Since", opts.IfModifiedSince.UTC().Format(http.TimeFormat))
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotModified:
			resp.Body.Close()
			return nil, resp.Header, ErrNotModified
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, resp.Header, ErrNotFound
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("fetch %s: server error %s", url, resp.Status)
			continue
		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			return nil, resp.Header, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
		}

		body, err := decompress(url, resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, resp.Header, fmt.Errorf("fetch %s: %w", url, err)
		}
		return body, resp.Header, nil
	}

	return nil, nil, fmt.Errorf("fetch %s: exhausted retries: %w", url, lastErr)
}

// Text fetches url and returns the body as a string.
func (f *Fetcher) Text(url string, opts Options) (string, http.Header, error) {
	b, h, err := f.Bytes(url, opts)
	if err != nil {
		return "", h, err
	}
	return string(b), h, nil
}

// JSON fetches url and decodes the body into dst.
func (f *Fetcher) JSON(url string, dst any, opts Options) (http.Header, error) {
	opts.Accept = "application/json"
	b, h, err := f.Bytes(url, opts)
	if err != nil {
		return h, err
	}
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(dst); err != nil {
		return h, fmt.Errorf("fetch %s: decode JSON: %w", url, err)
	}
	return h, nil
}

func (f *Fetcher) sleep(d time.Duration) {
	if f.Sleep != nil {
		f.Sleep(d)
		return
	}
	time.Sleep(d)
}

// decompress transparently decodes a response body whose URL suggests
// it is compressed. Unrecognized suffixes are passed through.
func decompress(url string, r io.Reader) ([]byte, error) {
	switch {
	case strings.HasSuffix(url, ".bz2"):
		return io.ReadAll(bzip2.NewReader(r))
	case strings.HasSuffix(url, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return io.ReadAll(xr)
	default:
		return io.ReadAll(r)
	}
}
