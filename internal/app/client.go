// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package app

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/csaf-poc/csaf_distribution/v3/internal/certs"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// buildClient assembles the decorated [util.Client] every subcommand
// retrieves the network through: TLS client-cert auth, optional
// insecure-skip-verify, extra headers, rate limiting, and logging —
// layered the same way csaf_downloader's httpClient does, outermost
// decorator wrapping the next.
//
// It also registers a "file" protocol on the underlying transport so
// [github.com/csaf-poc/csaf_distribution/v3/internal/source.FileSource]'s
// file:// document references are fetchable through the same
// [internal/fetch.Fetcher] as an HTTP source, rather than needing a
// parallel code path. No third-party module in the retrieved pack
// offers a file:// RoundTripper, so this one piece stays on
// net/http's own http.NewFileTransport.
func (cfg *Config) buildClient() (util.Client, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.Insecure} //nolint:gosec // operator opt-in via --insecure

	tlsCerts, err := certs.LoadCertificate(cfg.ClientCert, cfg.ClientKey, cfg.ClientPassphrase)
	if err != nil {
		return nil, err
	}
	tlsConfig.Certificates = tlsCerts

	transport := &http.Transport{TLSClientConfig: tlsConfig}
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	var client util.Client = &http.Client{Transport: transport}

	if len(cfg.ExtraHeader) > 0 {
		client = &util.HeaderClient{Client: client, Header: cfg.ExtraHeader}
	}

	if cfg.Rate != nil && *cfg.Rate > 0 {
		client = &util.LimitingClient{Client: client, Limiter: rate.NewLimiter(rate.Limit(*cfg.Rate), 1)}
	}

	if cfg.Verbose {
		client = &util.LoggingClient{Client: client}
	}

	return client, nil
}

// resolveAuth expands cfg.Auth's "@ENVVAR" indirection, the same
// convention csaf_uploader uses so an Authorization token need not
// appear in a TOML config file or process listing in plain text. When
// --auth-interactive is set, the prompted-and-hashed password from
// prepareInteractiveAuth takes precedence over --auth entirely.
func (cfg *Config) resolveAuth() string {
	if cfg.AuthInteractive {
		return cfg.cachedAuth
	}
	if strings.HasPrefix(cfg.Auth, "@") {
		return os.Getenv(strings.TrimPrefix(cfg.Auth, "@"))
	}
	return cfg.Auth
}

// prepareInteractiveAuth prompts for the send auth password on the
// terminal and bcrypt-hashes it into cachedAuth, the same
// readInteractive/preparePassword split csaf_uploader's config uses to
// keep a plaintext password out of both the TOML file and the process
// argument list.
func (cfg *Config) prepareInteractiveAuth() error {
	if !cfg.AuthInteractive {
		return nil
	}
	fmt.Print("Enter auth password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read auth password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash auth password: %w", err)
	}
	cfg.cachedAuth = string(hash)
	return nil
}
