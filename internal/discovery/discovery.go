// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package discovery implements the walker's C2 component: resolving a
// bare domain to a provider-metadata document via the well-known path,
// the security.txt fallback and, failing both, a DNS TXT record.
package discovery

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// ErrNoProviderMetadata is returned when none of the discovery steps
// located a usable provider-metadata document.
var ErrNoProviderMetadata = fmt.Errorf("discovery: no provider metadata found")

// LookupTXT resolves the TXT records of a DNS name. Its default is
// net.LookupTXT; tests substitute a stub.
type LookupTXT func(name string) ([]string, error)

// Discoverer resolves a domain to a [model.ProviderMetadata] for a
// given [model.Kind].
type Discoverer struct {
	Fetcher  *fetch.Fetcher
	PathEval *util.PathEval
	Lookup   LookupTXT
	Logger   *slog.Logger

	// candidateURLsFn overrides candidateURLs in tests, which cannot
	// otherwise point a fixed well-known path at an httptest.Server.
	candidateURLsFn func(domain string, kind model.Kind) ([]string, error)
}

// New creates a Discoverer.
func New(fetcher *fetch.Fetcher, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		Fetcher:  fetcher,
		PathEval: util.NewPathEval(),
		Lookup:   net.LookupTXT,
		Logger:   logger,
	}
}

// Resolve implements §4.2's full input dispatch: a direct http(s) URL
// to a provider-metadata document is fetched as-is; a file:// URL is
// read from the local filesystem; anything else is treated as a bare
// domain and handed to [Discoverer.Discover]'s well-known/security.txt/
// DNS chain. ctx is honored only by the bare-domain path, since the
// other two are single local/blocking operations.
func (d *Discoverer) Resolve(ctx context.Context, input string, kind model.Kind) (*model.ProviderMetadata, error) {
	u, err := url.Parse(input)
	if err == nil && u.IsAbs() {
		switch u.Scheme {
		case "http", "https":
			return d.load(input, kind)
		case "file":
			return d.loadFile(u, kind)
		}
	}
	return d.Discover(ctx, input, kind)
}

// loadFile reads a provider-metadata document from a file:// URL, the
// local-source counterpart to [Discoverer.load]'s HTTP fetch.
func (d *Discoverer) loadFile(u *url.URL, kind model.Kind) (*model.ProviderMetadata, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("discovery: read %s: %w", u, err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("discovery: parse %s: %w", u, err)
	}
	return d.project(u.String(), kind, raw), nil
}

// Discover resolves domain to provider metadata for kind, trying in
// order: the well-known path, security.txt, and a DNS TXT record at
// "_<kind>.<domain>". It returns the first candidate URL that yields a
// document satisfying [model.ProviderMetadata.Valid].
func (d *Discoverer) Discover(ctx context.Context, domain string, kind model.Kind) (*model.ProviderMetadata, error) {
	resolve := d.candidateURLsFn
	if resolve == nil {
		resolve = d.candidateURLs
	}
	candidates, err := resolve(domain, kind)
	if err != nil {
		d.Logger.Warn("discovery candidate collection failed", "domain", domain, "error", err)
	}

	var lastErr error
	for _, u := range candidates {
		pmd, err := d.load(u, kind)
		if err != nil {
			d.Logger.Debug("discovery candidate rejected", "url", u, "error", err)
			lastErr = err
			continue
		}
		if !pmd.Valid() {
			d.Logger.Debug("discovery candidate has no distributions", "url", u)
			continue
		}
		return pmd, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProviderMetadata, lastErr)
	}
	return nil, ErrNoProviderMetadata
}

// candidateURLs returns, in priority order, the provider-metadata URLs
// worth trying for domain: the well-known path always first, followed
// by whatever security.txt and DNS surface.
func (d *Discoverer) candidateURLs(domain string, kind model.Kind) ([]string, error) {
	var urls []string
	urls = append(urls, "https://"+domain+kind.WellKnownPath())

	if txtURLs, err := d.securityTXTURLs(domain, kind); err == nil {
		urls = append(urls, txtURLs...)
	}

	if d.Lookup != nil {
		if txtURLs, err := d.dnsURLs(domain, kind); err == nil {
			urls = append(urls, txtURLs...)
		}
	}

	return urls, nil
}

// securityTXTURLs fetches https://domain/.well-known/security.txt and
// extracts every line beginning with the kind's field name, per
// RFC 9116's extension mechanism.
func (d *Discoverer) securityTXTURLs(domain string, kind model.Kind) ([]string, error) {
	body, _, err := d.Fetcher.Text(
		"https://"+domain+"/.well-known/security.txt", fetch.Options{})
	if err != nil {
		return nil, err
	}
	return extractFieldURLs(strings.NewReader(body), kind.SecurityTXTField())
}

// extractFieldURLs scans r for lines "<field>: <url>". It is the
// kind-agnostic generalization of the CSAF-only security.txt scanner.
func extractFieldURLs(r *strings.Reader, field string) ([]string, error) {
	prefix := field + ":"
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, prefix) {
			urls = append(urls, strings.TrimSpace(line[len(prefix):]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// dnsURLs looks up a TXT record at "_<kind>.<domain>" and returns any
// values that look like an absolute provider-metadata URL.
func (d *Discoverer) dnsURLs(domain string, kind model.Kind) ([]string, error) {
	name := "_" + kind.String() + "." + domain
	records, err := d.Lookup(name)
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, rec := range records {
		rec = strings.TrimSpace(rec)
		if strings.HasPrefix(rec, "https://") {
			urls = append(urls, rec)
		}
	}
	return urls, nil
}

// load fetches u and projects it into a [model.ProviderMetadata] via
// JSONPath, so the same extraction works for both CSAF's strict schema
// and an SBOM provider's looser index document.
func (d *Discoverer) load(u string, kind model.Kind) (*model.ProviderMetadata, error) {
	var raw any
	if _, err := d.Fetcher.JSON(u, &raw, fetch.Options{}); err != nil {
		return nil, err
	}
	return d.project(u, kind, raw), nil
}

// project turns a decoded provider-metadata document into the generic
// [model.ProviderMetadata] shape, the JSONPath extraction both [load]
// (HTTP) and [loadFile] (file://) share.
func (d *Discoverer) project(u string, kind model.Kind, raw any) *model.ProviderMetadata {
	pmd := &model.ProviderMetadata{Kind: kind, URL: u, Raw: raw}

	_ = d.PathEval.Extract("$.canonical_url", util.StringMatcher(&pmd.CanonicalURL), false, raw)
	_ = d.PathEval.Extract("$.publisher.name", util.StringMatcher(&pmd.Publisher.Name), false, raw)
	_ = d.PathEval.Extract("$.publisher.namespace", util.StringMatcher(&pmd.Publisher.Namespace), false, raw)

	pmd.Keys = d.extractKeys(raw)
	pmd.Distributions = d.extractDistributions(raw)

	return pmd
}

func (d *Discoverer) extractKeys(raw any) []model.KeyLocator {
	fps, err := d.PathEval.Eval("$.pgp_keys[*].fingerprint", raw)
	if err != nil {
		return nil
	}
	urls, err := d.PathEval.Eval("$.pgp_keys[*].url", raw)
	if err != nil {
		return nil
	}
	fpStrs, ok1 := util.AsStrings(fps)
	urlStrs, ok2 := util.AsStrings(urls)
	if !ok1 || !ok2 || len(fpStrs) != len(urlStrs) {
		return nil
	}
	keys := make([]model.KeyLocator, len(fpStrs))
	for i := range fpStrs {
		keys[i] = model.KeyLocator{URL: urlStrs[i], Fingerprint: fpStrs[i]}
	}
	return keys
}

func (d *Discoverer) extractDistributions(raw any) []model.Distribution {
	var dists []model.Distribution

	if dirs, err := d.PathEval.Eval("$.distributions[*].directory_url", raw); err == nil {
		if strs, ok := util.AsStrings(dirs); ok {
			for _, s := range strs {
				dists = append(dists, model.Distribution{DirectoryURL: s})
			}
		}
	}

	if feeds, err := d.PathEval.Eval("$.distributions[*].rolie.feeds[*].url", raw); err == nil {
		if strs, ok := util.AsStrings(feeds); ok {
			for _, s := range strs {
				dists = append(dists, model.Distribution{ROLIEFeedURL: s})
			}
		}
	}

	return dists
}
