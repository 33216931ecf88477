// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package source implements the walker's C3 component: turning a
// resolved [model.ProviderMetadata] into the concrete list of document
// references to retrieve, either by crawling ROLIE feeds / directory
// listings over HTTP, or by replaying a previously mirrored tree's
// changes.csv.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/csaf-poc/csaf_distribution/v3/csaf"
	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// Source enumerates the documents a provider currently offers.
// [HTTPSource] and [FileSource] are its two implementations, the
// tagged-variant pair SPEC_FULL.md's MODULE MAP names: one crawls the
// network, the other replays a tree the walker already wrote.
type Source interface {
	Enumerate(ctx context.Context) ([]model.DocumentReference, error)
}

// Static adapts an already-computed reference list to the Source
// interface, the shape needed once a caller has applied its own
// change-tracker filtering between enumeration and the Walker run.
type Static []model.DocumentReference

// Enumerate implements Source by returning s verbatim.
func (s Static) Enumerate(context.Context) ([]model.DocumentReference, error) {
	return []model.DocumentReference(s), nil
}

// HTTPSource enumerates documents by crawling a provider's ROLIE feeds
// or, failing that, its directory listings (`index.txt`).
type HTTPSource struct {
	Fetcher  *fetch.Fetcher
	Metadata *model.ProviderMetadata
	Logger   *slog.Logger
}

// NewHTTPSource creates an HTTPSource over metadata.
func NewHTTPSource(fetcher *fetch.Fetcher, metadata *model.ProviderMetadata, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		Fetcher:  fetcher,
		Metadata: metadata,
		Logger:   logger,
	}
}

// Enumerate visits every distribution in the provider metadata,
// deduplicating references by URL so a document listed in more than
// one feed is only emitted once.
func (s *HTTPSource) Enumerate(ctx context.Context) ([]model.DocumentReference, error) {
	seen := map[string]bool{}
	var refs []model.DocumentReference

	emit := func(ref model.DocumentReference) {
		if seen[ref.URL] {
			return
		}
		seen[ref.URL] = true
		refs = append(refs, ref)
	}

	for _, dist := range s.Metadata.Distributions {
		if ctx.Err() != nil {
			return refs, ctx.Err()
		}
		switch {
		case dist.ROLIEFeedURL != "":
			if err := s.fromROLIE(dist.ROLIEFeedURL, emit); err != nil {
				s.Logger.Warn("rolie feed failed", "url", dist.ROLIEFeedURL, "error", err)
			}
		case dist.DirectoryURL != "":
			if err := s.fromDirectory(dist.DirectoryURL, emit); err != nil {
				s.Logger.Warn("directory listing failed", "url", dist.DirectoryURL, "error", err)
			}
		}
	}

	if len(refs) == 0 {
		base, err := util.BaseURL(s.Metadata.URL)
		if err == nil {
			if err := s.fromDirectory(base, emit); err != nil {
				s.Logger.Warn("fallback directory listing failed", "url", base, "error", err)
			}
		}
	}

	return refs, nil
}

func (s *HTTPSource) fromROLIE(feedURL string, emit func(model.DocumentReference)) error {
	body, _, err := s.Fetcher.Bytes(feedURL, fetch.Options{Accept: "application/json"})
	if err != nil {
		return fmt.Errorf("source: fetch rolie feed %s: %w", feedURL, err)
	}
	feed, err := csaf.LoadROLIEFeed(strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("source: decode rolie feed %s: %w", feedURL, err)
	}

	feedBase, err := url.Parse(feedURL)
	if err != nil {
		return err
	}

	feed.Entries(func(entry *csaf.Entry) {
		ref := model.DocumentReference{
			Kind:      s.Metadata.Kind,
			Publisher: s.Metadata.Publisher,
			Published: time.Time(entry.Updated),
		}
		for i := range entry.Link {
			link := &entry.Link[i]
			resolved := resolve(feedBase, link.HRef)
			if resolved == "" {
				continue
			}
			switch link.Rel {
			case "self":
				ref.URL = resolved
			case "signature":
				ref.SignURL = resolved
			case "hash":
				lower := strings.ToLower(link.HRef)
				switch {
				case strings.HasSuffix(lower, ".sha256"):
					ref.SHA256URL = resolved
				case strings.HasSuffix(lower, ".sha512"):
					ref.SHA512URL = resolved
				}
			}
		}
		if ref.URL == "" {
			return
		}
		ref.ID = entry.ID
		if ref.SHA256URL == "" {
			ref.SHA256URL = ref.URL + ".sha256"
		}
		if ref.SignURL == "" {
			ref.SignURL = ref.URL + ".asc"
		}
		emit(ref)
	})
	return nil
}

func (s *HTTPSource) fromDirectory(dirURL string, emit func(model.DocumentReference)) error {
	body, _, err := s.Fetcher.Text(util.JoinURLPath(mustParseURL(dirURL), "index.txt").String(), fetch.Options{})
	if err != nil {
		s.Logger.Debug("source: no index.txt, falling back to HTML directory listing", "url", dirURL, "error", err)
		return s.fromHTMLListing(dirURL, emit)
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.emitListed(dirURL, line, emit)
	}
	return nil
}

// fromHTMLListing scrapes a plain Apache/nginx-style autoindex page for
// `<a href>` document names, the fallback for a provider directory that
// never publishes index.txt. Grounded on
// [github.com/csaf-poc/csaf_distribution/v3/cmd/csaf_checker]'s
// linksOnPage, which walks the same kind of page looking for whether a
// specific document is linked rather than enumerating every one.
func (s *HTTPSource) fromHTMLListing(dirURL string, emit func(model.DocumentReference)) error {
	body, _, err := s.Fetcher.Bytes(dirURL, fetch.Options{Accept: "text/html"})
	if err != nil {
		return fmt.Errorf("source: fetch directory listing %s: %w", dirURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("source: parse directory listing %s: %w", dirURL, err)
	}

	base, err := url.Parse(dirURL)
	if err != nil {
		return err
	}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !isDocumentLink(href) {
			return
		}
		s.emitListed(base.String(), href, emit)
	})
	return nil
}

// isDocumentLink filters an autoindex page's anchors down to the
// primary document files — never the .sha256/.sha512/.asc sidecars
// (those are derived from the primary URL, not separately enumerated)
// nor a parent-directory/query-string link.
func isDocumentLink(href string) bool {
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "../") || strings.HasSuffix(href, "/") {
		return false
	}
	lower := strings.ToLower(href)
	switch {
	case strings.HasSuffix(lower, ".sha256"), strings.HasSuffix(lower, ".sha512"), strings.HasSuffix(lower, ".asc"):
		return false
	}
	return strings.HasSuffix(lower, ".json")
}

// emitListed resolves name against dirURL and emits the
// DocumentReference with its conventional sidecar URLs, the shape both
// fromDirectory's index.txt path and fromHTMLListing's scrape produce.
func (s *HTTPSource) emitListed(dirURL, name string, emit func(model.DocumentReference)) {
	docURL := resolve(mustParseURL(dirURL), name)
	if docURL == "" {
		docURL = util.JoinURLPath(mustParseURL(dirURL), name).String()
	}
	emit(model.DocumentReference{
		Kind:      s.Metadata.Kind,
		ID:        name,
		URL:       docURL,
		SHA256URL: docURL + ".sha256",
		SHA512URL: docURL + ".sha512",
		SignURL:   docURL + ".asc",
		Publisher: s.Metadata.Publisher,
	})
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
