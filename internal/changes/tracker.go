// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package changes

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/internal/models"
)

// FilterByAge keeps only references whose ROLIE-advertised Published
// timestamp falls within tr, the same `--timerange` semantics
// [lib/downloader.Downloader] applies via AgeAccept. A reference with
// a zero Published time (a directory-index listing never carries one)
// is always kept — there is nothing to filter it by. A nil tr keeps
// everything.
func FilterByAge(refs []model.DocumentReference, tr *models.TimeRange) []model.DocumentReference {
	if tr == nil {
		return refs
	}
	out := make([]model.DocumentReference, 0, len(refs))
	for _, ref := range refs {
		if ref.Published.IsZero() || tr.Contains(ref.Published) {
			out = append(out, ref)
		}
	}
	return out
}

// FetchRemote fetches and parses the changes.csv published at url.
func FetchRemote(fetcher *fetch.Fetcher, url string) ([]Entry, error) {
	text, _, err := fetcher.Text(url, fetch.Options{})
	if err != nil {
		return nil, err
	}
	return Parse(strings.NewReader(text))
}

// Tracker applies §4.4's --since / --since-file / mtime-short-circuit
// filtering to a set of [model.DocumentReference]s.
type Tracker struct {
	// remote is the changes.csv state as last observed upstream,
	// keyed by the reference's logical ID (relative path).
	remote map[string]time.Time
	// LocalRoot is the content-tree root a prior run already wrote
	// to, if any. Empty disables the mtime short-circuit entirely.
	LocalRoot string
}

// NewTracker builds a Tracker from the (possibly duplicate-containing)
// remote changes.csv entries, applying last-occurrence-wins dedup.
func NewTracker(entries []Entry, localRoot string) *Tracker {
	remote := make(map[string]time.Time, len(entries))
	for _, e := range Dedup(entries) {
		remote[e.URL] = e.Time
	}
	return &Tracker{remote: remote, LocalRoot: localRoot}
}

// Accept reports whether ref should be retrieved this run.
//
// A reference with no entry at all in the remote changes.csv is always
// accepted — the provider's own log has no opinion on it, so it is
// "always newer than locally" per §4.4, and the mtime short-circuit
// below never applies to it. A reference with an entry (including one
// [Parse] substituted [Epoch] for, because its row was malformed) is
// subject to the normal --since cutoff and mtime comparison.
func (t *Tracker) Accept(ref model.DocumentReference, since time.Time) bool {
	changed, ok := t.remote[ref.ID]
	if !ok {
		return true
	}
	if !since.IsZero() && changed.Before(since) {
		return false
	}
	if t.LocalRoot != "" && since.IsZero() {
		path := filepath.Join(t.LocalRoot, filepath.FromSlash(ref.ID))
		if fi, err := os.Stat(path); err == nil && !fi.ModTime().Before(changed) {
			return false
		}
	}
	return true
}

// Filter keeps only the references t.Accept approves of.
func (t *Tracker) Filter(refs []model.DocumentReference, since time.Time) []model.DocumentReference {
	out := make([]model.DocumentReference, 0, len(refs))
	for _, ref := range refs {
		if t.Accept(ref, since) {
			out = append(out, ref)
		}
	}
	return out
}
