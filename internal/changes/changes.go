// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package changes implements the walker's C4 component: reading and
// writing changes.csv, and tracking the "last seen" cursor used by
// --since and --since-file to skip documents a prior run already
// mirrored.
package changes

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// Epoch is the timestamp substituted for an entry whose changes.csv
// row carries no parseable time.
var Epoch = time.Unix(0, 0).UTC()

// TimeLayout is the timestamp format used in changes.csv rows.
const TimeLayout = time.RFC3339

// Entry is one row of changes.csv: a document URL and the time it was
// last changed, as the provider reports it.
type Entry struct {
	URL  string
	Time time.Time
}

// Parse reads changes.csv-formatted records from r. A row with an
// unparseable or missing second field is kept with Time set to Epoch
// rather than dropped, so a malformed row cannot hide a document from
// later filtering.
func Parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var entries []Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("changes: parse: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		e := Entry{URL: record[0], Time: Epoch}
		if len(record) > 1 {
			if t, err := time.Parse(TimeLayout, record[1]); err == nil {
				e.Time = t
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Write serializes entries to w in changes.csv's fully-quoted format.
func Write(w io.Writer, entries []Entry) error {
	cw := util.NewFullyQuotedCSWWriter(w)
	for _, e := range entries {
		if err := cw.Write([]string{e.URL, e.Time.UTC().Format(TimeLayout)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Dedup collapses entries with the same URL, keeping the one that
// occurs last in the slice — changes.csv's own tie-break rule, since a
// provider may list a re-published document more than once.
func Dedup(entries []Entry) []Entry {
	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.URL] = i
	}
	keep := make([]bool, len(entries))
	for _, i := range last {
		keep[i] = true
	}
	out := make([]Entry, 0, len(last))
	for i, e := range entries {
		if keep[i] {
			out = append(out, e)
		}
	}
	return out
}

// SortDescending orders entries by Time, most recent first, the order
// changes.csv is conventionally rewritten in.
func SortDescending(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})
}

// Filter keeps only the entries strictly newer than since. Passing the
// zero Time (no prior cursor) keeps everything.
func Filter(entries []Entry, since time.Time) []Entry {
	if since.IsZero() {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Time.After(since) {
			out = append(out, e)
		}
	}
	return out
}
