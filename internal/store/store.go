// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package store implements the walker's C9 component: a filesystem
// Storage Sink that lays a mirrored tree out under a root directory,
// maintains changes.csv, and exports trusted OpenPGP keys.
package store

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/csaf-poc/csaf_distribution/v3/internal/changes"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/internal/trust"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// Store writes verified documents into a mirror tree rooted at Root,
// each document at Root/<Reference.ID>, the same layout
// [source.FileSource] reads back for the `scan` subcommand.
type Store struct {
	// Root is the mirror's top-level directory.
	Root string
	// Logger receives per-document write diagnostics.
	Logger *slog.Logger

	mu      sync.Mutex
	entries []changes.Entry
	lock    *flock.Flock
}

// Open acquires an exclusive lock on root (via a `.lock` file
// alongside changes.csv, the same convention csaf_aggregator's
// `-lock-file` flag uses for a shared directory) and loads any
// existing changes.csv so concurrent runs against the same root fail
// fast rather than interleave writes.
func Open(root string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: create root: %w", err)
	}

	fl := flock.New(filepath.Join(root, ".lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("store: acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("store: %s is locked by another run", root)
	}

	s := &Store{Root: root, Logger: logger, lock: fl}

	changesPath := filepath.Join(root, "changes.csv")
	if f, err := os.Open(changesPath); err == nil {
		entries, perr := changes.Parse(f)
		f.Close()
		if perr != nil {
			s.lock.Unlock()
			return nil, fmt.Errorf("store: read existing changes.csv: %w", perr)
		}
		s.entries = entries
	} else if !os.IsNotExist(err) {
		s.lock.Unlock()
		return nil, fmt.Errorf("store: open existing changes.csv: %w", err)
	}

	return s, nil
}

// Close releases the root lock.
func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Sink implements [walker.SinkFunc].
func (s *Store) Sink(_ context.Context, doc *model.VerifiedDocument) error {
	rel := filepath.FromSlash(doc.Reference.ID)
	dest := filepath.Join(s.Root, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("store: mkdir for %s: %w", doc.Reference.ID, err)
	}

	if err := writeAtomic(dest, doc.Body); err != nil {
		return fmt.Errorf("store: write %s: %w", doc.Reference.ID, err)
	}
	if len(doc.SHA256) > 0 {
		if err := util.WriteHashSumToFile(dest+".sha256", filepath.Base(dest), doc.SHA256); err != nil {
			return fmt.Errorf("store: write sha256 sidecar: %w", err)
		}
	}
	if len(doc.SHA512) > 0 {
		if err := util.WriteHashSumToFile(dest+".sha512", filepath.Base(dest), doc.SHA512); err != nil {
			return fmt.Errorf("store: write sha512 sidecar: %w", err)
		}
	}
	if len(doc.Signature) > 0 {
		if err := writeAtomic(dest+".asc", doc.Signature); err != nil {
			return fmt.Errorf("store: write signature sidecar: %w", err)
		}
	}

	if err := setOriginAttrs(dest, doc.Reference.URL, doc.Header.Get("ETag")); err != nil {
		s.Logger.Warn("store: xattr round-trip failed", "path", dest, "error", err)
	}

	changed := doc.Reference.Published
	if changed.IsZero() {
		changed = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, changes.Entry{URL: doc.Reference.ID, Time: changed})
	return s.rewriteChangesLocked()
}

// rewriteChangesLocked deduplicates and sorts the accumulated entries
// before rewriting changes.csv, the same last-write-wins/descending
// convention [changes.Dedup]/[changes.SortDescending] implement for
// reading a provider's own feed.
func (s *Store) rewriteChangesLocked() error {
	entries := changes.Dedup(s.entries)
	changes.SortDescending(entries)
	s.entries = entries

	dest := filepath.Join(s.Root, "changes.csv")
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create changes.csv temp file: %w", err)
	}
	if err := changes.Write(f, entries); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write changes.csv: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// ExportKeys writes every fingerprint in root's armored form to
// <Root>/keys/<fingerprint>.asc, so a downstream mirror of this mirror
// can rebuild the same trust root without contacting the original
// provider.
func (s *Store) ExportKeys(root *trust.TrustRoot) error {
	dir := filepath.Join(s.Root, "keys")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir keys: %w", err)
	}
	for _, fp := range root.Fingerprints() {
		armored, err := root.Armored(fp)
		if err != nil {
			return fmt.Errorf("store: armor key %s: %w", fp, err)
		}
		name := filepath.Join(dir, fp+".asc")
		if err := writeAtomic(name, []byte(armored)); err != nil {
			return fmt.Errorf("store: write key %s: %w", fp, err)
		}
	}
	return nil
}

// writeAtomic writes data to a uniquely-named temp file beside path
// and renames it into place, so a reader ([source.FileSource],
// another process tailing the tree) never observes a partial write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpName, f, err := util.MakeUniqFile(filepath.Join(dir, ".tmp-"+filepath.Base(path)))
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		os.Remove(tmpName)
		return werr
	}
	if cerr != nil {
		os.Remove(tmpName)
		return cerr
	}
	return os.Rename(tmpName, path)
}

// originURLXattr/originETagXattr are the extended attribute names
// setOriginAttrs writes. The names are used as-is; the values stored
// under them are hex-encoded with hexEncode, mirroring
// original_source's own hex-encoding of the stored value.
const (
	originURLXattr  = "user.csaf.origin-url"
	originETagXattr = "user.csaf.origin-etag"
)

func hexEncode(s string) string { return hex.EncodeToString([]byte(s)) }
