// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package changes

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var cursorBucket = []byte("cursors")

// CursorStore persists the --since-file cursor: the timestamp of the
// newest document each tracked source has already handed to the
// walker. A bbolt database is used instead of a bare text file so two
// binaries sharing a `-d` directory (e.g. a CSAF and an SBOM mirror
// pointed at the same root) don't corrupt each other's cursor with a
// concurrent overwrite.
type CursorStore struct {
	db *bbolt.DB
}

// OpenCursorStore opens (creating if necessary) the cursor database at
// path.
func OpenCursorStore(path string) (*CursorStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("changes: open cursor store: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cursorBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("changes: init cursor store: %w", err)
	}
	return &CursorStore{db: db}, nil
}

// Close closes the underlying database.
func (cs *CursorStore) Close() error {
	return cs.db.Close()
}

// Get returns the stored cursor for key, and whether one was present.
func (cs *CursorStore) Get(key string) (time.Time, bool, error) {
	var (
		t     time.Time
		found bool
	)
	err := cs.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(cursorBucket)
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		parsed, err := time.Parse(TimeLayout, string(v))
		if err != nil {
			return fmt.Errorf("changes: corrupt cursor for %q: %w", key, err)
		}
		t, found = parsed, true
		return nil
	})
	return t, found, err
}

// Set stores t as key's cursor, but only if t is newer than whatever
// is already stored — a Set from a run that discovered fewer documents
// than a previous one must never move the cursor backwards.
func (cs *CursorStore) Set(key string, t time.Time) error {
	return cs.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(cursorBucket)
		if v := b.Get([]byte(key)); v != nil {
			if existing, err := time.Parse(TimeLayout, string(v)); err == nil && !t.After(existing) {
				return nil
			}
		}
		return b.Put([]byte(key), []byte(t.UTC().Format(TimeLayout)))
	})
}
