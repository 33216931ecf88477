// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/csaf-poc/csaf_distribution/v3/internal/changes"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

// FileSource is the other half of the tagged-variant Source pair: it
// replays a directory the walker previously wrote, reading its
// changes.csv instead of talking to the network. It backs the `scan`
// subcommand's ability to re-verify an already-mirrored tree.
type FileSource struct {
	// Root is the tree's content root, holding changes.csv alongside
	// the mirrored documents.
	Root string
	Kind model.Kind
}

// NewFileSource creates a FileSource rooted at root.
func NewFileSource(root string, kind model.Kind) *FileSource {
	return &FileSource{Root: root, Kind: kind}
}

// Enumerate reads changes.csv from Root and turns each entry into a
// DocumentReference pointing at the local file, with sidecar paths
// derived the same way the Storage Sink lays them out.
func (fs *FileSource) Enumerate(ctx context.Context) ([]model.DocumentReference, error) {
	f, err := os.Open(filepath.Join(fs.Root, "changes.csv"))
	if err != nil {
		return nil, fmt.Errorf("source: open changes.csv: %w", err)
	}
	defer f.Close()

	entries, err := changes.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("source: parse changes.csv: %w", err)
	}

	refs := make([]model.DocumentReference, 0, len(entries))
	for _, e := range entries {
		if ctx.Err() != nil {
			return refs, ctx.Err()
		}
		path := filepath.Join(fs.Root, filepath.FromSlash(e.URL))
		refs = append(refs, model.DocumentReference{
			Kind:      fs.Kind,
			ID:        e.URL,
			URL:       "file://" + path,
			SHA256URL: "file://" + path + ".sha256",
			SHA512URL: "file://" + path + ".sha512",
			SignURL:   "file://" + path + ".asc",
		})
	}
	return refs, nil
}
