// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

//go:build linux

package store

import "golang.org/x/sys/unix"

// setOriginAttrs stamps the origin URL and ETag onto path's extended
// attributes, so an operator with `getfattr` can recover where a file
// came from; [source.FileSource], which backs `scan`, does not read
// them. Values are hex-encoded since ETags may carry
// quote characters some xattr implementations reject.
func setOriginAttrs(path, url, etag string) error {
	if url != "" {
		if err := unix.Setxattr(path, originURLXattr, []byte(hexEncode(url)), 0); err != nil {
			return err
		}
	}
	if etag != "" {
		if err := unix.Setxattr(path, originETagXattr, []byte(hexEncode(etag)), 0); err != nil {
			return err
		}
	}
	return nil
}
