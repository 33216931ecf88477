// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Command sbom is the csaf binary's twin for Software Bills of
// Materials: the same discover/download/sync/scan/report/send/parse/
// metadata subcommands, driving [model.SBOM] documents (CycloneDX or
// SPDX) through the same walker pipeline instead of CSAF advisories.
package main

import (
	"os"

	"github.com/csaf-poc/csaf_distribution/v3/internal/app"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
)

func main() {
	os.Exit(app.Main(model.SBOM))
}
