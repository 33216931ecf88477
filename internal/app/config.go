// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

// Package app wires the walker pipeline (C1-C11) into the §6 CLI
// surface shared, subcommand-for-subcommand, by the csaf and sbom
// binaries. Only the [model.Kind] differs between the two; everything
// else — flags, config-file handling, client construction, pipeline
// assembly — is one shared implementation, grounded on
// [github.com/csaf-poc/csaf_distribution/v3/cmd/csaf_downloader]'s
// config/main split.
package app

import (
	"net/http"

	"github.com/csaf-poc/csaf_distribution/v3/internal/filter"
	"github.com/csaf-poc/csaf_distribution/v3/internal/models"
	"github.com/csaf-poc/csaf_distribution/v3/internal/options"
)

const (
	defaultWorker  = 4
	defaultPreset  = "mandatory"
	defaultRetries = 5
)

// Config is the flag/TOML-config shape shared by every subcommand. A
// given subcommand only reads the fields its own §6 table row lists;
// the rest sit unused, the same way csaf_downloader's config carries
// fields csaf_uploader never reads and vice versa — sharing one
// struct across subcommands is what lets the csaf/sbom binaries stay
// a single flag surface instead of eight divergent ones.
type Config struct {
	Directory string `short:"d" long:"directory" description:"DIRectory to store mirrored documents in" value-name:"DIR" toml:"directory"`

	Since     string            `long:"since" description:"Only consider documents changed at or after this RFC3339 TIME" value-name:"TIME" toml:"since"`
	SinceFile string            `long:"since-file" description:"FILE holding the cursor for --since, updated on success" value-name:"FILE" toml:"since_file"`
	Range     *models.TimeRange `long:"timerange" short:"t" description:"RANGE of time from which documents to consider" value-name:"RANGE" toml:"timerange"`

	AllowWeak  bool   `short:"3" long:"allow-weak-algorithms" description:"Accept SHA-1 digests and v3 signature packets" toml:"allow_weak_algorithms"`
	PolicyDate string `long:"policy-date" description:"Evaluate the crypto policy as of this RFC3339 DATE instead of now" value-name:"DATE" toml:"policy_date"`

	Ignore      []string `long:"ignore" description:"PATTERN to ignore: a URL pattern for sync/download, a check name for scan" value-name:"PATTERN" toml:"ignore"`
	Validations []string `long:"validations" description:"Restrict content checks to these named rule SETS (schema,mandatory,optional)" value-name:"SET" toml:"validations"`

	Output string `short:"o" long:"output" description:"FILE to write the report to, stdout if empty" value-name:"FILE" toml:"output"`
	Full   bool   `long:"full" description:"Render the HTML report instead of the text summary" toml:"full"`

	Endpoint        string `long:"endpoint" description:"URL of the remote ingestion endpoint for send" value-name:"URL" toml:"endpoint"`
	Auth            string `long:"auth" description:"Authorization header value, or @ENVVAR to read it from the environment" value-name:"VALUE" toml:"auth"`
	AuthInteractive bool   `long:"auth-interactive" description:"Prompt for the send auth password instead of reading --auth" toml:"auth_interactive"`
	Retries         int    `long:"retries" description:"Max send retry attempts" toml:"retries"`

	RemoteValidator        string   `long:"validator" description:"URL to validate documents remotely" value-name:"URL" toml:"validator"`
	RemoteValidatorCache   string   `long:"validatorcache" description:"FILE to cache remote validations" value-name:"FILE" toml:"validatorcache"`
	RemoteValidatorPresets []string `long:"validatorpreset" description:"PRESETS to validate remotely" toml:"validatorpreset"`

	Worker   int      `long:"worker" short:"w" description:"NUMber of concurrent pipeline invocations" value-name:"NUM" toml:"worker"`
	Rate     *float64 `long:"rate" short:"r" description:"Upper limit of HTTPS operations per second" toml:"rate"`
	Insecure bool     `long:"insecure" description:"Do not check TLS certificates" toml:"insecure"`

	ClientCert       *string `long:"client-cert" description:"TLS client certificate FILE" value-name:"FILE" toml:"client_cert"`
	ClientKey        *string `long:"client-key" description:"TLS client private key FILE" value-name:"FILE" toml:"client_key"`
	ClientPassphrase *string `long:"client-passphrase" description:"Passphrase for the client certificate" toml:"client_passphrase"`

	ExtraHeader http.Header `long:"header" short:"H" description:"Extra HTTP header fields" toml:"header"`

	Verbose    bool             `long:"verbose" short:"v" description:"Verbose output" toml:"verbose"`
	LogLevel   options.LogLevel `long:"log-level" description:"Minimum log LEVEL" value-name:"LEVEL" toml:"log_level"`
	Version    bool             `long:"version" description:"Display version of the binary" toml:"-"`
	ConfigFile string           `short:"c" long:"config" description:"Path to config TOML file" value-name:"TOML-FILE" toml:"-"`

	ignorePattern filter.PatternMatcher
	cachedAuth    string
}

// configPaths are the TOML config locations checked when -c is absent,
// parameterized by the binary name ("csaf" or "sbom") at call time.
func configPaths(binary string) []string {
	return []string{
		"~/.config/" + binary + "/config.toml",
		"~/." + binary + ".toml",
		binary + ".toml",
	}
}

// parseConfig parses args (conventionally os.Args[2:], after the
// subcommand word) for binary's Config, falling back to its TOML
// config file locations.
func parseConfig(binary string, args []string) ([]string, *Config, error) {
	p := options.Parser[Config]{
		DefaultConfigLocations: configPaths(binary),
		ConfigLocation:         func(cfg *Config) string { return cfg.ConfigFile },
		Usage:                  "[OPTIONS] <source> [endpoint]",
		HasVersion:             func(cfg *Config) bool { return cfg.Version },
		SetDefaults: func(cfg *Config) {
			cfg.Worker = defaultWorker
			cfg.Retries = defaultRetries
			cfg.RemoteValidatorPresets = []string{defaultPreset}
		},
		EnsureDefaults: func(cfg *Config) {
			if cfg.Worker == 0 {
				cfg.Worker = defaultWorker
			}
			if cfg.Retries == 0 {
				cfg.Retries = defaultRetries
			}
		},
	}
	return p.ParseArgs(args)
}

func (cfg *Config) compileIgnorePatterns() error {
	pm, err := filter.NewPatternMatcher(cfg.Ignore)
	if err != nil {
		return err
	}
	cfg.ignorePattern = pm
	return nil
}

func (cfg *Config) ignoreURL(u string) bool {
	return cfg.ignorePattern.Matches(u)
}
