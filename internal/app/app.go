// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2024 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2024 Intevation GmbH <https://intevation.de>

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/csaf-poc/csaf_distribution/v3/csaf"
	"github.com/csaf-poc/csaf_distribution/v3/internal/changes"
	"github.com/csaf-poc/csaf_distribution/v3/internal/discovery"
	"github.com/csaf-poc/csaf_distribution/v3/internal/fetch"
	"github.com/csaf-poc/csaf_distribution/v3/internal/model"
	"github.com/csaf-poc/csaf_distribution/v3/internal/report"
	"github.com/csaf-poc/csaf_distribution/v3/internal/retriever"
	"github.com/csaf-poc/csaf_distribution/v3/internal/send"
	"github.com/csaf-poc/csaf_distribution/v3/internal/source"
	"github.com/csaf-poc/csaf_distribution/v3/internal/store"
	"github.com/csaf-poc/csaf_distribution/v3/internal/trust"
	"github.com/csaf-poc/csaf_distribution/v3/internal/verify"
	"github.com/csaf-poc/csaf_distribution/v3/internal/walker"
	"github.com/csaf-poc/csaf_distribution/v3/util"
)

// Exit codes per the CLI surface's shared convention.
const (
	ExitSuccess              = 0
	ExitPartialFailure       = 1
	ExitUsage                = 2
	ExitTrustRootUnavailable = 3
	ExitNetworkFailure       = 4
)

// Main is the shared entry point for the csaf and sbom binaries; kind
// is the only thing that differs between them. It never itself calls
// os.Exit so tests can invoke it directly; cmd/csaf and cmd/sbom's
// main() do that with the returned code.
func Main(kind model.Kind) int {
	binary := kind.String()

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <command> [options...] <source> [endpoint]\n", binary)
		fmt.Fprintln(os.Stderr, "commands: discover, download, sync, scan, report, send, parse, metadata")
		return ExitUsage
	}

	command := os.Args[1]
	args, cfg, err := parseConfig(binary, os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitUsage
	}

	if err := cfg.compileIgnorePatterns(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitUsage
	}

	logger := newLogger(cfg)
	a := &runner{cfg: cfg, kind: kind, logger: logger}

	var code int
	switch command {
	case "discover":
		code, err = a.discover(args)
	case "download":
		code, err = a.download(args)
	case "sync":
		code, err = a.sync(args)
	case "scan":
		code, err = a.scan(args)
	case "report":
		code, err = a.report(args)
	case "send":
		code, err = a.send(args)
	case "parse":
		code, err = a.parse(args)
	case "metadata":
		code, err = a.metadata(args)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", binary, command)
		return ExitUsage
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", binary, command, err)
	}
	return code
}

func newLogger(cfg *Config) *slog.Logger {
	level := cfg.LogLevel.Level
	if cfg.Verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// runner holds the per-invocation state every subcommand method needs.
type runner struct {
	cfg    *Config
	kind   model.Kind
	logger *slog.Logger
}

func (a *runner) requireArg(args []string, n int, name string) (string, error) {
	if len(args) <= n {
		return "", fmt.Errorf("missing required argument: %s", name)
	}
	return args[n], nil
}

// resolvedSource is either a freshly-discovered network provider (pmd
// non-nil) or a previously-mirrored local tree (root non-empty).
type resolvedSource struct {
	src  source.Source
	pmd  *model.ProviderMetadata
	root string
}

// openSource builds a [source.Source] for input: an existing local
// directory is replayed via [source.FileSource] (the `scan`/`report`
// workflow re-checking an already-mirrored tree); anything else is
// handed to [discovery.Discoverer.Resolve] and crawled with
// [source.HTTPSource].
func (a *runner) openSource(ctx context.Context, input string) (*resolvedSource, *fetch.Fetcher, error) {
	client, err := a.cfg.buildClient()
	if err != nil {
		return nil, nil, err
	}
	fetcher := fetch.New(client, a.logger)

	if fi, err := os.Stat(input); err == nil && fi.IsDir() {
		return &resolvedSource{
			src:  source.NewFileSource(input, a.kind),
			root: input,
		}, fetcher, nil
	}

	d := discovery.New(fetcher, a.logger)
	pmd, err := d.Resolve(ctx, input, a.kind)
	if err != nil {
		return nil, nil, err
	}
	return &resolvedSource{
		src: source.NewHTTPSource(fetcher, pmd, a.logger),
		pmd: pmd,
	}, fetcher, nil
}

// buildTrust loads a TrustRoot either from the resolved provider
// metadata's advertised keys (network sources) or from a previously
// mirrored tree's keys/ export (local sources) — the round trip
// [store.Store.ExportKeys] was written to support.
func (a *runner) buildTrust(rs *resolvedSource, fetcher *fetch.Fetcher) (*trust.TrustRoot, error) {
	if rs.pmd != nil {
		return trust.Load(rs.pmd.Keys, func(url string) (string, error) {
			text, _, err := fetcher.Text(url, fetch.Options{})
			return text, err
		}, a.logger)
	}
	if rs.root == "" {
		return trust.NewTrustRoot(), nil
	}
	tr := trust.NewTrustRoot()
	entries, err := os.ReadDir(filepath.Join(rs.root, "keys"))
	if err != nil {
		if os.IsNotExist(err) {
			return tr, nil
		}
		return nil, fmt.Errorf("app: read keys directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".asc") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(rs.root, "keys", e.Name()))
		if err != nil {
			return nil, err
		}
		if err := tr.AddArmoredKey(string(data), ""); err != nil {
			a.logger.Warn("app: rejecting local key", "file", e.Name(), "error", err)
		}
	}
	return tr, nil
}

// openRemoteValidator opens the `optional` rule set's remote validator
// service per --validator/--validatorcache/--validatorpreset, or
// returns a nil RemoteValidator if --validator was not given.
func (a *runner) openRemoteValidator() (csaf.RemoteValidator, error) {
	if a.cfg.RemoteValidator == "" {
		return nil, nil
	}
	opts := csaf.RemoteValidatorOptions{
		URL:     a.cfg.RemoteValidator,
		Presets: a.cfg.RemoteValidatorPresets,
		Cache:   a.cfg.RemoteValidatorCache,
	}
	rv, err := opts.Open()
	if err != nil {
		return nil, fmt.Errorf("app: open remote validator: %w", err)
	}
	return csaf.SynchronizedRemoteValidator(rv), nil
}

func (a *runner) policy() trust.Policy {
	p := trust.Policy{AllowWeak: a.cfg.AllowWeak}
	if a.cfg.PolicyDate != "" {
		if t, err := time.Parse(time.RFC3339, a.cfg.PolicyDate); err == nil {
			p.Date = t
		}
	}
	return p
}

// applyTracker filters refs per §4.4: --since, a --since-file cursor,
// and (for a network source mirrored into -d before) the local mtime
// short-circuit.
func (a *runner) applyTracker(ctx context.Context, rs *resolvedSource, fetcher *fetch.Fetcher, refs []model.DocumentReference) ([]model.DocumentReference, error) {
	var since time.Time
	if a.cfg.Since != "" {
		t, err := time.Parse(time.RFC3339, a.cfg.Since)
		if err != nil {
			return nil, fmt.Errorf("app: parse --since: %w", err)
		}
		since = t
	}

	var cursor *changes.CursorStore
	cursorKey := rs.source()
	if a.cfg.SinceFile != "" {
		cs, err := changes.OpenCursorStore(a.cfg.SinceFile)
		if err != nil {
			return nil, err
		}
		defer cs.Close()
		cursor = cs
		if since.IsZero() {
			if t, ok, err := cs.Get(cursorKey); err == nil && ok {
				since = t
			}
		}
	}

	refs = changes.FilterByAge(refs, a.cfg.Range)

	if rs.pmd != nil && rs.pmd.Distributions != nil {
		var remoteEntries []changes.Entry
		for _, dist := range rs.pmd.Distributions {
			if dist.DirectoryURL == "" {
				continue
			}
			u := util.JoinURLPath(mustParseURL(dist.DirectoryURL), "changes.csv").String()
			entries, err := changes.FetchRemote(fetcher, u)
			if err != nil {
				a.logger.Debug("app: no changes.csv for distribution", "url", u, "error", err)
				continue
			}
			remoteEntries = append(remoteEntries, entries...)
		}
		tracker := changes.NewTracker(remoteEntries, a.cfg.Directory)
		refs = tracker.Filter(refs, since)
	}

	filtered := refs[:0:0]
	for _, ref := range refs {
		if a.cfg.ignoreURL(ref.URL) {
			continue
		}
		filtered = append(filtered, ref)
	}

	if cursor != nil {
		newest := since
		for _, ref := range filtered {
			if ref.Published.After(newest) {
				newest = ref.Published
			}
		}
		if !newest.IsZero() {
			if err := cursor.Set(cursorKey, newest); err != nil {
				a.logger.Warn("app: could not update --since-file cursor", "error", err)
			}
		}
	}

	return filtered, nil
}

func (rs *resolvedSource) source() string {
	if rs.pmd != nil {
		return rs.pmd.URL
	}
	return rs.root
}

func exitCode(res walker.Result, err error) int {
	if err != nil {
		if errors.Is(err, trust.ErrTrustRootUnavailable) {
			return ExitTrustRootUnavailable
		}
		if strings.Contains(err.Error(), "exhausted retries") {
			return ExitNetworkFailure
		}
		return ExitPartialFailure
	}
	if res.Failed > 0 {
		return ExitPartialFailure
	}
	return ExitSuccess
}

// discover implements the `discover <source>` subcommand: print one
// URL per discovered document, applying only the change-tracking
// filters (no retrieval, no validation).
func (a *runner) discover(args []string) (int, error) {
	ctx := context.Background()
	input, err := a.requireArg(args, 0, "source")
	if err != nil {
		return ExitUsage, err
	}

	rs, fetcher, err := a.openSource(ctx, input)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}
	refs, err := rs.src.Enumerate(ctx)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}
	refs, err = a.applyTracker(ctx, rs, fetcher, refs)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}
	for _, ref := range refs {
		fmt.Println(ref.URL)
	}
	return ExitSuccess, nil
}

// download implements `download <source>`: mirror bodies and sidecars
// verbatim, with no digest/signature validation at all.
func (a *runner) download(args []string) (int, error) {
	ctx := context.Background()
	input, err := a.requireArg(args, 0, "source")
	if err != nil {
		return ExitUsage, err
	}
	if a.cfg.Directory == "" {
		return ExitUsage, errors.New("download requires -d/--directory")
	}

	rs, fetcher, err := a.openSource(ctx, input)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}

	st, err := store.Open(a.cfg.Directory, a.logger)
	if err != nil {
		return ExitUsage, err
	}
	defer st.Close()

	retr := retriever.New(fetcher, a.logger)
	pipeline := walker.NewPipeline(retr.Retrieve).WithSink(st.Sink)

	return a.run(ctx, rs, fetcher, pipeline, nil)
}

// sync implements `sync <source>`: download then validate, skipping
// (by failing the per-document Visit, which never reaches the Sink)
// anything that does not check out.
func (a *runner) sync(args []string) (int, error) {
	ctx := context.Background()
	input, err := a.requireArg(args, 0, "source")
	if err != nil {
		return ExitUsage, err
	}
	if a.cfg.Directory == "" {
		return ExitUsage, errors.New("sync requires -d/--directory")
	}

	rs, fetcher, err := a.openSource(ctx, input)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}

	tr, err := a.buildTrust(rs, fetcher)
	if err != nil {
		return ExitTrustRootUnavailable, err
	}

	st, err := store.Open(a.cfg.Directory, a.logger)
	if err != nil {
		return ExitUsage, err
	}
	defer st.Close()
	if err := st.ExportKeys(tr); err != nil {
		a.logger.Warn("app: could not export trust keys", "error", err)
	}

	retr := retriever.New(fetcher, a.logger)
	validator := trust.New(tr, a.policy())

	pipeline := walker.NewPipeline(retr.Retrieve).
		WithValidate(func(_ context.Context, doc *model.RetrievedDocument) (*model.ValidatedDocument, error) {
			return &model.ValidatedDocument{RetrievedDocument: *doc, Validation: validator.Validate(doc)}, nil
		}).
		RequireSignature(a.kind == model.CSAF).
		WithSink(st.Sink)

	return a.run(ctx, rs, fetcher, pipeline, nil)
}

// scan implements `scan <source>`: validate and verify entirely in
// memory, writing nothing, and emit the accumulated findings as JSON.
func (a *runner) scan(args []string) (int, error) {
	ctx := context.Background()
	input, err := a.requireArg(args, 0, "source")
	if err != nil {
		return ExitUsage, err
	}

	acc, code, err := a.scanInto(ctx, input)
	if err != nil {
		return code, err
	}
	if err := acc.Report().WriteJSON(os.Stdout); err != nil {
		return ExitPartialFailure, err
	}
	return code, nil
}

// report implements `report <source>`: the same in-memory validate +
// verify pass as scan, rendered as the §4.11 text/HTML summary instead
// of raw JSON findings.
func (a *runner) report(args []string) (int, error) {
	ctx := context.Background()
	input, err := a.requireArg(args, 0, "source")
	if err != nil {
		return ExitUsage, err
	}

	acc, code, err := a.scanInto(ctx, input)
	if err != nil {
		return code, err
	}
	format := report.FormatText
	if a.cfg.Full {
		format = report.FormatHTML
	}
	if err := acc.Report().Write(format, a.cfg.Output); err != nil {
		return ExitPartialFailure, err
	}
	return code, nil
}

// scanInto runs the shared validate+verify (no sink) pipeline that
// backs both `scan` and `report`, returning the populated Accumulator.
func (a *runner) scanInto(ctx context.Context, input string) (*report.Accumulator, int, error) {
	rs, fetcher, err := a.openSource(ctx, input)
	if err != nil {
		return nil, exitCode(walker.Result{}, err), err
	}

	tr, err := a.buildTrust(rs, fetcher)
	if err != nil {
		return nil, ExitTrustRootUnavailable, err
	}

	remote, err := a.openRemoteValidator()
	if err != nil {
		return nil, ExitUsage, err
	}
	if remote != nil {
		defer remote.Close()
	}

	retr := retriever.New(fetcher, a.logger)
	validator := trust.New(tr, a.policy())
	verifier, err := verify.New(verify.Options{
		RuleSets: a.cfg.Validations,
		Ignore:   a.cfg.ignorePattern,
		Remote:   remote,
	}, a.logger)
	if err != nil {
		return nil, ExitUsage, err
	}

	acc := report.New(a.kind, rs.source())

	pipeline := walker.NewPipeline(retr.Retrieve).
		WithValidate(func(_ context.Context, doc *model.RetrievedDocument) (*model.ValidatedDocument, error) {
			return &model.ValidatedDocument{RetrievedDocument: *doc, Validation: validator.Validate(doc)}, nil
		}).
		WithVerify(verifier.Verify).
		WithSink(func(_ context.Context, doc *model.VerifiedDocument) error {
			acc.AttachFindings(doc)
			return nil
		})

	// acc.Observe is wired only to the Walker's terminal-transition
	// Observer, not also to the Pipeline's per-stage one — the latter
	// fires at every intermediate state change within one Visit call,
	// which would double-count the same document's terminal state.
	code, err := a.run(ctx, rs, fetcher, pipeline, acc.Observe)
	return acc, code, err
}

// send implements `send <source> <endpoint>`: validate, then POST
// every forwardable document to endpoint.
func (a *runner) send(args []string) (int, error) {
	ctx := context.Background()
	input, err := a.requireArg(args, 0, "source")
	if err != nil {
		return ExitUsage, err
	}
	endpoint := a.cfg.Endpoint
	if endpoint == "" {
		if len(args) < 2 {
			return ExitUsage, errors.New("missing required argument: endpoint")
		}
		endpoint = args[1]
	}

	rs, fetcher, err := a.openSource(ctx, input)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}

	tr, err := a.buildTrust(rs, fetcher)
	if err != nil {
		return ExitTrustRootUnavailable, err
	}

	client, err := a.cfg.buildClient()
	if err != nil {
		return ExitUsage, err
	}

	if err := a.cfg.prepareInteractiveAuth(); err != nil {
		return ExitUsage, err
	}

	retr := retriever.New(fetcher, a.logger)
	validator := trust.New(tr, a.policy())
	sink := send.New(client, endpoint, a.cfg.resolveAuth(), a.logger)
	sink.MaxRetries = a.cfg.Retries

	pipeline := walker.NewPipeline(retr.Retrieve).
		WithValidate(func(_ context.Context, doc *model.RetrievedDocument) (*model.ValidatedDocument, error) {
			return &model.ValidatedDocument{RetrievedDocument: *doc, Validation: validator.Validate(doc)}, nil
		}).
		RequireSignature(a.kind == model.CSAF).
		WithSink(sink.Sink)

	return a.run(ctx, rs, fetcher, pipeline, nil)
}

// parse implements `parse <path>`: a structural parse of exactly one
// local document, outside the walker pipeline entirely (there is
// nothing to discover, retrieve or validate — just a single file).
func (a *runner) parse(args []string) (int, error) {
	path, err := a.requireArg(args, 0, "path")
	if err != nil {
		return ExitUsage, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return ExitPartialFailure, err
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return ExitPartialFailure, fmt.Errorf("parse: %s: invalid JSON: %w", path, err)
	}

	verifier, err := verify.New(verify.Options{RuleSets: []string{verify.RuleSetSchema}}, a.logger)
	if err != nil {
		return ExitUsage, err
	}
	doc := &model.ValidatedDocument{RetrievedDocument: model.RetrievedDocument{
		Reference: model.DocumentReference{Kind: a.kind, ID: filepath.Base(path), URL: "file://" + path},
		Body:      body,
	}}
	verified, err := verifier.Verify(context.Background(), doc)
	if err != nil {
		return ExitPartialFailure, err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(verified.Findings); err != nil {
		return ExitPartialFailure, err
	}
	if verified.HasErrors() {
		return ExitPartialFailure, nil
	}
	return ExitSuccess, nil
}

// metadata implements `metadata <source>`: resolve and print the
// discovered provider-metadata document.
func (a *runner) metadata(args []string) (int, error) {
	ctx := context.Background()
	input, err := a.requireArg(args, 0, "source")
	if err != nil {
		return ExitUsage, err
	}

	client, err := a.cfg.buildClient()
	if err != nil {
		return ExitUsage, err
	}
	fetcher := fetch.New(client, a.logger)
	d := discovery.New(fetcher, a.logger)
	pmd, err := d.Resolve(ctx, input, a.kind)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return ExitSuccess, enc.Encode(pmd.Raw)
}

// run enumerates rs, filters by the change tracker and drives the
// pipeline with a Walker configured per -w/--worker.
func (a *runner) run(ctx context.Context, rs *resolvedSource, fetcher *fetch.Fetcher, pipeline *walker.Pipeline, extraObserve walker.Observer) (int, error) {
	refs, err := rs.src.Enumerate(ctx)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}
	refs, err = a.applyTracker(ctx, rs, fetcher, refs)
	if err != nil {
		return exitCode(walker.Result{}, err), err
	}

	w := walker.New(source.Static(refs), pipeline.Visit, walker.Config{Concurrency: a.cfg.Worker}, a.logger)
	w.Observe = extraObserve
	res, err := w.Run(ctx)
	return exitCode(res, err), err
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
