package walkr

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/walkr-io/walkr/internal/analysis"
	"github.com/walkr-io/walkr/internal/config"
	"github.com/walkr-io/walkr/internal/dbrules"
	"github.com/walkr-io/walkr/internal/graph"
	"github.com/walkr-io/walkr/internal/pysrc"
	"github.com/walkr-io/walkr/internal/report"
	"github.com/walkr-io/walkr/internal/store"
)

// Engine orchestrates the walkr pipeline: file discovery, extraction,
// graph construction, and the analysis passes.
type Engine struct {
	cfg   *config.Config
	rules *dbrules.RuleSet
	log   *log.Logger
	cache *store.Store

	cachePath   string
	useParallel bool
	workers     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default logs warnings and
// above to stderr; the CLI passes its own.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// WithCache enables the SQLite extraction cache at dbPath. Unchanged files
// are served from the cache instead of being reparsed; a cached run must
// produce byte-identical reports to a cold one.
func WithCache(dbPath string) Option {
	return func(e *Engine) {
		e.cachePath = dbPath
	}
}

// WithParallel controls parallel extraction. When true (default), Analyze
// uses a worker pool for parsing, with serial preparation and merge phases
// around it. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithWorkers caps the extraction worker pool. Values below one fall back
// to the number of CPUs.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates an Engine from cfg, which may be nil for the built-in
// defaults. The configuration is validated and every classifier pattern
// compiled up front; a broken configuration fails here, before any file is
// touched.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("walkr: %w", err)
	}
	rules, err := dbrules.Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("walkr: %w", err)
	}

	e := &Engine{
		cfg:         cfg,
		rules:       rules,
		log:         log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel}),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.NumCPU()
	}
	if e.cachePath != "" {
		s, err := store.NewStore(e.cachePath)
		if err != nil {
			return nil, fmt.Errorf("walkr: %w", err)
		}
		e.cache = s
	}
	return e, nil
}

// Close releases the Engine's cache resources, if any.
func (e *Engine) Close() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Close()
}

// DiscoverFiles walks root and returns the Python source files to analyze,
// sorted by path. A file or directory whose path contains any configured
// ignore fragment is skipped.
func (e *Engine) DiscoverFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && e.ignored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		if e.ignored(filepath.ToSlash(path)) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walkr: discover %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (e *Engine) ignored(s string) bool {
	for _, frag := range e.cfg.Ignores {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}

// Analyze discovers the Python files under root and analyzes them.
func (e *Engine) Analyze(ctx context.Context, root string) (*report.Report, error) {
	paths, err := e.DiscoverFiles(root)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeFiles(ctx, root, paths)
}

// sourceFile is one prepared input: contents read, module name derived,
// cache key computed.
type sourceFile struct {
	path   string
	module string
	data   []byte
	hash   string
}

// AnalyzeFiles runs the full pipeline over the given files and returns the
// report. A file that cannot be read or parsed is recorded as a failure and
// excluded from the graphs; it never aborts the run. The report is fully
// deterministic for a given input set, independent of path order, worker
// count, or cache state.
func (e *Engine) AnalyzeFiles(ctx context.Context, root string, paths []string) (*report.Report, error) {
	// ---- Phase A: serial preparation ----
	var (
		sources  []sourceFile
		failures []report.ParseFailure
	)
	for _, path := range paths {
		module := moduleName(root, path)
		data, err := os.ReadFile(path)
		if err != nil {
			e.log.Warn("unreadable file", "path", path, "err", err)
			failures = append(failures, report.ParseFailure{
				Path:    path,
				Module:  module,
				Message: fmt.Sprintf("read: %v", err),
			})
			continue
		}
		sources = append(sources, sourceFile{
			path:   path,
			module: module,
			data:   data,
			hash:   store.ContentHash(data),
		})
	}

	// ---- Phase B: extraction ----
	var (
		records []*report.FileRecord
		err     error
	)
	if e.useParallel {
		records, err = e.extractParallel(ctx, sources)
	} else {
		records, err = e.extractSerial(ctx, sources)
	}
	if err != nil {
		return nil, err
	}

	// ---- Phase C: serial merge and analysis ----
	var modules []*report.ModuleNode
	for _, rec := range records {
		if rec.Failure != nil {
			e.log.Warn("parse failure", "path", rec.Path, "line", rec.Failure.Line)
			failures = append(failures, *rec.Failure)
			continue
		}
		modules = append(modules, rec.Module)
	}

	moduleGraph, callGraph, cycles, err := graph.Build(modules)
	if err != nil {
		return nil, fmt.Errorf("walkr: %w", err)
	}

	in := report.Input{
		Root:     root,
		Modules:  moduleGraph,
		Calls:    callGraph,
		Cycles:   cycles,
		Failures: failures,
	}
	if e.cfg.EnableComplexity {
		in.Complexity = analysis.ScoreComplexity(callGraph.Functions, analysis.Thresholds{
			MaxFunctionLength:  e.cfg.MaxFunctionLength,
			MaxComplexityScore: e.cfg.MaxComplexityScore,
			MaxParameterCount:  e.cfg.MaxParameterCount,
		})
	}
	if e.cfg.EnableDocCoverage {
		in.DocCoverage, in.DocGaps, in.ProjectDocs = analysis.DocCoverage(moduleGraph.Modules)
	} else {
		in.ProjectDocs = 1.0
	}
	if e.cfg.EnableDBDetection {
		in.DBFindings = e.rules.Findings(moduleGraph.Modules)
	}

	if e.cache != nil {
		keep := make([]string, len(sources))
		for i, src := range sources {
			keep[i] = src.path
		}
		if err := e.cache.Prune(keep); err != nil {
			e.log.Warn("cache prune", "err", err)
		}
	}

	r := report.Aggregate(in)
	e.log.Info("analysis complete",
		"files", r.Summary.TotalFiles,
		"failed", r.Summary.FailedFiles,
		"functions", r.Summary.TotalFunctions,
		"violations", r.Summary.TotalViolations)
	return r, nil
}

func (e *Engine) extractSerial(ctx context.Context, sources []sourceFile) ([]*report.FileRecord, error) {
	records := make([]*report.FileRecord, len(sources))
	for i, src := range sources {
		rec, err := e.extractOne(ctx, src)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// extractOne serves one file from the cache when its content hash matches,
// falling back to a fresh parse. Only successful records are cached; a
// broken file is reparsed on every run.
func (e *Engine) extractOne(ctx context.Context, src sourceFile) (*report.FileRecord, error) {
	if e.cache != nil {
		mod, ok, err := e.cache.Lookup(src.path, src.hash)
		if err != nil {
			e.log.Warn("cache lookup", "path", src.path, "err", err)
		} else if ok && mod.Name == src.module {
			return &report.FileRecord{Path: src.path, Module: mod}, nil
		}
		// A hit whose module name disagrees was written under a different
		// scan root; reusing it would misattribute every qualified name
		// downstream, so it falls through to a fresh parse.
	}

	rec, err := pysrc.Extract(ctx, src.path, src.module, src.data)
	if err != nil {
		return nil, fmt.Errorf("walkr: extract %s: %w", src.path, err)
	}
	if e.cache != nil && rec.Module != nil {
		if err := e.cache.Save(src.path, src.hash, rec.Module); err != nil {
			e.log.Warn("cache save", "path", src.path, "err", err)
		}
	}
	return rec, nil
}

// moduleName derives the dotted module name from a file path relative to
// the scan root. A package __init__.py takes its directory's name; one at
// the root takes the root directory's name.
func moduleName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	name := strings.ReplaceAll(filepath.ToSlash(strings.TrimSuffix(rel, ".py")), "/", ".")
	if name == "__init__" {
		return filepath.Base(root)
	}
	return strings.TrimSuffix(name, ".__init__")
}
