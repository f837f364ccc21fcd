package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/walkr-io/walkr"
	"github.com/walkr-io/walkr/internal/config"
	"github.com/walkr-io/walkr/internal/export"
)

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "walkr",
	Short:         "Static structure analysis for Python codebases",
	Long:          "Walkr parses a Python project with tree-sitter and reports its module and call graphs, complexity hotspots, documentation coverage, and database-access compliance.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "configuration file (default: walkr.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(initCmd)
}

var (
	flagRoot    string
	flagOut     string
	flagCache   string
	flagSerial  bool
	flagWorkers int
	flagRender  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Analyze a Python project and write reports",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagRoot, "root", "", "project root (overrides config)")
	scanCmd.Flags().StringVar(&flagOut, "out", "", "output directory (overrides config)")
	scanCmd.Flags().StringVar(&flagCache, "cache", "", "SQLite cache path for incremental runs")
	scanCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable parallel extraction")
	scanCmd.Flags().IntVar(&flagWorkers, "workers", 0, "extraction worker count (default: number of CPUs)")
	scanCmd.Flags().BoolVar(&flagRender, "render", false, "render DOT output to SVG with graphviz")
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if flagVerbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

func loadConfig() (*walkr.Config, error) {
	path := flagConfig
	if path == "" {
		if _, err := os.Stat("walkr.yaml"); err == nil {
			path = "walkr.yaml"
		}
	}
	if path == "" {
		return walkr.DefaultConfig(), nil
	}
	return walkr.LoadConfig(path)
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagRoot != "" {
		cfg.RootPath = flagRoot
	}
	if len(args) == 1 {
		cfg.RootPath = args[0]
	}
	if flagOut != "" {
		cfg.OutputDir = flagOut
	}

	opts := []walkr.Option{
		walkr.WithLogger(logger),
		walkr.WithParallel(!flagSerial),
	}
	if flagWorkers > 0 {
		opts = append(opts, walkr.WithWorkers(flagWorkers))
	}
	if flagCache != "" {
		opts = append(opts, walkr.WithCache(flagCache))
	}

	engine, err := walkr.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	r, err := engine.Analyze(cmd.Context(), cfg.RootPath)
	if err != nil {
		return err
	}

	written, err := export.Export(r, cfg)
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Info("wrote report", "path", path)
		if flagRender && filepath.Ext(path) == ".dot" {
			svg, err := export.RenderDOT(path)
			if err != nil {
				logger.Warn("render skipped", "err", err)
				continue
			}
			logger.Info("rendered graph", "path", svg)
		}
	}

	printSummary(r)
	if r.Summary.DocCoverage < cfg.MinDocCoverage {
		logger.Warn("documentation coverage below minimum",
			"coverage", fmt.Sprintf("%.0f%%", r.Summary.DocCoverage*100),
			"minimum", fmt.Sprintf("%.0f%%", cfg.MinDocCoverage*100))
	}
	logger.Info("done", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func printSummary(r *walkr.Report) {
	fmt.Printf("Files:       %d analyzed, %d failed\n", r.Summary.ParsedFiles, r.Summary.FailedFiles)
	fmt.Printf("Functions:   %d across %d classes, %d lines\n",
		r.Summary.TotalFunctions, r.Summary.TotalClasses, r.Summary.TotalLines)
	fmt.Printf("Docs:        %.0f%% coverage, %d gaps\n", r.Summary.DocCoverage*100, len(r.DocGaps))
	fmt.Printf("Complexity:  %d findings\n", len(r.Complexity))
	fmt.Printf("Cycles:      %d\n", len(r.Cycles))
	fmt.Printf("Violations:  %d\n", r.Summary.TotalViolations)
	categories := make([]string, 0, len(r.Summary.ViolationsByCategory))
	for name := range r.Summary.ViolationsByCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		fmt.Printf("  %-20s %d\n", name, r.Summary.ViolationsByCategory[name])
	}
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default walkr.yaml in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "walkr.yaml"
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}
