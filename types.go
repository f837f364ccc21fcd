package walkr

import (
	"github.com/walkr-io/walkr/internal/config"
	"github.com/walkr-io/walkr/internal/report"
)

// Public type aliases for the internal report and config types that appear
// in the Engine API. These are Go type aliases (=), identical to the
// internal types at compile time; no conversion is needed.

type Config = config.Config

type Report = report.Report
type Summary = report.Summary
type ModuleGraph = report.ModuleGraph
type CallGraph = report.CallGraph
type ModuleNode = report.ModuleNode
type FunctionNode = report.FunctionNode
type ClassNode = report.ClassNode
type ImportEdge = report.ImportEdge
type CallEdge = report.CallEdge
type Resolution = report.Resolution
type ComplexityFinding = report.ComplexityFinding
type DBFinding = report.DBFinding
type Classification = report.Classification
type DocGap = report.DocGap
type FileCoverage = report.FileCoverage
type ParseFailure = report.ParseFailure

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a YAML configuration file, merged over the defaults.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }
