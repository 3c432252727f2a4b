// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config contains the entry points, taint problems and analysis options.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// EntryPoints lists the methods the call graph construction starts from. When empty, the entry points of the
	// scene are used.
	EntryPoints []CodeIdentifier `yaml:"entry-points"`

	// TaintTrackingProblems lists the taint tracking specifications
	TaintTrackingProblems []TaintSpec `yaml:"taint-tracking-problems"`
}

// TaintSpec contains code identifiers that identify a specific taint tracking problem
type TaintSpec struct {
	// Sanitizers is the list of sanitizers for the taint analysis
	Sanitizers []CodeIdentifier

	// Sinks is the list of sinks for the taint analysis
	Sinks []CodeIdentifier

	// Sources is the list of sources for the taint analysis
	Sources []CodeIdentifier
}

// Options holds the settings shared by all the analyses
type Options struct {
	// ReportsDir is the directory where all the reports will be stored. If the config does not specify a ReportsDir
	// but sets ReportPaths, then a temporary directory is created next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportPaths specifies whether each taint flow should be reported in a separate file flow-*.out in the reports
	// directory, with the trace from source to sink.
	ReportPaths bool `yaml:"report-paths"`

	// SourceTaintsArgs specifies whether calls to a source method also taint the arguments. This is usually not
	// the case, but might be useful for source methods that do not return anything.
	SourceTaintsArgs bool `yaml:"source-taints-args"`

	// MaxIterations is the watchdog on the number of worklist iterations of each fixpoint. 0 means no limit.
	MaxIterations int `yaml:"max-iterations"`

	// MaxAccessPathLength is the maximum number of fields in a taint access path. Longer paths are truncated.
	MaxAccessPathLength int `yaml:"max-access-path-length"`

	// CallgraphMode is one of cha, rta or pointer
	CallgraphMode string `yaml:"callgraph-mode"`

	// Parallel runs the independent taint problems concurrently
	Parallel bool `yaml:"parallel"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// SilenceWarn suppresses the warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:            "",
		EntryPoints:           nil,
		TaintTrackingProblems: nil,
		Options: Options{
			ReportsDir:          "",
			ReportPaths:         false,
			SourceTaintsArgs:    false,
			MaxIterations:       DefaultMaxIterations,
			MaxAccessPathLength: DefaultMaxAccessPathLength,
			CallgraphMode:       DefaultCallgraphMode,
			Parallel:            true,
			LogLevel:            int(InfoLevel),
			SilenceWarn:         false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	cfg.sourceFile = filename
	if cfg.ReportPaths {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Parse reads a configuration from yaml contents. The reports directory is not created.
func Parse(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.MaxAccessPathLength <= 0 {
		cfg.MaxAccessPathLength = DefaultMaxAccessPathLength
	}
	if cfg.MaxIterations < 0 {
		return nil, fmt.Errorf("max-iterations must be non-negative, got %d", cfg.MaxIterations)
	}
	switch cfg.CallgraphMode {
	case "":
		cfg.CallgraphMode = DefaultCallgraphMode
	case "cha", "rta", "pointer":
	default:
		return nil, fmt.Errorf("unknown callgraph-mode %q (expected cha, rta or pointer)", cfg.CallgraphMode)
	}
	cfg.compileAll()
	return cfg, nil
}

func (c *Config) compileAll() {
	compile := func(cids []CodeIdentifier) {
		for i := range cids {
			cids[i] = compileRegexes(cids[i])
		}
	}
	compile(c.EntryPoints)
	for _, tSpec := range c.TaintTrackingProblems {
		compile(tSpec.Sanitizers)
		compile(tSpec.Sinks)
		compile(tSpec.Sources)
	}
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(filepath.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports: %w", err)
		}
		c.ReportsDir = tmpdir
		return nil
	}
	// a relative reports directory is relative to the config file
	if !filepath.IsAbs(c.ReportsDir) {
		c.ReportsDir = c.RelPath(c.ReportsDir)
	}
	if err := os.Mkdir(c.ReportsDir, 0750); err != nil && !os.IsExist(err) {
		return fmt.Errorf("could not create directory %s: %w", c.ReportsDir, err)
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return filepath.Join(filepath.Dir(c.sourceFile), filename)
}

// Below are functions used to query the configuration on specific facts

// IsEntryPoint returns true if the method of class matches one of the configured entry points
func (c Config) IsEntryPoint(class, method string) bool {
	return ExistsCid(c.EntryPoints, func(cid CodeIdentifier) bool { return cid.MatchesMethod(class, method) })
}

// IsSourceMethod returns true when the method of class is a source of the problem
func (ts TaintSpec) IsSourceMethod(class, method string) bool {
	return ExistsCid(ts.Sources, func(cid CodeIdentifier) bool { return cid.MatchesMethod(class, method) })
}

// IsSinkMethod returns true when the method of class is a sink of the problem
func (ts TaintSpec) IsSinkMethod(class, method string) bool {
	return ExistsCid(ts.Sinks, func(cid CodeIdentifier) bool { return cid.MatchesMethod(class, method) })
}

// IsSanitizerMethod returns true when the method of class is a sanitizer of the problem
func (ts TaintSpec) IsSanitizerMethod(class, method string) bool {
	return ExistsCid(ts.Sanitizers, func(cid CodeIdentifier) bool { return cid.MatchesMethod(class, method) })
}

// IsSourceField returns true when reading the field of class is a source of the problem
func (ts TaintSpec) IsSourceField(class, field string) bool {
	return ExistsCid(ts.Sources, func(cid CodeIdentifier) bool { return cid.MatchesField(class, field) })
}

// IsSinkField returns true when writing to the field of class is a sink of the problem
func (ts TaintSpec) IsSinkField(class, field string) bool {
	return ExistsCid(ts.Sinks, func(cid CodeIdentifier) bool { return cid.MatchesField(class, field) })
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
