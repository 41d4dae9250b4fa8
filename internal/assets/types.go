package assets

import (
	"fmt"
	"os"
	"sync"

	"github.com/wolfeidau/bundlecompose/internal/compose"
)

// BuildMetadata is the subset of the esbuild metafile used to link pages to outputs.
type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
	Bytes      int          `json:"bytes"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Bundler hands an effective configuration to esbuild and writes the results
type Bundler struct {
	opts     Options
	workDir  string
	outDir   string
	metadata *BuildMetadata
	// final location of outputs moved after the build, keyed by the esbuild path
	renamed  map[string]string
	manifest *Manifest
	mu       sync.RWMutex
}

// New decodes the effective configuration and prepares a bundler for it.
func New(cfg compose.Config) (*Bundler, error) {
	opts, err := Decode(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(opts)
}

// NewWithOptions creates a bundler for already decoded options.
func NewWithOptions(opts Options) (*Bundler, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	outDir, err := opts.outputDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	return &Bundler{
		opts:    opts,
		workDir: workDir,
		outDir:  outDir,
	}, nil
}

// Options returns the decoded configuration.
func (b *Bundler) Options() Options {
	return b.opts
}

// OutputDir is the absolute output directory.
func (b *Bundler) OutputDir() string {
	return b.outDir
}
