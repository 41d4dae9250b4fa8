package assets

import "errors"

var (
	// ErrInvalidConfig indicates the effective configuration does not fit the bundler schema
	ErrInvalidConfig = errors.New("invalid bundler configuration")
	// ErrNoEntryPoints indicates the configuration names no entry points
	ErrNoEntryPoints = errors.New("no entry points found")
	// ErrUnknownLoader indicates a module rule names a loader esbuild does not provide
	ErrUnknownLoader = errors.New("unknown loader")
	// ErrBuildFailed indicates esbuild reported errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrNotBuilt indicates outputs were requested before a successful build
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
)
