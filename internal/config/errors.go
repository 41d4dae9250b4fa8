package config

import "errors"

var (
	// ErrInvalidPaths indicates the source, output or entry paths are missing or overlap
	ErrInvalidPaths = errors.New("invalid build paths")
	// ErrInvalidServer indicates the dev server host or port is unusable
	ErrInvalidServer = errors.New("invalid dev server configuration")
)
