package assets

import "errors"

var (
	// ErrInvalidMode indicates the build mode is neither development nor production
	ErrInvalidMode = errors.New("invalid build mode")
	// ErrInvalidConfig indicates a required setting is missing or malformed
	ErrInvalidConfig = errors.New("invalid asset config")
	// ErrNoEntryPoints indicates none of the configured entry points exist
	ErrNoEntryPoints = errors.New("no entry points found")
	// ErrBuildFailed indicates esbuild reported errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrNotBuilt indicates metadata was requested before a successful build
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
	// ErrEntryPointNotFound indicates the entry point is missing from the build metadata
	ErrEntryPointNotFound = errors.New("entrypoint not found in metadata")
	// ErrSassUnavailable indicates a stylesheet was imported without a dart-sass binary configured
	ErrSassUnavailable = errors.New("sass compiler not configured")
)
