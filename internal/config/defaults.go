// Package config provides centralized configuration constants and path
// resolution for the datastore. All default values live here so there is a
// single source of truth.
package config

// Project layout defaults.
const (
	// DefaultRootDir is the per-project directory holding config and data.
	DefaultRootDir = ".mentorhub"

	// DefaultDataDir is the directory (under the root dir) holding one
	// backing file per collection.
	DefaultDataDir = "data"

	// DefaultDataFormat is the serialization format for backing files.
	DefaultDataFormat = "json"
)

// DefaultCacheTTLMillis is the freshness window for per-collection cache
// entries. A loaded collection is served from memory for this long before
// the next read goes back to disk.
const DefaultCacheTTLMillis = 5000
