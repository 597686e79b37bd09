package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	yaml "gopkg.in/yaml.v3"

	"github.com/mentorhub/datastore/internal/logger"
)

// Format selects the on-disk serialization for collection backing files.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat validates a dynamic format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatYAML, FormatTOML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unsupported data format: %s (supported formats are json, yaml, toml)", name)
	}
}

// FileStore persists each collection to its own file under a base directory
// and fronts reads with a TTL cache. Saves rewrite the whole collection
// through a temp file and rename, so a reader never observes a partial
// write. Cross-process access is coordinated with a per-collection file
// lock; in-process callers are serialized by a per-collection mutex.
type FileStore struct {
	dir    string
	format Format
	cache  *cache

	mus  map[Collection]*sync.Mutex
	flks map[Collection]*flock.Flock
}

// NewFileStore creates the base directory if needed and prepares the
// per-collection locks. ttl is the cache freshness window; zero disables
// caching.
func NewFileStore(dir string, format Format, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory must not be empty")
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	s := &FileStore{
		dir:    dir,
		format: format,
		cache:  newCache(ttl),
		mus:    make(map[Collection]*sync.Mutex),
		flks:   make(map[Collection]*flock.Flock),
	}
	for _, col := range AllCollections() {
		s.mus[col] = &sync.Mutex{}
		s.flks[col] = flock.New(s.path(col))
	}
	return s, nil
}

// Dir returns the base directory holding the backing files.
func (s *FileStore) Dir() string { return s.dir }

// path returns the backing file for a collection, e.g. dir/topics.json.
func (s *FileStore) path(col Collection) string {
	d := mustDescriptor(col)
	return filepath.Join(s.dir, d.file+"."+string(s.format))
}

// collectionForPath maps a backing file path back to its collection. Used by
// the invalidation watcher.
func (s *FileStore) collectionForPath(path string) (Collection, bool) {
	base := filepath.Base(path)
	for _, col := range AllCollections() {
		if base == filepath.Base(s.path(col)) {
			return col, true
		}
	}
	return "", false
}

func (s *FileStore) mu(col Collection) *sync.Mutex   { return s.mus[col] }
func (s *FileStore) flk(col Collection) *flock.Flock { return s.flks[col] }

// ClearCache drops every cached snapshot so the next read of each collection
// hits the backing store. Callers use it when another process may have
// mutated the backing files out-of-band.
func (s *FileStore) ClearCache() { s.cache.clear() }

// readFile returns the raw backing bytes for a collection. A missing or
// empty file yields (nil, false) so the caller falls back to the
// collection's default empty value; any other read failure is logged and
// degraded the same way, because reads must never crash the caller.
func (s *FileStore) readFile(col Collection) ([]byte, bool) {
	data, err := os.ReadFile(s.path(col))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Log().Warn("failed to read collection file, serving empty collection",
				"collection", col, "path", s.path(col), "error", err)
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// writeFile atomically replaces a collection's backing file: the serialized
// data goes to a temp file first and is renamed into place.
func (s *FileStore) writeFile(col Collection, data []byte) error {
	path := s.path(col)
	tmp := path + ".tmp"
	defer func() { _ = os.Remove(tmp) }()

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// marshal serializes a collection snapshot in the configured format.
func (s *FileStore) marshal(v any) ([]byte, error) {
	switch s.format {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatTOML:
		buf := new(bytes.Buffer)
		if err := toml.NewEncoder(buf).Encode(v); err != nil {
			return nil, fmt.Errorf("failed to marshal TOML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported data format for saving: %s", s.format)
	}
}

// unmarshal decodes backing bytes in the configured format.
func (s *FileStore) unmarshal(data []byte, v any) error {
	switch s.format {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatTOML:
		return toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported data format for loading: %s", s.format)
	}
}
