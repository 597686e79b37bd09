// Package store implements the embedded document store backing the
// mentorship platform: seven typed collections persisted one file each,
// fronted by a per-collection TTL cache, with a generic CRUD engine and the
// referential-integrity operations that keep forum aggregates consistent.
package store

import (
	"fmt"
	"time"

	"github.com/mentorhub/datastore/models"
)

// DefaultCacheTTL is the cache freshness window applied when Config leaves
// CacheTTL unset.
const DefaultCacheTTL = 5 * time.Second

// Config carries the settings needed to open a store.
type Config struct {
	// Dir is the directory holding one backing file per collection.
	Dir string
	// Format selects the on-disk serialization; empty means JSON.
	Format Format
	// CacheTTL is the cache freshness window. Zero applies
	// DefaultCacheTTL; a negative value disables caching so every read
	// goes to disk.
	CacheTTL time.Duration
}

// Store aggregates the typed collection handles and the cross-collection
// operations layered on them. Collections are exported so callers reach the
// generic CRUD engine directly; the integrity and query operations live on
// Store itself.
type Store struct {
	fs      *FileStore
	watcher *invalidationWatcher

	Users     *MapCollection[models.User, *models.User]
	Messages  *ListCollection[models.Message, *models.Message]
	Sessions  *ListCollection[models.Session, *models.Session]
	Resources *ListCollection[models.Resource, *models.Resource]
	Forums    *ListCollection[models.Forum, *models.Forum]
	Topics    *ListCollection[models.Topic, *models.Topic]
	Posts     *ListCollection[models.Post, *models.Post]
}

// New opens (creating if necessary) the store rooted at cfg.Dir.
func New(cfg Config) (*Store, error) {
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	fs, err := NewFileStore(cfg.Dir, cfg.Format, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Dir, err)
	}

	s := &Store{fs: fs}
	s.Users = newMapCollection[models.User, *models.User](fs, Users)
	s.Messages = newListCollection[models.Message, *models.Message](fs, Messages)
	s.Sessions = newListCollection[models.Session, *models.Session](fs, Sessions)
	s.Resources = newListCollection[models.Resource, *models.Resource](fs, Resources)
	s.Forums = newListCollection[models.Forum, *models.Forum](fs, Forums)
	s.Topics = newListCollection[models.Topic, *models.Topic](fs, Topics)
	s.Posts = newListCollection[models.Post, *models.Post](fs, Posts)
	return s, nil
}

// Dir returns the directory holding the backing files.
func (s *Store) Dir() string { return s.fs.Dir() }

// ClearCache drops every cached collection snapshot, forcing the next read
// of each collection back to the backing store. Use it when another process
// may have mutated the backing files out-of-band (or start the watcher and
// let it do this automatically).
func (s *Store) ClearCache() { s.fs.ClearCache() }

// Records returns the full contents of a collection: a map keyed by id for
// map-keyed collections, an ordered slice otherwise. The switch is
// exhaustive over the collection set; an unknown name is a programmer error
// surfaced as ErrUnknownCollection.
func (s *Store) Records(col Collection) (any, error) {
	switch col {
	case Users:
		return s.Users.GetAll(), nil
	case Messages:
		return s.Messages.GetAll(), nil
	case Sessions:
		return s.Sessions.GetAll(), nil
	case Resources:
		return s.Resources.GetAll(), nil
	case Forums:
		return s.Forums.GetAll(), nil
	case Topics:
		return s.Topics.GetAll(), nil
	case Posts:
		return s.Posts.GetAll(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, col)
	}
}

// Counts returns the number of records in every collection.
func (s *Store) Counts() map[Collection]int {
	return map[Collection]int{
		Users:     len(s.Users.GetAll()),
		Messages:  len(s.Messages.GetAll()),
		Sessions:  len(s.Sessions.GetAll()),
		Resources: len(s.Resources.GetAll()),
		Forums:    len(s.Forums.GetAll()),
		Topics:    len(s.Topics.GetAll()),
		Posts:     len(s.Posts.GetAll()),
	}
}

// Close stops the invalidation watcher if one is running. File locks are
// only held for the duration of individual operations, so there is nothing
// else to release.
func (s *Store) Close() error {
	if s.watcher != nil {
		err := s.watcher.stop()
		s.watcher = nil
		return err
	}
	return nil
}
