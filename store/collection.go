package store

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/datastore/internal/logger"
	"github.com/mentorhub/datastore/models"
)

// entity constrains the generic handles to pointer types carrying the shared
// id/timestamp capability.
type entity[T any] interface {
	*T
	models.Entity
}

// listEnvelope wraps list collections for TOML, which cannot encode a
// top-level array. JSON and YAML store the bare array.
type listEnvelope[T any] struct {
	Records []T `json:"records" yaml:"records" toml:"records"`
}

// generateID creates a new universally unique identifier string.
func generateID() string {
	return uuid.NewString()
}

// ListCollection provides CRUD over an ordered collection scanned linearly
// by id. Reads never fail: missing or corrupt backing data degrades to the
// empty list with a logged warning. Writes reload from disk under the
// collection's file lock, mutate a copy, and persist atomically; the cache
// is refreshed only after a successful save.
type ListCollection[T any, PT entity[T]] struct {
	s   *FileStore
	col Collection
}

func newListCollection[T any, PT entity[T]](s *FileStore, col Collection) *ListCollection[T, PT] {
	if mustDescriptor(col).keyed != listKeyed {
		panic(fmt.Sprintf("store: collection %q is not list-keyed", col))
	}
	return &ListCollection[T, PT]{s: s, col: col}
}

// readDisk decodes the backing file directly, bypassing the cache. Write
// paths use it so a concurrent writer in another process is never clobbered
// with stale cached state.
func (c *ListCollection[T, PT]) readDisk() []T {
	data, ok := c.s.readFile(c.col)
	if !ok {
		return []T{}
	}
	var list []T
	var err error
	if c.s.format == FormatTOML {
		var env listEnvelope[T]
		err = c.s.unmarshal(data, &env)
		list = env.Records
	} else {
		err = c.s.unmarshal(data, &list)
	}
	if err != nil {
		logger.Log().Warn("failed to decode collection file, serving empty collection",
			"collection", c.col, "error", err)
		return []T{}
	}
	if list == nil {
		list = []T{}
	}
	return list
}

// load returns the collection through the cache, repopulating it from disk
// when the entry is missing or past its freshness window.
func (c *ListCollection[T, PT]) load(now time.Time) []T {
	if v, ok := c.s.cache.get(c.col, now); ok {
		if list, ok := v.([]T); ok {
			return list
		}
	}
	list := c.readDisk()
	c.s.cache.put(c.col, list, now)
	return list
}

// save persists the full collection and, on success, refreshes the cache so
// the next read observes this write immediately. A failed save leaves the
// cache untouched: it must never hold data that was not durably persisted.
func (c *ListCollection[T, PT]) save(list []T) error {
	var payload any = list
	if c.s.format == FormatTOML {
		payload = listEnvelope[T]{Records: list}
	}
	data, err := c.s.marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", c.col, err)
	}
	if err := c.s.writeFile(c.col, data); err != nil {
		logger.Log().Warn("failed to save collection", "collection", c.col, "error", err)
		return fmt.Errorf("failed to save %s: %w", c.col, err)
	}
	c.s.cache.put(c.col, list, time.Now())
	return nil
}

// GetAll returns the full collection in stored order.
func (c *ListCollection[T, PT]) GetAll() []T {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()
	return slices.Clone(c.load(time.Now()))
}

// GetByID returns the record with the given id, or nil when absent.
// Absence is a branch value for callers, never an error.
func (c *ListCollection[T, PT]) GetByID(id string) *T {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()
	for _, item := range c.load(time.Now()) {
		if PT(&item).GetID() == id {
			out := item
			return &out
		}
	}
	return nil
}

// FindBy returns all records whose field (addressed by its json tag name)
// equals value, preserving stored order. Exact equality only.
func (c *ListCollection[T, PT]) FindBy(field string, value any) []T {
	return c.Filter(func(item T) bool {
		return fieldEquals(item, field, value)
	})
}

// Filter returns all records matching the predicate, preserving stored order.
func (c *ListCollection[T, PT]) Filter(pred func(T) bool) []T {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()
	out := make([]T, 0)
	for _, item := range c.load(time.Now()) {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Create appends a new record. A missing id is generated; both timestamps
// are stamped; the record is validated before it is persisted.
func (c *ListCollection[T, PT]) Create(item T) (T, error) {
	var zero T
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()

	flk := c.s.flk(c.col)
	if err := flk.Lock(); err != nil {
		return zero, fmt.Errorf("could not lock %s for create: %w", c.col, err)
	}
	defer func() { _ = flk.Unlock() }()

	list := c.readDisk()

	p := PT(&item)
	if p.GetID() == "" {
		p.SetID(generateID())
	} else {
		for i := range list {
			if PT(&list[i]).GetID() == p.GetID() {
				return zero, fmt.Errorf("%s record with ID '%s' already exists", c.col, p.GetID())
			}
		}
	}
	p.Stamp(time.Now().UTC())

	if err := models.ValidateStruct(item); err != nil {
		return zero, fmt.Errorf("validation failed for new %s record: %w", c.col, err)
	}

	if err := c.save(append(slices.Clone(list), item)); err != nil {
		return zero, err
	}
	return item, nil
}

// Update merges the given field updates (keys are json tag names) onto the
// existing record, stamps UpdatedAt, and persists. Returns nil when the id
// does not exist; it never creates a record implicitly.
func (c *ListCollection[T, PT]) Update(id string, updates map[string]any) (*T, error) {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()

	flk := c.s.flk(c.col)
	if err := flk.Lock(); err != nil {
		return nil, fmt.Errorf("could not lock %s for update: %w", c.col, err)
	}
	defer func() { _ = flk.Unlock() }()

	list := c.readDisk()
	idx := indexByID[T, PT](list, id)
	if idx < 0 {
		return nil, nil
	}

	item := list[idx]
	if err := applyUpdates(PT(&item), updates); err != nil {
		return nil, fmt.Errorf("failed to update %s record '%s': %w", c.col, id, err)
	}
	PT(&item).Touch(time.Now().UTC())

	if err := models.ValidateStruct(item); err != nil {
		return nil, fmt.Errorf("validation failed for updated %s record: %w", c.col, err)
	}

	out := slices.Clone(list)
	out[idx] = item
	if err := c.save(out); err != nil {
		return nil, err
	}
	return &item, nil
}

// Mutate applies fn to the record under the collection lock and persists the
// result — a read-modify-write that cannot interleave with another in-process
// caller. Returns nil when the id does not exist.
func (c *ListCollection[T, PT]) Mutate(id string, fn func(PT) error) (*T, error) {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()

	flk := c.s.flk(c.col)
	if err := flk.Lock(); err != nil {
		return nil, fmt.Errorf("could not lock %s for mutate: %w", c.col, err)
	}
	defer func() { _ = flk.Unlock() }()

	list := c.readDisk()
	idx := indexByID[T, PT](list, id)
	if idx < 0 {
		return nil, nil
	}

	item := list[idx]
	if err := fn(PT(&item)); err != nil {
		return nil, err
	}
	PT(&item).Touch(time.Now().UTC())

	if err := models.ValidateStruct(item); err != nil {
		return nil, fmt.Errorf("validation failed for %s record '%s': %w", c.col, id, err)
	}

	out := slices.Clone(list)
	out[idx] = item
	if err := c.save(out); err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes the record if present and reports whether anything was
// removed. It performs no cascades; those are layered on top by the
// referential-integrity operations.
func (c *ListCollection[T, PT]) Remove(id string) (bool, error) {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()

	flk := c.s.flk(c.col)
	if err := flk.Lock(); err != nil {
		return false, fmt.Errorf("could not lock %s for delete: %w", c.col, err)
	}
	defer func() { _ = flk.Unlock() }()

	list := c.readDisk()
	idx := indexByID[T, PT](list, id)
	if idx < 0 {
		return false, nil
	}

	out := append(slices.Clone(list[:idx]), list[idx+1:]...)
	if err := c.save(out); err != nil {
		return false, err
	}
	return true, nil
}

func indexByID[T any, PT entity[T]](list []T, id string) int {
	for i := range list {
		if PT(&list[i]).GetID() == id {
			return i
		}
	}
	return -1
}

// MapCollection provides CRUD over a collection keyed directly by record id.
// Same contract as ListCollection, with direct lookup instead of a linear
// scan.
type MapCollection[T any, PT entity[T]] struct {
	s   *FileStore
	col Collection
}

func newMapCollection[T any, PT entity[T]](s *FileStore, col Collection) *MapCollection[T, PT] {
	if mustDescriptor(col).keyed != mapKeyed {
		panic(fmt.Sprintf("store: collection %q is not map-keyed", col))
	}
	return &MapCollection[T, PT]{s: s, col: col}
}

func (c *MapCollection[T, PT]) readDisk() map[string]T {
	data, ok := c.s.readFile(c.col)
	if !ok {
		return map[string]T{}
	}
	var m map[string]T
	if err := c.s.unmarshal(data, &m); err != nil {
		logger.Log().Warn("failed to decode collection file, serving empty collection",
			"collection", c.col, "error", err)
		return map[string]T{}
	}
	if m == nil {
		m = map[string]T{}
	}
	return m
}

func (c *MapCollection[T, PT]) load(now time.Time) map[string]T {
	if v, ok := c.s.cache.get(c.col, now); ok {
		if m, ok := v.(map[string]T); ok {
			return m
		}
	}
	m := c.readDisk()
	c.s.cache.put(c.col, m, now)
	return m
}

func (c *MapCollection[T, PT]) save(m map[string]T) error {
	data, err := c.s.marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", c.col, err)
	}
	if err := c.s.writeFile(c.col, data); err != nil {
		logger.Log().Warn("failed to save collection", "collection", c.col, "error", err)
		return fmt.Errorf("failed to save %s: %w", c.col, err)
	}
	c.s.cache.put(c.col, m, time.Now())
	return nil
}

// GetAll returns the full collection keyed by id.
func (c *MapCollection[T, PT]) GetAll() map[string]T {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()
	return maps.Clone(c.load(time.Now()))
}

// GetByID returns the record with the given id, or nil when absent.
func (c *MapCollection[T, PT]) GetByID(id string) *T {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()
	item, ok := c.load(time.Now())[id]
	if !ok {
		return nil
	}
	return &item
}

// FindBy returns all records whose field (json tag name) equals value.
// Map iteration order is not defined; callers needing order sort themselves.
func (c *MapCollection[T, PT]) FindBy(field string, value any) []T {
	return c.Filter(func(item T) bool {
		return fieldEquals(item, field, value)
	})
}

// Filter returns all records matching the predicate.
func (c *MapCollection[T, PT]) Filter(pred func(T) bool) []T {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()
	out := make([]T, 0)
	for _, item := range c.load(time.Now()) {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Create inserts a new record under its id.
func (c *MapCollection[T, PT]) Create(item T) (T, error) {
	var zero T
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()

	flk := c.s.flk(c.col)
	if err := flk.Lock(); err != nil {
		return zero, fmt.Errorf("could not lock %s for create: %w", c.col, err)
	}
	defer func() { _ = flk.Unlock() }()

	m := c.readDisk()

	p := PT(&item)
	if p.GetID() == "" {
		p.SetID(generateID())
	} else if _, exists := m[p.GetID()]; exists {
		return zero, fmt.Errorf("%s record with ID '%s' already exists", c.col, p.GetID())
	}
	p.Stamp(time.Now().UTC())

	if err := models.ValidateStruct(item); err != nil {
		return zero, fmt.Errorf("validation failed for new %s record: %w", c.col, err)
	}

	out := maps.Clone(m)
	out[p.GetID()] = item
	if err := c.save(out); err != nil {
		return zero, err
	}
	return item, nil
}

// Update merges field updates onto the existing record. Returns nil when the
// id does not exist.
func (c *MapCollection[T, PT]) Update(id string, updates map[string]any) (*T, error) {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()

	flk := c.s.flk(c.col)
	if err := flk.Lock(); err != nil {
		return nil, fmt.Errorf("could not lock %s for update: %w", c.col, err)
	}
	defer func() { _ = flk.Unlock() }()

	m := c.readDisk()
	item, ok := m[id]
	if !ok {
		return nil, nil
	}

	if err := applyUpdates(PT(&item), updates); err != nil {
		return nil, fmt.Errorf("failed to update %s record '%s': %w", c.col, id, err)
	}
	PT(&item).Touch(time.Now().UTC())

	if err := models.ValidateStruct(item); err != nil {
		return nil, fmt.Errorf("validation failed for updated %s record: %w", c.col, err)
	}

	out := maps.Clone(m)
	out[id] = item
	if err := c.save(out); err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes the record if present and reports whether anything was
// removed.
func (c *MapCollection[T, PT]) Remove(id string) (bool, error) {
	mu := c.s.mu(c.col)
	mu.Lock()
	defer mu.Unlock()

	flk := c.s.flk(c.col)
	if err := flk.Lock(); err != nil {
		return false, fmt.Errorf("could not lock %s for delete: %w", c.col, err)
	}
	defer func() { _ = flk.Unlock() }()

	m := c.readDisk()
	if _, ok := m[id]; !ok {
		return false, nil
	}

	out := maps.Clone(m)
	delete(out, id)
	if err := c.save(out); err != nil {
		return false, err
	}
	return true, nil
}
