package store

import (
	"errors"
	"fmt"
)

// Collection identifies one of the fixed set of typed collections. Using a
// dedicated type instead of bare strings lets the compiler catch most misuse;
// ParseCollection guards the remaining dynamic entry points (CLI arguments,
// config values).
type Collection string

const (
	Users     Collection = "users"
	Messages  Collection = "messages"
	Sessions  Collection = "sessions"
	Resources Collection = "resources"
	Forums    Collection = "forums"
	Topics    Collection = "topics"
	Posts     Collection = "posts"
)

// ErrUnknownCollection is returned when a name outside the fixed collection
// set reaches the store. This is a programmer error, not a data error.
var ErrUnknownCollection = errors.New("unknown collection")

type keying int

const (
	// mapKeyed collections are stored as an object keyed by record id.
	mapKeyed keying = iota
	// listKeyed collections are stored as an ordered list and scanned
	// linearly.
	listKeyed
)

// descriptor maps a collection to its backing file (base name, extension
// follows the data format) and storage shape.
type descriptor struct {
	file  string
	keyed keying
}

var collections = map[Collection]descriptor{
	Users:     {file: "users", keyed: mapKeyed},
	Messages:  {file: "messages", keyed: listKeyed},
	Sessions:  {file: "sessions", keyed: listKeyed},
	Resources: {file: "resources", keyed: listKeyed},
	Forums:    {file: "forums", keyed: listKeyed},
	Topics:    {file: "topics", keyed: listKeyed},
	Posts:     {file: "posts", keyed: listKeyed},
}

// AllCollections returns every collection name in a stable order.
func AllCollections() []Collection {
	return []Collection{Users, Messages, Sessions, Resources, Forums, Topics, Posts}
}

// ParseCollection validates a dynamic collection name.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if _, ok := collections[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return c, nil
}

// mustDescriptor panics on an unknown collection: every call site passes one
// of the constants above, so a miss can only be a code defect.
func mustDescriptor(c Collection) descriptor {
	d, ok := collections[c]
	if !ok {
		panic(fmt.Sprintf("store: unknown collection %q", c))
	}
	return d
}
