package store

import "github.com/mentorhub/datastore/models"

// DocumentStore is the contract the store exposes to its collaborators (API
// layers, batch jobs). It covers the cross-collection operations and cache
// control; per-collection generic CRUD is reached through the typed
// collection handles on Store itself.
//
// Absence is always a branch value: composite reads return nil for a
// missing root record, removals report false, and mutations of a missing id
// return a nil record. Only genuine persistence failures produce errors.
type DocumentStore interface {
	// FindUserByEmail returns the user with the given email, or nil.
	FindUserByEmail(email string) *models.User

	// Conversation returns every message between the two users in
	// ascending timestamp order, regardless of direction.
	Conversation(userA, userB string) []models.Message

	// UpcomingSessions returns sessions starting strictly after now,
	// soonest first.
	UpcomingSessions() []models.Session

	// FeaturedResources returns the resources flagged as featured.
	FeaturedResources() []models.Resource

	// CreateTopic creates a topic, synthesizes its first post, and
	// recomputes the owning forum's aggregates.
	CreateTopic(topic models.Topic) (models.Topic, error)

	// RemoveTopic deletes a topic and, beforehand, every post
	// referencing it, then recomputes the owning forum's aggregates.
	RemoveTopic(id string) (bool, error)

	// CreatePost creates a post and maintains the owning topic's and
	// forum's denormalized aggregates.
	CreatePost(post models.Post) (models.Post, error)

	// RemovePost deletes a post and restores the owning topic's and
	// forum's denormalized aggregates from the surviving records.
	RemovePost(id string) (bool, error)

	// RecomputeForumCounts recounts a forum's topics and posts from the
	// live records.
	RecomputeForumCounts(forumID string) (*models.Forum, error)

	// GetForumWithStats returns a forum with live counts and its most
	// recent posts, newest first.
	GetForumWithStats(id string) *ForumStats

	// GetTopicWithPosts returns a topic with all its posts in ascending
	// creation order.
	GetTopicWithPosts(id string) *TopicWithPosts

	// IncrementViews bumps a topic's view counter.
	IncrementViews(id string) (*models.Topic, error)

	// AddReaction idempotently records a user's reaction on a post.
	AddReaction(postID, userID, reaction string) (*models.Post, error)

	// RemoveReaction withdraws a user's reaction on a post; a no-op when
	// the user never reacted.
	RemoveReaction(postID, userID, reaction string) (*models.Post, error)

	// SearchTopics matches topics by case-insensitive substring against
	// title, content, and tags.
	SearchTopics(query string) []models.Topic

	// Records returns the full contents of a collection.
	Records(col Collection) (any, error)

	// Counts returns the number of records in every collection.
	Counts() map[Collection]int

	// ClearCache forces the next read of every collection back to the
	// backing store.
	ClearCache()

	// Close releases background resources (the invalidation watcher).
	Close() error
}

var _ DocumentStore = (*Store)(nil)
