package store

import (
	"fmt"
	"slices"
	"sort"

	"github.com/mentorhub/datastore/models"
)

// This file holds the referential-integrity operations the generic CRUD
// engine cannot know about: cascading deletes and the denormalized
// topic/forum aggregates. A failed intermediate step aborts the cascade and
// reports failure rather than partially completing, since a partial cascade
// would leave dangling aggregate counts.

// ForumStats is the composite read for a forum: the record plus live counts
// and its most recent posts.
type ForumStats struct {
	Forum       models.Forum  `json:"forum"`
	TopicCount  int           `json:"topicCount"`
	PostCount   int           `json:"postCount"`
	RecentPosts []models.Post `json:"recentPosts"`
}

// TopicWithPosts is the composite read for a topic: the record plus all its
// posts in ascending creation order.
type TopicWithPosts struct {
	Topic models.Topic  `json:"topic"`
	Posts []models.Post `json:"posts"`
}

// recentPostLimit is how many posts GetForumWithStats returns.
const recentPostLimit = 5

// CreateTopic creates a topic and synthesizes its first post carrying the
// topic's initial content, then recomputes the owning forum's aggregates.
func (s *Store) CreateTopic(topic models.Topic) (models.Topic, error) {
	var zero models.Topic

	if s.Forums.GetByID(topic.ForumID) == nil {
		return zero, fmt.Errorf("forum '%s' does not exist", topic.ForumID)
	}

	created, err := s.Topics.Create(topic)
	if err != nil {
		return zero, err
	}

	first := models.Post{
		TopicID:     created.ID,
		ForumID:     created.ForumID,
		AuthorID:    created.AuthorID,
		Content:     created.Content,
		IsFirstPost: true,
		Status:      models.PostActive,
		Reactions:   map[string][]string{},
	}
	firstPost, err := s.Posts.Create(first)
	if err != nil {
		// The topic is already persisted; take it back out so a failed
		// create never leaves a topic without its first post, and recount
		// in case the removal itself fails partway.
		_, _ = s.Topics.Remove(created.ID)
		_, _ = s.RecomputeForumCounts(created.ForumID)
		return zero, fmt.Errorf("failed to synthesize first post for topic '%s': %w", created.ID, err)
	}

	updated, err := s.Topics.Update(created.ID, map[string]any{
		"postCount":  1,
		"lastPostAt": firstPost.CreatedAt,
	})
	if err != nil {
		return zero, err
	}
	if updated == nil {
		return zero, fmt.Errorf("topic '%s' vanished while recording its first post", created.ID)
	}

	if _, err := s.RecomputeForumCounts(created.ForumID); err != nil {
		return zero, err
	}
	return *updated, nil
}

// RemoveTopic deletes a topic and every post referencing it. Posts go first:
// removing the topic before its children would orphan them with no recount
// trigger left. Returns false when the topic does not exist.
func (s *Store) RemoveTopic(id string) (bool, error) {
	topic := s.Topics.GetByID(id)
	if topic == nil {
		return false, nil
	}

	for _, post := range s.Posts.FindBy("topicId", id) {
		if _, err := s.Posts.Remove(post.ID); err != nil {
			return false, fmt.Errorf("aborting removal of topic '%s', failed to remove post '%s': %w", id, post.ID, err)
		}
	}

	removed, err := s.Topics.Remove(id)
	if err != nil {
		return false, err
	}

	if _, err := s.RecomputeForumCounts(topic.ForumID); err != nil {
		return false, err
	}
	return removed, nil
}

// CreatePost creates a post, updates the owning topic's post count and
// last-post pointer, and recomputes the owning forum's aggregates. A missing
// ForumID is filled in transitively from the topic.
func (s *Store) CreatePost(post models.Post) (models.Post, error) {
	var zero models.Post

	topic := s.Topics.GetByID(post.TopicID)
	if topic == nil {
		return zero, fmt.Errorf("topic '%s' does not exist", post.TopicID)
	}

	if post.Status == "" {
		post.Status = models.PostActive
	}
	if post.Reactions == nil {
		post.Reactions = map[string][]string{}
	}
	if post.ForumID == "" {
		post.ForumID = topic.ForumID
	}

	created, err := s.Posts.Create(post)
	if err != nil {
		return zero, err
	}

	if _, err := s.Topics.Update(topic.ID, map[string]any{
		"postCount":  topic.PostCount + 1,
		"lastPostAt": created.CreatedAt,
	}); err != nil {
		return zero, err
	}

	if _, err := s.RecomputeForumCounts(created.ForumID); err != nil {
		return zero, err
	}
	return created, nil
}

// RemovePost deletes a post, restores the owning topic's post count and
// last-post pointer from the surviving posts, and recomputes the owning
// forum's aggregates. Returns false when the post does not exist.
func (s *Store) RemovePost(id string) (bool, error) {
	post := s.Posts.GetByID(id)
	if post == nil {
		return false, nil
	}

	removed, err := s.Posts.Remove(id)
	if err != nil || !removed {
		return false, err
	}

	if err := s.recountTopic(post.TopicID); err != nil {
		return false, err
	}
	if _, err := s.RecomputeForumCounts(post.ForumID); err != nil {
		return false, err
	}
	return true, nil
}

// recountTopic rebuilds a topic's denormalized fields from its surviving
// posts. LastPostAt falls back to the topic's own CreatedAt when no posts
// remain.
func (s *Store) recountTopic(topicID string) error {
	topic := s.Topics.GetByID(topicID)
	if topic == nil {
		return nil
	}

	remaining := s.Posts.FindBy("topicId", topicID)
	last := topic.CreatedAt
	for _, p := range remaining {
		if p.CreatedAt.After(last) {
			last = p.CreatedAt
		}
	}

	_, err := s.Topics.Update(topicID, map[string]any{
		"postCount":  len(remaining),
		"lastPostAt": last,
	})
	return err
}

// RecomputeForumCounts sets a forum's topic and post counts to the live
// count of records referencing it. Always a full recount — incremental
// counters drift under partial failures, so they are never trusted. Returns
// nil when the forum does not exist.
func (s *Store) RecomputeForumCounts(forumID string) (*models.Forum, error) {
	topicCount := len(s.Topics.FindBy("forumId", forumID))
	postCount := len(s.Posts.FindBy("forumId", forumID))
	return s.Forums.Update(forumID, map[string]any{
		"topicCount": topicCount,
		"postCount":  postCount,
	})
}

// GetForumWithStats returns a forum with live counts and its most recently
// created posts (newest first). Returns nil when the forum does not exist.
func (s *Store) GetForumWithStats(id string) *ForumStats {
	forum := s.Forums.GetByID(id)
	if forum == nil {
		return nil
	}

	posts := s.Posts.FindBy("forumId", id)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	recent := posts
	if len(recent) > recentPostLimit {
		recent = recent[:recentPostLimit]
	}

	return &ForumStats{
		Forum:       *forum,
		TopicCount:  len(s.Topics.FindBy("forumId", id)),
		PostCount:   len(posts),
		RecentPosts: recent,
	}
}

// GetTopicWithPosts returns a topic with all its posts in ascending creation
// order. Returns nil when the topic does not exist.
func (s *Store) GetTopicWithPosts(id string) *TopicWithPosts {
	topic := s.Topics.GetByID(id)
	if topic == nil {
		return nil
	}

	posts := s.Posts.FindBy("topicId", id)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})

	return &TopicWithPosts{Topic: *topic, Posts: posts}
}

// IncrementViews bumps a topic's view counter under the collection lock.
// Returns nil when the topic does not exist.
func (s *Store) IncrementViews(id string) (*models.Topic, error) {
	return s.Topics.Mutate(id, func(t *models.Topic) error {
		t.Views++
		return nil
	})
}

// AddReaction records a user's reaction on a post. Idempotent: a user id
// appears at most once per reaction type. Returns nil when the post does not
// exist.
func (s *Store) AddReaction(postID, userID, reaction string) (*models.Post, error) {
	return s.Posts.Mutate(postID, func(p *models.Post) error {
		if p.Reactions == nil {
			p.Reactions = make(map[string][]string)
		}
		if !slices.Contains(p.Reactions[reaction], userID) {
			p.Reactions[reaction] = append(p.Reactions[reaction], userID)
		}
		return nil
	})
}

// RemoveReaction withdraws a user's reaction on a post. A no-op when the
// user id is absent from the bucket. Returns nil when the post does not
// exist.
func (s *Store) RemoveReaction(postID, userID, reaction string) (*models.Post, error) {
	return s.Posts.Mutate(postID, func(p *models.Post) error {
		bucket := p.Reactions[reaction]
		if !slices.Contains(bucket, userID) {
			return nil
		}
		p.Reactions[reaction] = slices.DeleteFunc(slices.Clone(bucket), func(id string) bool {
			return id == userID
		})
		return nil
	})
}
