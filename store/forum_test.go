package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/mentorhub/datastore/models"
)

func TestCreateTopic_SynthesizesFirstPost(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()

	topic, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "Hello", Content: "First!"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}

	posts := s.Posts.FindBy("topicId", topic.ID)
	if len(posts) != 1 {
		t.Fatalf("Expected 1 synthesized post, got %d", len(posts))
	}
	first := posts[0]
	if !first.IsFirstPost {
		t.Error("Synthesized post should be marked as the first post")
	}
	if first.Content != "First!" {
		t.Errorf("First post should carry the topic content, got %q", first.Content)
	}
	if first.ForumID != forum.ID || first.AuthorID != author {
		t.Errorf("First post parentage mismatch: %+v", first)
	}
	if first.Status != models.PostActive {
		t.Errorf("First post should be active, got %q", first.Status)
	}

	got := s.Topics.GetByID(topic.ID)
	if got.PostCount != 1 {
		t.Errorf("Topic postCount should be 1, got %d", got.PostCount)
	}
	if !got.LastPostAt.Equal(first.CreatedAt) {
		t.Errorf("Topic lastPostAt should match the first post, got %v", got.LastPostAt)
	}

	f := s.Forums.GetByID(forum.ID)
	if f.TopicCount != 1 || f.PostCount != 1 {
		t.Errorf("Forum counts should be 1/1, got %d/%d", f.TopicCount, f.PostCount)
	}
}

func TestCreateTopic_FirstPostSaveFailureRollsBack(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")

	// A directory squatting on the posts backing path makes the atomic
	// rename fail, so the synthesized first post cannot be persisted.
	if err := os.Mkdir(filepath.Join(s.Dir(), "posts.json"), 0o755); err != nil {
		t.Fatalf("Failed to block posts file: %v", err)
	}

	_, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: uuid.NewString(), Title: "Doomed", Content: "c"})
	if err == nil {
		t.Fatal("CreateTopic should fail when the first post cannot be saved")
	}

	if got := s.Topics.GetAll(); len(got) != 0 {
		t.Errorf("Failed CreateTopic must not leave a persisted topic, found %d", len(got))
	}
	f := s.Forums.GetByID(forum.ID)
	if f.TopicCount != 0 || f.PostCount != 0 {
		t.Errorf("Failed CreateTopic must leave forum counts at zero, got %d/%d", f.TopicCount, f.PostCount)
	}
}

func TestCreateTopic_UnknownForum(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.CreateTopic(models.Topic{ForumID: uuid.NewString(), AuthorID: uuid.NewString(), Title: "Orphan", Content: "c"}); err == nil {
		t.Error("CreateTopic against a missing forum should fail")
	}
}

func TestForumLifecycle(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()

	topic, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "Hello", Content: "First!"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}

	reply, err := s.CreatePost(models.Post{TopicID: topic.ID, AuthorID: author, Content: "Welcome aboard"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if reply.ForumID != forum.ID {
		t.Error("CreatePost should fill forumId from the parent topic")
	}
	if reply.IsFirstPost {
		t.Error("A reply must not be marked as first post")
	}

	got := s.Topics.GetByID(topic.ID)
	if got.PostCount != 2 {
		t.Errorf("Topic postCount should be 2 after a reply, got %d", got.PostCount)
	}
	if !got.LastPostAt.Equal(reply.CreatedAt) {
		t.Errorf("Topic lastPostAt should advance to the reply, got %v", got.LastPostAt)
	}
	f := s.Forums.GetByID(forum.ID)
	if f.TopicCount != 1 || f.PostCount != 2 {
		t.Errorf("Forum counts should be 1/2, got %d/%d", f.TopicCount, f.PostCount)
	}

	// Deleting the reply rolls the aggregates back to the first post.
	removed, err := s.RemovePost(reply.ID)
	if err != nil || !removed {
		t.Fatalf("RemovePost failed: removed=%v err=%v", removed, err)
	}
	got = s.Topics.GetByID(topic.ID)
	if got.PostCount != 1 {
		t.Errorf("Topic postCount should revert to 1, got %d", got.PostCount)
	}
	firstPosts := s.Posts.FindBy("topicId", topic.ID)
	if len(firstPosts) != 1 {
		t.Fatalf("Expected only the first post to remain, got %d", len(firstPosts))
	}
	if !got.LastPostAt.Equal(firstPosts[0].CreatedAt) {
		t.Errorf("Topic lastPostAt should revert to the first post, got %v", got.LastPostAt)
	}
	f = s.Forums.GetByID(forum.ID)
	if f.PostCount != 1 {
		t.Errorf("Forum postCount should revert to 1, got %d", f.PostCount)
	}
}

func TestRemoveTopic_CascadesPosts(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()

	topic, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "Doomed", Content: "c"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	for range 3 {
		if _, err := s.CreatePost(models.Post{TopicID: topic.ID, AuthorID: author, Content: "reply"}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	other, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "Survivor", Content: "c"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}

	removed, err := s.RemoveTopic(topic.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveTopic failed: removed=%v err=%v", removed, err)
	}

	if got := s.Topics.GetByID(topic.ID); got != nil {
		t.Error("Topic should be gone after RemoveTopic")
	}
	if orphans := s.Posts.FindBy("topicId", topic.ID); len(orphans) != 0 {
		t.Errorf("Cascade left %d orphaned posts", len(orphans))
	}
	if survivors := s.Posts.FindBy("topicId", other.ID); len(survivors) != 1 {
		t.Errorf("Cascade should not touch other topics, got %d posts", len(survivors))
	}

	f := s.Forums.GetByID(forum.ID)
	if f.TopicCount != 1 || f.PostCount != 1 {
		t.Errorf("Forum counts should be 1/1 after cascade, got %d/%d", f.TopicCount, f.PostCount)
	}
}

func TestRemoveTopic_NotFound(t *testing.T) {
	s := setupTestStore(t)
	removed, err := s.RemoveTopic(uuid.NewString())
	if err != nil {
		t.Fatalf("RemoveTopic of missing id should not error: %v", err)
	}
	if removed {
		t.Error("RemoveTopic of missing id should report false")
	}
}

func TestCreatePost_UnknownTopic(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.CreatePost(models.Post{TopicID: uuid.NewString(), AuthorID: uuid.NewString(), Content: "c"}); err == nil {
		t.Error("CreatePost against a missing topic should fail")
	}
}

func TestIncrementViews(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")

	topic, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: uuid.NewString(), Title: "Popular", Content: "c"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}

	for range 3 {
		if _, err := s.IncrementViews(topic.ID); err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}
	if got := s.Topics.GetByID(topic.ID); got.Views != 3 {
		t.Errorf("Views should be 3, got %d", got.Views)
	}

	missing, err := s.IncrementViews(uuid.NewString())
	if err != nil {
		t.Fatalf("IncrementViews of missing topic should not error: %v", err)
	}
	if missing != nil {
		t.Error("IncrementViews of missing topic should return nil")
	}
}

func TestReactions_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()
	user := uuid.NewString()

	topic, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "React", Content: "c"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	post := s.Posts.FindBy("topicId", topic.ID)[0]

	for range 2 {
		if _, err := s.AddReaction(post.ID, user, "like"); err != nil {
			t.Fatalf("AddReaction failed: %v", err)
		}
	}
	got := s.Posts.GetByID(post.ID)
	if users := got.Reactions["like"]; len(users) != 1 || users[0] != user {
		t.Errorf("AddReaction should be idempotent, got %v", got.Reactions)
	}
	if !got.HasReaction("like", user) {
		t.Error("HasReaction should report the stored reaction")
	}

	for range 2 {
		if _, err := s.RemoveReaction(post.ID, user, "like"); err != nil {
			t.Fatalf("RemoveReaction failed: %v", err)
		}
	}
	got = s.Posts.GetByID(post.ID)
	if got.HasReaction("like", user) {
		t.Error("Reaction should be gone after RemoveReaction")
	}
}

func TestGetForumWithStats(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()

	topic, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "Busy", Content: "c"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	for range 7 {
		if _, err := s.CreatePost(models.Post{TopicID: topic.ID, AuthorID: author, Content: "reply"}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	stats := s.GetForumWithStats(forum.ID)
	if stats == nil {
		t.Fatal("GetForumWithStats returned nil for existing forum")
	}
	if stats.TopicCount != 1 || stats.PostCount != 8 {
		t.Errorf("Stats counts mismatch: %d/%d", stats.TopicCount, stats.PostCount)
	}
	if len(stats.RecentPosts) != 5 {
		t.Fatalf("RecentPosts should cap at 5, got %d", len(stats.RecentPosts))
	}
	for i := 1; i < len(stats.RecentPosts); i++ {
		if stats.RecentPosts[i].CreatedAt.After(stats.RecentPosts[i-1].CreatedAt) {
			t.Error("RecentPosts should be newest first")
			break
		}
	}

	if missing := s.GetForumWithStats(uuid.NewString()); missing != nil {
		t.Error("GetForumWithStats of missing forum should return nil")
	}
}

func TestGetTopicWithPosts(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()

	topic, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "Thread", Content: "opener"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	for range 2 {
		if _, err := s.CreatePost(models.Post{TopicID: topic.ID, AuthorID: author, Content: "reply"}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	thread := s.GetTopicWithPosts(topic.ID)
	if thread == nil {
		t.Fatal("GetTopicWithPosts returned nil for existing topic")
	}
	if len(thread.Posts) != 3 {
		t.Fatalf("Expected 3 posts in thread, got %d", len(thread.Posts))
	}
	if !thread.Posts[0].IsFirstPost {
		t.Error("Thread should open with the first post")
	}
	for i := 1; i < len(thread.Posts); i++ {
		if thread.Posts[i].CreatedAt.Before(thread.Posts[i-1].CreatedAt) {
			t.Error("Thread posts should be oldest first")
			break
		}
	}
}

func TestRecomputeForumCounts_RepairsDrift(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()

	if _, err := s.CreateTopic(models.Topic{ForumID: forum.ID, AuthorID: author, Title: "One", Content: "c"}); err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}

	// Corrupt the aggregates directly, then recount.
	if _, err := s.Forums.Update(forum.ID, map[string]any{"topicCount": 99, "postCount": 99}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := s.RecomputeForumCounts(forum.ID); err != nil {
		t.Fatalf("RecomputeForumCounts failed: %v", err)
	}

	f := s.Forums.GetByID(forum.ID)
	if f.TopicCount != 1 || f.PostCount != 1 {
		t.Errorf("Recount should repair drift, got %d/%d", f.TopicCount, f.PostCount)
	}
}
