package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/datastore/models"
)

func TestFindUserByEmail(t *testing.T) {
	s := setupTestStore(t)
	user := newTestUser(t, s, "ada@example.com")
	newTestUser(t, s, "grace@example.com")

	got := s.FindUserByEmail("ada@example.com")
	if got == nil || got.ID != user.ID {
		t.Fatalf("FindUserByEmail mismatch: %+v", got)
	}
	if got := s.FindUserByEmail("nobody@example.com"); got != nil {
		t.Error("FindUserByEmail of unknown address should return nil")
	}
}

func TestConversation(t *testing.T) {
	s := setupTestStore(t)
	alice := uuid.NewString()
	bob := uuid.NewString()
	carol := uuid.NewString()

	send := func(from, to, content string) {
		t.Helper()
		if _, err := s.Messages.Create(models.Message{SenderID: from, ReceiverID: to, Content: content}); err != nil {
			t.Fatalf("Create message failed: %v", err)
		}
	}
	send(alice, bob, "hi bob")
	send(bob, alice, "hi alice")
	send(alice, carol, "hi carol")
	send(alice, bob, "how are you")

	conv := s.Conversation(alice, bob)
	if len(conv) != 3 {
		t.Fatalf("Expected 3 messages between alice and bob, got %d", len(conv))
	}
	for i := 1; i < len(conv); i++ {
		if conv[i].CreatedAt.Before(conv[i-1].CreatedAt) {
			t.Error("Conversation should be oldest first")
			break
		}
	}

	// Undirected: either participant order yields the same transcript.
	reversed := s.Conversation(bob, alice)
	if len(reversed) != len(conv) {
		t.Fatalf("Conversation should be symmetric, got %d vs %d", len(reversed), len(conv))
	}
	for i := range conv {
		if conv[i].ID != reversed[i].ID {
			t.Error("Conversation order should not depend on participant order")
			break
		}
	}
}

func TestUpcomingSessions(t *testing.T) {
	s := setupTestStore(t)
	mentor := uuid.NewString()
	mentee := uuid.NewString()

	schedule := func(title string, start time.Time) {
		t.Helper()
		sess := models.Session{
			MentorID:  mentor,
			MenteeID:  mentee,
			Title:     title,
			StartTime: start,
			Status:    models.SessionScheduled,
		}
		if _, err := s.Sessions.Create(sess); err != nil {
			t.Fatalf("Create session failed: %v", err)
		}
	}
	now := time.Now()
	schedule("past", now.Add(-time.Hour))
	schedule("later", now.Add(2*time.Hour))
	schedule("soon", now.Add(time.Hour))

	upcoming := s.UpcomingSessions()
	if len(upcoming) != 2 {
		t.Fatalf("Expected 2 upcoming sessions, got %d", len(upcoming))
	}
	if upcoming[0].Title != "soon" || upcoming[1].Title != "later" {
		t.Errorf("Upcoming sessions should be soonest first: %q, %q", upcoming[0].Title, upcoming[1].Title)
	}
}

func TestFeaturedResources(t *testing.T) {
	s := setupTestStore(t)

	add := func(title string, featured bool) {
		t.Helper()
		res := models.Resource{Title: title, URL: "https://example.com/" + title, Featured: featured}
		if _, err := s.Resources.Create(res); err != nil {
			t.Fatalf("Create resource failed: %v", err)
		}
	}
	add("plain", false)
	add("starred", true)
	add("also-starred", true)

	featured := s.FeaturedResources()
	if len(featured) != 2 {
		t.Fatalf("Expected 2 featured resources, got %d", len(featured))
	}
	for _, r := range featured {
		if !r.Featured {
			t.Errorf("Non-featured resource %q leaked into results", r.Title)
		}
	}
}

func TestSearchTopics(t *testing.T) {
	s := setupTestStore(t)
	forum := newTestForum(t, s, "General")
	author := uuid.NewString()

	add := func(title, content string, tags ...string) {
		t.Helper()
		topic := models.Topic{ForumID: forum.ID, AuthorID: author, Title: title, Content: content, Tags: tags}
		if _, err := s.Topics.Create(topic); err != nil {
			t.Fatalf("Create topic failed: %v", err)
		}
	}
	add("Getting started with Go", "generics and interfaces", "golang")
	add("Career advice", "how to find a Mentor", "careers")
	add("Off topic", "weekend plans", "chat")

	if got := s.SearchTopics("GENERICS"); len(got) != 1 {
		t.Errorf("Title/content search should be case-insensitive, got %d matches", len(got))
	}
	if got := s.SearchTopics("mentor"); len(got) != 1 {
		t.Errorf("Content search failed, got %d matches", len(got))
	}
	if got := s.SearchTopics("careers"); len(got) != 1 {
		t.Errorf("Tag search failed, got %d matches", len(got))
	}
	if got := s.SearchTopics("quantum"); len(got) != 0 {
		t.Errorf("Unmatched query should yield nothing, got %d", len(got))
	}
	if got := s.SearchTopics("   "); len(got) != 0 {
		t.Errorf("Blank query should yield nothing, got %d", len(got))
	}
}
