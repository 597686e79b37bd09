package store

import (
	"sort"
	"strings"
	"time"

	"github.com/mentorhub/datastore/models"
)

// Read-side composites built from the CRUD primitives. All of these degrade
// like any other read: missing or corrupt backing data yields empty results,
// never an error.

// FindUserByEmail returns the user with the given email, or nil.
func (s *Store) FindUserByEmail(email string) *models.User {
	matches := s.Users.FindBy("email", email)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// Conversation returns every message exchanged between the two users, in
// ascending timestamp order. Undirected: either user may be the sender, so
// Conversation(a, b) and Conversation(b, a) are identical.
func (s *Store) Conversation(userA, userB string) []models.Message {
	msgs := s.Messages.Filter(func(m models.Message) bool {
		return (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA)
	})
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

// UpcomingSessions returns sessions whose start time is strictly in the
// future, soonest first.
func (s *Store) UpcomingSessions() []models.Session {
	now := time.Now()
	sessions := s.Sessions.Filter(func(sess models.Session) bool {
		return sess.StartTime.After(now)
	})
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
	return sessions
}

// FeaturedResources returns the resources flagged as featured, in stored
// order.
func (s *Store) FeaturedResources() []models.Resource {
	return s.Resources.FindBy("featured", true)
}

// SearchTopics returns topics whose title, content, or any tag contains the
// query, case-insensitively. An empty query matches nothing.
func (s *Store) SearchTopics(query string) []models.Topic {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Topic{}
	}
	return s.Topics.Filter(func(t models.Topic) bool {
		if strings.Contains(strings.ToLower(t.Title), q) {
			return true
		}
		if strings.Contains(strings.ToLower(t.Content), q) {
			return true
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}
