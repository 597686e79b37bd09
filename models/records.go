package models

import "time"

// Record holds the fields shared by every stored entity. Collections embed
// it so the store can assign ids and maintain timestamps uniformly.
type Record struct {
	ID        string    `json:"id" yaml:"id" toml:"id" validate:"required"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt" toml:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt" validate:"required"`
}

// Entity is the capability the generic store requires of every record.
type Entity interface {
	GetID() string
	SetID(id string)
	// Stamp sets both timestamps at creation time.
	Stamp(now time.Time)
	// Touch refreshes UpdatedAt after a mutation.
	Touch(now time.Time)
}

func (r *Record) GetID() string     { return r.ID }
func (r *Record) SetID(id string)   { r.ID = id }
func (r *Record) Touch(t time.Time) { r.UpdatedAt = t }

func (r *Record) Stamp(t time.Time) {
	r.CreatedAt = t
	r.UpdatedAt = t
}

// UserRole represents the possible roles of a platform user.
type UserRole string

const (
	RoleMentor UserRole = "mentor"
	RoleMentee UserRole = "mentee"
	RoleAdmin  UserRole = "admin"
)

// User is an account record. Users form the only map-keyed collection;
// everything else is stored as an ordered list.
type User struct {
	Record `yaml:",inline"`

	Email string   `json:"email" yaml:"email" toml:"email" validate:"required,email"`
	Name  string   `json:"name" yaml:"name" toml:"name" validate:"required,min=1,max=255"`
	Role  UserRole `json:"role" yaml:"role" toml:"role" validate:"required,oneof=mentor mentee admin"`
	Bio   string   `json:"bio,omitempty" yaml:"bio,omitempty" toml:"bio,omitempty"`
}

// Message is a direct message between two users. Conversations are
// undirected: retrieval matches either ordering of the two participants.
type Message struct {
	Record `yaml:",inline"`

	SenderID   string `json:"senderId" yaml:"senderId" toml:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" yaml:"receiverId" toml:"receiverId" validate:"required"`
	Content    string `json:"content" yaml:"content" toml:"content" validate:"required"`
	Read       bool   `json:"read" yaml:"read" toml:"read"`
}

// SessionStatus represents the possible statuses of a mentoring session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Session is a scheduled mentoring session between a mentor and a mentee.
type Session struct {
	Record `yaml:",inline"`

	MentorID  string        `json:"mentorId" yaml:"mentorId" toml:"mentorId" validate:"required"`
	MenteeID  string        `json:"menteeId" yaml:"menteeId" toml:"menteeId" validate:"required"`
	Title     string        `json:"title" yaml:"title" toml:"title" validate:"required,min=1,max=255"`
	StartTime time.Time     `json:"startTime" yaml:"startTime" toml:"startTime" validate:"required"`
	EndTime   *time.Time    `json:"endTime,omitempty" yaml:"endTime,omitempty" toml:"endTime,omitempty"`
	Status    SessionStatus `json:"status" yaml:"status" toml:"status" validate:"required,oneof=scheduled completed cancelled"`
}

// Resource is a shared learning resource.
type Resource struct {
	Record `yaml:",inline"`

	Title       string   `json:"title" yaml:"title" toml:"title" validate:"required,min=1,max=255"`
	URL         string   `json:"url" yaml:"url" toml:"url" validate:"required,url"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	Featured    bool     `json:"featured" yaml:"featured" toml:"featured"`
}

// Forum is a discussion board. TopicCount and PostCount are denormalized
// aggregates: they duplicate what a scan of topics/posts would yield and are
// recomputed from a full recount on every topic or post mutation, never
// incremented in place.
type Forum struct {
	Record `yaml:",inline"`

	Name        string `json:"name" yaml:"name" toml:"name" validate:"required,min=1,max=255"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	TopicCount  int    `json:"topicCount" yaml:"topicCount" toml:"topicCount" validate:"min=0"`
	PostCount   int    `json:"postCount" yaml:"postCount" toml:"postCount" validate:"min=0"`
}

// Topic is a discussion thread inside a forum. PostCount and LastPostAt are
// denormalized and maintained by the store on every post create/remove under
// the topic; LastPostAt falls back to the topic's own CreatedAt when no
// posts remain.
type Topic struct {
	Record `yaml:",inline"`

	ForumID    string    `json:"forumId" yaml:"forumId" toml:"forumId" validate:"required"`
	AuthorID   string    `json:"authorId" yaml:"authorId" toml:"authorId" validate:"required"`
	Title      string    `json:"title" yaml:"title" toml:"title" validate:"required,min=1,max=255"`
	Content    string    `json:"content" yaml:"content" toml:"content" validate:"required"`
	Tags       []string  `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	Views      int       `json:"views" yaml:"views" toml:"views" validate:"min=0"`
	PostCount  int       `json:"postCount" yaml:"postCount" toml:"postCount" validate:"min=0"`
	LastPostAt time.Time `json:"lastPostAt" yaml:"lastPostAt" toml:"lastPostAt"`
}

// PostStatus represents the lifecycle status of a post. Only "active" is in
// use today; hidden and deleted are reserved for soft moderation states.
type PostStatus string

const (
	PostActive  PostStatus = "active"
	PostHidden  PostStatus = "hidden"
	PostDeleted PostStatus = "deleted"
)

// Post is a single reply inside a topic. ForumID is carried redundantly so
// forum-level recounts never need to join through the topic. Reactions maps
// a reaction type ("like", "helpful", ...) to the set of user ids that added
// it; a user id appears at most once per reaction type.
type Post struct {
	Record `yaml:",inline"`

	TopicID     string              `json:"topicId" yaml:"topicId" toml:"topicId" validate:"required"`
	ForumID     string              `json:"forumId" yaml:"forumId" toml:"forumId" validate:"required"`
	AuthorID    string              `json:"authorId" yaml:"authorId" toml:"authorId" validate:"required"`
	Content     string              `json:"content" yaml:"content" toml:"content" validate:"required"`
	IsFirstPost bool                `json:"isFirstPost" yaml:"isFirstPost" toml:"isFirstPost"`
	Status      PostStatus          `json:"status" yaml:"status" toml:"status" validate:"required,oneof=active hidden deleted"`
	Reactions   map[string][]string `json:"reactions" yaml:"reactions" toml:"reactions"`
}

// HasReaction reports whether userID is present in the named reaction set.
func (p *Post) HasReaction(reaction, userID string) bool {
	for _, id := range p.Reactions[reaction] {
		if id == userID {
			return true
		}
	}
	return false
}
