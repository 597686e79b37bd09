package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/mentorhub/datastore/models"
)

func TestApplyUpdates_MergesByJSONTag(t *testing.T) {
	topic := models.Topic{Title: "before", Content: "body", Views: 1}
	updates := map[string]any{
		"title": "after",
		"views": 5,
		"tags":  []any{"go", "help"},
	}
	if err := applyUpdates(&topic, updates); err != nil {
		t.Fatalf("applyUpdates failed: %v", err)
	}
	if topic.Title != "after" {
		t.Errorf("Title not updated: %q", topic.Title)
	}
	if topic.Views != 5 {
		t.Errorf("Views not updated: %d", topic.Views)
	}
	if topic.Content != "body" {
		t.Errorf("Untouched field changed: %q", topic.Content)
	}
	if len(topic.Tags) != 2 || topic.Tags[0] != "go" {
		t.Errorf("Slice conversion failed: %v", topic.Tags)
	}
}

func TestApplyUpdates_ProtectsManagedFields(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	topic := models.Topic{Record: models.Record{ID: "keep", CreatedAt: created, UpdatedAt: created}}

	updates := map[string]any{
		"id":        "stolen",
		"createdAt": time.Now(),
		"updatedAt": time.Now(),
		"unknown":   "ignored",
	}
	if err := applyUpdates(&topic, updates); err != nil {
		t.Fatalf("applyUpdates failed: %v", err)
	}
	if topic.ID != "keep" {
		t.Errorf("id must never be overwritten, got %q", topic.ID)
	}
	if !topic.CreatedAt.Equal(created) {
		t.Errorf("createdAt must never be overwritten, got %v", topic.CreatedAt)
	}
}

func TestApplyUpdates_NamedStringTypes(t *testing.T) {
	user := models.User{Role: models.RoleMentee}
	if err := applyUpdates(&user, map[string]any{"role": "mentor"}); err != nil {
		t.Fatalf("applyUpdates failed: %v", err)
	}
	if user.Role != models.RoleMentor {
		t.Errorf("Untyped string should convert to the named type, got %q", user.Role)
	}
}

func TestApplyUpdates_NumericWidening(t *testing.T) {
	// JSON decoding hands back float64 for every number.
	topic := models.Topic{}
	if err := applyUpdates(&topic, map[string]any{"views": float64(7)}); err != nil {
		t.Fatalf("applyUpdates failed: %v", err)
	}
	if topic.Views != 7 {
		t.Errorf("float64 should coerce into an int field, got %d", topic.Views)
	}
}

func TestApplyUpdates_RejectsIntToString(t *testing.T) {
	topic := models.Topic{Title: "keep"}
	if err := applyUpdates(&topic, map[string]any{"title": 42}); err == nil {
		t.Error("int into a string field should be rejected, not rune-converted")
	}
	if topic.Title != "keep" {
		t.Errorf("Failed update should leave the field intact, got %q", topic.Title)
	}
}

func TestApplyUpdates_TimestampString(t *testing.T) {
	sess := models.Session{}
	if err := applyUpdates(&sess, map[string]any{"startTime": "2026-03-01T10:00:00Z"}); err != nil {
		t.Fatalf("applyUpdates failed: %v", err)
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !sess.StartTime.Equal(want) {
		t.Errorf("RFC 3339 string should parse into a time field, got %v", sess.StartTime)
	}
}

func TestApplyUpdates_PointerTarget(t *testing.T) {
	sess := models.Session{}
	stamp := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	if err := applyUpdates(&sess, map[string]any{"endTime": stamp}); err != nil {
		t.Fatalf("applyUpdates failed: %v", err)
	}
	if sess.EndTime == nil || !sess.EndTime.Equal(stamp) {
		t.Errorf("Value should be boxed into the pointer field, got %v", sess.EndTime)
	}

	if err := applyUpdates(&sess, map[string]any{"endTime": nil}); err != nil {
		t.Fatalf("applyUpdates failed: %v", err)
	}
	if sess.EndTime != nil {
		t.Errorf("nil should clear the pointer field, got %v", sess.EndTime)
	}
}

func TestFieldEquals(t *testing.T) {
	topic := models.Topic{ForumID: "f1", Views: 3, Tags: []string{"go"}}

	if !fieldEquals(topic, "forumId", "f1") {
		t.Error("Exact string match should succeed")
	}
	if fieldEquals(topic, "forumId", "f2") {
		t.Error("Mismatched value should fail")
	}
	if !fieldEquals(topic, "views", 3) {
		t.Error("Numeric match should succeed")
	}
	if fieldEquals(topic, "noSuchField", "x") {
		t.Error("Unknown field should never match")
	}

	user := models.User{Role: models.RoleAdmin}
	if !fieldEquals(user, "role", "admin") {
		t.Error("Untyped string should match a named string type")
	}

	res := models.Resource{Featured: true}
	if !fieldEquals(res, "featured", true) {
		t.Error("Bool match should succeed")
	}
	if fieldEquals(models.Resource{}, "featured", true) {
		t.Error("Bool mismatch should fail")
	}
}

func TestFieldIndexes_WalksEmbeddedRecord(t *testing.T) {
	idx := fieldIndexes(reflect.TypeOf(models.Topic{}))
	if _, ok := idx["id"]; !ok {
		t.Error("Embedded Record fields should be addressable by their json tag")
	}
	if _, ok := idx["forumId"]; !ok {
		t.Error("Outer fields should be addressable by their json tag")
	}
}
