package document

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tags := []string{"go", "search"}

	d, err := New("Hybrid Search", date, "", tags, "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Topic() != DefaultTopic {
		t.Errorf("expected default topic, got %q", d.Topic())
	}
	if d.ID() != 0 {
		t.Errorf("expected zero id, got %d", d.ID())
	}

	tags[0] = "mutated"
	if d.Tags()[0] != "go" {
		t.Error("tags must be copied on construction")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"no title", "", "body"},
		{"no content", "title", ""},
		{"too large", "title", strings.Repeat("x", MaxContentSize+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.title, time.Now(), "", nil, tt.content); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWithID(t *testing.T) {
	d, err := New("t", time.Now(), "Ops", nil, "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := d.WithID(42)
	if stored.ID() != 42 || d.ID() != 0 {
		t.Errorf("WithID must not mutate the receiver: %d / %d", stored.ID(), d.ID())
	}
	if stored.Topic() != "Ops" {
		t.Errorf("unexpected topic %q", stored.Topic())
	}
}
