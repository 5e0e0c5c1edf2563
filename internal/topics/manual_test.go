package topics

import (
	"testing"
	"time"

	"localpress/internal/core"
	"localpress/internal/store"
)

func manualTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateManualTopic(t *testing.T) {
	st := manualTestStore(t)
	now := time.Now().UTC()

	topic, err := CreateManualTopic(st, "  Why Buy in Cedar Park Now  ", "Rate-drop angle", []string{"cedar park", "buying"}, now)
	if err != nil {
		t.Fatalf("CreateManualTopic failed: %v", err)
	}
	if topic.Slug != "why-buy-in-cedar-park-now" {
		t.Errorf("slug = %s", topic.Slug)
	}
	if topic.Status != core.TopicPending {
		t.Errorf("status = %s, want pending", topic.Status)
	}
	if topic.Source != SourceManual {
		t.Errorf("source = %s, want manual", topic.Source)
	}
	if topic.TotalScore <= 0 {
		t.Error("manual topic must clear the discovery score filter")
	}

	stored, err := st.GetTopic(topic.ID)
	if err != nil {
		t.Fatalf("manual topic was not persisted: %v", err)
	}
	if len(stored.Keywords) != 2 || stored.Keywords[0] != "cedar park" {
		t.Errorf("keywords not persisted: %v", stored.Keywords)
	}
}

func TestCreateManualTopic_IdempotentOnSlug(t *testing.T) {
	st := manualTestStore(t)
	now := time.Now().UTC()

	first, err := CreateManualTopic(st, "Round Rock School Ratings", "first entry", nil, now)
	if err != nil {
		t.Fatalf("CreateManualTopic failed: %v", err)
	}
	second, err := CreateManualTopic(st, "Round Rock School Ratings", "different description", nil, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second CreateManualTopic failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new topic: %s vs %s", second.ID, first.ID)
	}
	if second.Description != "first entry" {
		t.Errorf("existing topic was modified: %q", second.Description)
	}
}

func TestCreateManualTopic_EmptyTitleRejected(t *testing.T) {
	st := manualTestStore(t)
	if _, err := CreateManualTopic(st, "!!!", "", nil, time.Now()); err == nil {
		t.Fatal("expected error for title with no slug")
	}
}
