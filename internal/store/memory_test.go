package store

import (
	"context"
	"testing"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// Upserting the same event id twice must leave exactly one stored copy
// reflecting the second write.
func TestMemoryEventsUpsertIsIdempotentReplace(t *testing.T) {
	repo := NewMemoryEvents()
	ctx := context.Background()

	first := schedule.Event{EventID: "ev1", CourseID: "CISC101", Instructor: "Smith", LocationType: schedule.InPerson}
	second := schedule.Event{EventID: "ev1", CourseID: "CISC101", Instructor: "Jones", Location: "Online", LocationType: schedule.Virtual}

	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if repo.Len() != 1 {
		t.Fatalf("stored %d events, want 1", repo.Len())
	}

	got, ok := repo.Get("ev1")
	if !ok {
		t.Fatal("event not found after upsert")
	}
	if got != second {
		t.Errorf("stored event = %+v, want the second write %+v", got, second)
	}
}

func TestMemoryRemindersReplaceAndDelete(t *testing.T) {
	repo := NewMemoryReminders()
	ctx := context.Background()

	if err := repo.Record(ctx, Reminder{UserID: "u1", EventID: "ev1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.Record(ctx, Reminder{UserID: "u1", EventID: "ev1"}); err != nil {
		t.Fatalf("second record: %v", err)
	}
	if _, ok := repo.Get("u1", "ev1"); !ok {
		t.Fatal("reminder not found after record")
	}

	if err := repo.Delete(ctx, "u1", "ev1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.Get("u1", "ev1"); ok {
		t.Error("reminder still present after delete")
	}
}
