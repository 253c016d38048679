package reminder

import (
	"testing"
	"time"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

type fired struct {
	userID string
	ev     schedule.Event
}

func newTestScheduler(t *testing.T) (*Scheduler, chan fired) {
	t.Helper()
	ch := make(chan fired, 4)
	s := NewScheduler(func(userID string, ev schedule.Event) {
		ch <- fired{userID: userID, ev: ev}
	})
	t.Cleanup(s.Stop)
	return s, ch
}

func TestScheduleFires(t *testing.T) {
	s, ch := newTestScheduler(t)

	ev := schedule.Event{EventID: "ev1", CourseID: "CISC101"}
	if err := s.Schedule("user1", ev, time.Now().Add(20*time.Millisecond)); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	select {
	case got := <-ch:
		if got.userID != "user1" || got.ev.EventID != "ev1" {
			t.Errorf("fired %+v, want user1/ev1", got)
		}
	case <-time.After(time.Second):
		t.Fatal("reminder never fired")
	}
}

func TestScheduleRejectsPast(t *testing.T) {
	s, _ := newTestScheduler(t)

	ev := schedule.Event{EventID: "ev1"}
	if err := s.Schedule("user1", ev, time.Now().Add(-time.Minute)); err != ErrPast {
		t.Errorf("Schedule() error = %v, want ErrPast", err)
	}
}

// A second reminder for the same (user, event) pair replaces the first,
// so exactly one notification is delivered.
func TestScheduleSupersedesPending(t *testing.T) {
	s, ch := newTestScheduler(t)

	ev := schedule.Event{EventID: "ev1", CourseID: "CISC101"}
	if err := s.Schedule("user1", ev, time.Now().Add(30*time.Millisecond)); err != nil {
		t.Fatalf("first Schedule() error = %v", err)
	}
	replacement := ev
	replacement.Instructor = "Jones"
	if err := s.Schedule("user1", replacement, time.Now().Add(60*time.Millisecond)); err != nil {
		t.Fatalf("second Schedule() error = %v", err)
	}

	select {
	case got := <-ch:
		if got.ev.Instructor != "Jones" {
			t.Errorf("fired %+v, want the superseding reminder", got.ev)
		}
	case <-time.After(time.Second):
		t.Fatal("reminder never fired")
	}

	select {
	case got := <-ch:
		t.Errorf("second notification %+v, want exactly one", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelPreventsFire(t *testing.T) {
	s, ch := newTestScheduler(t)

	ev := schedule.Event{EventID: "ev1"}
	if err := s.Schedule("user1", ev, time.Now().Add(30*time.Millisecond)); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if !s.Cancel("user1", "ev1") {
		t.Fatal("Cancel() = false, want a pending reminder")
	}
	if s.Cancel("user1", "ev1") {
		t.Error("second Cancel() = true, want false once cleared")
	}

	select {
	case got := <-ch:
		t.Errorf("notification %+v after cancel", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemindersAreKeyedPerUserAndEvent(t *testing.T) {
	s, ch := newTestScheduler(t)

	ev := schedule.Event{EventID: "ev1"}
	at := time.Now().Add(20 * time.Millisecond)
	if err := s.Schedule("user1", ev, at); err != nil {
		t.Fatalf("Schedule(user1) error = %v", err)
	}
	if err := s.Schedule("user2", ev, at); err != nil {
		t.Fatalf("Schedule(user2) error = %v", err)
	}

	users := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case got := <-ch:
			users[got.userID] = true
		case <-time.After(time.Second):
			t.Fatal("missing notification")
		}
	}
	if !users["user1"] || !users["user2"] {
		t.Errorf("fired for %v, want both users", users)
	}
}
