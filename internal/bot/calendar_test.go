package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gitea.jw6.us/james/coursebot/internal/schedule"
	"gitea.jw6.us/james/coursebot/internal/store"
)

type fakeSource struct {
	events []schedule.RawEvent
	err    error
	calls  int
}

func (s *fakeSource) ListWindow(_ context.Context, _ time.Time, _ time.Duration) ([]schedule.RawEvent, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

type openCall struct {
	sessionID string
	view      PageView
}

type fakeUI struct {
	rejects  []string
	notifies []string
	opened   *openCall
	renderer *fakeRenderer
	openErr  error
}

func (u *fakeUI) Reject(_ context.Context, msg string) error {
	u.rejects = append(u.rejects, msg)
	return nil
}

func (u *fakeUI) Notify(_ context.Context, msg string) error {
	u.notifies = append(u.notifies, msg)
	return nil
}

func (u *fakeUI) OpenSession(_ context.Context, sessionID string, v PageView) (PageRenderer, error) {
	if u.openErr != nil {
		return nil, u.openErr
	}
	u.opened = &openCall{sessionID: sessionID, view: v}
	return u.renderer, nil
}

// failingRepo fails the upsert for one event id and delegates the rest.
type failingRepo struct {
	failID string
	inner  *store.MemoryEvents
}

func (r *failingRepo) Upsert(ctx context.Context, ev schedule.Event) error {
	if ev.EventID == r.failID {
		return errors.New("storage unavailable")
	}
	return r.inner.Upsert(ctx, ev)
}

func sevenRawEvents() []schedule.RawEvent {
	raw := make([]schedule.RawEvent, 7)
	for i := range raw {
		raw[i] = schedule.RawEvent{
			ID:            fmt.Sprintf("ev%d", i+1),
			Summary:       fmt.Sprintf("CISC10%d - Smith - In Person", i+1),
			StartDateTime: fmt.Sprintf("2024-12-%02dT10:00:00Z", i+10),
		}
	}
	return raw
}

func newTestCommand(source *fakeSource, repo store.EventRepository) (*CalendarCommand, *FetchCache) {
	cache := NewFetchCache()
	cmd := NewCalendarCommand(source, repo, cache)
	return cmd, cache
}

func TestCalendarNoFiltersOpensPagedSession(t *testing.T) {
	source := &fakeSource{events: sevenRawEvents()}
	repo := store.NewMemoryEvents()
	cmd, cache := newTestCommand(source, repo)
	ui := &fakeUI{renderer: newFakeRenderer()}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cmd.Execute(ctx, "user1", Options{}, ui)

	if ui.opened == nil {
		t.Fatalf("no session opened; rejects=%v notifies=%v", ui.rejects, ui.notifies)
	}

	v := ui.opened.view
	if v.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3 for 7 events", v.PageCount)
	}
	if len(v.Events) != 3 || v.Events[0].EventID != "ev1" || v.Events[2].EventID != "ev3" {
		t.Errorf("page 0 events = %v, want ev1..ev3", v.Events)
	}
	if !v.PrevDisabled {
		t.Error("initial render must disable previous")
	}
	if v.NextDisabled {
		t.Error("initial render must enable next when there are more pages")
	}

	if repo.Len() != 7 {
		t.Errorf("repository has %d events, want 7", repo.Len())
	}
	if cached, ok := cache.Get("user1"); !ok || len(cached) != 7 {
		t.Errorf("cache = %v (ok=%v), want the full batch", cached, ok)
	}

	// Navigate to the last page through Dispatch, as the adapter would.
	cmd.Dispatch(ui.opened.sessionID, NavNext)
	waitRender(t, ui.renderer)
	cmd.Dispatch(ui.opened.sessionID, NavNext)
	last := waitRender(t, ui.renderer)

	if last.PageIndex != 2 || !last.NextDisabled {
		t.Errorf("last page view = %+v, want page 2 with next disabled", last)
	}
	if len(last.Events) != 1 || last.Events[0].EventID != "ev7" {
		t.Errorf("last page events = %v, want only ev7", last.Events)
	}
}

func TestCalendarFilterMatchesNothing(t *testing.T) {
	source := &fakeSource{events: sevenRawEvents()}
	cmd, _ := newTestCommand(source, store.NewMemoryEvents())
	ui := &fakeUI{renderer: newFakeRenderer()}

	cmd.Execute(context.Background(), "user1", Options{ClassName: "cisc999"}, ui)

	if ui.opened != nil {
		t.Fatal("session opened for an empty filter result")
	}
	if len(ui.notifies) != 1 || !strings.Contains(ui.notifies[0], "matching your filters") {
		t.Errorf("notifies = %v, want the filtered-empty message", ui.notifies)
	}
}

func TestCalendarEmptyProviderWindow(t *testing.T) {
	source := &fakeSource{}
	cmd, _ := newTestCommand(source, store.NewMemoryEvents())
	ui := &fakeUI{renderer: newFakeRenderer()}

	cmd.Execute(context.Background(), "user1", Options{}, ui)

	if len(ui.notifies) != 1 || !strings.Contains(ui.notifies[0], "next 10 days") {
		t.Errorf("notifies = %v, want the empty-window message", ui.notifies)
	}
}

func TestCalendarValidationRejectsBeforeFetch(t *testing.T) {
	testCases := []struct {
		name string
		opts Options
	}{
		{name: "bad classname", opts: Options{ClassName: "underwaterbasketweaving101"}},
		{name: "bad location type", opts: Options{LocationType: "virtual"}},
		{name: "impossible date", opts: Options{EventDate: "december 32"}},
		{name: "bad weekday", opts: Options{DayOfWeek: "caturday"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			source := &fakeSource{events: sevenRawEvents()}
			cmd, _ := newTestCommand(source, store.NewMemoryEvents())
			ui := &fakeUI{renderer: newFakeRenderer()}

			cmd.Execute(context.Background(), "user1", tc.opts, ui)

			if source.calls != 0 {
				t.Errorf("provider called %d times, want 0 before validation", source.calls)
			}
			if len(ui.rejects) != 1 {
				t.Errorf("rejects = %v, want exactly one rejection", ui.rejects)
			}
			if ui.opened != nil {
				t.Error("session opened despite invalid options")
			}
		})
	}
}

func TestCalendarProviderFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("connection reset")}
	cmd, _ := newTestCommand(source, store.NewMemoryEvents())
	ui := &fakeUI{renderer: newFakeRenderer()}

	cmd.Execute(context.Background(), "user1", Options{}, ui)

	if ui.opened != nil {
		t.Fatal("session opened despite a provider failure")
	}
	if len(ui.notifies) != 1 || !strings.Contains(ui.notifies[0], "calendar service") {
		t.Errorf("notifies = %v, want the provider-failure message", ui.notifies)
	}
}

// One failed upsert is skipped; the rest of the batch persists and the
// user still sees all fetched events.
func TestCalendarUpsertFailureDoesNotAbortBatch(t *testing.T) {
	source := &fakeSource{events: sevenRawEvents()}
	inner := store.NewMemoryEvents()
	cmd, cache := newTestCommand(source, &failingRepo{failID: "ev4", inner: inner})
	ui := &fakeUI{renderer: newFakeRenderer()}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cmd.Execute(ctx, "user1", Options{}, ui)

	if inner.Len() != 6 {
		t.Errorf("repository has %d events, want 6 with ev4 skipped", inner.Len())
	}
	if ui.opened == nil || ui.opened.view.PageCount != 3 {
		t.Fatalf("paged session = %+v, want all 7 events still browsable", ui.opened)
	}
	if cached, _ := cache.Get("user1"); len(cached) != 7 {
		t.Errorf("cache has %d events, want 7", len(cached))
	}
}

func TestCalendarRateLimitsRepeatFetches(t *testing.T) {
	source := &fakeSource{events: sevenRawEvents()}
	cmd, _ := newTestCommand(source, store.NewMemoryEvents())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var lastUI *fakeUI
	for i := 0; i < 3; i++ {
		lastUI = &fakeUI{renderer: newFakeRenderer()}
		cmd.Execute(ctx, "user1", Options{}, lastUI)
	}

	if source.calls != 2 {
		t.Errorf("provider called %d times, want burst of 2", source.calls)
	}
	if len(lastUI.rejects) != 1 || !strings.Contains(lastUI.rejects[0], "too often") {
		t.Errorf("third invocation rejects = %v, want the rate-limit message", lastUI.rejects)
	}
}

func TestCalendarOpenSessionFailure(t *testing.T) {
	source := &fakeSource{events: sevenRawEvents()}
	cmd, _ := newTestCommand(source, store.NewMemoryEvents())
	ui := &fakeUI{renderer: newFakeRenderer(), openErr: errors.New("cannot DM user")}

	cmd.Execute(context.Background(), "user1", Options{}, ui)

	if len(ui.notifies) != 1 || !strings.Contains(ui.notifies[0], "event view") {
		t.Errorf("notifies = %v, want the open-failure message", ui.notifies)
	}
	// No controller was registered, so stale clicks find nothing.
	cmd.Dispatch("whatever", NavNext)
}

func TestCalendarCacheReplacedOnRefetch(t *testing.T) {
	source := &fakeSource{events: sevenRawEvents()}
	cmd, cache := newTestCommand(source, store.NewMemoryEvents())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cmd.Execute(ctx, "user1", Options{}, &fakeUI{renderer: newFakeRenderer()})

	source.events = source.events[:2]
	cmd.Execute(ctx, "user1", Options{}, &fakeUI{renderer: newFakeRenderer()})

	if cached, _ := cache.Get("user1"); len(cached) != 2 {
		t.Errorf("cache has %d events after refetch, want 2", len(cached))
	}
}
