package bot

import (
	"context"
	"log"
	"time"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// NavAction is a navigation event from the chat UI.
type NavAction int

const (
	NavPrev NavAction = iota
	NavNext
	NavDone
)

// PageView is everything a renderer needs to draw one page of a session.
// A Closed view has all navigation affordances stripped.
type PageView struct {
	Events       []schedule.Event
	PageIndex    int
	PageCount    int
	PrevDisabled bool
	NextDisabled bool
	Closed       bool
}

// PageRenderer edits the session's message in place.
type PageRenderer interface {
	Render(ctx context.Context, v PageView) error
	// Close renders the stripped view; acknowledge additionally sends a
	// closure message (explicit close only, never on timeout).
	Close(ctx context.Context, v PageView, acknowledge bool) error
}

// Controller owns one paging session's state machine. Actions are queued
// through an ordered channel and handled by a single goroutine, so a
// message edit always completes before the next action is applied and the
// visible page can never desynchronize from the page index.
type Controller struct {
	pager    *schedule.Pager
	renderer PageRenderer
	timeout  time.Duration
	onClose  func(reason string)

	page    int
	actions chan NavAction
	done    chan struct{}
}

func NewController(pager *schedule.Pager, renderer PageRenderer, timeout time.Duration, onClose func(reason string)) *Controller {
	return &Controller{
		pager:    pager,
		renderer: renderer,
		timeout:  timeout,
		onClose:  onClose,
		actions:  make(chan NavAction, 16),
		done:     make(chan struct{}),
	}
}

// Submit queues a navigation action in arrival order. Actions arriving
// after the session closed are swallowed: the remote buttons may already
// be disabled, but a race with a late click is possible.
func (c *Controller) Submit(a NavAction) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.actions <- a:
	default:
		// Queue full; dropping beats blocking the gateway handler.
	}
}

// Run serves the session until it is explicitly closed, idle past the
// timeout, or ctx is cancelled. The caller has already rendered the
// initial page.
func (c *Controller) Run(ctx context.Context) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Shutdown: strip affordances silently. ctx is already
			// cancelled, so the final edit gets a fresh context.
			c.finish(context.Background(), false, "shutdown")
			return
		case <-timer.C:
			c.finish(ctx, false, "timeout")
			return
		case a := <-c.actions:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(c.timeout)

			switch a {
			case NavPrev:
				if c.page > 0 {
					c.page--
					c.render(ctx)
				}
			case NavNext:
				if c.page < c.pager.PageCount()-1 {
					c.page++
					c.render(ctx)
				}
			case NavDone:
				c.finish(ctx, true, "done")
				return
			}
		}
	}
}

func (c *Controller) render(ctx context.Context) {
	if err := c.renderer.Render(ctx, viewFor(c.pager, c.page, false)); err != nil {
		log.Printf("paging: render page %d: %v", c.page, err)
	}
}

// finish transitions to Closed. Closed is terminal: done is closed before
// the final render, so even a render that completes late cannot be
// followed by an action that re-enables affordances.
func (c *Controller) finish(ctx context.Context, acknowledge bool, reason string) {
	close(c.done)
	if err := c.renderer.Close(ctx, viewFor(c.pager, c.page, true), acknowledge); err != nil {
		log.Printf("paging: close session: %v", err)
	}
	if c.onClose != nil {
		c.onClose(reason)
	}
}

// viewFor computes the rendered view for a page. The previous affordance
// is disabled on the first page and the next affordance on the last; a
// closed view disables everything.
func viewFor(p *schedule.Pager, page int, closed bool) PageView {
	count := p.PageCount()
	return PageView{
		Events:       p.Page(page),
		PageIndex:    page,
		PageCount:    count,
		PrevDisabled: closed || page == 0,
		NextDisabled: closed || page >= count-1,
		Closed:       closed,
	}
}
