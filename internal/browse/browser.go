// Package browse drives fetches against the session store.
//
// The façade decides between the two fetch shapes: a new query resets
// the session's cursor and replaces its items with the first page, a
// load-more appends the next page. Fetch functions returned here run on
// their own goroutine (as Bubble Tea commands); the completion is
// applied back through Apply, which drops anything stale.
package browse

import (
	"context"

	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/session"
	"github.com/abelbrown/mosaic/internal/source"
	"github.com/abelbrown/mosaic/internal/source/booru"
	"github.com/abelbrown/mosaic/internal/source/reddit"
	"github.com/abelbrown/mosaic/internal/source/youtube"
)

// Result is one fetch completion, tagged with the session and the
// generation it was started under.
type Result struct {
	SessionID string
	Gen       uint64
	Page      source.Page
	Err       error
}

// Fetch performs one page fetch when invoked. Nil when no fetch should
// run (reused tab, overlap guard).
type Fetch func(ctx context.Context) Result

// Browser is the aggregation façade over the three adapters.
type Browser struct {
	sessions *session.Store
	reddit   *reddit.Adapter
	booru    *booru.Adapter
	youtube  *youtube.Adapter
}

// New wires the façade. Any adapter may be nil if its source is not
// configured; opening a session for it fails with a validation error.
func New(sessions *session.Store, r *reddit.Adapter, b *booru.Adapter, y *youtube.Adapter) *Browser {
	return &Browser{sessions: sessions, reddit: r, booru: b, youtube: y}
}

// Sessions exposes the underlying store.
func (b *Browser) Sessions() *session.Store { return b.sessions }

// Open finds or creates a session for the given query.
//
// An identical open query is reused: the existing tab is switched to and
// no fetch runs - its accumulated items are still there. Otherwise a new
// session is created and a first-page fetch returned. Malformed queries
// are rejected here, before any session exists or any network is
// touched.
func (b *Browser) Open(t media.SourceType, title string, c session.Criteria) (string, Fetch, error) {
	if err := b.validate(t, c); err != nil {
		return "", nil, err
	}

	if id, ok := b.sessions.Find(t, c); ok {
		b.sessions.SwitchTo(id)
		logging.Debug("session reused", "id", id, "type", t)
		return id, nil, nil
	}

	id := b.sessions.Create(t, title, c)
	logging.Info("session created", "id", id, "type", t, "title", title)
	fetch, _ := b.NewQuery(id)
	return id, fetch, nil
}

// NewQuery restarts a session's query from the top: generation bumped,
// items cleared, cursor reset. Used on open, sort change, and manual
// retry after an error. Permitted even while loading - the bumped
// generation orphans the in-flight fetch.
func (b *Browser) NewQuery(id string) (Fetch, bool) {
	var gen uint64
	var snap session.Session

	ok := b.sessions.Update(id, func(st *session.State) {
		st.Gen++
		st.Items = nil
		st.Cursor = media.NoCursor
		st.HasMore = true
		st.Loading = true
		st.Err = nil
		st.Selected = -1
		gen = st.Gen
	})
	if !ok {
		return nil, false
	}
	snap, _ = b.sessions.Get(id)
	return b.fetch(snap, gen, media.NoCursor), true
}

// LoadMore fetches the next page for a session. Permitted only when
// HasMore and not already Loading; a second concurrent load-more for the
// same session is silently dropped.
func (b *Browser) LoadMore(id string) (Fetch, bool) {
	var gen uint64
	var cursor media.Cursor
	allowed := false

	ok := b.sessions.Update(id, func(st *session.State) {
		if st.Loading || !st.HasMore || st.Cursor.IsNone() {
			return
		}
		st.Loading = true
		allowed = true
		gen = st.Gen
		cursor = st.Cursor
	})
	if !ok || !allowed {
		return nil, false
	}
	snap, _ := b.sessions.Get(id)
	return b.fetch(snap, gen, cursor), true
}

// Apply writes a fetch completion back into the session.
//
// Discarded entirely when the session is gone or the generation is
// stale; otherwise errors land in the session's Err with Loading
// cleared, and pages append with the cursor advanced. Other sessions are
// never touched.
func (b *Browser) Apply(res Result) {
	applied := b.sessions.Update(res.SessionID, func(st *session.State) {
		if st.Gen != res.Gen {
			logging.Debug("stale fetch discarded", "session", res.SessionID, "gen", res.Gen, "current", st.Gen)
			return
		}
		st.Loading = false
		if res.Err != nil {
			st.Err = res.Err
			return
		}
		st.Err = nil
		st.Items = append(st.Items, res.Page.Items...)
		st.Cursor = res.Page.Next
		st.HasMore = !res.Page.Next.IsNone()
	})
	if !applied {
		logging.Debug("fetch for closed session discarded", "session", res.SessionID)
	}
}

// Filtered returns the active session's items through a view filter.
// Pure view: the fetched set and cursor are untouched.
func (b *Browser) Filtered(f media.Filter) []media.Item {
	sess, ok := b.sessions.Active()
	if !ok {
		return nil
	}
	return f.Apply(sess.State.Items)
}

// fetch builds the page-fetch closure for a session snapshot.
func (b *Browser) fetch(sess session.Session, gen uint64, cursor media.Cursor) Fetch {
	return func(ctx context.Context) Result {
		page, err := b.fetchPage(ctx, sess, cursor)
		return Result{SessionID: sess.ID, Gen: gen, Page: page, Err: err}
	}
}

// fetchPage dispatches to the adapter for the session's source.
func (b *Browser) fetchPage(ctx context.Context, sess session.Session, cursor media.Cursor) (source.Page, error) {
	c := sess.Criteria
	switch sess.Type {
	case media.SourceReddit:
		if c.SearchMode && c.Subreddit != "" {
			return b.reddit.SearchSubreddit(ctx, c.Subreddit, c.Query, cursor)
		}
		if c.SearchMode {
			return b.reddit.SearchAll(ctx, c.Query, reddit.SearchSort(c.Sort), cursor)
		}
		return b.reddit.Listing(ctx, c.Subreddit, reddit.SortType(c.Sort), cursor)
	case media.SourceBooru:
		return b.booru.Posts(ctx, c.Tags, cursor)
	case media.SourceYouTube:
		return b.youtube.Search(ctx, c.Query, cursor)
	default:
		return source.Page{}, source.Validationf("unknown source type %q", sess.Type)
	}
}

// validate rejects malformed queries before a session is created.
func (b *Browser) validate(t media.SourceType, c session.Criteria) error {
	switch t {
	case media.SourceReddit:
		if b.reddit == nil {
			return source.Validationf("reddit credentials are not configured")
		}
		if !c.SearchMode || c.Subreddit != "" {
			if _, err := reddit.CleanNames(c.Subreddit); err != nil {
				return err
			}
		}
		if c.SearchMode && c.Query == "" {
			return source.Validationf("search query is required")
		}
	case media.SourceBooru:
		if b.booru == nil {
			return source.Validationf("booru credentials are not configured")
		}
		if c.Tags == "" {
			return source.Validationf("tag query is required")
		}
	case media.SourceYouTube:
		if b.youtube == nil {
			return source.Validationf("youtube API key is not configured")
		}
		if c.Query == "" {
			return source.Validationf("search query is required")
		}
	default:
		return source.Validationf("unknown source type %q", t)
	}
	return nil
}
