package browse

import (
	"errors"
	"testing"

	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/session"
	"github.com/abelbrown/mosaic/internal/source"
	"github.com/abelbrown/mosaic/internal/source/booru"
	"github.com/abelbrown/mosaic/internal/source/reddit"
	"github.com/abelbrown/mosaic/internal/source/youtube"
)

// newTestBrowser wires real adapters against unreachable endpoints. The
// tests here never invoke the returned fetch closures, so nothing is
// dialed; they exercise session bookkeeping and completion handling.
func newTestBrowser() *Browser {
	return New(
		session.NewStore(),
		reddit.NewWithEndpoints("id", "secret", "http://127.0.0.1:0", "http://127.0.0.1:0"),
		booru.NewWithBaseURL("key", "user", "http://127.0.0.1:0"),
		youtube.NewWithBaseURL("key", "http://127.0.0.1:0"),
	)
}

func items(ids ...string) []media.Item {
	out := make([]media.Item, len(ids))
	for i, id := range ids {
		out[i] = media.Item{ID: id, Type: media.TypeImage}
	}
	return out
}

func TestOpenCreatesSession(t *testing.T) {
	b := newTestBrowser()
	id, fetch, err := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if fetch == nil {
		t.Fatal("new session should come with a first-page fetch")
	}

	sess, ok := b.Sessions().Get(id)
	if !ok {
		t.Fatal("session not registered")
	}
	if !sess.State.Loading {
		t.Error("new query should mark the session loading")
	}
	if sess.State.Gen != 1 {
		t.Errorf("Gen = %d, want 1", sess.State.Gen)
	}
}

func TestOpenReusesIdenticalQuery(t *testing.T) {
	b := newTestBrowser()
	c := session.Criteria{Subreddit: "golang"}
	id1, _, _ := b.Open(media.SourceReddit, "r/golang", c)

	// Populate it so reuse is observable.
	b.Sessions().Update(id1, func(st *session.State) {
		st.Loading = false
		st.Items = items("a", "b")
	})
	b.Open(media.SourceBooru, "forest", session.Criteria{Tags: "forest"})

	id2, fetch, err := b.Open(media.SourceReddit, "r/golang", c)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if id2 != id1 {
		t.Errorf("reopened session id = %q, want reuse of %q", id2, id1)
	}
	if fetch != nil {
		t.Error("reused session must not re-fetch")
	}
	if b.Sessions().ActiveID() != id1 {
		t.Error("reused session should become active")
	}
	sess, _ := b.Sessions().Get(id1)
	if len(sess.State.Items) != 2 {
		t.Error("reuse must keep accumulated items")
	}
}

func TestOpenValidationBeforeSession(t *testing.T) {
	b := newTestBrowser()
	tests := []struct {
		name string
		t    media.SourceType
		c    session.Criteria
	}{
		{"bad subreddit", media.SourceReddit, session.Criteria{Subreddit: "bad name"}},
		{"empty reddit search", media.SourceReddit, session.Criteria{SearchMode: true}},
		{"empty tags", media.SourceBooru, session.Criteria{}},
		{"empty youtube query", media.SourceYouTube, session.Criteria{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := b.Open(tt.t, "x", tt.c)
			if source.KindOf(err) != source.KindValidation {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
	if b.Sessions().Len() != 0 {
		t.Error("rejected queries must not leave sessions behind")
	}
}

func TestOpenUnconfiguredSource(t *testing.T) {
	b := New(session.NewStore(), nil, nil, nil)
	_, _, err := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	if source.KindOf(err) != source.KindValidation {
		t.Errorf("unconfigured source should fail validation, got %v", err)
	}
}

func TestApplyAppendsAndAdvancesCursor(t *testing.T) {
	b := newTestBrowser()
	id, _, _ := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	sess, _ := b.Sessions().Get(id)

	b.Apply(Result{
		SessionID: id,
		Gen:       sess.State.Gen,
		Page:      source.Page{Items: items("a", "b"), Next: media.OpaqueCursor("t3_x")},
	})

	sess, _ = b.Sessions().Get(id)
	if sess.State.Loading {
		t.Error("completion should clear Loading")
	}
	if len(sess.State.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(sess.State.Items))
	}
	if !sess.State.HasMore || sess.State.Cursor.Token() != "t3_x" {
		t.Errorf("HasMore=%v Cursor=%v", sess.State.HasMore, sess.State.Cursor)
	}

	// Final page: cursor gone, HasMore follows.
	b.Apply(Result{
		SessionID: id,
		Gen:       sess.State.Gen,
		Page:      source.Page{Items: items("c"), Next: media.NoCursor},
	})
	sess, _ = b.Sessions().Get(id)
	if len(sess.State.Items) != 3 {
		t.Errorf("got %d items, want appended 3", len(sess.State.Items))
	}
	if sess.State.HasMore != !sess.State.Cursor.IsNone() {
		t.Error("HasMore must track cursor presence")
	}
	if sess.State.HasMore {
		t.Error("exhausted listing should clear HasMore")
	}
}

func TestApplyStaleGenerationDiscarded(t *testing.T) {
	b := newTestBrowser()
	id, _, _ := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	sess, _ := b.Sessions().Get(id)
	oldGen := sess.State.Gen

	// New query bumps the generation; the old completion is orphaned.
	b.NewQuery(id)

	b.Apply(Result{
		SessionID: id,
		Gen:       oldGen,
		Page:      source.Page{Items: items("stale"), Next: media.OpaqueCursor("x")},
	})

	sess, _ = b.Sessions().Get(id)
	if len(sess.State.Items) != 0 {
		t.Error("stale completion must not land")
	}
	if !sess.State.Loading {
		t.Error("stale completion must not clear Loading for the new fetch")
	}
}

func TestApplyClosedSessionDiscarded(t *testing.T) {
	b := newTestBrowser()
	id, _, _ := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	b.Sessions().Close(id)

	b.Apply(Result{SessionID: id, Gen: 1, Page: source.Page{Items: items("a")}})
	if b.Sessions().Len() != 0 {
		t.Error("completion must not resurrect a closed session")
	}
}

func TestApplyErrorLandsInOwningSessionOnly(t *testing.T) {
	b := newTestBrowser()
	id1, _, _ := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	id2, _, _ := b.Open(media.SourceBooru, "forest", session.Criteria{Tags: "forest"})

	sess1, _ := b.Sessions().Get(id1)
	b.Apply(Result{SessionID: id1, Gen: sess1.State.Gen, Err: errors.New("boom")})

	sess1, _ = b.Sessions().Get(id1)
	if sess1.State.Err == nil || sess1.State.Loading {
		t.Errorf("Err=%v Loading=%v, want error recorded and loading cleared", sess1.State.Err, sess1.State.Loading)
	}
	sess2, _ := b.Sessions().Get(id2)
	if sess2.State.Err != nil {
		t.Error("error must not leak into other sessions")
	}
}

func TestLoadMoreGuards(t *testing.T) {
	b := newTestBrowser()
	id, _, _ := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})

	// Still loading the first page: dropped.
	if _, ok := b.LoadMore(id); ok {
		t.Error("load-more while loading must be dropped")
	}

	sess, _ := b.Sessions().Get(id)
	b.Apply(Result{
		SessionID: id,
		Gen:       sess.State.Gen,
		Page:      source.Page{Items: items("a"), Next: media.OpaqueCursor("t3_x")},
	})

	fetch, ok := b.LoadMore(id)
	if !ok || fetch == nil {
		t.Fatal("load-more with a cursor should be permitted")
	}

	// The first load-more marked the session loading; a second overlapping
	// one is dropped, not queued.
	if _, ok := b.LoadMore(id); ok {
		t.Error("concurrent load-more must be dropped")
	}

	// Exhausted listing: dropped.
	sess, _ = b.Sessions().Get(id)
	b.Apply(Result{SessionID: id, Gen: sess.State.Gen, Page: source.Page{Next: media.NoCursor}})
	if _, ok := b.LoadMore(id); ok {
		t.Error("load-more on an exhausted listing must be dropped")
	}
}

func TestLoadMoreUnknownSession(t *testing.T) {
	b := newTestBrowser()
	if _, ok := b.LoadMore("nope"); ok {
		t.Error("load-more for an unknown session must be dropped")
	}
}

func TestNewQueryResetsState(t *testing.T) {
	b := newTestBrowser()
	id, _, _ := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	sess, _ := b.Sessions().Get(id)
	b.Apply(Result{
		SessionID: id,
		Gen:       sess.State.Gen,
		Page:      source.Page{Items: items("a", "b"), Next: media.OpaqueCursor("x")},
	})

	fetch, ok := b.NewQuery(id)
	if !ok || fetch == nil {
		t.Fatal("NewQuery should return a fetch")
	}
	sess, _ = b.Sessions().Get(id)
	if len(sess.State.Items) != 0 || !sess.State.Cursor.IsNone() {
		t.Error("new query must clear items and cursor")
	}
	if sess.State.Gen != 2 {
		t.Errorf("Gen = %d, want 2", sess.State.Gen)
	}
	if !sess.State.Loading || !sess.State.HasMore {
		t.Error("new query should be loading with HasMore reset")
	}
}

func TestFilteredIsPureView(t *testing.T) {
	b := newTestBrowser()
	id, _, _ := b.Open(media.SourceReddit, "r/golang", session.Criteria{Subreddit: "golang"})
	sess, _ := b.Sessions().Get(id)

	mixed := []media.Item{
		{ID: "i", Type: media.TypeImage},
		{ID: "v", Type: media.TypeVideo},
		{ID: "e", Type: media.TypeEmbed},
		{ID: "g", Type: media.TypeGallery},
	}
	b.Apply(Result{SessionID: id, Gen: sess.State.Gen, Page: source.Page{Items: mixed, Next: media.OpaqueCursor("x")}})

	vids := b.Filtered(media.FilterVideos)
	if len(vids) != 2 {
		t.Errorf("videos filter should include embeds, got %d items", len(vids))
	}

	sess, _ = b.Sessions().Get(id)
	if len(sess.State.Items) != 4 {
		t.Error("filtering must not shrink the fetched set")
	}
	if sess.State.Cursor.IsNone() {
		t.Error("filtering must not touch the cursor")
	}
}
