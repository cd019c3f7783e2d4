// Package session multiplexes independent browsing contexts.
//
// A session is one resumable, tab-like context: a query bound to one
// source plus everything fetched for it so far. Many sessions stay open
// at once; switching between them never re-queries. The Store is the
// only shared mutable structure in the application - every mutation goes
// through it under one RWMutex, and no two sessions ever need an atomic
// joint update.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/mosaic/internal/media"
)

// Criteria is the query a session is bound to. Which fields matter
// depends on the session type: subreddit/query/search mode for reddit,
// tags for booru, query for youtube. Sort is carried but not matched on:
// changing sort re-queries in place instead of opening a new tab.
type Criteria struct {
	Subreddit  string
	Query      string
	SearchMode bool
	Sort       string
	Tags       string
}

// matches reports criteria equality for find-or-reuse, comparing only
// the fields relevant to the session type.
func (c Criteria) matches(t media.SourceType, other Criteria) bool {
	switch t {
	case media.SourceReddit:
		return c.Subreddit == other.Subreddit &&
			c.Query == other.Query &&
			c.SearchMode == other.SearchMode
	case media.SourceBooru:
		return c.Tags == other.Tags
	case media.SourceYouTube:
		return c.Query == other.Query
	default:
		return false
	}
}

// State is the mutable fetch state of a session.
//
// Invariant after every successful fetch: HasMore == !Cursor.IsNone().
// A Loading session may not start a second fetch; concurrent load-more
// requests are dropped, not queued.
type State struct {
	Items    []media.Item
	Cursor   media.Cursor
	Loading  bool
	Err      error
	HasMore  bool
	Selected int // index into Items, -1 when nothing is selected

	// Gen increments on every new query. Fetch completions carry the
	// generation they were started under; a completion whose generation
	// no longer matches is stale and discarded.
	Gen uint64
}

// Session is one browsing context.
type Session struct {
	ID           string
	Type         media.SourceType
	Title        string
	Criteria     Criteria
	State        State
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Store is the session registry. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	order    []*Session // insertion order; tab cycling follows this
	byID     map[string]*Session
	activeID string
}

// NewStore creates an empty registry.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Session)}
}

// Create registers a new session and makes it active. The new session
// starts with no items, no cursor, and HasMore true - the first fetch is
// always permitted.
func (s *Store) Create(t media.SourceType, title string, c Criteria) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:       uuid.NewString(),
		Type:     t,
		Title:    title,
		Criteria: c,
		State: State{
			Cursor:   media.NoCursor,
			HasMore:  true,
			Selected: -1,
		},
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.order = append(s.order, sess)
	s.byID[sess.ID] = sess
	s.activeID = sess.ID
	return sess.ID
}

// Find returns the id of an open session matching the criteria, for
// tab reuse. Identical open queries are never duplicated: callers Find
// first and only Create on a miss.
func (s *Store) Find(t media.SourceType, c Criteria) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.order {
		if sess.Type == t && sess.Criteria.matches(t, c) {
			return sess.ID, true
		}
	}
	return "", false
}

// SwitchTo makes a session active and stamps its activity time. The
// stamp is for ordering display only; nothing is ever evicted.
func (s *Store) SwitchTo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return false
	}
	s.activeID = id
	sess.LastActiveAt = time.Now()
	return true
}

// Close removes a session. If it was active, the session now sitting at
// the closed one's former index is promoted, else the previous one, else
// the first remaining, else none.
func (s *Store) Close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}

	idx := s.indexOf(id)
	delete(s.byID, id)
	s.order = append(s.order[:idx], s.order[idx+1:]...)

	if s.activeID == id {
		switch {
		case idx < len(s.order):
			s.activeID = s.order[idx].ID
		case idx-1 >= 0 && idx-1 < len(s.order):
			s.activeID = s.order[idx-1].ID
		case len(s.order) > 0:
			s.activeID = s.order[0].ID
		default:
			s.activeID = ""
		}
	}
	return true
}

// Cycle activates the next session in insertion order, wrapping at the
// end. No-op with one session or none.
func (s *Store) Cycle() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) <= 1 {
		return s.activeID
	}
	idx := s.indexOf(s.activeID)
	next := s.order[(idx+1)%len(s.order)]
	s.activeID = next.ID
	next.LastActiveAt = time.Now()
	return next.ID
}

// Update applies a mutation to a session's state under the store lock
// and stamps its activity time. Returns false if the session no longer
// exists, in which case the mutation is discarded - this is what keeps
// an in-flight fetch from resurrecting a closed tab.
func (s *Store) Update(id string, fn func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return false
	}
	fn(&sess.State)
	sess.LastActiveAt = time.Now()
	return true
}

// UpdateCriteria applies a mutation to a session's criteria and title.
func (s *Store) UpdateCriteria(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return false
	}
	fn(sess)
	sess.LastActiveAt = time.Now()
	return true
}

// ActiveID returns the active session id, "" when none is open.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a snapshot of the active session.
func (s *Store) Active() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(s.activeID)
}

// Get returns a snapshot of a session by id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(id)
}

// All returns snapshots of every open session in insertion order.
func (s *Store) All() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, 0, len(s.order))
	for _, sess := range s.order {
		snap, _ := s.snapshot(sess.ID)
		out = append(out, snap)
	}
	return out
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// snapshot copies a session for callers outside the lock. Items are
// copied so a later append cannot race a render.
func (s *Store) snapshot(id string) (Session, bool) {
	sess, ok := s.byID[id]
	if !ok {
		return Session{}, false
	}
	snap := *sess
	snap.State.Items = make([]media.Item, len(sess.State.Items))
	copy(snap.State.Items, sess.State.Items)
	return snap, true
}

// indexOf returns the position of a session in insertion order, -1 when
// absent. Linear scan: single-user, few-tabs scale.
func (s *Store) indexOf(id string) int {
	for i, sess := range s.order {
		if sess.ID == id {
			return i
		}
	}
	return -1
}
