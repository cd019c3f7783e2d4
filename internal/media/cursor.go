package media

import "strconv"

// Cursor is a continuation token for the next page of a listing.
//
// The three upstreams paginate differently: reddit hands back an opaque
// "after" token, the booru counts zero-based page indexes, youtube hands
// back an opaque page token. Cursor folds all of them into one value that
// callers treat opaquely except for the IsNone check. The zero value is
// None, meaning the listing is exhausted.
type Cursor struct {
	kind  cursorKind
	token string
	page  int
}

type cursorKind int

const (
	cursorNone cursorKind = iota
	cursorOpaque
	cursorPage
)

// NoCursor is the exhausted cursor.
var NoCursor = Cursor{}

// OpaqueCursor wraps an upstream continuation token. An empty token means
// the upstream signalled the end of the listing, so None is returned.
func OpaqueCursor(token string) Cursor {
	if token == "" {
		return NoCursor
	}
	return Cursor{kind: cursorOpaque, token: token}
}

// PageCursor wraps a zero-based page index.
func PageCursor(page int) Cursor {
	return Cursor{kind: cursorPage, page: page}
}

// IsNone reports whether the listing is exhausted.
func (c Cursor) IsNone() bool { return c.kind == cursorNone }

// Token returns the opaque token, or "" for non-opaque cursors.
func (c Cursor) Token() string { return c.token }

// Page returns the page index, or 0 for non-page cursors.
func (c Cursor) Page() int { return c.page }

// String renders the cursor for logging.
func (c Cursor) String() string {
	switch c.kind {
	case cursorOpaque:
		return c.token
	case cursorPage:
		return "pid=" + strconv.Itoa(c.page)
	default:
		return "none"
	}
}
