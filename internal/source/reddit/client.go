// Package reddit implements the listing-service adapter.
//
// Reddit paginates with an opaque "after" token and wraps everything in a
// {data:{children, after}} envelope. Three query modes share that cursor
// semantic: browsing one or more subreddits as a combined feed, searching
// inside a subreddit, and searching all of reddit.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/source"
)

const (
	defaultBaseURL = "https://oauth.reddit.com"
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	userAgent      = "mosaic/0.1 (https://github.com/abelbrown/mosaic)"

	// pageLimit is the page size requested from every listing endpoint.
	pageLimit = 100
)

// SortType orders a subreddit listing.
type SortType string

const (
	SortHot    SortType = "hot"
	SortNew    SortType = "new"
	SortTop    SortType = "top"
	SortBest   SortType = "best"
	SortRising SortType = "rising"
)

// SearchSort orders a global search. Reddit accepts a different set here
// than for browsing.
type SearchSort string

const (
	SearchRelevance SearchSort = "relevance"
	SearchHot       SearchSort = "hot"
	SearchTop       SearchSort = "top"
	SearchNew       SearchSort = "new"
)

// nameRe validates a single subreddit name.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// joinedRe additionally allows +, for input that already joins names.
var joinedRe = regexp.MustCompile(`^[A-Za-z0-9_+-]+$`)

// Adapter fetches media pages from reddit.
type Adapter struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	tokens  *tokenSource
}

// New creates an Adapter using application-only OAuth credentials.
func New(clientID, clientSecret string) *Adapter {
	client := &http.Client{Timeout: 30 * time.Second}
	return &Adapter{
		baseURL: defaultBaseURL,
		client:  client,
		// Reddit allows 100 QPM for OAuth clients; stay well under it.
		limiter: rate.NewLimiter(rate.Every(time.Second), 4),
		tokens:  newTokenSource(clientID, clientSecret, defaultAuthURL, userAgent, client),
	}
}

// NewWithEndpoints overrides the API and token endpoints, for tests.
func NewWithEndpoints(clientID, clientSecret, baseURL, authURL string) *Adapter {
	a := New(clientID, clientSecret)
	a.baseURL = baseURL
	a.tokens.authURL = authURL
	return a
}

// CleanNames validates subreddit input and joins it into one feed path.
//
// A comma-separated list parses into N names, each validated on its own;
// the whole query is rejected if any name is invalid or the list is empty
// after trimming. Valid names are rejoined with + in input order, which
// reddit treats as one combined feed.
func CleanNames(input string) (string, error) {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.TrimPrefix(cleaned, "r/")

	if strings.Contains(cleaned, ",") {
		var names []string
		for _, part := range strings.Split(cleaned, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !nameRe.MatchString(part) {
				return "", source.Validationf("invalid subreddit name %q", part)
			}
			names = append(names, part)
		}
		if len(names) == 0 {
			return "", source.Validationf("no valid subreddit names in %q", input)
		}
		return strings.Join(names, "+"), nil
	}

	if cleaned == "" {
		return "", source.Validationf("subreddit name is required")
	}
	if !joinedRe.MatchString(cleaned) {
		return "", source.Validationf("invalid subreddit name %q: only letters, digits, _, - and + are allowed", cleaned)
	}
	return cleaned, nil
}

// Listing fetches one page of a subreddit feed. cursor = NoCursor starts
// from the top; the caller discards its existing items in that case.
func (a *Adapter) Listing(ctx context.Context, subreddits string, sort SortType, cursor media.Cursor) (source.Page, error) {
	feed, err := CleanNames(subreddits)
	if err != nil {
		return source.Page{}, err
	}
	if sort == "" {
		sort = SortHot
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprint(pageLimit))
	q.Set("raw_json", "1")
	q.Set("include_over_18", "on")
	if !cursor.IsNone() {
		q.Set("after", cursor.Token())
	}
	return a.fetchListing(ctx, fmt.Sprintf("/r/%s/%s", feed, sort), q)
}

// SearchSubreddit fetches one page of keyword search scoped to a subreddit.
func (a *Adapter) SearchSubreddit(ctx context.Context, subreddit, query string, cursor media.Cursor) (source.Page, error) {
	feed, err := CleanNames(subreddit)
	if err != nil {
		return source.Page{}, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return source.Page{}, source.Validationf("search query is required")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("restrict_sr", "on")
	q.Set("sort", "new")
	q.Set("limit", fmt.Sprint(pageLimit))
	q.Set("raw_json", "1")
	q.Set("include_over_18", "on")
	if !cursor.IsNone() {
		q.Set("after", cursor.Token())
	}
	return a.fetchListing(ctx, fmt.Sprintf("/r/%s/search", feed), q)
}

// SearchAll fetches one page of a global keyword search.
func (a *Adapter) SearchAll(ctx context.Context, query string, sort SearchSort, cursor media.Cursor) (source.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return source.Page{}, source.Validationf("search query is required")
	}
	if sort == "" {
		sort = SearchRelevance
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", string(sort))
	q.Set("type", "link")
	q.Set("limit", fmt.Sprint(pageLimit))
	q.Set("raw_json", "1")
	q.Set("include_over_18", "on")
	if !cursor.IsNone() {
		q.Set("after", cursor.Token())
	}
	return a.fetchListing(ctx, "/search", q)
}

// fetchListing performs an authenticated listing request and normalizes
// the envelope into a page of media items.
func (a *Adapter) fetchListing(ctx context.Context, path string, q url.Values) (source.Page, error) {
	var env listing
	if err := a.getJSON(ctx, path, q, &env); err != nil {
		return source.Page{}, err
	}

	items := make([]media.Item, 0, len(env.Data.Children))
	for _, child := range env.Data.Children {
		if item, ok := normalize(child.Data); ok {
			items = append(items, item)
		}
	}

	logging.Debug("reddit page fetched",
		"path", path, "posts", len(env.Data.Children), "media", len(items), "after", env.Data.After)

	return source.Page{
		Items: items,
		Next:  media.OpaqueCursor(env.Data.After),
	}, nil
}

// SubredditInfo describes a community for the sidebar.
type SubredditInfo struct {
	Name        string
	Icon        string
	Subscribers int
	Description string
}

// About looks up community metadata for a single subreddit.
func (a *Adapter) About(ctx context.Context, name string) (*SubredditInfo, error) {
	feed, err := CleanNames(name)
	if err != nil {
		return nil, err
	}

	var env about
	if err := a.getJSON(ctx, fmt.Sprintf("/r/%s/about", feed), url.Values{"raw_json": {"1"}}, &env); err != nil {
		return nil, err
	}
	if env.Data.DisplayName == "" {
		return nil, nil
	}

	icon := env.Data.CommunityIcon
	if icon == "" {
		icon = env.Data.IconImg
	}
	// Icon URLs carry a signed query string that breaks outside reddit.
	if i := strings.IndexByte(icon, '?'); i >= 0 {
		icon = icon[:i]
	}

	return &SubredditInfo{
		Name:        env.Data.DisplayName,
		Icon:        icon,
		Subscribers: env.Data.Subscribers,
		Description: env.Data.PublicDescription,
	}, nil
}

// SubredditResult is one community search hit.
type SubredditResult struct {
	Name        string
	DisplayName string
	Title       string
	Description string
	Subscribers int
	Icon        string
	NSFW        bool
	URL         string
	Created     time.Time
}

// SearchSubreddits searches communities by name, paginated like listings.
func (a *Adapter) SearchSubreddits(ctx context.Context, query string, cursor media.Cursor) ([]SubredditResult, media.Cursor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, media.NoCursor, source.Validationf("search query is required")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", "25")
	q.Set("raw_json", "1")
	q.Set("include_over_18", "on")
	if !cursor.IsNone() {
		q.Set("after", cursor.Token())
	}

	var env subredditListing
	if err := a.getJSON(ctx, "/subreddits/search", q, &env); err != nil {
		return nil, media.NoCursor, err
	}

	results := make([]SubredditResult, 0, len(env.Data.Children))
	for _, child := range env.Data.Children {
		d := child.Data
		icon := d.CommunityIcon
		if icon == "" {
			icon = d.IconImg
		}
		results = append(results, SubredditResult{
			Name:        d.DisplayName,
			DisplayName: d.DisplayNamePrefixed,
			Title:       d.Title,
			Description: d.PublicDescription,
			Subscribers: d.Subscribers,
			Icon:        icon,
			NSFW:        d.Over18,
			URL:         d.URL,
			Created:     time.Unix(int64(d.CreatedUTC), 0),
		})
	}
	return results, media.OpaqueCursor(env.Data.After), nil
}

// getJSON performs one authenticated GET against the API and decodes the
// response. Rate limited; never retried.
func (a *Adapter) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return source.Transport("rate limiter interrupted", err)
	}

	token, err := a.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return source.Transport("failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return source.Transport("failed to reach reddit", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked upstream; drop it so the next attempt re-auths.
		a.tokens.invalidate()
		return source.Auth(fmt.Sprintf("reddit rejected credentials: %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return source.Transport(fmt.Sprintf("reddit API error: %d %s", resp.StatusCode, resp.Status), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return source.Transport("failed to decode reddit response", err)
	}
	return nil
}
