// Package booru implements the tag-indexed imageboard adapter.
//
// The upstream speaks the Gelbooru-style dapi: one GET with a tag string
// and a zero-based page index, answered by a bare JSON array with no
// envelope and no total count. Exhaustion is a heuristic: a full page
// implies a next page, a short page means the end. An exactly-full final
// page is indistinguishable from genuine continuation; the last load-more
// then returns an empty page and terminates.
package booru

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/source"
)

const (
	defaultBaseURL = "https://api.rule34.xxx/index.php"
	pageLimit      = 100
)

var videoExtensions = []string{".mp4", ".webm", ".mov", ".avi", ".mkv"}

// post is the raw dapi record. Never leaves this package.
type post struct {
	ID           int    `json:"id"`
	FileURL      string `json:"file_url"`
	PreviewURL   string `json:"preview_url"`
	SampleURL    string `json:"sample_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Owner        string `json:"owner"`
	Score        int    `json:"score"`
	Change       int64  `json:"change"`
	CommentCount int    `json:"comment_count"`
}

// Adapter fetches media pages from the tag index.
type Adapter struct {
	baseURL string
	apiKey  string
	userID  string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates an Adapter with dapi credentials.
func New(apiKey, userID string) *Adapter {
	return &Adapter{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		userID:  userID,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// NewWithBaseURL overrides the API endpoint, for tests.
func NewWithBaseURL(apiKey, userID, baseURL string) *Adapter {
	a := New(apiKey, userID)
	a.baseURL = baseURL
	return a
}

// Posts fetches one page of posts matching a tag string. cursor =
// NoCursor means page zero; the caller discards its existing items then.
func (a *Adapter) Posts(ctx context.Context, tags string, cursor media.Cursor) (source.Page, error) {
	tags = strings.TrimSpace(tags)
	if tags == "" {
		return source.Page{}, source.Validationf("tag query is required")
	}

	pid := 0
	if !cursor.IsNone() {
		pid = cursor.Page()
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return source.Page{}, source.Transport("rate limiter interrupted", err)
	}

	q := url.Values{}
	q.Set("page", "dapi")
	q.Set("s", "post")
	q.Set("q", "index")
	q.Set("json", "1")
	q.Set("limit", fmt.Sprint(pageLimit))
	q.Set("tags", tags)
	q.Set("pid", fmt.Sprint(pid))
	q.Set("api_key", a.apiKey)
	q.Set("user_id", a.userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return source.Page{}, source.Transport("failed to create request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return source.Page{}, source.Transport("failed to reach tag index", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return source.Page{}, source.Transport(fmt.Sprintf("tag index API error: %d %s", resp.StatusCode, resp.Status), nil)
	}

	// Bare array, no envelope. An empty result decodes as null.
	var posts []post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return source.Page{}, source.Transport("failed to decode tag index response", err)
	}

	items := make([]media.Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, normalize(p))
	}

	next := media.NoCursor
	if len(posts) == pageLimit {
		next = media.PageCursor(pid + 1)
	}

	logging.Debug("booru page fetched", "tags", tags, "pid", pid, "posts", len(posts), "more", !next.IsNone())

	return source.Page{Items: items, Next: next}, nil
}

// normalize converts one raw post. Posts with a video file extension
// become video items; the dapi gives no duration, so it stays 0 and
// audio is assumed. Everything on the board is NSFW.
func normalize(p post) media.Item {
	item := media.Item{
		ID:          fmt.Sprint(p.ID),
		Type:        media.TypeImage,
		Title:       fmt.Sprintf("Post #%d", p.ID),
		URL:         p.FileURL,
		Thumbnail:   thumbnailOf(p),
		Source:      media.SourceBooru,
		Score:       p.Score,
		Author:      p.Owner,
		Permalink:   fmt.Sprintf("https://rule34.xxx/index.php?page=post&s=view&id=%d", p.ID),
		Created:     time.Unix(p.Change, 0),
		NumComments: p.CommentCount,
		NSFW:        true,
	}

	if isVideoFile(p.FileURL) {
		item.Type = media.TypeVideo
		item.Video = &media.VideoPayload{
			FallbackURL: p.FileURL,
			HasAudio:    true,
			Width:       p.Width,
			Height:      p.Height,
		}
	}
	return item
}

// thumbnailOf prefers the small preview, then the sample, then the
// original file.
func thumbnailOf(p post) string {
	if p.PreviewURL != "" {
		return p.PreviewURL
	}
	if p.SampleURL != "" {
		return p.SampleURL
	}
	return p.FileURL
}

func isVideoFile(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
