// Package youtube implements the video-search adapter.
//
// A page costs two round-trips: the search endpoint returns snippets and
// an opaque page token, then a details batch fills in duration and view
// count. Enrichment is best effort - an id missing from the details
// response keeps placeholder defaults rather than failing the page.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/source"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// maxResults per search page; the details endpoint accepts at most
	// detailsBatch ids per call.
	maxResults   = 25
	detailsBatch = 50
)

// Video is one enriched search result.
type Video struct {
	ID           string
	Title        string
	ChannelTitle string
	Thumbnail    string
	Duration     string // ISO-8601, "PT0S" when details were missing
	PublishedAt  string
	Description  string
	ViewCount    string // decimal string, "0" when details were missing
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Description  string `json:"description"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type detailsResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type videoDetails struct {
	duration  string
	viewCount string
}

// Adapter fetches video search pages.
type Adapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates an Adapter with an API key.
func New(apiKey string) *Adapter {
	return &Adapter{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 4),
	}
}

// NewWithBaseURL overrides the API endpoint, for tests.
func NewWithBaseURL(apiKey, baseURL string) *Adapter {
	a := New(apiKey)
	a.baseURL = baseURL
	return a
}

// SearchVideos fetches one page of search results, enriched with
// duration and view count.
func (a *Adapter) SearchVideos(ctx context.Context, query string, cursor media.Cursor) ([]Video, media.Cursor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, media.NoCursor, source.Validationf("search query is required")
	}
	if a.apiKey == "" {
		return nil, media.NoCursor, source.Auth("youtube API key is not configured", nil)
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("maxResults", fmt.Sprint(maxResults))
	q.Set("q", query)
	q.Set("key", a.apiKey)
	if !cursor.IsNone() {
		q.Set("pageToken", cursor.Token())
	}

	var sr searchResponse
	if err := a.getJSON(ctx, "/search", q, &sr); err != nil {
		return nil, media.NoCursor, err
	}
	if len(sr.Items) == 0 {
		return nil, media.NoCursor, nil
	}

	ids := make([]string, 0, len(sr.Items))
	for _, item := range sr.Items {
		ids = append(ids, item.ID.VideoID)
	}

	// Details failures degrade to placeholders, never a failed page.
	details, err := a.fetchDetails(ctx, ids)
	if err != nil {
		logging.Warn("youtube details lookup failed, using placeholders", "error", err)
		details = map[string]videoDetails{}
	}

	videos := make([]Video, 0, len(sr.Items))
	for _, item := range sr.Items {
		v := Video{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			Thumbnail:    item.Snippet.Thumbnails.High.URL,
			PublishedAt:  item.Snippet.PublishedAt,
			Description:  item.Snippet.Description,
			Duration:     "PT0S",
			ViewCount:    "0",
		}
		if d, ok := details[item.ID.VideoID]; ok {
			if d.duration != "" {
				v.Duration = d.duration
			}
			if d.viewCount != "" {
				v.ViewCount = d.viewCount
			}
		}
		videos = append(videos, v)
	}

	logging.Debug("youtube page fetched", "query", query, "videos", len(videos), "next", sr.NextPageToken != "")

	return videos, media.OpaqueCursor(sr.NextPageToken), nil
}

// Search fetches one page and converts it to the shared media contract.
func (a *Adapter) Search(ctx context.Context, query string, cursor media.Cursor) (source.Page, error) {
	videos, next, err := a.SearchVideos(ctx, query, cursor)
	if err != nil {
		return source.Page{}, err
	}

	items := make([]media.Item, 0, len(videos))
	for _, v := range videos {
		items = append(items, v.Item())
	}
	return source.Page{Items: items, Next: next}, nil
}

// Item converts a video to the unified media record.
func (v Video) Item() media.Item {
	created, _ := time.Parse(time.RFC3339, v.PublishedAt)
	watchURL := "https://www.youtube.com/watch?v=" + v.ID
	return media.Item{
		ID:        v.ID,
		Type:      media.TypeVideo,
		Title:     v.Title,
		URL:       watchURL,
		Thumbnail: v.Thumbnail,
		Source:    media.SourceYouTube,
		Author:    v.ChannelTitle,
		Permalink: watchURL,
		Created:   created,
		Video: &media.VideoPayload{
			FallbackURL: watchURL,
			HasAudio:    true,
			Duration:    ParseDuration(v.Duration),
		},
	}
}

// fetchDetails batches the ids through the videos endpoint, chunked at
// the API limit and fetched concurrently.
func (a *Adapter) fetchDetails(ctx context.Context, ids []string) (map[string]videoDetails, error) {
	details := make(map[string]videoDetails, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(ids); start += detailsBatch {
		end := start + detailsBatch
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		g.Go(func() error {
			q := url.Values{}
			q.Set("part", "contentDetails,statistics")
			q.Set("id", strings.Join(chunk, ","))
			q.Set("key", a.apiKey)

			var dr detailsResponse
			if err := a.getJSON(ctx, "/videos", q, &dr); err != nil {
				return err
			}

			mu.Lock()
			for _, item := range dr.Items {
				details[item.ID] = videoDetails{
					duration:  item.ContentDetails.Duration,
					viewCount: item.Statistics.ViewCount,
				}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func (a *Adapter) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return source.Transport("rate limiter interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return source.Transport("failed to create request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return source.Transport("failed to reach youtube", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return source.Auth("invalid youtube API key or quota exceeded", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return source.Transport(fmt.Sprintf("youtube API error: %d %s", resp.StatusCode, resp.Status), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return source.Transport("failed to decode youtube response", err)
	}
	return nil
}
