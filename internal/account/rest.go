package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/abelbrown/mosaic/internal/media"
)

// Compile-time interface satisfaction check
var _ Client = (*RESTClient)(nil)

// RESTClient talks JSON over HTTP to the account backend with bearer
// auth. Requests are never retried.
type RESTClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTClient creates a client for the given backend.
func NewRESTClient(baseURL, token string) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *RESTClient) AddFavorite(ctx context.Context, item media.Item) error {
	return c.do(ctx, http.MethodPut, "/favorites/"+favoriteKey(item.Source, item.ID), item, nil)
}

func (c *RESTClient) RemoveFavorite(ctx context.Context, source media.SourceType, id string) error {
	return c.do(ctx, http.MethodDelete, "/favorites/"+favoriteKey(source, id), nil, nil)
}

func (c *RESTClient) ListFavorites(ctx context.Context) ([]media.Item, error) {
	var items []media.Item
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *RESTClient) AddSubreddit(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/subreddits/"+url.PathEscape(name), nil, nil)
}

func (c *RESTClient) RemoveSubreddit(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/subreddits/"+url.PathEscape(name), nil, nil)
}

func (c *RESTClient) ListSubreddits(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/subreddits", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *RESTClient) PutFolder(ctx context.Context, f media.Folder) error {
	return c.do(ctx, http.MethodPut, "/folders/"+url.PathEscape(f.ID), f, nil)
}

func (c *RESTClient) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/folders/"+url.PathEscape(id), nil, nil)
}

func (c *RESTClient) ListFolders(ctx context.Context) ([]media.Folder, error) {
	var folders []media.Folder
	if err := c.do(ctx, http.MethodGet, "/folders", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func favoriteKey(source media.SourceType, id string) string {
	return url.PathEscape(string(source) + ":" + id)
}

func (c *RESTClient) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach account backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("account backend error: %d %s", resp.StatusCode, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
