// Package account defines the boundary to the remote account backend.
//
// The backend is an opaque CRUD service for favorites, favorite
// subreddits, and folders. The core only assumes its operations are
// idempotent and eventually consistent; there is no retry or backoff
// here, and callers update local state optimistically before a push
// confirms.
package account

import (
	"context"

	"github.com/abelbrown/mosaic/internal/media"
)

// Client is the remote account backend.
type Client interface {
	AddFavorite(ctx context.Context, item media.Item) error
	RemoveFavorite(ctx context.Context, source media.SourceType, id string) error
	ListFavorites(ctx context.Context) ([]media.Item, error)

	AddSubreddit(ctx context.Context, name string) error
	RemoveSubreddit(ctx context.Context, name string) error
	ListSubreddits(ctx context.Context) ([]string, error)

	PutFolder(ctx context.Context, f media.Folder) error
	DeleteFolder(ctx context.Context, id string) error
	ListFolders(ctx context.Context) ([]media.Folder, error)
}
