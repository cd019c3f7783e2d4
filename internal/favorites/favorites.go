// Package favorites manages saved media, saved subreddits, and folders.
//
// Everything saved here is a by-value snapshot of a media item - gallery
// slices and payloads included - so a saved copy never observes later
// session mutations. Mutations are optimistic: local state and the
// SQLite store update first, the remote account push follows in the
// background. A failed push is logged and not rolled back.
package favorites

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/mosaic/internal/account"
	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/store"
)

// Service is the favorites registry. Safe for concurrent use.
type Service struct {
	mu         sync.Mutex
	items      []media.Item
	subreddits []string
	folders    []media.Folder

	store  *store.Store   // local persistence, may be nil in tests
	remote account.Client // remote backend, may be nil when signed out
}

// New creates a Service, loading saved state from the local store.
func New(st *store.Store, remote account.Client) (*Service, error) {
	s := &Service{store: st, remote: remote}
	if st == nil {
		return s, nil
	}

	var err error
	if s.items, err = st.Favorites(); err != nil {
		return nil, err
	}
	if s.subreddits, err = st.Subreddits(); err != nil {
		return nil, err
	}
	if s.folders, err = st.Folders(); err != nil {
		return nil, err
	}
	return s, nil
}

// AddMedia saves a snapshot of the item. Adding an already-saved item is
// a no-op.
func (s *Service) AddMedia(item media.Item) {
	s.mu.Lock()
	if s.indexOf(item.Source, item.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	snap := item.Clone()
	s.items = append(s.items, snap)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveFavorite(snap); err != nil {
			logging.Error("failed to persist favorite", "id", snap.ID, "error", err)
		}
	}
	s.push(func(ctx context.Context, c account.Client) error {
		return c.AddFavorite(ctx, snap)
	})
}

// RemoveMedia deletes a saved item.
func (s *Service) RemoveMedia(source media.SourceType, id string) {
	s.mu.Lock()
	idx := s.indexOf(source, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteFavorite(source, id); err != nil {
			logging.Error("failed to delete favorite", "id", id, "error", err)
		}
	}
	s.push(func(ctx context.Context, c account.Client) error {
		return c.RemoveFavorite(ctx, source, id)
	})
}

// IsFavorite reports whether the item is saved.
func (s *Service) IsFavorite(source media.SourceType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(source, id) >= 0
}

// Media returns copies of all saved items.
func (s *Service) Media() []media.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]media.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	return out
}

// AddSubreddit saves a subreddit name. Duplicate adds are no-ops.
func (s *Service) AddSubreddit(name string) {
	s.mu.Lock()
	for _, existing := range s.subreddits {
		if existing == name {
			s.mu.Unlock()
			return
		}
	}
	s.subreddits = append(s.subreddits, name)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveSubreddit(name); err != nil {
			logging.Error("failed to persist subreddit", "name", name, "error", err)
		}
	}
	s.push(func(ctx context.Context, c account.Client) error {
		return c.AddSubreddit(ctx, name)
	})
}

// RemoveSubreddit deletes a saved subreddit name.
func (s *Service) RemoveSubreddit(name string) {
	s.mu.Lock()
	for i, existing := range s.subreddits {
		if existing == name {
			s.subreddits = append(s.subreddits[:i], s.subreddits[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteSubreddit(name); err != nil {
			logging.Error("failed to delete subreddit", "name", name, "error", err)
		}
	}
	s.push(func(ctx context.Context, c account.Client) error {
		return c.RemoveSubreddit(ctx, name)
	})
}

// Subreddits returns saved subreddit names in added order.
func (s *Service) Subreddits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.subreddits))
	copy(out, s.subreddits)
	return out
}

// CreateFolder makes an empty folder and returns its id.
func (s *Service) CreateFolder(name, color string) string {
	f := media.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.folders = append(s.folders, f)
	s.mu.Unlock()

	s.persistFolder(f)
	return f.ID
}

// DeleteFolder removes a folder and its contents.
func (s *Service) DeleteFolder(id string) {
	s.mu.Lock()
	for i, f := range s.folders {
		if f.ID == id {
			s.folders = append(s.folders[:i], s.folders[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteFolder(id); err != nil {
			logging.Error("failed to delete folder", "id", id, "error", err)
		}
	}
	s.push(func(ctx context.Context, c account.Client) error {
		return c.DeleteFolder(ctx, id)
	})
}

// AddToFolder snapshots an item into a folder. Media ids are unique
// within one folder: adding an item the folder already holds is a no-op.
// Returns false when the folder does not exist or the item was already
// there.
func (s *Service) AddToFolder(folderID string, item media.Item) bool {
	var snap media.Folder
	added := false

	s.mu.Lock()
	for i := range s.folders {
		if s.folders[i].ID != folderID {
			continue
		}
		if s.folders[i].Contains(item.Source, item.ID) {
			break
		}
		s.folders[i].Items = append(s.folders[i].Items, item.Clone())
		snap = s.folders[i]
		added = true
		break
	}
	s.mu.Unlock()

	if added {
		s.persistFolder(snap)
	}
	return added
}

// RemoveFromFolder deletes an item from a folder.
func (s *Service) RemoveFromFolder(folderID string, source media.SourceType, id string) {
	var snap media.Folder
	removed := false

	s.mu.Lock()
	for i := range s.folders {
		if s.folders[i].ID != folderID {
			continue
		}
		for j, item := range s.folders[i].Items {
			if item.Source == source && item.ID == id {
				s.folders[i].Items = append(s.folders[i].Items[:j], s.folders[i].Items[j+1:]...)
				snap = s.folders[i]
				removed = true
				break
			}
		}
		break
	}
	s.mu.Unlock()

	if removed {
		s.persistFolder(snap)
	}
}

// Folders returns copies of all folders.
func (s *Service) Folders() []media.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]media.Folder, len(s.folders))
	for i, f := range s.folders {
		out[i] = f
		out[i].Items = make([]media.Item, len(f.Items))
		copy(out[i].Items, f.Items)
	}
	return out
}

func (s *Service) indexOf(source media.SourceType, id string) int {
	for i, item := range s.items {
		if item.Source == source && item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persistFolder(f media.Folder) {
	if s.store != nil {
		if err := s.store.SaveFolder(f); err != nil {
			logging.Error("failed to persist folder", "id", f.ID, "error", err)
		}
	}
	s.push(func(ctx context.Context, c account.Client) error {
		return c.PutFolder(ctx, f)
	})
}

// push fires a remote mutation in the background. The local state is
// already updated; a push failure is logged, never rolled back.
func (s *Service) push(fn func(context.Context, account.Client) error) {
	if s.remote == nil {
		return
	}
	remote := s.remote
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := fn(ctx, remote); err != nil {
			logging.Warn("account push failed", "error", err)
		}
	}()
}
