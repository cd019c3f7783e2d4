package account

import (
	"context"
	"sync"

	"github.com/abelbrown/mosaic/internal/media"
)

var _ Client = (*Memory)(nil)

// Memory is an in-process Client for tests and offline use.
type Memory struct {
	mu         sync.Mutex
	favorites  map[string]media.Item
	subreddits map[string]bool
	folders    map[string]media.Folder
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		favorites:  make(map[string]media.Item),
		subreddits: make(map[string]bool),
		folders:    make(map[string]media.Folder),
	}
}

func (m *Memory) AddFavorite(_ context.Context, item media.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[string(item.Source)+":"+item.ID] = item
	return nil
}

func (m *Memory) RemoveFavorite(_ context.Context, source media.SourceType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites, string(source)+":"+id)
	return nil
}

func (m *Memory) ListFavorites(_ context.Context) ([]media.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]media.Item, 0, len(m.favorites))
	for _, item := range m.favorites {
		items = append(items, item)
	}
	return items, nil
}

func (m *Memory) AddSubreddit(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subreddits[name] = true
	return nil
}

func (m *Memory) RemoveSubreddit(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subreddits, name)
	return nil
}

func (m *Memory) ListSubreddits(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.subreddits))
	for name := range m.subreddits {
		names = append(names, name)
	}
	return names, nil
}

func (m *Memory) PutFolder(_ context.Context, f media.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[f.ID] = f
	return nil
}

func (m *Memory) DeleteFolder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.folders, id)
	return nil
}

func (m *Memory) ListFolders(_ context.Context) ([]media.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	folders := make([]media.Folder, 0, len(m.folders))
	for _, f := range m.folders {
		folders = append(folders, f)
	}
	return folders, nil
}
