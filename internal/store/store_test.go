package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abelbrown/mosaic/internal/media"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettingsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Errorf("missing key: ok=%v err=%v", ok, err)
	}

	type prefs struct {
		Sort    string `json:"sort"`
		Columns int    `json:"columns"`
	}
	if err := s.Set("prefs", prefs{Sort: "new", Columns: 4}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got prefs
	ok, err := s.GetInto("prefs", &got)
	if err != nil || !ok {
		t.Fatalf("GetInto: ok=%v err=%v", ok, err)
	}
	if got.Sort != "new" || got.Columns != 4 {
		t.Errorf("got %+v", got)
	}

	// Overwrite.
	s.Set("prefs", prefs{Sort: "top", Columns: 2})
	s.GetInto("prefs", &got)
	if got.Sort != "top" {
		t.Errorf("overwrite lost: %+v", got)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	item := media.Item{
		ID:        "abc",
		Type:      media.TypeVideo,
		Title:     "a clip",
		URL:       "https://v.redd.it/abc",
		Source:    media.SourceReddit,
		Subreddit: "golang",
		NSFW:      true,
		Video:     &media.VideoPayload{FallbackURL: "https://v.redd.it/abc", Duration: 30, HasAudio: true},
	}
	if err := s.SaveFavorite(item); err != nil {
		t.Fatalf("SaveFavorite: %v", err)
	}

	got, err := s.Favorites()
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d favorites, want 1", len(got))
	}
	f := got[0]
	if f.ID != "abc" || f.Source != media.SourceReddit || !f.NSFW {
		t.Errorf("got %+v", f)
	}
	if f.Video == nil || f.Video.Duration != 30 {
		t.Errorf("video payload lost: %+v", f.Video)
	}

	// Same (source, id) upserts rather than duplicating.
	item.Title = "renamed"
	s.SaveFavorite(item)
	got, _ = s.Favorites()
	if len(got) != 1 || got[0].Title != "renamed" {
		t.Errorf("upsert failed: %d rows, title %q", len(got), got[0].Title)
	}

	// Same id under a different source is a distinct row.
	other := item
	other.Source = media.SourceBooru
	s.SaveFavorite(other)
	if got, _ = s.Favorites(); len(got) != 2 {
		t.Errorf("got %d favorites, want 2", len(got))
	}

	if err := s.DeleteFavorite(media.SourceReddit, "abc"); err != nil {
		t.Fatalf("DeleteFavorite: %v", err)
	}
	if got, _ = s.Favorites(); len(got) != 1 {
		t.Errorf("got %d favorites after delete, want 1", len(got))
	}

	// Deleting a missing row is not an error.
	if err := s.DeleteFavorite(media.SourceReddit, "never"); err != nil {
		t.Errorf("DeleteFavorite missing: %v", err)
	}
}

func TestSubredditsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"golang", "rust", "golang"} {
		if err := s.SaveSubreddit(name); err != nil {
			t.Fatalf("SaveSubreddit: %v", err)
		}
	}

	names, err := s.Subreddits()
	if err != nil {
		t.Fatalf("Subreddits: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %v, want duplicates collapsed", names)
	}

	s.DeleteSubreddit("golang")
	names, _ = s.Subreddits()
	if len(names) != 1 || names[0] != "rust" {
		t.Errorf("got %v after delete", names)
	}
}

func TestFoldersRoundTrip(t *testing.T) {
	s := openTestStore(t)

	f := media.Folder{
		ID:        "f1",
		Name:      "landscapes",
		Color:     "#00ff00",
		CreatedAt: time.Now().Truncate(time.Second),
		Items: []media.Item{
			{ID: "a", Source: media.SourceBooru, Type: media.TypeImage},
			{ID: "b", Source: media.SourceReddit, Type: media.TypeGallery},
		},
	}
	if err := s.SaveFolder(f); err != nil {
		t.Fatalf("SaveFolder: %v", err)
	}

	folders, err := s.Folders()
	if err != nil {
		t.Fatalf("Folders: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("got %d folders, want 1", len(folders))
	}
	got := folders[0]
	if got.Name != "landscapes" || got.Color != "#00ff00" {
		t.Errorf("got %+v", got)
	}
	if len(got.Items) != 2 || got.Items[0].ID != "a" {
		t.Errorf("items lost: %+v", got.Items)
	}

	// Upsert replaces the item snapshot.
	f.Items = f.Items[:1]
	s.SaveFolder(f)
	folders, _ = s.Folders()
	if len(folders) != 1 || len(folders[0].Items) != 1 {
		t.Errorf("upsert failed: %+v", folders)
	}

	s.DeleteFolder("f1")
	if folders, _ = s.Folders(); len(folders) != 0 {
		t.Errorf("got %d folders after delete", len(folders))
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.SaveFavorite(media.Item{ID: "kept", Source: media.SourceReddit})
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Favorites()
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(got) != 1 || got[0].ID != "kept" {
		t.Errorf("data lost across reopen: %+v", got)
	}
}
