package favorites

import (
	"testing"

	"github.com/abelbrown/mosaic/internal/media"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestAddMediaSnapshot(t *testing.T) {
	s := newTestService(t)

	item := media.Item{
		ID:     "a",
		Source: media.SourceReddit,
		Title:  "original",
		Video:  &media.VideoPayload{FallbackURL: "https://v.redd.it/a", Duration: 10},
		Gallery: []media.GalleryImage{
			{URL: "https://i.redd.it/1.jpg"},
		},
	}
	s.AddMedia(item)

	// Mutating the caller's item after saving must not reach the copy.
	item.Title = "mutated"
	item.Video.Duration = 999
	item.Gallery[0].URL = "gone"

	saved := s.Media()
	if len(saved) != 1 {
		t.Fatalf("got %d saved items, want 1", len(saved))
	}
	got := saved[0]
	if got.Title != "original" {
		t.Errorf("Title = %q, want snapshot untouched", got.Title)
	}
	if got.Video.Duration != 10 {
		t.Errorf("Video.Duration = %d, want 10", got.Video.Duration)
	}
	if got.Gallery[0].URL != "https://i.redd.it/1.jpg" {
		t.Errorf("Gallery[0].URL = %q", got.Gallery[0].URL)
	}
}

func TestAddMediaDuplicateIsNoOp(t *testing.T) {
	s := newTestService(t)
	item := media.Item{ID: "a", Source: media.SourceReddit, Title: "first"}
	s.AddMedia(item)

	item.Title = "second"
	s.AddMedia(item)

	saved := s.Media()
	if len(saved) != 1 || saved[0].Title != "first" {
		t.Errorf("duplicate add should be a no-op, got %+v", saved)
	}
}

func TestIsFavoriteAndRemove(t *testing.T) {
	s := newTestService(t)
	s.AddMedia(media.Item{ID: "a", Source: media.SourceReddit})

	if !s.IsFavorite(media.SourceReddit, "a") {
		t.Error("IsFavorite = false after add")
	}
	// Same id, different source: distinct identity.
	if s.IsFavorite(media.SourceBooru, "a") {
		t.Error("identity must include the source")
	}

	s.RemoveMedia(media.SourceReddit, "a")
	if s.IsFavorite(media.SourceReddit, "a") {
		t.Error("IsFavorite = true after remove")
	}
	// Removing again is harmless.
	s.RemoveMedia(media.SourceReddit, "a")
}

func TestSubreddits(t *testing.T) {
	s := newTestService(t)
	s.AddSubreddit("golang")
	s.AddSubreddit("rust")
	s.AddSubreddit("golang")

	names := s.Subreddits()
	if len(names) != 2 || names[0] != "golang" || names[1] != "rust" {
		t.Errorf("got %v", names)
	}

	s.RemoveSubreddit("golang")
	if names = s.Subreddits(); len(names) != 1 || names[0] != "rust" {
		t.Errorf("got %v after remove", names)
	}
}

func TestFolderUniqueMediaIDs(t *testing.T) {
	s := newTestService(t)
	id := s.CreateFolder("landscapes", "#00ff00")

	item := media.Item{ID: "a", Source: media.SourceBooru}
	if !s.AddToFolder(id, item) {
		t.Fatal("first add should succeed")
	}
	if s.AddToFolder(id, item) {
		t.Error("second add of the same media must be rejected")
	}
	// Same id from another source is different media.
	if !s.AddToFolder(id, media.Item{ID: "a", Source: media.SourceReddit}) {
		t.Error("same id under a different source should be allowed")
	}

	folders := s.Folders()
	if len(folders) != 1 || len(folders[0].Items) != 2 {
		t.Fatalf("got %+v", folders)
	}
}

func TestAddToUnknownFolder(t *testing.T) {
	s := newTestService(t)
	if s.AddToFolder("nope", media.Item{ID: "a", Source: media.SourceBooru}) {
		t.Error("adding to an unknown folder must fail")
	}
}

func TestRemoveFromFolder(t *testing.T) {
	s := newTestService(t)
	id := s.CreateFolder("clips", "")
	s.AddToFolder(id, media.Item{ID: "a", Source: media.SourceBooru})
	s.AddToFolder(id, media.Item{ID: "b", Source: media.SourceBooru})

	s.RemoveFromFolder(id, media.SourceBooru, "a")

	folders := s.Folders()
	if len(folders[0].Items) != 1 || folders[0].Items[0].ID != "b" {
		t.Errorf("got %+v", folders[0].Items)
	}

	// The removed item can be re-added.
	if !s.AddToFolder(id, media.Item{ID: "a", Source: media.SourceBooru}) {
		t.Error("re-add after remove should succeed")
	}
}

func TestDeleteFolder(t *testing.T) {
	s := newTestService(t)
	id := s.CreateFolder("temp", "")
	s.AddToFolder(id, media.Item{ID: "a", Source: media.SourceBooru})

	s.DeleteFolder(id)
	if len(s.Folders()) != 0 {
		t.Error("folder should be gone")
	}
	if s.AddToFolder(id, media.Item{ID: "b", Source: media.SourceBooru}) {
		t.Error("deleted folder must not accept items")
	}
}

func TestFoldersReturnsCopies(t *testing.T) {
	s := newTestService(t)
	id := s.CreateFolder("landscapes", "")
	s.AddToFolder(id, media.Item{ID: "a", Source: media.SourceBooru, Title: "kept"})

	out := s.Folders()
	out[0].Items[0].Title = "mutated"
	out[0].Items = nil

	fresh := s.Folders()
	if len(fresh[0].Items) != 1 || fresh[0].Items[0].Title != "kept" {
		t.Errorf("mutating a returned folder must not affect the service, got %+v", fresh[0].Items)
	}
}
