package media

import "time"

// Folder is a named collection of saved media.
//
// Items are by-value snapshots (see Clone); media IDs are unique within
// one folder, enforced at the point of insertion.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Items     []Item    `json:"items"`
	Thumbnail string    `json:"thumbnail,omitempty"` // custom cover, optional
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether the folder already holds media with the id.
func (f *Folder) Contains(source SourceType, id string) bool {
	for _, item := range f.Items {
		if item.Source == source && item.ID == id {
			return true
		}
	}
	return false
}
