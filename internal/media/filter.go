package media

// Filter is a client-side view filter over a session's fetched items.
// It never touches the fetched set or the cursor - filtering is a pure
// view, and clearing it restores everything already fetched.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterImages    Filter = "images"
	FilterVideos    Filter = "videos"
	FilterGalleries Filter = "galleries"
)

// Matches reports whether an item passes the filter. Embeds count as
// videos: they are third-party players, not stills.
func (f Filter) Matches(item Item) bool {
	switch f {
	case FilterImages:
		return item.Type == TypeImage
	case FilterVideos:
		return item.Type == TypeVideo || item.Type == TypeEmbed
	case FilterGalleries:
		return item.Type == TypeGallery
	default:
		return true
	}
}

// Apply returns the items passing the filter, preserving order.
func (f Filter) Apply(items []Item) []Item {
	if f == FilterAll || f == "" {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// Next cycles all -> images -> videos -> galleries -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll, "":
		return FilterImages
	case FilterImages:
		return FilterVideos
	case FilterVideos:
		return FilterGalleries
	default:
		return FilterAll
	}
}
