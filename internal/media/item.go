// Package media defines the unified media record produced by the source
// adapters.
//
// Every upstream service speaks a different listing protocol and a
// different post shape; adapters normalize all of them into Item. Items
// are immutable once built - favorites and folders copy them by value, so
// later list mutations never affect saved copies.
package media

import "time"

// SourceType identifies which upstream service an item came from.
type SourceType string

const (
	SourceReddit  SourceType = "reddit"
	SourceBooru   SourceType = "booru"
	SourceYouTube SourceType = "youtube"
)

// Type classifies how an item should be presented.
type Type string

const (
	TypeImage   Type = "image"
	TypeVideo   Type = "video"
	TypeGallery Type = "gallery"
	TypeEmbed   Type = "embed"
)

// Item is a single piece of media from any source.
//
// Exactly one of Video, Gallery, Embed is non-nil, matching Type; an
// image item carries none of them. ID is unique within its source only.
type Item struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Thumbnail   string     `json:"thumbnail,omitempty"` // best effort; fall back to URL when empty
	Source      SourceType `json:"source"`
	Subreddit   string     `json:"subreddit,omitempty"` // origin group, reddit only
	Score       int        `json:"score"`
	Author      string     `json:"author,omitempty"`
	Permalink   string     `json:"permalink,omitempty"`
	Created     time.Time  `json:"created"`
	NumComments int        `json:"num_comments"`
	NSFW        bool       `json:"nsfw"`

	Video   *VideoPayload  `json:"video,omitempty"`
	Gallery []GalleryImage `json:"gallery,omitempty"`
	Embed   *EmbedPayload  `json:"embed,omitempty"`
}

// VideoPayload carries playback metadata for video items.
type VideoPayload struct {
	FallbackURL string `json:"fallback_url"`
	HasAudio    bool   `json:"has_audio"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Duration    int    `json:"duration"`           // seconds, 0 when the upstream gives no signal
	HLSURL      string `json:"hls_url,omitempty"`  // adaptive stream, optional
}

// GalleryImage is one entry of a gallery item, in original post order.
type GalleryImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// EmbedPayload carries inline embeddable content (third-party players).
type EmbedPayload struct {
	Content string `json:"content"` // HTML fragment provided by the upstream
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}
