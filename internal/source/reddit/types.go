package reddit

// Raw wire shapes for the reddit listing API. These never leave this
// package - posts are normalized into media.Item at the boundary.

// listing is the standard reddit envelope.
type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
		After string `json:"after"`
	} `json:"data"`
}

// post is the subset of a reddit link post the normalizer cares about.
type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Thumbnail   string  `json:"thumbnail"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
	Over18      bool    `json:"over_18"`
	IsVideo     bool    `json:"is_video"`
	IsGallery   bool    `json:"is_gallery"`

	MediaEmbed struct {
		Content string `json:"content"`
		Width   int    `json:"width"`
		Height  int    `json:"height"`
	} `json:"media_embed"`

	SecureMedia *struct {
		RedditVideo *redditVideo `json:"reddit_video"`
	} `json:"secure_media"`

	Preview *struct {
		Images []struct {
			Source imageSource `json:"source"`
		} `json:"images"`
	} `json:"preview"`

	GalleryData *struct {
		Items []struct {
			MediaID string `json:"media_id"`
		} `json:"items"`
	} `json:"gallery_data"`

	// Keyed by media_id; present on gallery posts.
	MediaMetadata map[string]mediaMetadata `json:"media_metadata"`
}

type redditVideo struct {
	FallbackURL string `json:"fallback_url"`
	HasAudio    bool   `json:"has_audio"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	Duration    int    `json:"duration"`
	HLSURL      string `json:"hls_url"`
}

type imageSource struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type mediaMetadata struct {
	M string `json:"m"` // mime type, e.g. "image/png"
	S struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"s"`
}

// about is the envelope of the subreddit about endpoint.
type about struct {
	Data struct {
		DisplayName       string `json:"display_name"`
		CommunityIcon     string `json:"community_icon"`
		IconImg           string `json:"icon_img"`
		Subscribers       int    `json:"subscribers"`
		PublicDescription string `json:"public_description"`
	} `json:"data"`
}

// subredditListing is the envelope of the community search endpoint.
type subredditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				DisplayName         string  `json:"display_name"`
				DisplayNamePrefixed string  `json:"display_name_prefixed"`
				Title               string  `json:"title"`
				PublicDescription   string  `json:"public_description"`
				Subscribers         int     `json:"subscribers"`
				CommunityIcon       string  `json:"community_icon"`
				IconImg             string  `json:"icon_img"`
				Over18              bool    `json:"over18"`
				URL                 string  `json:"url"`
				CreatedUTC          float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
		After string `json:"after"`
	} `json:"data"`
}
