package reddit

import (
	"strings"
	"time"

	"github.com/abelbrown/mosaic/internal/media"
)

// galleryHost serves gallery originals; entry URLs are synthesized as
// {mediaID}.{ext} against it because media_metadata carries no URL.
const galleryHost = "https://i.redd.it/"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var imageDomains = []string{"i.redd.it", "i.imgur.com", "imgur.com"}

// mimeExtensions maps gallery mime types to file extensions. Unknown
// mimes default to jpg.
var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// thumbnailSentinels are placeholder values reddit puts in the thumbnail
// field instead of a URL.
var thumbnailSentinels = map[string]bool{
	"self":    true,
	"default": true,
	"nsfw":    true,
	"image":   true,
}

// normalize classifies a raw post into a media item.
//
// Classification order is a total priority, not interchangeable:
// embed > video > gallery > structured preview > direct image URL.
// Posts matching none of these carry no presentable media and are
// dropped (ok = false).
func normalize(p post) (media.Item, bool) {
	item := media.Item{
		ID:          p.ID,
		Title:       p.Title,
		Source:      media.SourceReddit,
		Subreddit:   p.Subreddit,
		Score:       p.Score,
		Author:      p.Author,
		Permalink:   "https://reddit.com" + p.Permalink,
		Thumbnail:   bestThumbnail(p),
		Created:     createdTime(p),
		NumComments: p.NumComments,
		NSFW:        p.Over18,
	}

	if p.MediaEmbed.Content != "" {
		item.Type = media.TypeEmbed
		item.Embed = &media.EmbedPayload{
			Content: p.MediaEmbed.Content,
			Width:   p.MediaEmbed.Width,
			Height:  p.MediaEmbed.Height,
		}
		return item, true
	}

	if v := videoOf(p); v != nil {
		item.Type = media.TypeVideo
		item.URL = v.FallbackURL
		item.Video = &media.VideoPayload{
			FallbackURL: v.FallbackURL,
			HasAudio:    v.HasAudio,
			Width:       v.Width,
			Height:      v.Height,
			Duration:    v.Duration,
			HLSURL:      v.HLSURL,
		}
		return item, true
	}

	if gallery := galleryOf(p); len(gallery) > 0 {
		item.Type = media.TypeGallery
		item.Gallery = gallery
		item.URL = gallery[0].URL
		return item, true
	}

	if src := previewSource(p); src != "" {
		item.Type = media.TypeImage
		item.URL = src
		return item, true
	}

	if isDirectImageURL(p.URL) {
		item.Type = media.TypeImage
		item.URL = imageURL(p.URL)
		return item, true
	}

	return media.Item{}, false
}

func createdTime(p post) time.Time {
	if p.CreatedUTC == 0 {
		return time.Now()
	}
	return time.Unix(int64(p.CreatedUTC), 0)
}

func videoOf(p post) *redditVideo {
	if !p.IsVideo || p.SecureMedia == nil {
		return nil
	}
	return p.SecureMedia.RedditVideo
}

// galleryOf synthesizes gallery entries in original post order from the
// per-item media metadata.
func galleryOf(p post) []media.GalleryImage {
	if !p.IsGallery || p.GalleryData == nil || p.MediaMetadata == nil {
		return nil
	}
	images := make([]media.GalleryImage, 0, len(p.GalleryData.Items))
	for _, entry := range p.GalleryData.Items {
		meta, ok := p.MediaMetadata[entry.MediaID]
		if !ok {
			continue
		}
		images = append(images, media.GalleryImage{
			URL:    galleryHost + entry.MediaID + "." + extFromMime(meta.M),
			Width:  meta.S.X,
			Height: meta.S.Y,
		})
	}
	return images
}

// previewSource returns the highest-resolution preview image, entity
// decoded, or "". Reddit's source image is the original upload; the
// resolutions array only holds downscaled variants.
func previewSource(p post) string {
	if p.Preview == nil || len(p.Preview.Images) == 0 {
		return ""
	}
	return decodeEntities(p.Preview.Images[0].Source.URL)
}

func isDirectImageURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	for _, domain := range imageDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// imageURL returns the raw URL, appending .jpg to image-host links that
// carry no extension (imgur album-style links resolve that way).
func imageURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	if !strings.Contains(lower, "imgur.com") {
		return rawURL
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return rawURL
		}
	}
	return rawURL + ".jpg"
}

// bestThumbnail picks the best available thumbnail: preview source,
// then direct image URL, then first gallery image, then reddit's low-res
// thumbnail unless it is a sentinel. Empty string means the caller
// should fall back to the item URL.
func bestThumbnail(p post) string {
	if src := previewSource(p); src != "" {
		return src
	}
	if isDirectImageURL(p.URL) {
		return imageURL(p.URL)
	}
	if gallery := galleryOf(p); len(gallery) > 0 {
		return gallery[0].URL
	}
	if p.Thumbnail != "" && !thumbnailSentinels[p.Thumbnail] && strings.HasPrefix(p.Thumbnail, "http") {
		return decodeEntities(p.Thumbnail)
	}
	return ""
}

func extFromMime(mime string) string {
	if ext, ok := mimeExtensions[mime]; ok {
		return ext
	}
	return "jpg"
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// decodeEntities undoes reddit's HTML escaping of URLs.
func decodeEntities(s string) string {
	if s == "" {
		return ""
	}
	return entityReplacer.Replace(s)
}
