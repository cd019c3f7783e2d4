package media

// Clone returns a deep copy of the item. Favorites and folders store
// clones so a saved copy can never observe later mutations.
func (i Item) Clone() Item {
	c := i
	if i.Video != nil {
		v := *i.Video
		c.Video = &v
	}
	if i.Embed != nil {
		e := *i.Embed
		c.Embed = &e
	}
	if i.Gallery != nil {
		c.Gallery = make([]GalleryImage, len(i.Gallery))
		copy(c.Gallery, i.Gallery)
	}
	return c
}
