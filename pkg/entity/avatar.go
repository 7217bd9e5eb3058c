package entity

// FileReference locates a stored file.
type FileReference struct {
	FileID     int64  `json:"fileId"`
	AccessHash int64  `json:"accessHash"`
	FileName   string `json:"fileName,omitempty"`
	FileSize   int    `json:"fileSize"`
}

// AvatarImage is one rendition of an avatar.
type AvatarImage struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	File   FileReference `json:"file"`
}

// Equal reports structural equality. Two nil images are equal.
func (i *AvatarImage) Equal(o *AvatarImage) bool {
	if i == nil || o == nil {
		return i == o
	}
	return *i == *o
}

// Avatar is a set of renditions of the same picture.
type Avatar struct {
	SmallImage *AvatarImage `json:"smallImage,omitempty"`
	LargeImage *AvatarImage `json:"largeImage,omitempty"`
	FullImage  *AvatarImage `json:"fullImage,omitempty"`
}

// Equal reports structural equality across every rendition.
// Two nil avatars are equal.
func (a *Avatar) Equal(o *Avatar) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.SmallImage.Equal(o.SmallImage) &&
		a.LargeImage.Equal(o.LargeImage) &&
		a.FullImage.Equal(o.FullImage)
}
