package models

import "time"

const ContentCollection = "content_items"

// Storage backends for content blobs.
const (
	StorageGridFS = "gridfs"
	StorageS3     = "s3"
)

// ContentItem is one entry in a user's content library. Description lives on
// the item itself; there is no parallel metadata document to drift out of
// sync with.
type ContentItem struct {
	ID              string    `bson:"_id" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	Filename        string    `bson:"filename" json:"filename"`
	FileType        string    `bson:"file_type" json:"file_type"`
	Size            int64     `bson:"size" json:"size"`
	UploadedAt      time.Time `bson:"uploaded_at" json:"uploaded_at"`
	Title           string    `bson:"title,omitempty" json:"title,omitempty"`
	Context         string    `bson:"context,omitempty" json:"context,omitempty"`
	Description     string    `bson:"description,omitempty" json:"description"`
	UsedInPosts     bool      `bson:"used_in_posts" json:"used_in_posts"`
	CarouselID      string    `bson:"carousel_id,omitempty" json:"carousel_id,omitempty"`
	AttributedMonth string    `bson:"attributed_month,omitempty" json:"attributed_month,omitempty"`
	UploadType      string    `bson:"upload_type,omitempty" json:"upload_type,omitempty"`

	// Blob location. ExternalURL is set for legacy records whose bytes live
	// on a remote host instead of our own storage.
	StorageBackend string `bson:"storage_backend" json:"-"`
	ObjectKey      string `bson:"object_key" json:"-"`
	ThumbnailKey   string `bson:"thumbnail_key,omitempty" json:"-"`
	ExternalURL    string `bson:"external_url,omitempty" json:"-"`

	Width  int `bson:"width,omitempty" json:"width,omitempty"`
	Height int `bson:"height,omitempty" json:"height,omitempty"`

	// LastVerifiedAt is refreshed by the background accessibility sweep.
	LastVerifiedAt *time.Time `bson:"last_verified_at,omitempty" json:"-"`
}

// HasDescription is the "badge" signal surfaced to the gallery UI.
func (c *ContentItem) HasDescription() bool {
	return c.Description != ""
}
