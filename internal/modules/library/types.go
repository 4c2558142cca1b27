package library

import (
	"time"

	"github.com/postcraft/core/internal/pkg/response"
)

// UploadMeta carries the optional form fields shared by every file in a
// batch upload.
type UploadMeta struct {
	AttributedMonth string
	UploadType      string
	CommonTitle     string
	CommonContext   string
}

// FileResult reports the outcome for one file of a batch upload.
type FileResult struct {
	Filename string `json:"filename"`
	ID       string `json:"id,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// BatchUploadResponse summarizes a batch upload. Failed files carry an
// error entry instead of aborting the batch.
type BatchUploadResponse struct {
	Uploaded int          `json:"uploaded"`
	Failed   int          `json:"failed"`
	Files    []FileResult `json:"files"`
}

// GalleryItem is the listing view of a content item. HasDescription is
// derived from the description field, never stored.
type GalleryItem struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	Title           string    `json:"title,omitempty"`
	Context         string    `json:"context,omitempty"`
	Description     string    `json:"description"`
	HasDescription  bool      `json:"has_description"`
	UsedInPosts     bool      `json:"used_in_posts"`
	AttributedMonth string    `json:"attributed_month,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
	Width           int       `json:"width,omitempty"`
	Height          int       `json:"height,omitempty"`
	ImageURL        string    `json:"image_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
}

// PendingResponse is the paginated gallery listing with the count of
// items that survived the accessibility check.
type PendingResponse struct {
	Items      []GalleryItem       `json:"items"`
	Accessible int                 `json:"accessible"`
	Pagination response.Pagination `json:"pagination"`
}

type descriptionDTO struct {
	Description string `json:"description"`
}
