package models

import "time"

const PostCollection = "generated_posts"

// Post status values.
const (
	PostDraft     = "draft"
	PostModified  = "modified"
	PostValidated = "validated"
	PostPublished = "published"
)

// GeneratedPost is an AI-drafted social post awaiting review and publication.
type GeneratedPost struct {
	ID              string     `bson:"_id" json:"id"`
	UserID          string     `bson:"user_id" json:"user_id"`
	Platform        string     `bson:"platform" json:"platform"`
	Title           string     `bson:"title,omitempty" json:"title,omitempty"`
	Text            string     `bson:"text" json:"text"`
	Hashtags        []string   `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	VisualID        string     `bson:"visual_id,omitempty" json:"visual_id,omitempty"`
	VisualURL       string     `bson:"visual_url,omitempty" json:"visual_url,omitempty"`
	UploadedFileIDs []string   `bson:"uploaded_file_ids,omitempty" json:"uploaded_file_ids,omitempty"`
	ScheduledAt     *time.Time `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`
	AttributedMonth string     `bson:"attributed_month,omitempty" json:"attributed_month,omitempty"`
	Status          string     `bson:"status" json:"status"`
	PublishedAt     *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ExternalPostID  string     `bson:"external_post_id,omitempty" json:"external_post_id,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`
}
