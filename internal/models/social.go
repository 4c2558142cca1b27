package models

import "time"

const SocialConnectionCollection = "social_connections"

// Supported platforms.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

// SocialConnection holds an OAuth-derived page binding for publishing.
type SocialConnection struct {
	ID              string    `bson:"_id" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	Platform        string    `bson:"platform" json:"platform"`
	AccessToken     string    `bson:"access_token" json:"-"`
	PageID          string    `bson:"page_id,omitempty" json:"page_id,omitempty"`
	PageName        string    `bson:"page_name,omitempty" json:"page_name,omitempty"`
	InstagramUserID string    `bson:"instagram_user_id,omitempty" json:"instagram_user_id,omitempty"`
	Active          bool      `bson:"active" json:"active"`
	ConnectedAt     time.Time `bson:"connected_at" json:"connected_at"`
}
