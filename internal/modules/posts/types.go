package posts

import "time"

// Image attach sources.
const (
	SourceLibrary = "library"
	SourceUpload  = "upload"
)

// GenerateDTO requests a month of AI-drafted posts.
type GenerateDTO struct {
	Month           string `json:"month" binding:"required"`
	Platform        string `json:"platform"`
	Count           int    `json:"count"`
	BusinessContext string `json:"business_context"`
}

// ModifyDTO edits a drafted post. Nil fields are left untouched.
type ModifyDTO struct {
	Title       *string    `json:"title"`
	Text        *string    `json:"text"`
	Hashtags    *[]string  `json:"hashtags"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// AttachImageDTO binds a visual to a post.
type AttachImageDTO struct {
	ImageSource string `json:"image_source" binding:"required"`
	ImageID     string `json:"image_id" binding:"required"`
}

// generateResponse returns the task handle for polling.
type generateResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// taskStatusResponse reports generation progress.
type taskStatusResponse struct {
	TaskID  string    `json:"task_id"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
	PostIDs []string  `json:"post_ids,omitempty"`
	Created time.Time `json:"created_at"`
	Updated time.Time `json:"updated_at"`
}

// generationPayload is stored with the queued task.
type generationPayload struct {
	UserID          string `json:"user_id"`
	Month           string `json:"month"`
	Platform        string `json:"platform"`
	Count           int    `json:"count"`
	BusinessContext string `json:"business_context,omitempty"`
}

// generationResult is stored on completed tasks.
type generationResult struct {
	PostIDs []string `json:"post_ids"`
}
