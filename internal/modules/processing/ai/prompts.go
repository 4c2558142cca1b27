package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ImageContext describes one library item offered to the model as a
// visual candidate.
type ImageContext struct {
	ID          string
	Title       string
	Description string
}

// PostDraft is one generated post parsed from the model output.
type PostDraft struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Hashtags []string `json:"hashtags"`
	VisualID string   `json:"visual_id"`
}

const postSystemPrompt = `You are a social media content writer for small businesses.
You write engaging, concise posts in the voice of the business owner.
Always answer with valid JSON and nothing else.`

// GeneratePosts asks the model for a month of post drafts grounded in
// the user's image descriptions.
func (c *Client) GeneratePosts(ctx context.Context, platform, month, businessContext string, images []ImageContext, count int) ([]PostDraft, error) {
	raw, err := c.Generate(ctx, postSystemPrompt, buildPostPrompt(platform, month, businessContext, images, count))
	if err != nil {
		return nil, err
	}
	return parsePostDrafts(raw)
}

// buildPostPrompt assembles the generation prompt for a month of posts.
func buildPostPrompt(platform, month, businessContext string, images []ImageContext, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d %s posts for the month %s.\n", count, platform, month)
	if businessContext != "" {
		fmt.Fprintf(&b, "Business context: %s\n", businessContext)
	}

	if len(images) > 0 {
		b.WriteString("\nAvailable images (pick at most one per post, reference by id):\n")
		for _, img := range images {
			label := img.Description
			if label == "" {
				label = img.Title
			}
			fmt.Fprintf(&b, "- id=%s: %s\n", img.ID, label)
		}
	}

	b.WriteString(`
Answer with a JSON object of this exact shape:
{"posts": [{"title": "...", "text": "...", "hashtags": ["..."], "visual_id": "<image id or empty>"}]}
`)
	return b.String()
}

// parsePostDrafts extracts post drafts from raw model output, tolerating
// markdown code fences around the JSON.
func parsePostDrafts(raw string) ([]PostDraft, error) {
	var payload struct {
		Posts []PostDraft `json:"posts"`
	}
	if err := unmarshalModelJSON(raw, &payload); err != nil {
		return nil, err
	}
	if len(payload.Posts) == 0 {
		return nil, fmt.Errorf("no posts in model response")
	}

	drafts := make([]PostDraft, 0, len(payload.Posts))
	for _, p := range payload.Posts {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		drafts = append(drafts, p)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("no usable posts in model response")
	}
	return drafts, nil
}

func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}
	return fmt.Errorf("invalid JSON in model response")
}
