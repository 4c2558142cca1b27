package ai

import (
	"strings"
	"testing"
)

func TestParsePostDrafts(t *testing.T) {
	raw := `{"posts": [
		{"title": "Opening week", "text": "We are open!", "hashtags": ["#local"], "visual_id": "img-1"},
		{"title": "", "text": "Second post", "hashtags": [], "visual_id": ""}
	]}`

	drafts, err := parsePostDrafts(raw)
	if err != nil {
		t.Fatalf("parsePostDrafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(drafts))
	}
	if drafts[0].VisualID != "img-1" {
		t.Errorf("visual_id = %q, want img-1", drafts[0].VisualID)
	}
}

func TestParsePostDraftsStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"posts\": [{\"title\": \"t\", \"text\": \"body\", \"hashtags\": [], \"visual_id\": \"\"}]}\n```"

	drafts, err := parsePostDrafts(raw)
	if err != nil {
		t.Fatalf("parsePostDrafts: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Text != "body" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
}

func TestParsePostDraftsRejectsGarbage(t *testing.T) {
	if _, err := parsePostDrafts("sorry, I cannot help with that"); err == nil {
		t.Error("expected error for non-JSON output")
	}
	if _, err := parsePostDrafts(`{"posts": []}`); err == nil {
		t.Error("expected error for empty posts array")
	}
	if _, err := parsePostDrafts(`{"posts": [{"text": "   "}]}`); err == nil {
		t.Error("expected error for blank-only posts")
	}
}

func TestBuildPostPromptListsImages(t *testing.T) {
	prompt := buildPostPrompt("facebook", "2026-09", "bakery in Lyon", []ImageContext{
		{ID: "a", Description: "croissants on a tray"},
		{ID: "b", Title: "storefront"},
	}, 4)

	for _, want := range []string{"4 facebook posts", "2026-09", "bakery in Lyon", "id=a: croissants on a tray", "id=b: storefront"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
