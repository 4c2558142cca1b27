package posts

import (
	"context"
	"testing"

	"github.com/postcraft/core/internal/config"
	"github.com/postcraft/core/internal/modules/processing/ai"
	"github.com/postcraft/core/internal/pkg/apierror"
	"go.uber.org/zap"
)

func TestMonthPattern(t *testing.T) {
	valid := []string{"2026-01", "2026-09", "1999-12"}
	for _, m := range valid {
		if !monthPattern.MatchString(m) {
			t.Errorf("month %q rejected", m)
		}
	}

	invalid := []string{"2026-13", "2026-00", "2026-1", "202609", "2026-09-01", "sept 2026", ""}
	for _, m := range invalid {
		if monthPattern.MatchString(m) {
			t.Errorf("month %q accepted", m)
		}
	}
}

func TestGenerateRejectsWhenDisabled(t *testing.T) {
	svc := &Service{logger: zap.NewNop()}

	_, err := svc.Generate(context.Background(), "user-1", GenerateDTO{Month: "2026-09"})
	if !apierror.IsKind(err, apierror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateRejectsBadMonth(t *testing.T) {
	svc := &Service{
		aiClient: ai.NewClient(config.AIProvider{Type: "openai", APIKey: "test"}),
		logger:   zap.NewNop(),
	}

	_, err := svc.Generate(context.Background(), "user-1", GenerateDTO{Month: "September"})
	if !apierror.IsKind(err, apierror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAttachImageRejectsUnknownSource(t *testing.T) {
	svc := &Service{logger: zap.NewNop()}

	err := svc.AttachImage(context.Background(), "user-1", "post-1", AttachImageDTO{
		ImageSource: "url",
		ImageID:     "img-1",
	})
	if !apierror.IsKind(err, apierror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
