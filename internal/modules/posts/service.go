package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/postcraft/core/internal/database"
	"github.com/postcraft/core/internal/models"
	"github.com/postcraft/core/internal/modules/library"
	"github.com/postcraft/core/internal/modules/processing/ai"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/pagination"
	"github.com/postcraft/core/internal/pkg/response"
	"github.com/postcraft/core/internal/pkg/taskqueue"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	taskTypeGeneration = "post-generation"
	defaultPostCount   = 8
	maxPostCount       = 31
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Service implements post drafting, editing and retention.
type Service struct {
	db            *database.Database
	tasks         *taskqueue.Service
	aiClient      *ai.Client
	library       *library.Service
	publicBaseURL string
	logger        *zap.Logger
}

// NewService wires the posts service. aiClient may be nil when AI
// generation is disabled in configuration.
func NewService(db *database.Database, tasks *taskqueue.Service, aiClient *ai.Client, lib *library.Service, publicBaseURL string, logger *zap.Logger) *Service {
	return &Service{
		db:            db,
		tasks:         tasks,
		aiClient:      aiClient,
		library:       lib,
		publicBaseURL: publicBaseURL,
		logger:        logger.Named("posts"),
	}
}

// Generate enqueues a generation task for one user+month. Re-submitting
// while a task is in flight returns the same task.
func (s *Service) Generate(ctx context.Context, userID string, dto GenerateDTO) (*generateResponse, error) {
	if s.aiClient == nil {
		return nil, apierror.Validation("post generation is disabled")
	}
	if !monthPattern.MatchString(dto.Month) {
		return nil, apierror.Validation("month must be formatted YYYY-MM")
	}

	platform := dto.Platform
	if platform == "" {
		platform = models.PlatformFacebook
	}
	count := dto.Count
	if count <= 0 {
		count = defaultPostCount
	}
	if count > maxPostCount {
		count = maxPostCount
	}

	payload := generationPayload{
		UserID:          userID,
		Month:           dto.Month,
		Platform:        platform,
		Count:           count,
		BusinessContext: dto.BusinessContext,
	}
	dedupKey := userID + ":" + dto.Month

	task, err := s.tasks.Enqueue(ctx, taskTypeGeneration, payload, dedupKey)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "enqueue generation", err)
	}

	if task.Status == taskqueue.TaskPending {
		go s.runGeneration(task.ID, payload)
	}
	return &generateResponse{TaskID: task.ID, Status: string(task.Status)}, nil
}

// runGeneration executes one queued generation task in the background.
func (s *Service) runGeneration(taskID string, payload generationPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, ""); err != nil {
		s.logger.Error("task status update failed", zap.String("task_id", taskID), zap.Error(err))
		return
	}

	postIDs, err := s.generatePosts(ctx, payload)
	if err != nil {
		s.logger.Error("post generation failed",
			zap.String("task_id", taskID),
			zap.String("user_id", payload.UserID),
			zap.String("month", payload.Month),
			zap.Error(err))
		_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}

	s.logger.Info("posts generated",
		zap.String("task_id", taskID),
		zap.String("user_id", payload.UserID),
		zap.String("month", payload.Month),
		zap.Int("count", len(postIDs)))
	_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, generationResult{PostIDs: postIDs}, "")
}

func (s *Service) generatePosts(ctx context.Context, payload generationPayload) ([]string, error) {
	images, err := s.imageCandidates(ctx, payload.UserID, payload.Month)
	if err != nil {
		return nil, err
	}

	drafts, err := s.aiClient.GeneratePosts(ctx, payload.Platform, payload.Month, payload.BusinessContext, images, payload.Count)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	known := make(map[string]bool, len(images))
	for _, img := range images {
		known[img.ID] = true
	}

	now := time.Now()
	ids := make([]string, 0, len(drafts))
	docs := make([]interface{}, 0, len(drafts))
	for _, draft := range drafts {
		post := models.GeneratedPost{
			ID:              uuid.NewString(),
			UserID:          payload.UserID,
			Platform:        payload.Platform,
			Title:           draft.Title,
			Text:            draft.Text,
			Hashtags:        draft.Hashtags,
			AttributedMonth: payload.Month,
			Status:          models.PostDraft,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		// The model may hallucinate visual ids; only trust ones we offered.
		if draft.VisualID != "" && known[draft.VisualID] {
			post.VisualID = draft.VisualID
			post.VisualURL = s.publicImageURL(draft.VisualID)
		}
		ids = append(ids, post.ID)
		docs = append(docs, post)
	}

	if _, err := s.db.Collection(models.PostCollection).InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("insert posts: %w", err)
	}
	return ids, nil
}

// imageCandidates picks described, unused library items to offer the
// model as visuals.
func (s *Service) imageCandidates(ctx context.Context, userID, month string) ([]ai.ImageContext, error) {
	filter := bson.M{
		"user_id":       userID,
		"description":   bson.M{"$nin": bson.A{"", nil}},
		"used_in_posts": false,
	}
	if month != "" {
		filter["$or"] = bson.A{
			bson.M{"attributed_month": month},
			bson.M{"attributed_month": bson.M{"$in": bson.A{"", nil}}},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetLimit(20)
	cursor, err := s.db.Collection(models.ContentCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list image candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var images []ai.ImageContext
	for cursor.Next(ctx) {
		var item models.ContentItem
		if err := cursor.Decode(&item); err != nil {
			continue
		}
		images = append(images, ai.ImageContext{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
		})
	}
	return images, cursor.Err()
}

// TaskStatus reports the state of a generation task the user enqueued.
func (s *Service) TaskStatus(ctx context.Context, userID, taskID string) (*taskStatusResponse, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "load task", err)
	}
	if task == nil {
		return nil, apierror.NotFound("task not found")
	}

	var payload generationPayload
	if err := json.Unmarshal(task.Payload, &payload); err == nil && payload.UserID != userID {
		return nil, apierror.NotFound("task not found")
	}

	resp := &taskStatusResponse{
		TaskID:  task.ID,
		Status:  string(task.Status),
		Error:   task.Error,
		Created: task.CreatedAt,
		Updated: task.UpdatedAt,
	}
	if len(task.Result) > 0 {
		var result generationResult
		if err := json.Unmarshal(task.Result, &result); err == nil {
			resp.PostIDs = result.PostIDs
		}
	}
	return resp, nil
}

// List returns the user's posts, newest first, optionally filtered by
// attributed month.
func (s *Service) List(ctx context.Context, userID, month string, q pagination.Query) ([]models.GeneratedPost, response.Pagination, error) {
	filter := bson.M{"user_id": userID}
	if month != "" {
		filter["attributed_month"] = month
	}

	coll := s.db.Collection(models.PostCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "count posts", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "list posts", err)
	}
	defer cursor.Close(ctx)

	posts := make([]models.GeneratedPost, 0, q.Limit)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, response.Pagination{}, apierror.Internal(err)
	}
	return posts, q.Meta(total), nil
}

// Modify edits a post and marks it modified.
func (s *Service) Modify(ctx context.Context, userID, id string, dto ModifyDTO) error {
	set := bson.M{
		"status":     models.PostModified,
		"updated_at": time.Now(),
	}
	if dto.Title != nil {
		set["title"] = *dto.Title
	}
	if dto.Text != nil {
		set["text"] = *dto.Text
	}
	if dto.Hashtags != nil {
		set["hashtags"] = *dto.Hashtags
	}
	if dto.ScheduledAt != nil {
		set["scheduled_at"] = *dto.ScheduledAt
	}

	res, err := s.db.Collection(models.PostCollection).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": set})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "update post", err)
	}
	if res.MatchedCount == 0 {
		return apierror.NotFound("post not found")
	}
	return nil
}

// AttachImage binds a visual to a post. Library images are flagged
// used_in_posts at exactly this point; the flag survives post deletion.
func (s *Service) AttachImage(ctx context.Context, userID, postID string, dto AttachImageDTO) error {
	if dto.ImageSource != SourceLibrary && dto.ImageSource != SourceUpload {
		return apierror.Validation("image_source must be \"library\" or \"upload\"")
	}

	count, err := s.db.Collection(models.PostCollection).CountDocuments(ctx,
		bson.M{"_id": postID, "user_id": userID})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "load post", err)
	}
	if count == 0 {
		return apierror.NotFound("post not found")
	}

	if dto.ImageSource == SourceLibrary {
		if err := s.library.MarkUsedInPosts(ctx, userID, dto.ImageID); err != nil {
			return err
		}
	}

	set := bson.M{
		"visual_id":  dto.ImageID,
		"visual_url": s.publicImageURL(dto.ImageID),
		"updated_at": time.Now(),
	}
	update := bson.M{"$set": set}
	if dto.ImageSource == SourceUpload {
		update["$addToSet"] = bson.M{"uploaded_file_ids": dto.ImageID}
	}

	if _, err := s.db.Collection(models.PostCollection).UpdateOne(ctx,
		bson.M{"_id": postID, "user_id": userID}, update); err != nil {
		return apierror.Wrap(apierror.KindInternal, "attach image", err)
	}
	return nil
}

// Validate marks a post ready for publication.
func (s *Service) Validate(ctx context.Context, userID, id string) error {
	res, err := s.db.Collection(models.PostCollection).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"status": models.PostValidated, "updated_at": time.Now()}})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "validate post", err)
	}
	if res.MatchedCount == 0 {
		return apierror.NotFound("post not found")
	}
	return nil
}

// Delete removes a post. used_in_posts flags on attached content are
// left in place.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.Collection(models.PostCollection).DeleteOne(ctx,
		bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "delete post", err)
	}
	if res.DeletedCount == 0 {
		return apierror.NotFound("post not found")
	}
	return nil
}

// DeleteOlderThan removes posts created before the cutoff. It backs the
// retention cron job.
func (s *Service) DeleteOlderThan(ctx context.Context, months int) (int64, error) {
	if months <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, -months, 0)
	res, err := s.db.Collection(models.PostCollection).DeleteMany(ctx,
		bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Service) publicImageURL(id string) string {
	return s.publicBaseURL + "/api/v1/public/image/" + id + ".jpg"
}
