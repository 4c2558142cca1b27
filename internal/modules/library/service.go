package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/postcraft/core/internal/config"
	"github.com/postcraft/core/internal/database"
	"github.com/postcraft/core/internal/models"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/imaging"
	"github.com/postcraft/core/internal/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Service implements the content library: ingestion, listing, metadata
// and serving.
type Service struct {
	db            *database.Database
	store         BlobStore
	verifier      *Verifier
	upload        config.UploadOptions
	backend       string
	publicBaseURL string
	httpc         *http.Client
	logger        *zap.Logger
}

// NewService wires the library service.
func NewService(db *database.Database, store BlobStore, verifier *Verifier, cfg *config.AppConfig, logger *zap.Logger) *Service {
	return &Service{
		db:            db,
		store:         store,
		verifier:      verifier,
		upload:        cfg.Upload,
		backend:       cfg.Storage.Backend,
		publicBaseURL: cfg.PublicBaseURL,
		httpc:         &http.Client{Timeout: 30 * time.Second},
		logger:        logger.Named("library"),
	}
}

// Upload processes a batch of image files. Each file is handled
// independently; a corrupt or oversized file yields an error entry while
// the rest of the batch proceeds.
func (s *Service) Upload(ctx context.Context, userID string, files []*multipart.FileHeader, meta UploadMeta) *BatchUploadResponse {
	resp := &BatchUploadResponse{Files: make([]FileResult, 0, len(files))}
	maxBytes := int64(s.upload.MaxSizeMB) << 20

	for _, fh := range files {
		name := safeFilename(fh.Filename)
		result, err := s.uploadOne(ctx, userID, fh, name, maxBytes, meta)
		if err != nil {
			s.logger.Warn("file upload failed",
				zap.String("user_id", userID),
				zap.String("filename", name),
				zap.Error(err))
			resp.Failed++
			resp.Files = append(resp.Files, FileResult{Filename: name, Error: err.Error()})
			continue
		}
		resp.Uploaded++
		resp.Files = append(resp.Files, *result)
	}
	return resp
}

func (s *Service) uploadOne(ctx context.Context, userID string, fh *multipart.FileHeader, name string, maxBytes int64, meta UploadMeta) (*FileResult, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("file exceeds %d MB limit", s.upload.MaxSizeMB)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("file exceeds %d MB limit", s.upload.MaxSizeMB)
	}

	if _, err := detectImageType(raw); err != nil {
		return nil, err
	}

	processed, err := imaging.Process(raw, imaging.Options{
		JPEGQuality:      s.upload.JPEGQuality,
		MaxDimension:     s.upload.MaxDimension,
		ThumbnailMaxPx:   s.upload.ThumbnailMaxPx,
		ThumbnailQuality: s.upload.ThumbnailQuality,
	})
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	objectKey := objectKeyFor(id)
	thumbKey := thumbKeyFor(id)

	if err := s.store.Put(ctx, objectKey, processed.Full, "image/jpeg"); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if err := s.store.Put(ctx, thumbKey, processed.Thumbnail, "image/jpeg"); err != nil {
		_ = s.store.Delete(ctx, objectKey)
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	now := time.Now()
	item := models.ContentItem{
		ID:              id,
		UserID:          userID,
		Filename:        name,
		FileType:        "image/jpeg",
		Size:            int64(len(processed.Full)),
		UploadedAt:      now,
		Title:           meta.CommonTitle,
		Context:         meta.CommonContext,
		AttributedMonth: meta.AttributedMonth,
		UploadType:      meta.UploadType,
		StorageBackend:  s.backend,
		ObjectKey:       objectKey,
		ThumbnailKey:    thumbKey,
		Width:           processed.Width,
		Height:          processed.Height,
		LastVerifiedAt:  &now,
	}
	if _, err := s.db.Collection(models.ContentCollection).InsertOne(ctx, item); err != nil {
		_ = s.store.Delete(ctx, objectKey)
		_ = s.store.Delete(ctx, thumbKey)
		return nil, fmt.Errorf("insert content item: %w", err)
	}

	s.logger.Info("image ingested",
		zap.String("id", id),
		zap.String("user_id", userID),
		zap.Int("original_bytes", processed.OriginalSize),
		zap.Int("stored_bytes", len(processed.Full)),
		zap.Int("thumbnail_bytes", len(processed.Thumbnail)))

	return &FileResult{
		Filename: name,
		ID:       id,
		Success:  true,
		Size:     int64(len(processed.Full)),
		Width:    processed.Width,
		Height:   processed.Height,
	}, nil
}

// ListPending returns the user's gallery page, newest first, with
// inaccessible items filtered out.
func (s *Service) ListPending(ctx context.Context, userID string, q pagination.Query) (*PendingResponse, error) {
	coll := s.db.Collection(models.ContentCollection)
	filter := bson.M{"user_id": userID}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "count content", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "list content", err)
	}
	defer cursor.Close(ctx)

	items := make([]GalleryItem, 0, q.Limit)
	for cursor.Next(ctx) {
		var item models.ContentItem
		if err := cursor.Decode(&item); err != nil {
			return nil, apierror.Internal(err)
		}
		if !s.verifier.Accessible(ctx, &item) {
			continue
		}
		items = append(items, s.galleryView(&item))
	}
	if err := cursor.Err(); err != nil {
		return nil, apierror.Internal(err)
	}

	return &PendingResponse{
		Items:      items,
		Accessible: len(items),
		Pagination: q.Meta(total),
	}, nil
}

// UpdateDescription upserts the description on the item itself. The
// update is idempotent and immediately visible to subsequent reads.
func (s *Service) UpdateDescription(ctx context.Context, userID, id, description string) error {
	res, err := s.db.Collection(models.ContentCollection).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"description": description}})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "update description", err)
	}
	if res.MatchedCount == 0 {
		return apierror.NotFound("content item not found")
	}
	return nil
}

// MarkUsedInPosts flags an item as used. The flag is never cleared, even
// when the referencing post is later deleted.
func (s *Service) MarkUsedInPosts(ctx context.Context, userID, id string) error {
	res, err := s.db.Collection(models.ContentCollection).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"used_in_posts": true}})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "flag content item", err)
	}
	if res.MatchedCount == 0 {
		return apierror.NotFound("content item not found")
	}
	return nil
}

// GetFile returns the full image bytes and content type for an item the
// user owns.
func (s *Service) GetFile(ctx context.Context, userID, id string) ([]byte, string, error) {
	item, err := s.ownedItem(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	return s.fetchBytes(ctx, item, item.ObjectKey)
}

// GetThumbnail returns the thumbnail bytes, falling back to the full
// image for legacy items that never had one rendered.
func (s *Service) GetThumbnail(ctx context.Context, userID, id string) ([]byte, string, error) {
	item, err := s.ownedItem(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	key := item.ThumbnailKey
	if key == "" {
		key = item.ObjectKey
	}
	return s.fetchBytes(ctx, item, key)
}

// GetPublic returns image bytes for unauthenticated serving. No
// ownership check: the id is the capability.
func (s *Service) GetPublic(ctx context.Context, id string) ([]byte, string, error) {
	var item models.ContentItem
	err := s.db.Collection(models.ContentCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", apierror.NotFound("image not found")
		}
		return nil, "", apierror.Internal(err)
	}
	return s.fetchBytes(ctx, &item, item.ObjectKey)
}

// Delete removes blob, thumbnail and document in one pass.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	item, err := s.ownedItem(ctx, userID, id)
	if err != nil {
		return err
	}

	if item.ObjectKey != "" {
		if err := s.store.Delete(ctx, item.ObjectKey); err != nil {
			s.logger.Warn("blob delete failed", zap.String("id", id), zap.Error(err))
		}
	}
	if item.ThumbnailKey != "" {
		if err := s.store.Delete(ctx, item.ThumbnailKey); err != nil {
			s.logger.Warn("thumbnail delete failed", zap.String("id", id), zap.Error(err))
		}
	}

	if _, err := s.db.Collection(models.ContentCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apierror.Wrap(apierror.KindInternal, "delete content item", err)
	}
	return nil
}

func (s *Service) ownedItem(ctx context.Context, userID, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.db.Collection(models.ContentCollection).
		FindOne(ctx, bson.M{"_id": id, "user_id": userID}).
		Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierror.NotFound("content item not found")
		}
		return nil, apierror.Internal(err)
	}
	return &item, nil
}

// fetchBytes resolves an item's bytes from our own storage, or proxies a
// legacy external URL so the caller always gets a direct 200.
func (s *Service) fetchBytes(ctx context.Context, item *models.ContentItem, key string) ([]byte, string, error) {
	if key == "" && item.ExternalURL != "" {
		return s.fetchExternal(ctx, item.ExternalURL)
	}

	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			if item.ExternalURL != "" {
				return s.fetchExternal(ctx, item.ExternalURL)
			}
			return nil, "", apierror.NotFound("image bytes not found")
		}
		return nil, "", apierror.Wrap(apierror.KindInternal, "read blob", err)
	}

	ct := item.FileType
	if ct == "" {
		ct = "image/jpeg"
	}
	return data, ct, nil
}

func (s *Service) fetchExternal(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", apierror.Internal(err)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, "", apierror.Upstream("external image fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", apierror.Upstream(fmt.Sprintf("external image returned %d", resp.StatusCode), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apierror.Upstream("external image read failed", err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "image/jpeg"
	}
	return data, ct, nil
}

func (s *Service) galleryView(item *models.ContentItem) GalleryItem {
	base := s.publicBaseURL
	return GalleryItem{
		ID:              item.ID,
		Filename:        item.Filename,
		Title:           item.Title,
		Context:         item.Context,
		Description:     item.Description,
		HasDescription:  item.HasDescription(),
		UsedInPosts:     item.UsedInPosts,
		AttributedMonth: item.AttributedMonth,
		UploadedAt:      item.UploadedAt,
		Width:           item.Width,
		Height:          item.Height,
		ImageURL:        base + "/api/v1/public/image/" + item.ID + ".jpg",
		ThumbnailURL:    base + "/api/v1/content/" + item.ID + "/thumbnail",
	}
}
