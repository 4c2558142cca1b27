package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/postcraft/core/internal/database"
	"github.com/postcraft/core/internal/models"
	"github.com/postcraft/core/internal/pkg/apierror"
	pkgredis "github.com/postcraft/core/internal/pkg/redis"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	stateKeyPrefix = "pc:fb:state:"
	stateTTL       = 10 * time.Minute
)

// Service implements social connections and publishing.
type Service struct {
	db     *database.Database
	rdb    *pkgredis.Client
	graph  *GraphClient
	logger *zap.Logger
}

// NewService wires the social service.
func NewService(db *database.Database, rdb *pkgredis.Client, graph *GraphClient, logger *zap.Logger) *Service {
	return &Service{db: db, rdb: rdb, graph: graph, logger: logger.Named("social")}
}

// AuthURL builds the OAuth dialog URL with a single-use state bound to
// the requesting user.
func (s *Service) AuthURL(ctx context.Context, userID string) (string, error) {
	state := uuid.NewString()
	if err := s.rdb.Set(ctx, stateKeyPrefix+state, userID, stateTTL); err != nil {
		return "", apierror.Wrap(apierror.KindInternal, "store oauth state", err)
	}
	return s.graph.AuthURL(state), nil
}

// Callback completes the OAuth flow: state → user, code → user token,
// user token → page tokens, page tokens → connection documents.
func (s *Service) Callback(ctx context.Context, code, state string) (int, error) {
	if code == "" || state == "" {
		return 0, apierror.Validation("code and state are required")
	}

	userID, err := s.rdb.Get(ctx, stateKeyPrefix+state)
	if err != nil {
		return 0, apierror.Wrap(apierror.KindInternal, "load oauth state", err)
	}
	if userID == "" {
		return 0, apierror.Unauthorized("unknown or expired oauth state")
	}
	_ = s.rdb.Del(ctx, stateKeyPrefix+state)

	userToken, err := s.graph.ExchangeCode(ctx, code)
	if err != nil {
		return 0, apierror.Upstream("facebook code exchange failed", err)
	}

	pages, err := s.graph.Pages(ctx, userToken)
	if err != nil {
		return 0, apierror.Upstream("facebook page listing failed", err)
	}
	if len(pages) == 0 {
		return 0, apierror.Validation("the facebook account manages no pages")
	}

	connected := 0
	for _, page := range pages {
		if err := s.upsertConnection(ctx, userID, models.PlatformFacebook, page, ""); err != nil {
			s.logger.Error("connection upsert failed",
				zap.String("user_id", userID),
				zap.String("page_id", page.ID),
				zap.Error(err))
			continue
		}
		connected++

		if page.Instagram != nil && page.Instagram.ID != "" {
			if err := s.upsertConnection(ctx, userID, models.PlatformInstagram, page, page.Instagram.ID); err == nil {
				connected++
			}
		}
	}
	if connected == 0 {
		return 0, apierror.Internal(errors.New("no connection could be stored"))
	}
	return connected, nil
}

// upsertConnection stores one page binding, reactivating and refreshing
// an existing document for the same user/platform/page.
func (s *Service) upsertConnection(ctx context.Context, userID, platform string, page Page, instagramID string) error {
	filter := bson.M{"user_id": userID, "platform": platform, "page_id": page.ID}
	update := bson.M{
		"$set": bson.M{
			"access_token":      page.AccessToken,
			"page_name":         page.Name,
			"instagram_user_id": instagramID,
			"active":            true,
			"connected_at":      time.Now(),
		},
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.db.Collection(models.SocialConnectionCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

// Connections lists the user's active connections.
func (s *Service) Connections(ctx context.Context, userID string) ([]models.SocialConnection, error) {
	cursor, err := s.db.Collection(models.SocialConnectionCollection).Find(ctx,
		bson.M{"user_id": userID, "active": true})
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "list connections", err)
	}
	defer cursor.Close(ctx)

	conns := make([]models.SocialConnection, 0, 4)
	if err := cursor.All(ctx, &conns); err != nil {
		return nil, apierror.Internal(err)
	}
	return conns, nil
}

// Deactivate disables a connection without deleting its history.
func (s *Service) Deactivate(ctx context.Context, userID, id string) error {
	res, err := s.db.Collection(models.SocialConnectionCollection).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "deactivate connection", err)
	}
	if res.MatchedCount == 0 {
		return apierror.NotFound("connection not found")
	}
	return nil
}

// Publish sends a post to the user's active Facebook page. Posts with a
// visual go out as photo posts; the Graph API fetches the image from our
// public image endpoint.
func (s *Service) Publish(ctx context.Context, userID, postID string) (*models.GeneratedPost, error) {
	var post models.GeneratedPost
	err := s.db.Collection(models.PostCollection).
		FindOne(ctx, bson.M{"_id": postID, "user_id": userID}).
		Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierror.NotFound("post not found")
		}
		return nil, apierror.Internal(err)
	}
	if post.Status == models.PostPublished {
		return nil, apierror.Conflict("post is already published")
	}

	conn, err := s.activeConnection(ctx, userID, models.PlatformFacebook)
	if err != nil {
		return nil, err
	}

	message := post.Text
	if len(post.Hashtags) > 0 {
		message += "\n\n" + strings.Join(post.Hashtags, " ")
	}

	var externalID string
	if post.VisualURL != "" {
		externalID, err = s.graph.PublishPhoto(ctx, conn.PageID, conn.AccessToken, post.VisualURL, message)
	} else {
		externalID, err = s.graph.PublishFeed(ctx, conn.PageID, conn.AccessToken, message)
	}
	if err != nil {
		return nil, apierror.Upstream("facebook publish failed", err)
	}

	now := time.Now()
	_, err = s.db.Collection(models.PostCollection).UpdateOne(ctx,
		bson.M{"_id": post.ID},
		bson.M{"$set": bson.M{
			"status":           models.PostPublished,
			"published_at":     now,
			"external_post_id": externalID,
			"updated_at":       now,
		}})
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "record publication", err)
	}

	s.logger.Info("post published",
		zap.String("post_id", post.ID),
		zap.String("page_id", conn.PageID),
		zap.String("external_post_id", externalID))

	post.Status = models.PostPublished
	post.PublishedAt = &now
	post.ExternalPostID = externalID
	return &post, nil
}

// CleanupTokens probes the user's stored tokens and deactivates the
// connections whose tokens no longer validate.
func (s *Service) CleanupTokens(ctx context.Context, userID string) (int, error) {
	conns, err := s.Connections(ctx, userID)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, conn := range conns {
		valid, err := s.graph.DebugToken(ctx, conn.AccessToken)
		if err != nil {
			s.logger.Warn("token probe failed", zap.String("connection_id", conn.ID), zap.Error(err))
			continue
		}
		if valid {
			continue
		}
		if err := s.Deactivate(ctx, userID, conn.ID); err == nil {
			cleaned++
		}
	}
	return cleaned, nil
}

func (s *Service) activeConnection(ctx context.Context, userID, platform string) (*models.SocialConnection, error) {
	var conn models.SocialConnection
	err := s.db.Collection(models.SocialConnectionCollection).
		FindOne(ctx, bson.M{"user_id": userID, "platform": platform, "active": true}).
		Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierror.Validation("no active " + platform + " connection")
		}
		return nil, apierror.Internal(err)
	}
	return &conn, nil
}
