package library

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/postcraft/core/internal/database"
	"github.com/postcraft/core/internal/models"
	pkgredis "github.com/postcraft/core/internal/pkg/redis"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const verifiedKeyPrefix = "pc:content:verified:"

// httpDoer is the subset of http.Client the verifier needs.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Verifier decides whether a content item's bytes are still reachable.
// Results are cached in Redis so the gallery listing stays cheap; a
// background sweep refreshes stale verdicts.
type Verifier struct {
	db         *database.Database
	rdb        *pkgredis.Client
	store      BlobStore
	httpc      httpDoer
	staleAfter time.Duration
	logger     *zap.Logger
}

// NewVerifier wires the verifier. staleAfter bounds how long a cached
// verdict is trusted before the sweep re-probes the item.
func NewVerifier(db *database.Database, rdb *pkgredis.Client, store BlobStore, staleAfter time.Duration, logger *zap.Logger) *Verifier {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &Verifier{
		db:         db,
		rdb:        rdb,
		store:      store,
		httpc:      &http.Client{Timeout: 10 * time.Second},
		staleAfter: staleAfter,
		logger:     logger.Named("verifier"),
	}
}

// Accessible reports whether the item's image bytes can still be served.
// Cached verdicts are used when fresh; a cache miss triggers a probe.
func (v *Verifier) Accessible(ctx context.Context, item *models.ContentItem) bool {
	key := verifiedKeyPrefix + item.ID
	if v.rdb != nil {
		if cached, err := v.rdb.Get(ctx, key); err == nil && cached != "" {
			return cached == "1"
		}
	}

	ok := v.probe(ctx, item)
	v.record(ctx, item.ID, ok)
	return ok
}

// Sweep re-probes every item whose verdict is older than the stale
// threshold and refreshes last_verified_at. It is run from cron.
func (v *Verifier) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-v.staleAfter)
	filter := bson.M{"$or": bson.A{
		bson.M{"last_verified_at": bson.M{"$lt": cutoff}},
		bson.M{"last_verified_at": bson.M{"$exists": false}},
	}}

	cursor, err := v.db.Collection(models.ContentCollection).Find(ctx, filter)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var checked, unreachable int
	for cursor.Next(ctx) {
		var item models.ContentItem
		if err := cursor.Decode(&item); err != nil {
			continue
		}
		checked++
		ok := v.probe(ctx, &item)
		if !ok {
			unreachable++
		}
		v.record(ctx, item.ID, ok)
	}

	v.logger.Info("accessibility sweep finished",
		zap.Int("checked", checked),
		zap.Int("unreachable", unreachable))
	return cursor.Err()
}

func (v *Verifier) probe(ctx context.Context, item *models.ContentItem) bool {
	if item.ExternalURL != "" {
		return v.probeURL(ctx, item.ExternalURL)
	}
	ok, err := v.store.Exists(ctx, item.ObjectKey)
	if err != nil {
		v.logger.Warn("blob probe failed", zap.String("id", item.ID), zap.Error(err))
		return false
	}
	return ok
}

func (v *Verifier) probeURL(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := v.httpc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	// A decommissioned host often answers 200 with an HTML placeholder;
	// only an image payload counts as reachable.
	ct := resp.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "image/")
}

// record caches the verdict and, for reachable items, bumps the stored
// verification timestamp.
func (v *Verifier) record(ctx context.Context, id string, ok bool) {
	if v.rdb != nil {
		val := "0"
		if ok {
			val = "1"
		}
		if err := v.rdb.Set(ctx, verifiedKeyPrefix+id, val, v.staleAfter); err != nil {
			v.logger.Warn("verdict cache failed", zap.String("id", id), zap.Error(err))
		}
	}
	if ok && v.db != nil {
		now := time.Now()
		_, err := v.db.Collection(models.ContentCollection).UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"last_verified_at": now}})
		if err != nil {
			v.logger.Warn("verification timestamp update failed", zap.String("id", id), zap.Error(err))
		}
	}
}
