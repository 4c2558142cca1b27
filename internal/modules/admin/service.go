package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/postcraft/core/internal/database"
	"github.com/postcraft/core/internal/models"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/pagination"
	"github.com/postcraft/core/internal/pkg/response"
	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Service implements admin statistics and billing glue.
type Service struct {
	db     *database.Database
	stripe *stripeclient.API
	logger *zap.Logger
}

// NewService wires the admin service. stripeKey may be empty, in which
// case plans are stored without a Stripe mirror.
func NewService(db *database.Database, stripeKey string, logger *zap.Logger) *Service {
	var sc *stripeclient.API
	if stripeKey != "" {
		sc = &stripeclient.API{}
		sc.Init(stripeKey, nil)
	}
	return &Service{db: db, stripe: sc, logger: logger.Named("admin")}
}

// Stats returns platform-wide counts.
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	users, err := s.db.Collection(models.UserCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "count users", err)
	}
	content, err := s.db.Collection(models.ContentCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "count content", err)
	}
	posts, err := s.db.Collection(models.PostCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "count posts", err)
	}

	byState, err := s.subscriptionCounts(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		TotalUsers:           users,
		TotalContentItems:    content,
		TotalGeneratedPosts:  posts,
		SubscriptionsByState: byState,
	}, nil
}

func (s *Service) subscriptionCounts(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.db.Collection(models.SubscriptionCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "aggregate subscriptions", err)
	}
	defer cursor.Close(ctx)

	byState := map[string]int64{
		models.SubscriptionActive:  0,
		models.SubscriptionTrial:   0,
		models.SubscriptionExpired: 0,
	}
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, apierror.Internal(err)
		}
		byState[row.Status] = row.Count
	}
	return byState, cursor.Err()
}

// Revenue sums settled payments per day over the given range.
func (s *Service) Revenue(ctx context.Context, from, to time.Time) ([]RevenueBucket, error) {
	match := bson.M{}
	if !from.IsZero() || !to.IsZero() {
		rangeFilter := bson.M{}
		if !from.IsZero() {
			rangeFilter["$gte"] = from
		}
		if !to.IsZero() {
			rangeFilter["$lt"] = to
		}
		match["paid_at"] = rangeFilter
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$paid_at",
			}},
			"total_cents": bson.M{"$sum": "$amount_cents"},
			"count":       bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := s.db.Collection(models.PaymentCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "aggregate revenue", err)
	}
	defer cursor.Close(ctx)

	buckets := make([]RevenueBucket, 0, 31)
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, apierror.Internal(err)
	}
	return buckets, nil
}

// CreatePromoCode inserts a promo code. The unique index on code turns a
// duplicate into a validation error without touching the stored row.
func (s *Service) CreatePromoCode(ctx context.Context, dto PromoCodeDTO) (*models.PromoCode, error) {
	code := models.PromoCode{
		ID:             uuid.NewString(),
		Code:           dto.Code,
		DiscountPct:    dto.DiscountPct,
		ExpiresAt:      dto.ExpiresAt,
		MaxRedemptions: dto.MaxRedemptions,
		CreatedAt:      time.Now(),
	}
	if _, err := s.db.Collection(models.PromoCodeCollection).InsertOne(ctx, code); err != nil {
		return nil, promoInsertError(err)
	}
	return &code, nil
}

// promoInsertError maps the unique-index violation on code to the exact
// client-facing message; anything else stays internal.
func promoInsertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return apierror.Validation("Promo code already exists")
	}
	return apierror.Wrap(apierror.KindInternal, "insert promo code", err)
}

// ListPromoCodes returns every promo code, newest first.
func (s *Service) ListPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(models.PromoCodeCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "list promo codes", err)
	}
	defer cursor.Close(ctx)

	codes := make([]models.PromoCode, 0, 16)
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, apierror.Internal(err)
	}
	return codes, nil
}

// DeletePromoCode removes one promo code.
func (s *Service) DeletePromoCode(ctx context.Context, id string) error {
	res, err := s.db.Collection(models.PromoCodeCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "delete promo code", err)
	}
	if res.DeletedCount == 0 {
		return apierror.NotFound("promo code not found")
	}
	return nil
}

// CreatePlan stores a plan and mirrors it to a Stripe price object when
// a Stripe key is configured.
func (s *Service) CreatePlan(ctx context.Context, dto PlanDTO) (*models.Plan, error) {
	currency := dto.Currency
	if currency == "" {
		currency = "eur"
	}
	interval := dto.Interval
	if interval == "" {
		interval = "month"
	}

	plan := models.Plan{
		ID:            uuid.NewString(),
		Name:          dto.Name,
		PriceCents:    dto.PriceCents,
		Currency:      currency,
		Interval:      interval,
		PostsPerMonth: dto.PostsPerMonth,
		CreatedAt:     time.Now(),
	}

	if s.stripe != nil {
		price, err := s.stripe.Prices.New(&stripe.PriceParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(dto.PriceCents),
			Recurring: &stripe.PriceRecurringParams{
				Interval: stripe.String(interval),
			},
			ProductData: &stripe.PriceProductDataParams{
				Name: stripe.String(dto.Name),
			},
		})
		if err != nil {
			return nil, apierror.Upstream("stripe price creation failed", err)
		}
		plan.StripePriceID = price.ID
	}

	if _, err := s.db.Collection(models.PlanCollection).InsertOne(ctx, plan); err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "insert plan", err)
	}
	return &plan, nil
}

// ListPlans returns every plan.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	cursor, err := s.db.Collection(models.PlanCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "list plans", err)
	}
	defer cursor.Close(ctx)

	plans := make([]models.Plan, 0, 8)
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, apierror.Internal(err)
	}
	return plans, nil
}

// ListPayments returns settled payments, newest first.
func (s *Service) ListPayments(ctx context.Context, q pagination.Query) ([]models.Payment, response.Pagination, error) {
	coll := s.db.Collection(models.PaymentCollection)
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "count payments", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "paid_at", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "list payments", err)
	}
	defer cursor.Close(ctx)

	payments := make([]models.Payment, 0, q.Limit)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, response.Pagination{}, apierror.Internal(err)
	}
	return payments, q.Meta(total), nil
}

// ListReferrals returns referral rows, newest first.
func (s *Service) ListReferrals(ctx context.Context, q pagination.Query) ([]models.Referral, response.Pagination, error) {
	coll := s.db.Collection(models.ReferralCollection)
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "count referrals", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "list referrals", err)
	}
	defer cursor.Close(ctx)

	referrals := make([]models.Referral, 0, q.Limit)
	if err := cursor.All(ctx, &referrals); err != nil {
		return nil, response.Pagination{}, apierror.Internal(err)
	}
	return referrals, q.Meta(total), nil
}
