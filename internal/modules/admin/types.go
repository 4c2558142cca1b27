package admin

import "time"

// StatsResponse aggregates platform-wide counts for the dashboard.
type StatsResponse struct {
	TotalUsers           int64            `json:"total_users"`
	TotalContentItems    int64            `json:"total_content_items"`
	TotalGeneratedPosts  int64            `json:"total_generated_posts"`
	SubscriptionsByState map[string]int64 `json:"subscriptions_by_state"`
}

// RevenueBucket is one day of summed payments.
type RevenueBucket struct {
	Day        string `bson:"_id" json:"day"`
	TotalCents int64  `bson:"total_cents" json:"total_cents"`
	Count      int64  `bson:"count" json:"count"`
}

// PromoCodeDTO creates a promo code.
type PromoCodeDTO struct {
	Code           string     `json:"code" binding:"required"`
	DiscountPct    int        `json:"discount_pct" binding:"required,min=1,max=100"`
	ExpiresAt      *time.Time `json:"expires_at"`
	MaxRedemptions int        `json:"max_redemptions"`
}

// PlanDTO creates a plan mirrored to a Stripe price.
type PlanDTO struct {
	Name          string `json:"name" binding:"required"`
	PriceCents    int64  `json:"price_cents" binding:"required,min=0"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval"`
	PostsPerMonth int    `json:"posts_per_month"`
}
