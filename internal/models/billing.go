package models

import "time"

// Billing collections.
const (
	SubscriptionCollection = "subscriptions"
	PlanCollection         = "plans"
	PromoCodeCollection    = "promo_codes"
	PaymentCollection      = "payments"
	ReferralCollection     = "referrals"
)

// Subscription status values.
const (
	SubscriptionActive  = "active"
	SubscriptionTrial   = "trial"
	SubscriptionExpired = "expired"
)

// Subscription binds a user to a plan via Stripe.
type Subscription struct {
	ID                   string     `bson:"_id" json:"id"`
	UserID               string     `bson:"user_id" json:"user_id"`
	PlanID               string     `bson:"plan_id" json:"plan_id"`
	StripeCustomerID     string     `bson:"stripe_customer_id,omitempty" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string     `bson:"stripe_subscription_id,omitempty" json:"stripe_subscription_id,omitempty"`
	Status               string     `bson:"status" json:"status"`
	TrialEnd             *time.Time `bson:"trial_end,omitempty" json:"trial_end,omitempty"`
	PeriodEnd            *time.Time `bson:"period_end,omitempty" json:"period_end,omitempty"`
	CreatedAt            time.Time  `bson:"created_at" json:"created_at"`
}

// Plan is a purchasable tier, mirrored to a Stripe price object.
type Plan struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	PriceCents    int64     `bson:"price_cents" json:"price_cents"`
	Currency      string    `bson:"currency" json:"currency"`
	Interval      string    `bson:"interval" json:"interval"`
	PostsPerMonth int       `bson:"posts_per_month" json:"posts_per_month"`
	StripePriceID string    `bson:"stripe_price_id,omitempty" json:"stripe_price_id,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// PromoCode is a discount code. Code carries a unique index.
type PromoCode struct {
	ID             string     `bson:"_id" json:"id"`
	Code           string     `bson:"code" json:"code"`
	DiscountPct    int        `bson:"discount_pct" json:"discount_pct"`
	ExpiresAt      *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	MaxRedemptions int        `bson:"max_redemptions,omitempty" json:"max_redemptions,omitempty"`
	Redemptions    int        `bson:"redemptions" json:"redemptions"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
}

// Payment is a settled charge, summed by day in the revenue report.
type Payment struct {
	ID              string    `bson:"_id" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	AmountCents     int64     `bson:"amount_cents" json:"amount_cents"`
	Currency        string    `bson:"currency" json:"currency"`
	StripePaymentID string    `bson:"stripe_payment_id,omitempty" json:"stripe_payment_id,omitempty"`
	PaidAt          time.Time `bson:"paid_at" json:"paid_at"`
}

// Referral links a referrer to a referred signup.
type Referral struct {
	ID             string    `bson:"_id" json:"id"`
	ReferrerUserID string    `bson:"referrer_user_id" json:"referrer_user_id"`
	ReferredUserID string    `bson:"referred_user_id" json:"referred_user_id"`
	RewardGranted  bool      `bson:"reward_granted" json:"reward_granted"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
