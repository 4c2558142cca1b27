package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/postcraft/core/internal/database"
	"github.com/postcraft/core/internal/models"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// loginFailureDelay keeps wrong-password and unknown-user responses on the
// same timing.
const loginFailureDelay = 3 * time.Second

type Service struct {
	db     *database.Database
	signer *jwt.Signer
}

func NewService(db *database.Database, signer *jwt.Signer) *Service {
	return &Service{db: db, signer: signer}
}

// Register creates a user account. Duplicate emails are rejected via the
// unique index rather than a racy pre-check.
func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	name := dto.Name
	if name == "" {
		name = dto.Email
	}
	u := models.User{
		ID:           uuid.NewString(),
		Email:        dto.Email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    time.Now(),
	}

	if _, err := s.db.Collection(models.UserCollection).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apierror.Validation("email already registered")
		}
		return nil, apierror.Upstream("create user failed", err)
	}
	return &u, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var u models.User
	err := s.db.Collection(models.UserCollection).
		FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			time.Sleep(loginFailureDelay)
			return "", nil, apierror.Forbidden("invalid email or password")
		}
		return "", nil, apierror.Upstream("lookup user failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		time.Sleep(loginFailureDelay)
		return "", nil, apierror.Forbidden("invalid email or password")
	}

	token, err := s.signer.Sign(u.ID, u.IsAdmin)
	if err != nil {
		return "", nil, apierror.Internal(err)
	}
	return token, &u, nil
}

// Profile returns the account plus its current subscription status.
func (s *Service) Profile(ctx context.Context, userID string) (*profileResponse, error) {
	var u models.User
	err := s.db.Collection(models.UserCollection).
		FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierror.NotFound("user not found")
		}
		return nil, apierror.Upstream("lookup user failed", err)
	}

	status := "none"
	var sub models.Subscription
	err = s.db.Collection(models.SubscriptionCollection).
		FindOne(ctx, bson.M{"user_id": userID}).Decode(&sub)
	if err == nil {
		status = sub.Status
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.Upstream("lookup subscription failed", err)
	}

	return &profileResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		IsAdmin:            u.IsAdmin,
		SubscriptionStatus: status,
	}, nil
}
