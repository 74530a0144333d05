// Package identity is the system of record for user accounts and
// credentials. Callers treat it as an external collaborator: the rest of the
// code only sees the Provider interface and the two sentinel errors.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"learnset/internal/database"
	"learnset/internal/models"
	"learnset/internal/utils"
)

var (
	// ErrConflict means an account with that email already exists.
	ErrConflict = errors.New("account already exists")
	// ErrNotFound means no account exists for that identity.
	ErrNotFound = errors.New("account not found")
)

type Provider interface {
	CreateUser(ctx context.Context, email, fullName, password string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, newPassword string) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
}

type provider struct {
	db database.Service
}

func NewProvider(db database.Service) Provider {
	return &provider{db: db}
}

func (p *provider) collection() *mongo.Collection {
	return p.db.Database().Collection("users")
}

func (p *provider) CreateUser(ctx context.Context, email, fullName, password string) (*models.User, error) {
	queryType := "create"
	repository := "identity"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	existing, err := p.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		log.Warn().Str("email", email).Msg("Account already exists during registration")
		return nil, ErrConflict
	}

	hashed := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), 8)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashed = string(h)
	}

	now := time.Now()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := p.collection().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info().Str("user_id", user.ID.Hex()).Str("email", email).Msg("Account created")
	return user, nil
}

func (p *provider) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	queryType := "findByEmail"
	repository := "identity"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var user models.User
	err := p.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return &user, nil
}

func (p *provider) UpdatePassword(ctx context.Context, email, newPassword string) error {
	queryType := "updatePassword"
	repository := "identity"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), 8)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	update := bson.M{"$set": bson.M{"password_hash": string(hashed), "updated_at": time.Now()}}
	result, err := p.collection().UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	log.Info().Str("email", email).Msg("Password updated")
	return nil
}

func (p *provider) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := p.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return user, nil
}
