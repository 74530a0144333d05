package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learnset/internal/database"
	"learnset/internal/models"
	"learnset/internal/utils"
)

// SecretRepository is the sole owner of pending-secret lifetime. Entries are
// keyed by (email, purpose); Put unconditionally overwrites, so the last
// issuance for a pair always wins.
type SecretRepository interface {
	Put(ctx context.Context, email, purpose, secret string, ttl time.Duration) error
	Get(ctx context.Context, email, purpose string) (*models.PendingSecret, error)
	Delete(ctx context.Context, email, purpose string) error
	DeleteExpired(ctx context.Context) error
}

type secretRepository struct {
	db database.Service
}

func NewSecretRepository(db database.Service) SecretRepository {
	return &secretRepository{db: db}
}

func (r *secretRepository) collection() *mongo.Collection {
	return r.db.Database().Collection("pending_secrets")
}

func (r *secretRepository) Put(ctx context.Context, email, purpose, secret string, ttl time.Duration) error {
	queryType := "put"
	repository := "secret"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	now := time.Now()
	doc := models.PendingSecret{
		Email:     email,
		Purpose:   purpose,
		Secret:    secret,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	filter := bson.M{"email": email, "purpose": purpose}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection().ReplaceOne(ctx, filter, doc, opts); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to store pending secret: %w", err)
	}
	return nil
}

func (r *secretRepository) Get(ctx context.Context, email, purpose string) (*models.PendingSecret, error) {
	queryType := "get"
	repository := "secret"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var ps models.PendingSecret
	err := r.collection().FindOne(ctx, bson.M{"email": email, "purpose": purpose}).Decode(&ps)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to look up pending secret: %w", err)
	}
	return &ps, nil
}

func (r *secretRepository) Delete(ctx context.Context, email, purpose string) error {
	queryType := "delete"
	repository := "secret"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	// Deleting an absent key is not an error.
	if _, err := r.collection().DeleteOne(ctx, bson.M{"email": email, "purpose": purpose}); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to delete pending secret: %w", err)
	}
	return nil
}

func (r *secretRepository) DeleteExpired(ctx context.Context) error {
	queryType := "deleteExpired"
	repository := "secret"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"expires_at": bson.M{"$lt": time.Now()}}
	if _, err := r.collection().DeleteMany(ctx, filter); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to sweep expired secrets: %w", err)
	}
	return nil
}
