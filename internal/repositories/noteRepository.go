package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"learnset/internal/database"
	"learnset/internal/models"
	"learnset/internal/utils"
)

type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	FindApproved(ctx context.Context, filter models.NoteFilter) ([]models.Note, error)
	FindAll(ctx context.Context) ([]models.Note, error)
	Approve(ctx context.Context, noteID primitive.ObjectID) error
	Delete(ctx context.Context, noteID primitive.ObjectID) error
}

type noteRepository struct {
	db database.Service
}

func NewNoteRepository(db database.Service) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) collection() *mongo.Collection {
	return r.db.Database().Collection("notes")
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	queryType := "create"
	repository := "note"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	note.ID = primitive.NewObjectID()
	note.CreatedAt = time.Now()
	note.UpdatedAt = time.Now()

	if _, err := r.collection().InsertOne(ctx, note); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (r *noteRepository) FindApproved(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	queryType := "findApproved"
	repository := "note"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	query := bson.M{"approved": true}
	if filter.Branch != "" {
		query["branch"] = filter.Branch
	}
	if filter.Subject != "" {
		query["subject"] = filter.Subject
	}
	if filter.Semester != "" {
		query["semester"] = filter.Semester
	}

	return r.find(ctx, query, queryType, repository, &status)
}

func (r *noteRepository) FindAll(ctx context.Context) ([]models.Note, error) {
	queryType := "findAll"
	repository := "note"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	return r.find(ctx, bson.M{}, queryType, repository, &status)
}

func (r *noteRepository) find(ctx context.Context, query bson.M, queryType, repository string, status *string) ([]models.Note, error) {
	cursor, err := r.collection().Find(ctx, query)
	if err != nil {
		*status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []models.Note
	if err := cursor.All(ctx, &notes); err != nil {
		*status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}

func (r *noteRepository) Approve(ctx context.Context, noteID primitive.ObjectID) error {
	queryType := "approve"
	repository := "note"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	update := bson.M{"$set": bson.M{"approved": true, "updated_at": time.Now()}}
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": noteID}, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to approve note: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, noteID primitive.ObjectID) error {
	queryType := "delete"
	repository := "note"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": noteID})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
