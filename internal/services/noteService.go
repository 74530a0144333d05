package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learnset/internal/models"
	"learnset/internal/repositories"
	"learnset/internal/utils"
)

// NoteService implements the upload/moderation workflow: uploads start
// unapproved, admins either approve them into the public listing or reject
// them, which deletes the record.
type NoteService interface {
	Upload(ctx context.Context, note *models.Note, uploadedBy primitive.ObjectID) (*models.Note, error)
	ListApproved(ctx context.Context, filter models.NoteFilter) ([]models.Note, error)
	ListAll(ctx context.Context) ([]models.Note, error)
	Approve(ctx context.Context, noteID primitive.ObjectID) error
	Reject(ctx context.Context, noteID primitive.ObjectID) error
}

type noteService struct {
	noteRepo repositories.NoteRepository
}

func NewNoteService(noteRepo repositories.NoteRepository) NoteService {
	return &noteService{noteRepo: noteRepo}
}

func (s *noteService) Upload(ctx context.Context, note *models.Note, uploadedBy primitive.ObjectID) (*models.Note, error) {
	if err := utils.ValidateStruct(note); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	note.Approved = false
	note.UploadedBy = uploadedBy

	created, err := s.noteRepo.Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	log.Info().Str("note_id", created.ID.Hex()).Str("subject", created.Subject).Msg("Note uploaded, pending approval")
	return created, nil
}

func (s *noteService) ListApproved(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	notes, err := s.noteRepo.FindApproved(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return notes, nil
}

func (s *noteService) ListAll(ctx context.Context) ([]models.Note, error) {
	notes, err := s.noteRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return notes, nil
}

func (s *noteService) Approve(ctx context.Context, noteID primitive.ObjectID) error {
	if err := s.noteRepo.Approve(ctx, noteID); err != nil {
		return err
	}
	log.Info().Str("note_id", noteID.Hex()).Msg("Note approved")
	return nil
}

func (s *noteService) Reject(ctx context.Context, noteID primitive.ObjectID) error {
	if err := s.noteRepo.Delete(ctx, noteID); err != nil {
		return err
	}
	log.Info().Str("note_id", noteID.Hex()).Msg("Note rejected and removed")
	return nil
}
