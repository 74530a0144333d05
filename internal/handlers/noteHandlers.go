package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"learnset/internal/models"
	"learnset/internal/services"
	"learnset/internal/utils"
)

type NoteHandler struct {
	noteService services.NoteService
}

func NewNoteHandler(noteService services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := r.Context().Value("userID").(string)
	if !ok {
		utils.SendJSONError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.SendJSONError(w, "Invalid user ID format", http.StatusUnauthorized)
		return
	}

	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		utils.SendJSONError(w, "Invalid note payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.noteService.Upload(r.Context(), &note, userID)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Note upload failed")
		utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *NoteHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.NoteFilter{
		Branch:   q.Get("branch"),
		Subject:  q.Get("subject"),
		Semester: q.Get("semester"),
	}

	notes, err := h.noteService.ListApproved(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Listing approved notes failed")
		utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Listing all notes failed")
		utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Approve(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromVars(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.noteService.Approve(r.Context(), noteID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.SendJSONError(w, "Note not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("note_id", noteID.Hex()).Msg("Note approval failed")
		utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Note approved"})
}

func (h *NoteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromVars(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.noteService.Reject(r.Context(), noteID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.SendJSONError(w, "Note not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("note_id", noteID.Hex()).Msg("Note rejection failed")
		utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func noteIDFromVars(r *http.Request) (primitive.ObjectID, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return primitive.NilObjectID, errors.New("missing note ID")
	}
	return primitive.ObjectIDFromHex(idStr)
}
