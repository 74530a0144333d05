package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"learnset/internal/models"
	"learnset/internal/services"
	"learnset/internal/utils"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.SendJSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	answer, err := h.chatService.Ask(r.Context(), req.Message)
	if err != nil {
		// Provider error detail stays in the log.
		log.Error().Err(err).Msg("Chat request failed")
		utils.SendJSONError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.ChatResponse{ResponseText: answer})
}
