package models

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	ResponseText string `json:"responseText"`
}
