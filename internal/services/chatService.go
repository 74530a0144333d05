package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// chat input is truncated before it reaches the model
const maxChatMessageLen = 2000

// ChatService proxies the study-assistant chat to the LLM backend. The
// backend is opaque: one prompt in, one markdown answer out.
type ChatService interface {
	Ask(ctx context.Context, message string) (string, error)
}

type chatService struct {
	apiKey string
}

func NewChatService() ChatService {
	return &chatService{apiKey: os.Getenv("GENAI_API_KEY")}
}

func (s *chatService) Ask(ctx context.Context, message string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", ErrUpstreamUnavailable)
	}

	safeMessage := strings.TrimSpace(message)
	if len(safeMessage) > maxChatMessageLen {
		safeMessage = safeMessage[:maxChatMessageLen]
	}

	llm, err := googleai.New(ctx, googleai.WithAPIKey(s.apiKey), googleai.WithDefaultModel("gemini-2.5-flash"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	prompt := fmt.Sprintf(
		"You are a study assistant for engineering and diploma students. "+
			"Answer the question below in clean Markdown, using headings and bullet points when helpful. "+
			"Keep the answer focused and practical.\n\nQuestion: %s",
		safeMessage,
	)

	answer, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	return answer, nil
}
