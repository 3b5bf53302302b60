package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"gwi.com/chat-persistence/internal/config"
)

const (
	defaultTitleModelName = "gemini-1.5-flash-latest"

	titleSystemInstruction = "You are a helpful assistant that generates concise titles for chat conversations. " +
		"The title should be 3-5 words maximum. Just return the title itself, nothing else."
)

// TitleService generates short chat titles from the first user message.
// It is optional: without an API key the service is nil and callers fall
// back to a truncated message.
type TitleService struct {
	client *genai.Client
}

// NewTitleService returns nil when no API key is configured.
func NewTitleService(ctx context.Context) *TitleService {
	if config.AppConfig.GeminiAPIKey == "" {
		return nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Printf("Failed to create GenAI client, title generation disabled: %v", err)
		return nil
	}
	return &TitleService{client: client}
}

func (s *TitleService) Close() {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Close(); err != nil {
		log.Printf("Error closing GenAI client: %v", err)
	}
}

// GenerateTitle produces a short title for a chat based on its first user
// message.
func (s *TitleService) GenerateTitle(ctx context.Context, basisContent string) (string, error) {
	model := s.client.GenerativeModel(defaultTitleModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(titleSystemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(basisContent))
	if err != nil {
		return "", fmt.Errorf("gemini title request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no title candidates received from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	title := strings.Trim(sb.String(), "\"'\n\r\t .")
	if title == "" {
		return "", fmt.Errorf("gemini returned an empty title")
	}
	return title, nil
}
