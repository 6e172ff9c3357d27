package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerChatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/api/v1/chat",
		Summary:     "Ask the librarian",
		Description: "Answers a natural-language question about the caller's library. The reply is always plain text.",
		Tags:        []string{"Chat"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleChat)
}

// ChatRequest is the request body for a chat message.
type ChatRequest struct {
	Message string `json:"message,omitempty" doc:"Question about the library, at most 2000 characters"`
}

// ChatInput wraps the chat request for Huma.
type ChatInput struct {
	Authorization string `header:"Authorization"`
	Body          ChatRequest
}

// ChatResponse carries the reply.
type ChatResponse struct {
	Reply string `json:"reply" doc:"Answer text"`
}

// ChatOutput wraps the chat response for Huma.
type ChatOutput struct {
	Body ChatResponse
}

func (s *Server) handleChat(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
	caller, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.allowChat(caller); err != nil {
		return nil, err
	}

	resp, err := s.services.Chat.Chat(ctx, caller, input.Body.Message)
	if err != nil {
		return nil, err
	}

	return &ChatOutput{Body: ChatResponse{Reply: resp.Reply}}, nil
}
