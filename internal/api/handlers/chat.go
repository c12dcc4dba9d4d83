package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/documind-ai/documind/internal/api"
	"github.com/documind-ai/documind/internal/domain"
)

const snippetLength = 100

// AgentServiceInterface defines the chat pipeline the handler depends on
type AgentServiceInterface interface {
	Answer(ctx context.Context, question string) (*domain.AgentState, error)
}

// ChatHandler handles the chat endpoint
type ChatHandler struct {
	svc AgentServiceInterface
}

func NewChatHandler(svc AgentServiceInterface) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ChatMessage is one prior turn of the conversation. History is accepted for
// forward compatibility but not yet fed to the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload for POST /api/v1/chat
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// Citation points at a retrieved chunk backing the answer
type Citation struct {
	Filename    string  `json:"filename"`
	Page        int     `json:"page"`
	TextSnippet string  `json:"text_snippet"`
	Score       float32 `json:"score"`
}

// ChatResponse is the payload returned by POST /api/v1/chat
type ChatResponse struct {
	Answer    string     `json:"answer"`
	Intent    string     `json:"intent"`
	Citations []Citation `json:"citations"`
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := h.svc.Answer(r.Context(), req.Message)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	citations := make([]Citation, 0, len(state.Documents))
	for _, doc := range state.Documents {
		citations = append(citations, Citation{
			Filename:    doc.Source,
			Page:        doc.Page,
			TextSnippet: snippet(doc.Content),
			Score:       doc.Score,
		})
	}

	api.JSON(w, http.StatusOK, ChatResponse{
		Answer:    state.Answer,
		Intent:    string(state.Intent),
		Citations: citations,
	})
}

// snippet returns the first 100 runes of content with a trailing ellipsis.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) > snippetLength {
		runes = runes[:snippetLength]
	}
	return string(runes) + "..."
}
