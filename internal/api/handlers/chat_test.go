package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/documind-ai/documind/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) Answer(ctx context.Context, question string) (*domain.AgentState, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentState), args.Error(1)
}

func chatRequest(t *testing.T, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChatHandler_SearchAnswerWithCitations(t *testing.T) {
	longText := strings.Repeat("x", 150)
	svc := new(MockAgentService)
	svc.On("Answer", mock.Anything, "What is our refund policy?").
		Return(&domain.AgentState{
			Question: "What is our refund policy?",
			Intent:   domain.IntentSearch,
			Documents: []domain.RetrievedDocument{
				{Content: longText, Source: "policy.pdf", Page: 2, Score: 0.91},
				{Content: "short", Source: "faq.md", Page: 1, Score: 0.72},
			},
			Answer: "Refunds are processed within 30 days.",
		}, nil)

	handler := NewChatHandler(svc)
	rec := httptest.NewRecorder()

	handler.Chat(rec, chatRequest(t, ChatRequest{Message: "What is our refund policy?"}))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Refunds are processed within 30 days.", resp.Answer)
	assert.Equal(t, "search", resp.Intent)
	require.Len(t, resp.Citations, 2)

	assert.Equal(t, "policy.pdf", resp.Citations[0].Filename)
	assert.Equal(t, 2, resp.Citations[0].Page)
	assert.Equal(t, strings.Repeat("x", 100)+"...", resp.Citations[0].TextSnippet)
	assert.InDelta(t, 0.91, resp.Citations[0].Score, 1e-6)

	// Short chunks still get the ellipsis.
	assert.Equal(t, "short...", resp.Citations[1].TextSnippet)
}

func TestChatHandler_GeneralAnswerHasNoCitations(t *testing.T) {
	svc := new(MockAgentService)
	svc.On("Answer", mock.Anything, "hello").
		Return(&domain.AgentState{
			Question: "hello",
			Intent:   domain.IntentGeneral,
			Answer:   "Hi! How can I help?",
		}, nil)

	handler := NewChatHandler(svc)
	rec := httptest.NewRecorder()

	handler.Chat(rec, chatRequest(t, ChatRequest{Message: "hello"}))

	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	// Citations must serialize as an empty array, not null.
	assert.JSONEq(t, "[]", string(raw["citations"]))
}

func TestChatHandler_HistoryAcceptedAndIgnored(t *testing.T) {
	svc := new(MockAgentService)
	svc.On("Answer", mock.Anything, "and the second question?").
		Return(&domain.AgentState{Intent: domain.IntentGeneral, Answer: "Sure."}, nil)

	handler := NewChatHandler(svc)
	rec := httptest.NewRecorder()

	handler.Chat(rec, chatRequest(t, ChatRequest{
		Message: "and the second question?",
		History: []ChatMessage{{Role: "user", Content: "first question"}},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertCalled(t, "Answer", mock.Anything, "and the second question?")
}

func TestChatHandler_EmptyMessage(t *testing.T) {
	svc := new(MockAgentService)
	svc.On("Answer", mock.Anything, "").
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "message cannot be empty"))

	handler := NewChatHandler(svc)
	rec := httptest.NewRecorder()

	handler.Chat(rec, chatRequest(t, ChatRequest{Message: ""}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message cannot be empty")
}

func TestChatHandler_InvalidJSON(t *testing.T) {
	handler := NewChatHandler(new(MockAgentService))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	handler.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_CompletionFailure(t *testing.T) {
	svc := new(MockAgentService)
	svc.On("Answer", mock.Anything, mock.Anything).
		Return(nil, domain.NewCompletionFailure(errors.New("model overloaded")))

	handler := NewChatHandler(svc)
	rec := httptest.NewRecorder()

	handler.Chat(rec, chatRequest(t, ChatRequest{Message: "question"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
