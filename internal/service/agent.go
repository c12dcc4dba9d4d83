package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/documind-ai/documind/internal/domain"
	"github.com/documind-ai/documind/internal/telemetry"
)

// AgentStep identifies a stage of the chat pipeline. Execution is strictly
// sequential; every step runs at most once per request.
type AgentStep string

const (
	StepStart             AgentStep = "start"
	StepRouted            AgentStep = "routed"
	StepSearching         AgentStep = "searching"
	StepGenerating        AgentStep = "generating"
	StepGeneratingGeneral AgentStep = "generating_general"
	StepDone              AgentStep = "done"
)

// FallbackAnswer is the exact sentence returned when the retrieved context
// does not contain the answer. Clients match on it, so the wording is frozen.
const FallbackAnswer = "I cannot find that information in the documents."

const (
	routerInstruction = "You are a router. Decide if the user's question requires searching internal documents " +
		"(company data, reports, specific knowledge) or if it is general conversation (greetings, math, general knowledge). " +
		"Return ONLY the word 'search' or 'general'. Do not add punctuation."

	groundedInstructionTemplate = "You are an enterprise assistant. Answer the question based ONLY on the context below.\n" +
		"If the answer is not in the context, say \"I cannot find that information in the documents.\"\n\n" +
		"Context:\n%s"

	generalInstruction = "You are a helpful assistant. Respond kindly to the user's message."
)

// CompletionClient defines the chat completion the agent depends on
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Retriever defines the document retrieval the agent depends on
type Retriever interface {
	Search(ctx context.Context, query string) ([]domain.RetrievedDocument, error)
}

// AgentService answers a chat message by routing it to either document-grounded
// generation or plain conversation. The pipeline is a fixed state machine:
// route, then retrieve and generate for document questions, or generate
// directly for everything else.
type AgentService struct {
	completer         CompletionClient
	retriever         Retriever
	completionTimeout time.Duration
}

// NewAgentService creates a new AgentService instance.
func NewAgentService(completer CompletionClient, retriever Retriever) *AgentService {
	return &AgentService{
		completer:         completer,
		retriever:         retriever,
		completionTimeout: 60 * time.Second,
	}
}

// SetCompletionTimeout overrides the per-completion deadline.
func (s *AgentService) SetCompletionTimeout(d time.Duration) {
	if d > 0 {
		s.completionTimeout = d
	}
}

// Answer runs the pipeline to completion for one question and returns the
// final state. The state is per-request and never reused.
func (s *AgentService) Answer(ctx context.Context, question string) (*domain.AgentState, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.Answer", telemetry.SpanAttributes{
		Operation: "chat",
	})
	defer span.End()

	if strings.TrimSpace(question) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "message cannot be empty")
	}

	state := &domain.AgentState{Question: question}

	step := StepStart
	for step != StepDone {
		next, err := s.advance(ctx, step, state)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		step = next
	}

	_, doneSpan := telemetry.StartSpan(ctx, "AgentService.done", telemetry.SpanAttributes{
		Intent: string(state.Intent),
	})
	doneSpan.End()

	return state, nil
}

// advance executes one step and returns the next. Each case reads and writes
// only the state fields it owns.
func (s *AgentService) advance(ctx context.Context, step AgentStep, state *domain.AgentState) (AgentStep, error) {
	switch step {
	case StepStart:
		intent, err := s.route(ctx, state.Question)
		if err != nil {
			return step, err
		}
		state.Intent = intent
		return StepRouted, nil

	case StepRouted:
		if state.Intent == domain.IntentSearch {
			return StepSearching, nil
		}
		return StepGeneratingGeneral, nil

	case StepSearching:
		docs, err := s.retriever.Search(ctx, state.Question)
		if err != nil {
			return step, err
		}
		state.Documents = docs
		return StepGenerating, nil

	case StepGenerating:
		answer, err := s.generateGrounded(ctx, state.Question, state.Documents)
		if err != nil {
			return step, err
		}
		state.Answer = answer
		return StepDone, nil

	case StepGeneratingGeneral:
		answer, err := s.complete(ctx, generalInstruction, state.Question)
		if err != nil {
			return step, domain.NewCompletionFailure(err)
		}
		state.Answer = answer
		return StepDone, nil

	default:
		return step, domain.NewDomainError(domain.ErrCodeInternalError, fmt.Sprintf("unknown agent step %q", step))
	}
}

// route classifies the question as a document search or general conversation.
// An unrecognized reply falls back to general; a failed completion call
// propagates like any other backend error.
func (s *AgentService) route(ctx context.Context, question string) (domain.Intent, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.route", telemetry.SpanAttributes{
		Operation: "route",
	})
	defer span.End()

	reply, err := s.complete(ctx, routerInstruction, question)
	if err != nil {
		return "", domain.NewCompletionFailure(err)
	}
	return ParseIntent(reply), nil
}

// ParseIntent maps a raw router reply onto an intent. The check is a
// case-insensitive substring match so decorated replies like "Result: SEARCH"
// still route correctly; anything else is general.
func ParseIntent(reply string) domain.Intent {
	if strings.Contains(strings.ToLower(reply), string(domain.IntentSearch)) {
		return domain.IntentSearch
	}
	return domain.IntentGeneral
}

func (s *AgentService) generateGrounded(ctx context.Context, question string, docs []domain.RetrievedDocument) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.generate", telemetry.SpanAttributes{
		Operation: "generate_grounded",
	})
	defer span.End()

	// An empty store still goes through the model with an empty context
	// block; the instruction forces the fallback sentence.
	system := fmt.Sprintf(groundedInstructionTemplate, buildContext(docs))
	answer, err := s.complete(ctx, system, question)
	if err != nil {
		return "", domain.NewCompletionFailure(err)
	}
	return answer, nil
}

// buildContext renders retrieved documents as labeled blocks in rank order.
func buildContext(docs []domain.RetrievedDocument) string {
	blocks := make([]string, len(docs))
	for i, doc := range docs {
		blocks[i] = fmt.Sprintf("Source: %s\nContent: %s", doc.Source, doc.Content)
	}
	return strings.Join(blocks, "\n\n")
}

func (s *AgentService) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.completionTimeout)
	defer cancel()
	return s.completer.Complete(ctx, system, user)
}
