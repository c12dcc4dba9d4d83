package domain

// Intent is the router's binary classification of a user query.
type Intent string

const (
	IntentUnclassified Intent = ""
	IntentSearch       Intent = "search"
	IntentGeneral      Intent = "general"
)

// RetrievedDocument is one ranked retrieval candidate handed to the generator.
type RetrievedDocument struct {
	Content string
	Source  string
	Page    int
	Score   float32
}

// AgentState is the working state threaded through the orchestrator. One
// instance is created per chat request and discarded after the response is
// returned; it is never persisted and never shared across requests.
type AgentState struct {
	Question  string
	Intent    Intent
	Documents []RetrievedDocument
	Answer    string
}
