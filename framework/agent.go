// Package framework hosts the foundational data structures that the router,
// pipeline steps, and orchestration primitives depend on: the closed set of
// specialist roles, the routing decision produced for every request, and the
// document/extraction records that flow through a comparison run.
package framework

import "context"

// AgentType identifies one of the specialist roles a request can be routed to.
// Keeping this a closed enum (rather than free-form string tags) lets the
// routing table live as data and keeps routing behavior testable.
type AgentType string

const (
	AgentGeneralKnowledge     AgentType = "general_knowledge"
	AgentDocumentComparison   AgentType = "document_comparison"
	AgentQuestionGenerator    AgentType = "question_generator"
	AgentInformationExtractor AgentType = "information_extractor"
	AgentComparisonAnalyst    AgentType = "comparison_analyst"
)

// KnownAgentTypes lists every routable specialist in a stable order.
var KnownAgentTypes = []AgentType{
	AgentGeneralKnowledge,
	AgentDocumentComparison,
	AgentQuestionGenerator,
	AgentInformationExtractor,
	AgentComparisonAnalyst,
}

// ParseAgentType maps a string tag onto the closed enum. Unknown values
// report ok=false so callers can apply their default instead of trusting
// model output verbatim.
func ParseAgentType(s string) (AgentType, bool) {
	for _, t := range KnownAgentTypes {
		if string(t) == s {
			return t, true
		}
	}
	return AgentGeneralKnowledge, false
}

// Confidence grades how a routing decision was reached. Fast-path rules are
// high, model classifications medium, and degraded fallbacks low or medium,
// which lets downstream consumers distinguish genuine classifications from
// guesses made while the model was unreachable.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// RoutingDecision is produced once per request by the router and consumed by
// the orchestrator to select the execution path. Pipeline is empty exactly
// when AgentType is general_knowledge; otherwise it is an ordered sequence of
// stages ending in the terminal analysis step for the task.
type RoutingDecision struct {
	AgentType  AgentType   `json:"agent_type"`
	Reasoning  string      `json:"reasoning"`
	Pipeline   []AgentType `json:"pipeline"`
	Confidence Confidence  `json:"confidence"`
}

// Document is a named body of extracted plain text. It is owned by the caller
// and immutable once handed to the core; steps that need to shrink it for
// prompt budgets work on truncated copies.
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Extraction is one answered question from one document. Answer carries the
// extracted value or a "Not found"/"Not mentioned" sentinel.
type Extraction struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	SourceText string `json:"source_text,omitempty"`
}

// ExtractionRecord collects one document's answers for a comparison request.
// Records are request-scoped and never persisted.
type ExtractionRecord struct {
	DocumentName string       `json:"document_name"`
	Extractions  []Extraction `json:"extractions"`
}

// Outcome is what the orchestrator returns for every processed request,
// success or failure. Errors never propagate past the orchestrator boundary;
// they arrive here as Status "error" plus a message.
type Outcome struct {
	Routing      RoutingDecision `json:"routing_decision"`
	Response     string          `json:"response_text"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// LLMOptions configures a single language model call.
type LLMOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Stop        []string
}

// LLMResponse is the result of a language model invocation.
type LLMResponse struct {
	Text         string
	FinishReason string
	Usage        map[string]int
}

// Message is a single chat turn sent to a model.
type Message struct {
	Role    string
	Content string
}

// LanguageModel is the transport capability the invocation adapter depends
// on: send a prompt, receive text or a typed failure. The concrete protocol
// (HTTP, SSE, RPC) is a collaborator detail behind this interface.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string, options *LLMOptions) (*LLMResponse, error)
	Chat(ctx context.Context, messages []Message, options *LLMOptions) (*LLMResponse, error)
}
