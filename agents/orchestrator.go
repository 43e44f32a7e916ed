package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vominhhuy13101999/agent-test/framework"
	"github.com/vominhhuy13101999/agent-test/llm"
)

// Request limits. Oversized inputs are rejected before any model call.
const (
	MaxMessageLength = 10000
	MaxDocuments     = 10
)

const minComparisonDocuments = 2

const comparisonDocsMessage = "I need at least 2 documents to perform a comparison. Please upload more documents."

// Request is one user turn handed to the orchestrator.
type Request struct {
	Message   string               `json:"message"`
	SessionID string               `json:"session_id"`
	UserID    string               `json:"user_id,omitempty"`
	UseRAG    bool                 `json:"use_rag,omitempty"`
	Documents []framework.Document `json:"uploaded_documents,omitempty"`
}

// Orchestrator drives the full request lifecycle: validate, route, execute
// the routed agent or pipeline, and fold the outcome back into session state.
// Every failure mode is converted into an error Outcome at this boundary;
// callers never see a panic or a raw transport error.
type Orchestrator struct {
	Router     *Router
	Invoker    *Invoker
	Registry   *Registry
	Questions  *QuestionGenerator
	Extractor  *Extractor
	Sessions   *framework.SessionStore
	Telemetry  framework.Telemetry
	Transcript Transcript
}

// NewOrchestrator wires the default component graph around a language model.
func NewOrchestrator(model framework.LanguageModel, telemetry framework.Telemetry) *Orchestrator {
	registry := NewRegistry()
	invoker := &Invoker{Model: model, Telemetry: telemetry}
	return &Orchestrator{
		Router:    &Router{Invoker: invoker, Registry: registry, Telemetry: telemetry},
		Invoker:   invoker,
		Registry:  registry,
		Questions: &QuestionGenerator{Invoker: invoker, Registry: registry, Telemetry: telemetry},
		Extractor: &Extractor{Invoker: invoker, Registry: registry, Telemetry: telemetry},
		Sessions:  framework.NewSessionStore(),
		Telemetry: telemetry,
	}
}

// Process handles one request end to end and returns an Outcome for it.
func (o *Orchestrator) Process(ctx context.Context, req Request) (outcome framework.Outcome) {
	started := time.Now()

	if msg, ok := validateRequest(req); !ok {
		return framework.Outcome{
			Routing:      framework.RoutingDecision{AgentType: framework.AgentGeneralKnowledge, Reasoning: "Request rejected before routing"},
			Response:     msg,
			Status:       framework.StatusError,
			ErrorMessage: msg,
		}
	}

	session, release := o.Sessions.Acquire(req.SessionID)
	defer release()

	defer func() {
		if r := recover(); r != nil {
			outcome = framework.Outcome{
				Routing:      outcome.Routing,
				Response:     "An unexpected error occurred while processing your request.",
				Status:       framework.StatusError,
				ErrorMessage: fmt.Sprintf("panic: %v", r),
			}
			o.finish(session, req, outcome, started)
		}
	}()

	session.UserID = req.UserID
	if len(req.Documents) > 0 {
		session.DocumentsUploaded = true
	}

	decision := o.Router.Route(ctx, req.Message, RoutingContext{
		DocumentsUploaded: session.DocumentsUploaded,
		PreviousAgent:     session.PreviousAgent,
		HasHistory:        len(session.History) > 0,
	})

	var response string
	var err error
	if len(decision.Pipeline) == 0 {
		response, err = o.runSingle(ctx, decision.AgentType, req)
	} else {
		response, err = o.runPipeline(ctx, decision, req)
	}

	outcome = framework.Outcome{Routing: decision, Response: response, Status: framework.StatusSuccess}
	if err != nil {
		outcome.Status = framework.StatusError
		outcome.ErrorMessage = err.Error()
		if outcome.Response == "" {
			outcome.Response = "An error occurred while processing your request. Please try again."
		}
	}

	o.finish(session, req, outcome, started)
	return outcome
}

// AvailableAgents lists the specialists the orchestrator can route to.
func (o *Orchestrator) AvailableAgents() []framework.AgentType {
	return append([]framework.AgentType(nil), framework.KnownAgentTypes...)
}

// HealthCheck verifies the model transport with a minimal round trip.
func (o *Orchestrator) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := o.Invoker.Model.Generate(ctx, "ping", &framework.LLMOptions{MaxTokens: 8})
	return err
}

func validateRequest(req Request) (string, bool) {
	if strings.TrimSpace(req.Message) == "" {
		return "Please enter a message.", false
	}
	if len(req.Message) > MaxMessageLength {
		return fmt.Sprintf("Your message is too long (limit %d characters).", MaxMessageLength), false
	}
	if len(req.Documents) > MaxDocuments {
		return fmt.Sprintf("Too many documents attached (limit %d).", MaxDocuments), false
	}
	return "", true
}

// runSingle handles the non-pipeline path: one specialist persona answers
// the query directly. Documents, when present, are folded into the prompt as
// named sections so the model can cite them.
func (o *Orchestrator) runSingle(ctx context.Context, agent framework.AgentType, req Request) (string, error) {
	persona, ok := o.Registry.ForAgent(agent)
	if !ok {
		return "", fmt.Errorf("no persona registered for agent %q", agent)
	}

	prompt := req.Message
	if len(req.Documents) > 0 {
		var b strings.Builder
		b.WriteString(req.Message)
		b.WriteString("\n\nThe user has attached the following documents:\n")
		for _, doc := range req.Documents {
			text, _ := framework.TruncateDocument(doc.Text, framework.DefaultMaxContentLength)
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", doc.Name, text)
		}
		prompt = b.String()
	}

	framework.EmitEvent(o.Telemetry, framework.Event{
		Type:      framework.EventAgentInvoked,
		SessionID: req.SessionID,
		Agent:     agent,
	})
	response := o.Invoker.Invoke(ctx, persona, prompt)
	if response == RateLimitMessage {
		return response, fmt.Errorf("model rate limited or unavailable")
	}
	return response, nil
}

// pipelineState accumulates intermediate results across stages so later
// stages see what earlier ones produced.
type pipelineState struct {
	questions []string
	docType   string
	records   []framework.ExtractionRecord
}

// runPipeline executes the routed stages in order. Any rate-limited stage
// aborts the remainder; the sentinel becomes the whole response.
func (o *Orchestrator) runPipeline(ctx context.Context, decision framework.RoutingDecision, req Request) (string, error) {
	state := &pipelineState{}
	var sections []string

	for i, stage := range decision.Pipeline {
		framework.EmitEvent(o.Telemetry, framework.Event{
			Type:      framework.EventStageStart,
			SessionID: req.SessionID,
			Agent:     stage,
			Metadata:  map[string]interface{}{"stage": i + 1, "of": len(decision.Pipeline)},
		})

		text, err := o.runStage(ctx, stage, req, state)

		framework.EmitEvent(o.Telemetry, framework.Event{
			Type:      framework.EventStageFinish,
			SessionID: req.SessionID,
			Agent:     stage,
			Metadata:  map[string]interface{}{"stage": i + 1, "degraded": err != nil},
		})

		if err != nil {
			if text == "" && (errors.Is(err, llm.ErrRateLimited) || errors.Is(err, llm.ErrUnavailable)) {
				text = RateLimitMessage
			}
			return text, err
		}
		sections = append(sections, fmt.Sprintf("%d. %s:\n%s", i+1, strings.ToUpper(string(stage)), text))
	}

	if len(sections) == 1 {
		parts := strings.SplitN(sections[0], ":\n", 2)
		return parts[len(parts)-1], nil
	}
	return fmt.Sprintf("Pipeline Analysis for: '%s'\n\n%s", req.Message, strings.Join(sections, "\n\n")), nil
}

func (o *Orchestrator) runStage(ctx context.Context, stage framework.AgentType, req Request, state *pipelineState) (string, error) {
	switch stage {
	case framework.AgentInformationExtractor:
		return o.stageExtract(ctx, req, state)
	case framework.AgentDocumentComparison:
		return o.stageCompare(req, state)
	case framework.AgentComparisonAnalyst:
		return o.stageAnalyze(ctx, req, state)
	case framework.AgentQuestionGenerator:
		return o.stageQuestions(ctx, req, state)
	case framework.AgentGeneralKnowledge:
		return o.runSingle(ctx, framework.AgentGeneralKnowledge, req)
	default:
		return "", fmt.Errorf("unknown pipeline stage %q", stage)
	}
}

// stageExtract generates the question set and answers it against every
// attached document.
func (o *Orchestrator) stageExtract(ctx context.Context, req Request, state *pipelineState) (string, error) {
	if len(req.Documents) == 0 {
		return "No documents were attached, so there is nothing to extract from. Please upload documents first.", nil
	}

	state.questions, state.docType = o.Questions.GenerateWithType(ctx, req.Message, req.Documents)

	records, err := o.Extractor.ExtractAll(ctx, state.questions, req.Documents)
	if err != nil {
		return "", err
	}
	state.records = records

	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d documents", len(records))
	if state.docType != "" {
		fmt.Fprintf(&b, " (detected type: %s)", state.docType)
	}
	fmt.Fprintf(&b, " against %d questions.\n", len(state.questions))
	for _, rec := range records {
		answered := 0
		for _, ex := range rec.Extractions {
			if isAnswered(ex.Answer) {
				answered++
			}
		}
		fmt.Fprintf(&b, "- %s: %d of %d questions answered\n", rec.DocumentName, answered, len(rec.Extractions))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// isAnswered reports whether an extraction answer carries real content rather
// than one of the not-found sentinels the extractor persona emits.
func isAnswered(answer string) bool {
	switch answer {
	case "", "Not found", "Not mentioned":
		return false
	}
	return true
}

// stageCompare renders the structured comparison report. It is the stage
// that enforces the minimum document count for a comparison.
func (o *Orchestrator) stageCompare(req Request, state *pipelineState) (string, error) {
	if len(state.records) < minComparisonDocuments {
		return comparisonDocsMessage, nil
	}
	report := ComparisonReport(req.Message, state.records)
	if diff := KeyDifferencesSection(state.records); diff != "" {
		report += "\n" + diff
	}
	return report, nil
}

// stageAnalyze asks the comparison persona to interpret the extraction
// records. A degraded call falls back to the deterministic key-differences
// summary instead of failing the pipeline.
func (o *Orchestrator) stageAnalyze(ctx context.Context, req Request, state *pipelineState) (string, error) {
	if len(state.records) < minComparisonDocuments {
		return comparisonDocsMessage, nil
	}
	persona, ok := o.Registry.ForAgent(framework.AgentComparisonAnalyst)
	if !ok {
		return KeyDifferencesSection(state.records), nil
	}

	payload, err := json.MarshalIndent(state.records, "", "  ")
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("User request: %s\n\nExtracted data from %d documents:\n%s\n\nProvide an insightful comparison analysis.",
		req.Message, len(state.records), payload)

	response := o.Invoker.Invoke(ctx, persona, prompt)
	if IsDegraded(response) {
		framework.EmitEvent(o.Telemetry, framework.Event{
			Type:      framework.EventFallbackUsed,
			SessionID: req.SessionID,
			Agent:     framework.AgentComparisonAnalyst,
			Message:   "analysis degraded, using key differences summary",
		})
		if diff := KeyDifferencesSection(state.records); diff != "" {
			return diff, nil
		}
		return "The documents were analyzed but no significant differences were identified.", nil
	}
	return response, nil
}

// stageQuestions is the terminal stage of the question-generation pipeline:
// it presents the generated question set itself as the answer.
func (o *Orchestrator) stageQuestions(ctx context.Context, req Request, state *pipelineState) (string, error) {
	questions := state.questions
	docType := state.docType
	if len(questions) == 0 {
		questions, docType = o.Questions.GenerateWithType(ctx, req.Message, req.Documents)
	}

	var b strings.Builder
	b.WriteString("Here are the questions I would use to analyze")
	if docType != "" {
		fmt.Fprintf(&b, " this %s", docType)
	} else {
		b.WriteString(" these documents")
	}
	b.WriteString(":\n\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// finish records the outcome into session history, the audit transcript, and
// telemetry. History is appended on failure too.
func (o *Orchestrator) finish(session *framework.SessionContext, req Request, outcome framework.Outcome, started time.Time) {
	session.Append(framework.HistoryEntry{
		Routing:  outcome.Routing,
		Response: outcome.Response,
		Status:   outcome.Status,
	})

	framework.EmitEvent(o.Telemetry, framework.Event{
		Type:      framework.EventSessionUpdated,
		SessionID: req.SessionID,
		Agent:     outcome.Routing.AgentType,
		Metadata: map[string]interface{}{
			"status":      outcome.Status,
			"history_len": len(session.History),
			"use_rag":     req.UseRAG,
		},
	})

	if o.Transcript != nil {
		_ = o.Transcript.Record(TurnRecord{
			SessionID:  req.SessionID,
			UserID:     req.UserID,
			Query:      req.Message,
			AgentType:  outcome.Routing.AgentType,
			Confidence: outcome.Routing.Confidence,
			Response:   outcome.Response,
			Status:     outcome.Status,
			Documents:  len(req.Documents),
			Duration:   time.Since(started),
			CreatedAt:  started.UTC(),
		})
	}
}
