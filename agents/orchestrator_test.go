package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vominhhuy13101999/agent-test/framework"
	"github.com/vominhhuy13101999/agent-test/llm"
)

// comparisonScript answers the three model calls a comparison pipeline makes:
// question generation, per-document extraction, and the final analysis.
func comparisonScript(rentByMarker map[string]string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Questions to answer:"):
			for marker, rent := range rentByMarker {
				if strings.Contains(prompt, marker) {
					return fmt.Sprintf(`{"extractions": [{"question": "What is the rent?", "answer": "%s"}]}`, rent), nil
				}
			}
			return `{"extractions": []}`, nil
		case strings.Contains(prompt, "Based on this user request:"):
			return `{"document_type_detected": "lease", "questions": ["What is the rent?"]}`, nil
		case strings.Contains(prompt, "insightful comparison analysis"):
			return "The second lease costs more per month.", nil
		default:
			return "ok", nil
		}
	}
}

func leaseDocs() []framework.Document {
	return []framework.Document{
		{Name: "lease-a.txt", Text: "Lease for unit A. rent-marker-a"},
		{Name: "lease-b.txt", Text: "Lease for unit B. rent-marker-b"},
	}
}

func TestProcessRejectsEmptyMessage(t *testing.T) {
	orch := NewOrchestrator(&scriptedModel{}, nil)

	outcome := orch.Process(context.Background(), Request{Message: "   ", SessionID: "s1"})

	assert.Equal(t, framework.StatusError, outcome.Status)
	assert.Equal(t, "Please enter a message.", outcome.Response)
	assert.Equal(t, 0, orch.Sessions.Len())
}

func TestProcessRejectsOversizedMessage(t *testing.T) {
	orch := NewOrchestrator(&scriptedModel{}, nil)

	outcome := orch.Process(context.Background(), Request{
		Message:   strings.Repeat("x", MaxMessageLength+1),
		SessionID: "s1",
	})

	assert.Equal(t, framework.StatusError, outcome.Status)
	assert.Contains(t, outcome.Response, "too long")
}

func TestProcessRejectsTooManyDocuments(t *testing.T) {
	orch := NewOrchestrator(&scriptedModel{}, nil)
	docs := make([]framework.Document, MaxDocuments+1)
	for i := range docs {
		docs[i] = framework.Document{Name: fmt.Sprintf("d%d.txt", i), Text: "body"}
	}

	outcome := orch.Process(context.Background(), Request{Message: "compare", SessionID: "s1", Documents: docs})

	assert.Equal(t, framework.StatusError, outcome.Status)
	assert.Contains(t, outcome.Response, "Too many documents")
}

func TestProcessGeneralKnowledge(t *testing.T) {
	model := &scriptedModel{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "5 + 3") {
			return "5 + 3 = 8", nil
		}
		return "ok", nil
	}}
	orch := NewOrchestrator(model, nil)

	outcome := orch.Process(context.Background(), Request{Message: "What is 5 + 3?", SessionID: "s1"})

	assert.Equal(t, framework.StatusSuccess, outcome.Status)
	assert.Equal(t, "5 + 3 = 8", outcome.Response)
	assert.Equal(t, framework.AgentGeneralKnowledge, outcome.Routing.AgentType)
	assert.Equal(t, framework.ConfidenceHigh, outcome.Routing.Confidence)
	assert.Equal(t, 1, model.callCount())

	session, ok := orch.Sessions.Get("s1")
	require.True(t, ok)
	assert.Len(t, session.History, 1)
	assert.Equal(t, framework.AgentGeneralKnowledge, session.PreviousAgent)
}

func TestProcessGeneralFoldsDocumentsIntoPrompt(t *testing.T) {
	model := &scriptedModel{}
	orch := NewOrchestrator(model, nil)

	orch.Process(context.Background(), Request{
		Message:   "What is 2 + 2 according to my notes?",
		SessionID: "s1",
		Documents: []framework.Document{{Name: "notes.txt", Text: "arithmetic notes"}},
	})

	require.Equal(t, 1, model.callCount())
	assert.Contains(t, model.prompts[0], "--- notes.txt ---")
	assert.Contains(t, model.prompts[0], "arithmetic notes")
}

func TestProcessComparisonPipeline(t *testing.T) {
	model := &scriptedModel{reply: comparisonScript(map[string]string{
		"rent-marker-a": "$1200",
		"rent-marker-b": "$1500",
	})}
	orch := NewOrchestrator(model, nil)

	outcome := orch.Process(context.Background(), Request{
		Message:   "Compare these two leases",
		SessionID: "s1",
		Documents: leaseDocs(),
	})

	require.Equal(t, framework.StatusSuccess, outcome.Status)
	assert.Equal(t, framework.AgentDocumentComparison, outcome.Routing.AgentType)

	assert.Contains(t, outcome.Response, "Pipeline Analysis for: 'Compare these two leases'")
	assert.Contains(t, outcome.Response, "1. INFORMATION_EXTRACTOR:")
	assert.Contains(t, outcome.Response, "2. DOCUMENT_COMPARISON:")
	assert.Contains(t, outcome.Response, "3. COMPARISON_ANALYST:")
	assert.Contains(t, outcome.Response, "## Document Comparison")
	assert.Contains(t, outcome.Response, "lease-a.txt: $1200")
	assert.Contains(t, outcome.Response, "lease-b.txt: $1500")
	assert.Contains(t, outcome.Response, "The second lease costs more per month.")

	session, ok := orch.Sessions.Get("s1")
	require.True(t, ok)
	assert.True(t, session.DocumentsUploaded)
}

func TestProcessComparisonNeedsTwoDocuments(t *testing.T) {
	model := &scriptedModel{reply: comparisonScript(map[string]string{"rent-marker-a": "$1200"})}
	orch := NewOrchestrator(model, nil)

	outcome := orch.Process(context.Background(), Request{
		Message:   "Compare this lease against the market",
		SessionID: "s1",
		Documents: leaseDocs()[:1],
	})

	assert.Equal(t, framework.StatusSuccess, outcome.Status)
	assert.Contains(t, outcome.Response, "I need at least 2 documents to perform a comparison")
}

func TestProcessExtractionSummaryExcludesNotFoundSentinels(t *testing.T) {
	model := &scriptedModel{reply: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Questions to answer:"):
			return `{"extractions": [
				{"question": "What is the rent?", "answer": "$1200"},
				{"question": "Who is the landlord?", "answer": "Not found"},
				{"question": "What is the deposit?", "answer": "Not mentioned"}
			]}`, nil
		case strings.Contains(prompt, "Based on this user request:"):
			return `{"document_type_detected": "lease", "questions": ["What is the rent?", "Who is the landlord?", "What is the deposit?"]}`, nil
		default:
			return "ok", nil
		}
	}}
	orch := NewOrchestrator(model, nil)

	outcome := orch.Process(context.Background(), Request{
		Message:   "Extract the payment details",
		SessionID: "s1",
		Documents: leaseDocs()[:1],
	})

	require.Equal(t, framework.StatusSuccess, outcome.Status)
	assert.Contains(t, outcome.Response, "lease-a.txt: 1 of 3 questions answered")
}

func TestProcessRateLimitedAbortsPipeline(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return "", llm.ErrRateLimited
	}}
	orch := NewOrchestrator(model, nil)

	outcome := orch.Process(context.Background(), Request{
		Message:   "Compare these two leases",
		SessionID: "s1",
		Documents: leaseDocs(),
	})

	assert.Equal(t, framework.StatusError, outcome.Status)
	assert.Equal(t, RateLimitMessage, outcome.Response)

	session, ok := orch.Sessions.Get("s1")
	require.True(t, ok)
	require.Len(t, session.History, 1)
	assert.Equal(t, framework.StatusError, session.History[0].Status)
}

func TestProcessQuestionGeneratorPipeline(t *testing.T) {
	model := &scriptedModel{reply: comparisonScript(map[string]string{"rent-marker-a": "$1200"})}
	orch := NewOrchestrator(model, nil)

	outcome := orch.Process(context.Background(), Request{
		Message:   "Generate questions for this lease",
		SessionID: "s1",
		Documents: leaseDocs()[:1],
	})

	require.Equal(t, framework.StatusSuccess, outcome.Status)
	assert.Equal(t, framework.AgentQuestionGenerator, outcome.Routing.AgentType)
	assert.Contains(t, outcome.Response, "2. QUESTION_GENERATOR:")
	assert.Contains(t, outcome.Response, "this lease")
	assert.Contains(t, outcome.Response, "1. What is the rent?")
}

func TestProcessSessionContinuity(t *testing.T) {
	model := &scriptedModel{reply: comparisonScript(map[string]string{
		"rent-marker-a": "$1200",
		"rent-marker-b": "$1500",
	})}
	orch := NewOrchestrator(model, nil)

	first := orch.Process(context.Background(), Request{Message: "What is 5 + 3?", SessionID: "s1"})
	require.Equal(t, framework.StatusSuccess, first.Status)

	second := orch.Process(context.Background(), Request{
		Message:   "Compare these two leases",
		SessionID: "s1",
		Documents: leaseDocs(),
	})
	require.Equal(t, framework.StatusSuccess, second.Status)

	session, ok := orch.Sessions.Get("s1")
	require.True(t, ok)
	assert.Len(t, session.History, 2)
	assert.Equal(t, framework.AgentDocumentComparison, session.PreviousAgent)
}

func TestProcessSessionsAreIsolated(t *testing.T) {
	orch := NewOrchestrator(&scriptedModel{}, nil)

	orch.Process(context.Background(), Request{Message: "What is 1 + 1?", SessionID: "alpha"})
	orch.Process(context.Background(), Request{Message: "What is 2 + 2?", SessionID: "beta"})

	alpha, ok := orch.Sessions.Get("alpha")
	require.True(t, ok)
	beta, ok := orch.Sessions.Get("beta")
	require.True(t, ok)
	assert.Len(t, alpha.History, 1)
	assert.Len(t, beta.History, 1)
}

func TestProcessContainsPanics(t *testing.T) {
	orch := NewOrchestrator(&scriptedModel{}, nil)
	orch.Questions = nil

	outcome := orch.Process(context.Background(), Request{
		Message:   "Compare these two leases",
		SessionID: "s1",
		Documents: leaseDocs(),
	})

	assert.Equal(t, framework.StatusError, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "panic")

	session, ok := orch.Sessions.Get("s1")
	require.True(t, ok)
	assert.Len(t, session.History, 1)
}

func TestProcessRecordsTranscript(t *testing.T) {
	var recorded []TurnRecord
	orch := NewOrchestrator(&scriptedModel{}, nil)
	orch.Transcript = transcriptFunc(func(turn TurnRecord) error {
		recorded = append(recorded, turn)
		return nil
	})

	orch.Process(context.Background(), Request{Message: "What is 5 + 3?", SessionID: "s1", UserID: "u1"})

	require.Len(t, recorded, 1)
	assert.Equal(t, "s1", recorded[0].SessionID)
	assert.Equal(t, "u1", recorded[0].UserID)
	assert.Equal(t, framework.AgentGeneralKnowledge, recorded[0].AgentType)
	assert.Equal(t, framework.StatusSuccess, recorded[0].Status)
}

func TestAvailableAgents(t *testing.T) {
	orch := NewOrchestrator(&scriptedModel{}, nil)
	assert.Len(t, orch.AvailableAgents(), 5)
}

type transcriptFunc func(TurnRecord) error

func (f transcriptFunc) Record(turn TurnRecord) error { return f(turn) }
