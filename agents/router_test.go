package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vominhhuy13101999/agent-test/framework"
	"github.com/vominhhuy13101999/agent-test/llm"
)

func newTestRouter(model *scriptedModel) *Router {
	registry := NewRegistry()
	return &Router{
		Invoker:  &Invoker{Model: model},
		Registry: registry,
	}
}

func TestRouteMathSkipsModel(t *testing.T) {
	model := &scriptedModel{}
	router := newTestRouter(model)

	decision := router.Route(context.Background(), "What is 5 + 3?", RoutingContext{})

	assert.Equal(t, framework.AgentGeneralKnowledge, decision.AgentType)
	assert.Equal(t, framework.ConfidenceHigh, decision.Confidence)
	assert.Empty(t, decision.Pipeline)
	assert.Equal(t, 0, model.callCount())
}

func TestRouteMathKeywords(t *testing.T) {
	model := &scriptedModel{}
	router := newTestRouter(model)

	for _, query := range []string{
		"Solve this equation for me",
		"calculate the total",
		"what is the derivative of f",
	} {
		decision := router.Route(context.Background(), query, RoutingContext{DocumentsUploaded: true})
		assert.Equal(t, framework.AgentGeneralKnowledge, decision.AgentType, query)
	}
	assert.Equal(t, 0, model.callCount())
}

func TestRouteComparisonNeedsDocuments(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return "ROUTE_TO: general_knowledge\nREASONING: nothing to compare", nil
	}}
	router := newTestRouter(model)

	withDocs := router.Route(context.Background(), "Compare these leases", RoutingContext{DocumentsUploaded: true})
	assert.Equal(t, framework.AgentDocumentComparison, withDocs.AgentType)
	assert.Equal(t, framework.ConfidenceHigh, withDocs.Confidence)
	require.Len(t, withDocs.Pipeline, 3)
	assert.Equal(t, framework.AgentInformationExtractor, withDocs.Pipeline[0])
	assert.Equal(t, framework.AgentDocumentComparison, withDocs.Pipeline[1])
	assert.Equal(t, framework.AgentComparisonAnalyst, withDocs.Pipeline[2])
	assert.Equal(t, 0, model.callCount())

	withoutDocs := router.Route(context.Background(), "Compare these leases", RoutingContext{})
	assert.Equal(t, framework.AgentGeneralKnowledge, withoutDocs.AgentType)
	assert.Equal(t, 1, model.callCount())
}

func TestRouteQuestionGeneration(t *testing.T) {
	router := newTestRouter(&scriptedModel{})

	decision := router.Route(context.Background(), "Please generate questions for this lease", RoutingContext{})

	assert.Equal(t, framework.AgentQuestionGenerator, decision.AgentType)
	require.Len(t, decision.Pipeline, 2)
	assert.Equal(t, framework.AgentQuestionGenerator, decision.Pipeline[1])
}

func TestRouteExtractionKeywords(t *testing.T) {
	router := newTestRouter(&scriptedModel{})

	decision := router.Route(context.Background(), "Extract the payment details", RoutingContext{DocumentsUploaded: true})

	assert.Equal(t, framework.AgentInformationExtractor, decision.AgentType)
	assert.Equal(t, []framework.AgentType{framework.AgentInformationExtractor}, decision.Pipeline)
}

func TestRouteModelLineFormat(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return "ROUTE_TO: question_generator\nREASONING: the user wants study questions\nPIPELINE: information_extractor, question_generator", nil
	}}
	router := newTestRouter(model)

	decision := router.Route(context.Background(), "Help me study this handbook", RoutingContext{})

	assert.Equal(t, framework.AgentQuestionGenerator, decision.AgentType)
	assert.Equal(t, "the user wants study questions", decision.Reasoning)
	assert.Equal(t, framework.ConfidenceMedium, decision.Confidence)
	require.Len(t, decision.Pipeline, 2)
}

func TestRouteModelJSONVariant(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return `{"task_type": "pdf_comparison", "reasoning": "two attachments present"}`, nil
	}}
	router := newTestRouter(model)

	decision := router.Route(context.Background(), "Look at both attachments", RoutingContext{DocumentsUploaded: false})

	assert.Equal(t, framework.AgentDocumentComparison, decision.AgentType)
	assert.Equal(t, "two attachments present", decision.Reasoning)
	require.Len(t, decision.Pipeline, 3)
}

func TestRouteModelUnknownTagDefaultsToGeneral(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return "ROUTE_TO: sorcery\nREASONING: unclear", nil
	}}
	router := newTestRouter(model)

	decision := router.Route(context.Background(), "Do something unusual", RoutingContext{})

	assert.Equal(t, framework.AgentGeneralKnowledge, decision.AgentType)
	assert.Empty(t, decision.Pipeline)
}

func TestRouteModelGeneralIgnoresPipelineLine(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return "ROUTE_TO: general_knowledge\nREASONING: simple question\nPIPELINE: information_extractor", nil
	}}
	router := newTestRouter(model)

	decision := router.Route(context.Background(), "Describe your purpose", RoutingContext{})

	assert.Equal(t, framework.AgentGeneralKnowledge, decision.AgentType)
	assert.Empty(t, decision.Pipeline)
}

func TestRouteFailurePathWithDocuments(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return "", llm.ErrRateLimited
	}}
	router := newTestRouter(model)

	decision := router.Route(context.Background(), "Summarize the attachments", RoutingContext{DocumentsUploaded: true})

	assert.Equal(t, framework.AgentInformationExtractor, decision.AgentType)
	assert.Equal(t, framework.ConfidenceMedium, decision.Confidence)
}

func TestFallbackRouteComparisonKeywords(t *testing.T) {
	router := newTestRouter(&scriptedModel{})

	decision := router.fallbackRoute("contrast the two attachments", RoutingContext{DocumentsUploaded: true})

	assert.Equal(t, framework.AgentDocumentComparison, decision.AgentType)
	assert.Equal(t, framework.ConfidenceMedium, decision.Confidence)
	assert.Len(t, decision.Pipeline, 2)
}

func TestRouteFailurePathNoDocuments(t *testing.T) {
	model := &scriptedModel{reply: func(string) (string, error) {
		return "", llm.ErrUnavailable
	}}
	router := newTestRouter(model)

	decision := router.Route(context.Background(), "Tell a short story", RoutingContext{})

	assert.Equal(t, framework.AgentGeneralKnowledge, decision.AgentType)
	assert.Equal(t, framework.ConfidenceLow, decision.Confidence)
	assert.Empty(t, decision.Pipeline)
}

func TestPipelineForReturnsCopies(t *testing.T) {
	first := PipelineFor(framework.AgentDocumentComparison)
	first[0] = framework.AgentGeneralKnowledge
	second := PipelineFor(framework.AgentDocumentComparison)
	assert.Equal(t, framework.AgentInformationExtractor, second[0])
}
