package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// RoutingContext carries the lightweight session flags the router consults.
type RoutingContext struct {
	DocumentsUploaded bool
	PreviousAgent     framework.AgentType
	HasHistory        bool
}

// pipelineTable maps each routable specialist to its execution pipeline. The
// table is data on purpose: routing invariants are asserted against it in
// tests instead of being scattered through branch logic. Pipelines are empty
// exactly for general_knowledge and otherwise end in the terminal analysis
// step for the task.
var pipelineTable = map[framework.AgentType][]framework.AgentType{
	framework.AgentGeneralKnowledge: nil,
	framework.AgentDocumentComparison: {
		framework.AgentInformationExtractor,
		framework.AgentDocumentComparison,
		framework.AgentComparisonAnalyst,
	},
	framework.AgentQuestionGenerator: {
		framework.AgentInformationExtractor,
		framework.AgentQuestionGenerator,
	},
	framework.AgentInformationExtractor: {
		framework.AgentInformationExtractor,
	},
	framework.AgentComparisonAnalyst: {
		framework.AgentInformationExtractor,
		framework.AgentComparisonAnalyst,
	},
}

// PipelineFor returns a copy of the pipeline configured for an agent type.
func PipelineFor(t framework.AgentType) []framework.AgentType {
	return append([]framework.AgentType(nil), pipelineTable[t]...)
}

var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*[\+\-\*\/\^]\s*\d+`),
	regexp.MustCompile(`solve.*equation`),
	regexp.MustCompile(`calculate`),
	regexp.MustCompile(`x\s*=`),
	regexp.MustCompile(`derivative`),
	regexp.MustCompile(`integral`),
}

var comparisonKeywords = []string{"compare", "difference", "contrast", "versus", "vs", "between"}

var extractionKeywords = []string{"extract", "find", "get information", "what is", "tell me about"}

// Router classifies an incoming query as one decision: which specialist
// handles it and through which pipeline. Deterministic pattern rules run
// first; only unresolved queries cost a model call.
type Router struct {
	Invoker   *Invoker
	Registry  *Registry
	Telemetry framework.Telemetry
}

// Route produces the routing decision for a query. It never fails: when the
// classification call itself errors the degraded flags-only rules apply.
func (r *Router) Route(ctx context.Context, query string, rc RoutingContext) framework.RoutingDecision {
	if decision, ok := r.fastRoute(query, rc); ok {
		r.emit(decision, "fast path")
		return decision
	}
	decision, ok := r.modelRoute(ctx, query, rc)
	if !ok {
		decision = r.fallbackRoute(query, rc)
		r.emit(decision, "failure path")
		return decision
	}
	r.emit(decision, "model path")
	return decision
}

// fastRoute applies the deterministic rules in a fixed priority order; the
// first matching rule wins even when a later rule would also match.
func (r *Router) fastRoute(query string, rc RoutingContext) (framework.RoutingDecision, bool) {
	lower := strings.ToLower(query)

	for _, pattern := range mathPatterns {
		if pattern.MatchString(lower) {
			return framework.RoutingDecision{
				AgentType:  framework.AgentGeneralKnowledge,
				Reasoning:  "Mathematical calculation or equation detected",
				Pipeline:   PipelineFor(framework.AgentGeneralKnowledge),
				Confidence: framework.ConfidenceHigh,
			}, true
		}
	}
	if rc.DocumentsUploaded && containsAny(lower, comparisonKeywords) {
		return framework.RoutingDecision{
			AgentType:  framework.AgentDocumentComparison,
			Reasoning:  "Document comparison request detected",
			Pipeline:   PipelineFor(framework.AgentDocumentComparison),
			Confidence: framework.ConfidenceHigh,
		}, true
	}
	if strings.Contains(lower, "generate question") || strings.Contains(lower, "create question") {
		return framework.RoutingDecision{
			AgentType:  framework.AgentQuestionGenerator,
			Reasoning:  "Question generation request detected",
			Pipeline:   PipelineFor(framework.AgentQuestionGenerator),
			Confidence: framework.ConfidenceHigh,
		}, true
	}
	if rc.DocumentsUploaded && containsAny(lower, extractionKeywords) {
		return framework.RoutingDecision{
			AgentType:  framework.AgentInformationExtractor,
			Reasoning:  "Information extraction from documents detected",
			Pipeline:   PipelineFor(framework.AgentInformationExtractor),
			Confidence: framework.ConfidenceHigh,
		}, true
	}
	return framework.RoutingDecision{}, false
}

// modelRoute asks the coordinator persona to classify. It accepts both the
// ROUTE_TO/REASONING/PIPELINE line format and the JSON task_type variant.
// ok=false means the call itself was degraded and the failure path applies.
func (r *Router) modelRoute(ctx context.Context, query string, rc RoutingContext) (framework.RoutingDecision, bool) {
	persona, found := r.Registry.Get(CoordinatorPersona)
	if !found {
		return framework.RoutingDecision{}, false
	}
	response := r.Invoker.Invoke(ctx, persona, buildRoutingPrompt(query, rc))
	if IsDegraded(response) {
		return framework.RoutingDecision{}, false
	}

	decision := framework.RoutingDecision{
		AgentType:  framework.AgentGeneralKnowledge,
		Reasoning:  "Default routing",
		Confidence: framework.ConfidenceMedium,
	}
	matched := false
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ROUTE_TO:"):
			tag := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "ROUTE_TO:")))
			tag = strings.Trim(tag, "[]")
			if t, ok := framework.ParseAgentType(tag); ok {
				decision.AgentType = t
				matched = true
			}
		case strings.HasPrefix(line, "REASONING:"):
			decision.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		case strings.HasPrefix(line, "PIPELINE:"):
			decision.Pipeline = parsePipelineLine(strings.TrimPrefix(line, "PIPELINE:"))
		}
	}
	if !matched {
		// JSON variant: {"task_type": "pdf_comparison"|"general", "reasoning": ...}
		if parsed, ok := ParseJSON(response); ok {
			switch stringValue(parsed, "task_type", "general") {
			case "pdf_comparison":
				decision.AgentType = framework.AgentDocumentComparison
			default:
				decision.AgentType = framework.AgentGeneralKnowledge
			}
			decision.Reasoning = stringValue(parsed, "reasoning", decision.Reasoning)
			matched = true
		}
	}
	if !matched {
		// Unparsable classification text defaults to general_knowledge.
		decision.AgentType = framework.AgentGeneralKnowledge
	}
	// A general_knowledge route never runs a pipeline, even when the model
	// volunteered a PIPELINE line alongside it.
	if decision.AgentType == framework.AgentGeneralKnowledge {
		decision.Pipeline = nil
	} else if len(decision.Pipeline) == 0 {
		decision.Pipeline = PipelineFor(decision.AgentType)
	}
	return decision, true
}

// fallbackRoute decides from the context flags alone when the classification
// call errored. Confidence is deliberately lowered to distinguish these from
// genuine classifications.
func (r *Router) fallbackRoute(query string, rc RoutingContext) framework.RoutingDecision {
	lower := strings.ToLower(query)
	if rc.DocumentsUploaded {
		if containsAny(lower, []string{"compare", "contrast", "difference"}) {
			return framework.RoutingDecision{
				AgentType: framework.AgentDocumentComparison,
				Reasoning: "Fallback: Document comparison keywords detected",
				Pipeline: []framework.AgentType{
					framework.AgentInformationExtractor,
					framework.AgentDocumentComparison,
				},
				Confidence: framework.ConfidenceMedium,
			}
		}
		return framework.RoutingDecision{
			AgentType:  framework.AgentInformationExtractor,
			Reasoning:  "Fallback: Documents available, defaulting to extraction",
			Pipeline:   PipelineFor(framework.AgentInformationExtractor),
			Confidence: framework.ConfidenceMedium,
		}
	}
	return framework.RoutingDecision{
		AgentType:  framework.AgentGeneralKnowledge,
		Reasoning:  "Fallback: No documents, defaulting to general knowledge",
		Confidence: framework.ConfidenceLow,
	}
}

func (r *Router) emit(decision framework.RoutingDecision, path string) {
	framework.EmitEvent(r.Telemetry, framework.Event{
		Type:    framework.EventRouteDecided,
		Agent:   decision.AgentType,
		Message: path,
		Metadata: map[string]interface{}{
			"confidence": decision.Confidence,
			"pipeline":   len(decision.Pipeline),
		},
	})
}

func buildRoutingPrompt(query string, rc RoutingContext) string {
	var info []string
	if rc.DocumentsUploaded {
		info = append(info, "Documents have been uploaded to the session")
	}
	if rc.PreviousAgent != "" {
		info = append(info, fmt.Sprintf("Previous interaction was with: %s", rc.PreviousAgent))
	}
	if rc.HasHistory {
		info = append(info, "This is part of an ongoing conversation")
	}
	contextStr := "No additional context"
	if len(info) > 0 {
		contextStr = strings.Join(info, "\n")
	}
	return fmt.Sprintf("Query: %q\nContext: %s\n\nDetermine which specialist agent should handle this query.", query, contextStr)
}

// parsePipelineLine reads comma or arrow separated agent type names, skipping
// anything unknown.
func parsePipelineLine(raw string) []framework.AgentType {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "->", ",")
	var pipeline []framework.AgentType
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if t, ok := framework.ParseAgentType(tag); ok {
			pipeline = append(pipeline, t)
		}
	}
	return pipeline
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
