package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// DefaultMaxQuestions bounds how many generated questions feed extraction.
// The cap exists to bound downstream prompt size, not because later questions
// are less relevant.
const DefaultMaxQuestions = 20

// docPreviewLength limits how much of each document the generation prompt
// embeds; enough to detect the document type without spending the budget.
const docPreviewLength = 2000

var fallbackBanks = []struct {
	keywords  []string
	questions []string
}{
	{
		keywords: []string{"lease", "rent", "tenant", "landlord"},
		questions: []string{
			"What is the rental amount or monthly rent?",
			"What are the lease terms and duration?",
			"What are the pet policies and associated fees?",
			"What security deposit is required?",
			"What are the tenant responsibilities?",
			"What are the landlord responsibilities?",
			"What are the termination conditions?",
			"What penalties or fees are mentioned?",
		},
	},
	{
		keywords: []string{"contract", "agreement", "terms", "conditions"},
		questions: []string{
			"What are the main terms and conditions?",
			"Who are the parties involved?",
			"What are the obligations of each party?",
			"What are the payment terms?",
			"What are the termination clauses?",
			"What penalties or consequences are specified?",
			"What are the key dates and deadlines?",
			"What dispute resolution mechanisms exist?",
		},
	},
	{
		keywords: []string{"policy", "procedure", "guidelines", "rules"},
		questions: []string{
			"What is the main purpose or scope?",
			"What are the key policies or rules?",
			"Who does this apply to?",
			"What are the requirements or qualifications?",
			"What are the procedures to follow?",
			"What are the exceptions or special cases?",
			"What are the consequences of non-compliance?",
			"How often is this reviewed or updated?",
		},
	},
}

var genericQuestions = []string{
	"What is the main subject or purpose?",
	"What are the key terms and conditions?",
	"What costs, fees, or financial aspects are mentioned?",
	"What requirements or qualifications exist?",
	"What are the important dates and deadlines?",
	"What parties or entities are involved?",
	"What processes or procedures are described?",
	"What risks, penalties, or consequences are mentioned?",
}

// FallbackQuestions selects a static question bank by scanning the prompt and
// every document body, case-insensitively, for domain keyword sets. Exactly
// one bank is returned; banks are checked in order and the first match wins.
func FallbackQuestions(prompt string, docs []framework.Document) []string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(prompt))
	for _, doc := range docs {
		sb.WriteString(" ")
		sb.WriteString(strings.ToLower(doc.Text))
	}
	text := sb.String()
	for _, bank := range fallbackBanks {
		for _, kw := range bank.keywords {
			if strings.Contains(text, kw) {
				return append([]string(nil), bank.questions...)
			}
		}
	}
	return append([]string(nil), genericQuestions...)
}

// QuestionGenerator produces comparison-relevant questions from a user prompt
// and the document corpus, degrading to the static banks when the model call
// fails or returns unparsable output. Generate always returns a non-empty
// list.
type QuestionGenerator struct {
	Invoker      *Invoker
	Registry     *Registry
	Telemetry    framework.Telemetry
	MaxQuestions int
}

// Generate asks the question-generator persona for questions, falling back to
// the keyword banks, and caps the result.
func (g *QuestionGenerator) Generate(ctx context.Context, prompt string, docs []framework.Document) []string {
	questions, _ := g.generate(ctx, prompt, docs)
	return questions
}

// GenerateWithType also reports the detected document type when the model
// provided one.
func (g *QuestionGenerator) GenerateWithType(ctx context.Context, prompt string, docs []framework.Document) ([]string, string) {
	return g.generate(ctx, prompt, docs)
}

func (g *QuestionGenerator) generate(ctx context.Context, prompt string, docs []framework.Document) ([]string, string) {
	docType := "Unknown document type"
	persona, ok := g.Registry.Get(string(framework.AgentQuestionGenerator))
	var questions []string
	if ok {
		response := g.Invoker.Invoke(ctx, persona, g.buildPrompt(prompt, docs))
		if !IsDegraded(response) {
			if parsed, parsedOK := ParseJSON(response); parsedOK {
				questions = stringList(parsed, "questions")
				docType = stringValue(parsed, "document_type_detected", docType)
			}
		}
	}
	if len(questions) == 0 {
		questions = FallbackQuestions(prompt, docs)
		framework.EmitEvent(g.Telemetry, framework.Event{
			Type:    framework.EventFallbackUsed,
			Message: "question generation fell back to static bank",
		})
	}
	max := g.MaxQuestions
	if max <= 0 {
		max = DefaultMaxQuestions
	}
	if len(questions) > max {
		questions = questions[:max]
	}
	return questions, docType
}

func (g *QuestionGenerator) buildPrompt(prompt string, docs []framework.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on this user request: %q\n", prompt)
	for _, doc := range docs {
		preview := framework.Clip(doc.Text, docPreviewLength)
		fmt.Fprintf(&sb, "\n--- %s (preview) ---\n%s\n", doc.Name, preview)
	}
	return sb.String()
}
