package agents

import (
	"fmt"
	"strings"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// maxDisplayedExtractions caps how many question/answer rows each document
// subsection shows. Display-only; every record keeps its full extraction list.
const maxDisplayedExtractions = 5

// differenceAnswerLength caps each answer inside a difference line.
const differenceAnswerLength = 100

// ComparisonReport renders the Markdown comparison: a header naming the
// original prompt and one subsection per document with the first rows of
// question/answer pairs. Pure function of the extraction records.
func ComparisonReport(prompt string, records []framework.ExtractionRecord) string {
	var sb strings.Builder
	sb.WriteString("## Document Comparison\n\n")
	fmt.Fprintf(&sb, "Based on your request: %q\n\n", prompt)
	fmt.Fprintf(&sb, "I've analyzed %d documents:\n\n", len(records))
	for i, record := range records {
		fmt.Fprintf(&sb, "### Document %d: %s\n", i+1, record.DocumentName)
		rows := record.Extractions
		if len(rows) > maxDisplayedExtractions {
			rows = rows[:maxDisplayedExtractions]
		}
		for _, row := range rows {
			fmt.Fprintf(&sb, "- **%s**: %s\n", row.Question, row.Answer)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FindKeyDifferences groups extraction answers by question text across all
// documents and emits one line per question whose answering documents gave
// more than one distinct answer. Questions answered identically everywhere
// are omitted. No model call is involved.
func FindKeyDifferences(records []framework.ExtractionRecord) []string {
	type answer struct {
		document string
		text     string
	}
	order := make([]string, 0)
	byQuestion := make(map[string][]answer)
	for _, record := range records {
		for _, row := range record.Extractions {
			if _, seen := byQuestion[row.Question]; !seen {
				order = append(order, row.Question)
			}
			byQuestion[row.Question] = append(byQuestion[row.Question], answer{
				document: record.DocumentName,
				text:     row.Answer,
			})
		}
	}

	var differences []string
	for _, question := range order {
		answers := byQuestion[question]
		distinct := make(map[string]struct{}, len(answers))
		for _, a := range answers {
			distinct[a.text] = struct{}{}
		}
		if len(distinct) < 2 {
			continue
		}
		parts := make([]string, 0, len(answers))
		for _, a := range answers {
			parts = append(parts, fmt.Sprintf("%s: %s", a.document, framework.Clip(a.text, differenceAnswerLength)))
		}
		differences = append(differences, fmt.Sprintf("**%s**: %s", question, strings.Join(parts, " | ")))
	}
	return differences
}

// KeyDifferencesSection renders the differences as a Markdown section, or an
// empty string when the documents agree on every answered question.
func KeyDifferencesSection(records []framework.ExtractionRecord) string {
	differences := FindKeyDifferences(records)
	if len(differences) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("### Key Differences\n")
	for _, line := range differences {
		fmt.Fprintf(&sb, "- %s\n", line)
	}
	return sb.String()
}
