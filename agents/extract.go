package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/vominhhuy13101999/agent-test/framework"
	"github.com/vominhhuy13101999/agent-test/llm"
)

// DefaultExtractWorkers bounds the extraction worker pool. Documents are
// independent against the same fixed question list, so they fan out; the
// bound keeps us from hammering the rate limiter with N parallel calls.
const DefaultExtractWorkers = 3

// fallbackAnswerLength caps the synthesized summary answer used when a
// document's extraction produced nothing usable.
const fallbackAnswerLength = 500

// Extractor answers a fixed question list against each document in a corpus.
type Extractor struct {
	Invoker   *Invoker
	Registry  *Registry
	Telemetry framework.Telemetry

	// MaxContentLength caps document text embedded in a prompt; zero applies
	// framework.DefaultMaxContentLength.
	MaxContentLength int

	// Workers bounds the pool; zero applies DefaultExtractWorkers.
	Workers int
}

// ExtractAll runs extraction for every document concurrently under a bounded
// worker pool. Records come back in input order with document names matching
// the input names exactly, regardless of each document's extraction outcome.
// The first rate-limit cancels all in-flight and pending work and surfaces as
// llm.ErrRateLimited; partial results are discarded.
func (e *Extractor) ExtractAll(ctx context.Context, questions []string, docs []framework.Document) ([]framework.ExtractionRecord, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := e.Workers
	if workers <= 0 {
		workers = DefaultExtractWorkers
	}
	sem := make(chan struct{}, workers)
	records := make([]framework.ExtractionRecord, len(docs))
	errCh := make(chan error, len(docs))
	var wg sync.WaitGroup

	for i := range docs {
		wg.Add(1)
		go func(i int, doc framework.Document) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			record, err := e.Extract(ctx, questions, doc)
			if err != nil {
				errCh <- err
				cancel()
				return
			}
			records[i] = record
		}(i, docs[i])
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Extract answers the question list against one document. Malformed model
// output degrades to a single summary row so every document contributes at
// least one row to the final comparison; only a rate limit is an error.
func (e *Extractor) Extract(ctx context.Context, questions []string, doc framework.Document) (framework.ExtractionRecord, error) {
	truncated, wasCut := framework.TruncateDocument(doc.Text, e.MaxContentLength)
	if wasCut {
		framework.EmitEvent(e.Telemetry, framework.Event{
			Type:    framework.EventStageStart,
			Message: fmt.Sprintf("document %s truncated for extraction", doc.Name),
		})
	}

	record := framework.ExtractionRecord{DocumentName: doc.Name}
	persona, ok := e.Registry.Get(string(framework.AgentInformationExtractor))
	if ok {
		response := e.Invoker.Invoke(ctx, persona, buildExtractionPrompt(questions, truncated))
		if response == RateLimitMessage {
			return framework.ExtractionRecord{}, fmt.Errorf("extracting %s: %w", doc.Name, llm.ErrRateLimited)
		}
		if parsed, parsedOK := ParseJSON(response); parsedOK {
			record.Extractions = parseExtractions(parsed)
		}
	}
	if len(record.Extractions) == 0 {
		record.Extractions = []framework.Extraction{{
			Question:   "Document summary",
			Answer:     framework.Clip(truncated, fallbackAnswerLength),
			SourceText: "Full document",
		}}
		framework.EmitEvent(e.Telemetry, framework.Event{
			Type:    framework.EventFallbackUsed,
			Message: fmt.Sprintf("fallback extraction for %s", doc.Name),
		})
	}
	return record, nil
}

func buildExtractionPrompt(questions []string, content string) string {
	encoded, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		encoded = []byte(strings.Join(questions, "\n"))
	}
	return fmt.Sprintf("Questions to answer:\n%s\n\nDocument content to analyze:\n%s", encoded, content)
}

func parseExtractions(parsed map[string]interface{}) []framework.Extraction {
	raw, ok := parsed["extractions"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]framework.Extraction, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		question := stringValue(entry, "question", "")
		if question == "" {
			continue
		}
		out = append(out, framework.Extraction{
			Question:   question,
			Answer:     stringValue(entry, "answer", "Not found"),
			SourceText: stringValue(entry, "source_text", ""),
		})
	}
	return out
}
