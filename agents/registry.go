package agents

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// CoordinatorPersona is the registry key for the routing persona; it is not a
// routable specialist and never appears in a pipeline.
const CoordinatorPersona = "coordinator"

// Registry holds the personas available to the orchestrator, keyed by name.
// Specialist personas use their AgentType string as name. It is seeded with
// built-in defaults and yaml manifests may override or extend them.
type Registry struct {
	mu       sync.RWMutex
	personas map[string]framework.Persona
}

// NewRegistry builds a registry seeded with the built-in personas.
func NewRegistry() *Registry {
	r := &Registry{personas: make(map[string]framework.Persona)}
	for _, p := range builtinPersonas() {
		r.personas[p.Name] = p
	}
	return r
}

func builtinPersonas() []framework.Persona {
	return []framework.Persona{
		{
			Name:        CoordinatorPersona,
			Description: "Analyzes queries and routes to specialist agents",
			Instruction: coordinatorInstruction,
		},
		{
			Name:        string(framework.AgentGeneralKnowledge),
			Description: "Mathematical and general knowledge expert",
			Instruction: generalInstruction,
			Tools:       []string{"general_search", "calculator"},
		},
		{
			Name:        string(framework.AgentDocumentComparison),
			Description: "Document comparison specialist",
			Instruction: comparisonInstruction,
			Tools:       []string{"semantic_search"},
		},
		{
			Name:        string(framework.AgentQuestionGenerator),
			Description: "Creates targeted questions from document content",
			Instruction: questionGeneratorInstruction,
			Tools:       []string{"semantic_search"},
		},
		{
			Name:        string(framework.AgentInformationExtractor),
			Description: "Extracts specific information from documents",
			Instruction: extractorInstruction,
			Tools:       []string{"semantic_search"},
		},
		{
			Name:        string(framework.AgentComparisonAnalyst),
			Description: "Structured analysis and comparison of document data",
			Instruction: comparisonInstruction,
		},
	}
}

// LoadDir scans a directory for persona manifests (*.yaml, *.yml) and merges
// them over the built-ins. Unreadable or invalid files are skipped so one bad
// manifest cannot take down startup.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		manifest, err := framework.LoadPersonaManifest(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		r.personas[manifest.Spec.Name] = manifest.Spec
	}
	return nil
}

// Get retrieves a persona by name.
func (r *Registry) Get(name string) (framework.Persona, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.personas[name]
	return p, ok
}

// ForAgent retrieves the persona backing a specialist role.
func (r *Registry) ForAgent(t framework.AgentType) (framework.Persona, bool) {
	return r.Get(string(t))
}

// List returns all personas sorted by name.
func (r *Registry) List() []framework.Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]framework.Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
