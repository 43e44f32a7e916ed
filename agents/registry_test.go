package agents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vominhhuy13101999/agent-test/framework"
)

func TestNewRegistrySeedsAllSpecialists(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Get(CoordinatorPersona)
	assert.True(t, ok)
	for _, agentType := range framework.KnownAgentTypes {
		persona, ok := registry.ForAgent(agentType)
		require.True(t, ok, string(agentType))
		assert.NotEmpty(t, persona.Instruction, string(agentType))
	}
}

func TestLoadDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	manifest := `
kind: Persona
spec:
  name: general_knowledge
  model: mistral
  instruction: Answer tersely.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general.yaml"), []byte(manifest), 0o644))

	registry := NewRegistry()
	require.NoError(t, registry.LoadDir(dir))

	persona, ok := registry.ForAgent(framework.AgentGeneralKnowledge)
	require.True(t, ok)
	assert.Equal(t, "mistral", persona.Model)
	assert.Equal(t, "Answer tersely.", persona.Instruction)
}

func TestLoadDirSkipsBadManifests(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("kind: Persona\nspec: {name: ''}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not yaml"), 0o644))

	registry := NewRegistry()
	require.NoError(t, registry.LoadDir(dir))

	assert.Len(t, registry.List(), 6)
}

func TestLoadDirMissingDirectoryIsFine(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.LoadDir(filepath.Join(t.TempDir(), "nope")))
}
