package framework

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona is the static configuration for one specialist role: which model to
// use, what instruction primes it, and which remote tool names it may touch.
// Personas are configuration, not user data, and are immutable after load.
type Persona struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Model       string   `yaml:"model,omitempty" json:"model,omitempty"`
	Instruction string   `yaml:"instruction" json:"instruction"`
	Tools       []string `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// AllowsTool reports whether a tool name is in the persona's allow-list.
func (p Persona) AllowsTool(name string) bool {
	for _, t := range p.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// PersonaManifest is the on-disk yaml envelope for a persona. The apiVersion
// and kind fields keep manifests self-describing so a directory can hold
// unrelated configuration without the loader guessing.
type PersonaManifest struct {
	APIVersion string  `yaml:"apiVersion"`
	Kind       string  `yaml:"kind"`
	Spec       Persona `yaml:"spec"`
}

// LoadPersonaManifest reads and validates a persona yaml file.
func LoadPersonaManifest(path string) (*PersonaManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest PersonaManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse persona manifest %s: %w", path, err)
	}
	if manifest.Kind != "" && manifest.Kind != "Persona" {
		return nil, fmt.Errorf("manifest %s has kind %q, want Persona", path, manifest.Kind)
	}
	if manifest.Spec.Name == "" {
		return nil, fmt.Errorf("manifest %s is missing spec.name", path)
	}
	if manifest.Spec.Instruction == "" {
		return nil, fmt.Errorf("manifest %s is missing spec.instruction", path)
	}
	return &manifest, nil
}
