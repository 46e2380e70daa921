// ABOUTME: Blueprint file loading from YAML with environment variable expansion
// ABOUTME: Files use ${VAR} syntax for secrets like API keys and RPC URLs

package blueprint

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references in blueprint files.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads a blueprint from a YAML file at the given path.
// Environment variables in the format ${VAR_NAME} are expanded before
// parsing, so secrets never need to live in the file itself.
func Load(path string) (*AgentBlueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blueprint file: %w", err)
	}
	bp, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return bp, nil
}

// Parse decodes a YAML blueprint document and validates its structure.
func Parse(data []byte) (*AgentBlueprint, error) {
	expanded := expandEnvVars(string(data))

	var bp AgentBlueprint
	if err := yaml.Unmarshal([]byte(expanded), &bp); err != nil {
		return nil, fmt.Errorf("parsing blueprint: %w", err)
	}

	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("validating blueprint: %w", err)
	}

	return &bp, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
