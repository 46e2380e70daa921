// ABOUTME: Thread-safe registry of tool and strategy definitions the hub can resolve
// ABOUTME: Definitions may carry JSON schemas that agent configs are validated against

package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/2389/sigil/internal/blueprint"
)

// ErrToolCollision indicates a tool name is already registered.
var ErrToolCollision = errors.New("tool name collision")

// ErrStrategyCollision indicates a strategy name is already registered.
var ErrStrategyCollision = errors.New("strategy name collision")

// ErrUnknownTool indicates a blueprint names a tool the registry cannot resolve.
var ErrUnknownTool = errors.New("unknown tool")

// ErrUnknownStrategy indicates a blueprint names a strategy the registry cannot resolve.
var ErrUnknownStrategy = errors.New("unknown strategy")

// ErrConfigRejected indicates a tool or strategy config failed its schema.
var ErrConfigRejected = errors.New("config rejected by schema")

// ToolDefinition describes one tool the hub can wire into an agent.
// ConfigSchema, when non-empty, is a JSON Schema document that agent tool
// configs must satisfy.
type ToolDefinition struct {
	Name         string
	Description  string
	ConfigSchema string

	schema *gojsonschema.Schema
}

// StrategyDefinition describes one strategy the hub can wire into an agent.
type StrategyDefinition struct {
	Name         string
	Description  string
	ConfigSchema string

	schema *gojsonschema.Schema
}

// Registry maintains the definitions agents can be created from. Reads vastly
// outnumber writes: registration happens at startup, resolution on every
// agent create.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]*ToolDefinition
	strategies map[string]*StrategyDefinition
	logger     *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:      make(map[string]*ToolDefinition),
		strategies: make(map[string]*StrategyDefinition),
		logger:     logger.With("component", "catalog"),
	}
}

// RegisterTool validates and stores a tool definition.
// Returns ErrToolCollision if the name is already taken.
func (r *Registry) RegisterTool(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}

	schema, err := compileSchema(def.ConfigSchema)
	if err != nil {
		return fmt.Errorf("compiling schema for tool %q: %w", def.Name, err)
	}
	def.schema = schema

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: tool %q already registered", ErrToolCollision, def.Name)
	}

	r.tools[def.Name] = &def
	r.logger.Debug("tool registered", "tool", def.Name)
	return nil
}

// RegisterStrategy validates and stores a strategy definition.
// Returns ErrStrategyCollision if the name is already taken.
func (r *Registry) RegisterStrategy(def StrategyDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("strategy name must not be empty")
	}

	schema, err := compileSchema(def.ConfigSchema)
	if err != nil {
		return fmt.Errorf("compiling schema for strategy %q: %w", def.Name, err)
	}
	def.schema = schema

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[def.Name]; exists {
		return fmt.Errorf("%w: strategy %q already registered", ErrStrategyCollision, def.Name)
	}

	r.strategies[def.Name] = &def
	r.logger.Debug("strategy registered", "strategy", def.Name)
	return nil
}

// Tool returns the definition for a tool name.
func (r *Registry) Tool(name string) (*ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tools[name]
	return def, ok
}

// Strategy returns the definition for a strategy name.
func (r *Registry) Strategy(name string) (*StrategyDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.strategies[name]
	return def, ok
}

// Tools returns all tool definitions sorted by name.
func (r *Registry) Tools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolDefinition, 0, len(r.tools))
	for _, def := range r.tools {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Strategies returns all strategy definitions sorted by name.
func (r *Registry) Strategies() []StrategyDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]StrategyDefinition, 0, len(r.strategies))
	for _, def := range r.strategies {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateBlueprint resolves every tool and strategy the blueprint names and
// checks each config against the definition's schema. The first unresolvable
// name or schema violation fails the whole blueprint.
func (r *Registry) ValidateBlueprint(bp blueprint.AgentBlueprint) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tool := range bp.Tools {
		def, ok := r.tools[tool.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTool, tool.Name)
		}
		if err := validateConfig(def.schema, tool.Config); err != nil {
			return fmt.Errorf("tool %q: %w", tool.Name, err)
		}
	}

	def, ok := r.strategies[bp.Strategy.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, bp.Strategy.Name)
	}
	if err := validateConfig(def.schema, bp.Strategy.Config); err != nil {
		return fmt.Errorf("strategy %q: %w", bp.Strategy.Name, err)
	}

	return nil
}

// compileSchema compiles a JSON Schema source, or returns nil for an empty one.
func compileSchema(source string) (*gojsonschema.Schema, error) {
	if source == "" {
		return nil, nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, err
	}
	return schema, nil
}

// validateConfig checks a config map against a compiled schema. A nil schema
// accepts any config; a nil config is validated as an empty object.
func validateConfig(schema *gojsonschema.Schema, config map[string]any) error {
	if schema == nil {
		return nil
	}
	if config == nil {
		config = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrConfigRejected, strings.Join(details, "; "))
	}
	return nil
}
