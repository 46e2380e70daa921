// ABOUTME: Core blueprint types describing an agent's tools, strategy, and trigger
// ABOUTME: Blueprints are caller-owned pure data; Clone guards against aliasing

package blueprint

import (
	"fmt"
)

// TriggerType identifies how an agent is invoked.
type TriggerType string

const (
	TriggerWebhook  TriggerType = "webhook"
	TriggerSchedule TriggerType = "schedule"
	TriggerEvent    TriggerType = "event"
)

// IsValid returns true if the trigger type is one of the recognized kinds.
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerWebhook, TriggerSchedule, TriggerEvent:
		return true
	default:
		return false
	}
}

// String returns the string representation of the trigger type.
func (t TriggerType) String() string {
	return string(t)
}

// ToolSpec names a tool the agent may use together with its configuration.
// Config keys are tool-specific and are not checked locally; the hub validates
// them against the tool's schema at creation time.
type ToolSpec struct {
	Name   string         `json:"name" yaml:"name"`
	Config map[string]any `json:"config" yaml:"config"`
}

// StrategySpec names the decision logic governing how the agent uses its tools.
type StrategySpec struct {
	Name   string         `json:"name" yaml:"name"`
	Config map[string]any `json:"config" yaml:"config"`
}

// TriggerSpec describes the external event that invokes the agent.
// Params semantics depend on Type (e.g. path/method for webhook triggers).
type TriggerSpec struct {
	Type   TriggerType    `json:"type" yaml:"type"`
	Params map[string]any `json:"params" yaml:"params"`
}

// AgentBlueprint is the declarative description of an agent: an ordered list of
// tool configurations, exactly one strategy, and exactly one trigger. It is pure
// data owned by the caller; once handed to the reconciler it must not be mutated.
type AgentBlueprint struct {
	Tools    []ToolSpec   `json:"tools" yaml:"tools"`
	Strategy StrategySpec `json:"strategy" yaml:"strategy"`
	Trigger  TriggerSpec  `json:"trigger" yaml:"trigger"`
}

// Validate performs local structural checks: nonempty unique tool names, a
// nonempty strategy name, and a recognized trigger type. Whether the names
// resolve to anything is the hub's call, not ours.
func (b *AgentBlueprint) Validate() error {
	seen := make(map[string]struct{}, len(b.Tools))
	for i, tool := range b.Tools {
		if tool.Name == "" {
			return fmt.Errorf("tool %d: name is required", i)
		}
		if _, dup := seen[tool.Name]; dup {
			return fmt.Errorf("tool %q: duplicate tool name", tool.Name)
		}
		seen[tool.Name] = struct{}{}
	}

	if b.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}

	if b.Trigger.Type == "" {
		return fmt.Errorf("trigger.type is required")
	}
	if !b.Trigger.Type.IsValid() {
		return fmt.Errorf("trigger.type %q is not one of webhook, schedule, event", b.Trigger.Type)
	}

	return nil
}

// Clone returns a deep copy of the blueprint. Tool, strategy, and trigger
// config maps are copied recursively so the copy never aliases caller data.
func (b *AgentBlueprint) Clone() AgentBlueprint {
	out := AgentBlueprint{
		Strategy: StrategySpec{
			Name:   b.Strategy.Name,
			Config: cloneMap(b.Strategy.Config),
		},
		Trigger: TriggerSpec{
			Type:   b.Trigger.Type,
			Params: cloneMap(b.Trigger.Params),
		},
	}
	if b.Tools != nil {
		out.Tools = make([]ToolSpec, len(b.Tools))
		for i, tool := range b.Tools {
			out.Tools[i] = ToolSpec{
				Name:   tool.Name,
				Config: cloneMap(tool.Config),
			}
		}
	}
	return out
}

// ToolNames returns the tool names in blueprint order.
func (b *AgentBlueprint) ToolNames() []string {
	names := make([]string, len(b.Tools))
	for i, tool := range b.Tools {
		names[i] = tool.Name
	}
	return names
}

// cloneMap deep-copies a config map, descending into nested maps and slices.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		// Scalars are copied by value.
		return v
	}
}
