// ABOUTME: Development catalog: the tool and strategy definitions the hub ships with
// ABOUTME: Config schemas pin the fields investigation blueprints actually use

package catalog

import "fmt"

const solanaRPCSchema = `{
	"type": "object",
	"required": ["rpc_url"],
	"properties": {
		"rpc_url": {"type": "string", "minLength": 1},
		"timeout_seconds": {"type": "number", "minimum": 1}
	},
	"additionalProperties": false
}`

const transactionTracerSchema = `{
	"type": "object",
	"required": ["rpc_url"],
	"properties": {
		"rpc_url": {"type": "string", "minLength": 1},
		"max_hops": {"type": "integer", "minimum": 1, "maximum": 20},
		"timeout_seconds": {"type": "number", "minimum": 1},
		"min_transfer_amount": {"type": "number", "minimum": 0}
	},
	"additionalProperties": false
}`

const mixerDetectorSchema = `{
	"type": "object",
	"required": ["rpc_url"],
	"properties": {
		"rpc_url": {"type": "string", "minLength": 1},
		"tornado_cash_addresses": {"type": "array", "items": {"type": "string"}},
		"samourai_addresses": {"type": "array", "items": {"type": "string"}},
		"mixer_confidence_threshold": {"type": "number", "minimum": 0, "maximum": 1},
		"analysis_depth": {"type": "integer", "minimum": 1},
		"timeout_seconds": {"type": "number", "minimum": 1}
	},
	"additionalProperties": false
}`

const twitterResearchSchema = `{
	"type": "object",
	"required": ["bearer_token"],
	"properties": {
		"bearer_token": {"type": "string", "minLength": 1},
		"api_base_url": {"type": "string"},
		"max_results_per_request": {"type": "integer", "minimum": 1, "maximum": 100},
		"timeout_seconds": {"type": "number", "minimum": 1},
		"include_metrics": {"type": "boolean"}
	},
	"additionalProperties": false
}`

const threadGeneratorSchema = `{
	"type": "object",
	"required": ["api_key"],
	"properties": {
		"api_key": {"type": "string", "minLength": 1},
		"model_name": {"type": "string"},
		"temperature": {"type": "number", "minimum": 0, "maximum": 2},
		"max_output_tokens": {"type": "integer", "minimum": 1},
		"juliaxbt_style": {"type": "boolean"}
	},
	"additionalProperties": false
}`

const investigationStrategySchema = `{
	"type": "object",
	"properties": {
		"max_investigation_depth": {"type": "integer", "minimum": 1, "maximum": 20},
		"auto_publish_threads": {"type": "boolean"},
		"investigation_priority_threshold": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH", "CRITICAL"]},
		"enable_social_media_research": {"type": "boolean"},
		"evidence_confidence_threshold": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"additionalProperties": false
}`

// builtinTools is the development tool catalog. ping and llm_chat accept any
// config; the investigation tools pin theirs with schemas.
var builtinTools = []ToolDefinition{
	{Name: "ping", Description: "Connectivity probe that echoes its input"},
	{Name: "llm_chat", Description: "LLM chat completion"},
	{Name: "solana_rpc", Description: "Solana blockchain RPC queries", ConfigSchema: solanaRPCSchema},
	{Name: "transaction_tracer", Description: "Multi-hop transaction flow tracing", ConfigSchema: transactionTracerSchema},
	{Name: "mixer_detector", Description: "Mixer and tumbler interaction detection", ConfigSchema: mixerDetectorSchema},
	{Name: "twitter_research", Description: "Social media research via the X API", ConfigSchema: twitterResearchSchema},
	{Name: "thread_generator", Description: "Investigation thread drafting", ConfigSchema: threadGeneratorSchema},
}

// builtinStrategies is the development strategy catalog.
var builtinStrategies = []StrategyDefinition{
	{Name: "plan_execute", Description: "Plan a task list, then execute it step by step"},
	{Name: "juliaxbt_investigation", Description: "On-chain investigation with social research", ConfigSchema: investigationStrategySchema},
}

// RegisterBuiltins loads the development catalog into a registry.
func RegisterBuiltins(r *Registry) error {
	for _, def := range builtinTools {
		if err := r.RegisterTool(def); err != nil {
			return fmt.Errorf("registering builtin tool: %w", err)
		}
	}
	for _, def := range builtinStrategies {
		if err := r.RegisterStrategy(def); err != nil {
			return fmt.Errorf("registering builtin strategy: %w", err)
		}
	}
	return nil
}

// Builtins returns a registry preloaded with the development catalog.
func Builtins() (*Registry, error) {
	r := NewRegistry(nil)
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}
