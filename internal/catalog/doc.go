// Package catalog resolves the tool and strategy names blueprints refer to.
//
// # Overview
//
// The hub refuses to create an agent from names it cannot resolve. The
// Registry holds the known ToolDefinitions and StrategyDefinitions; agent
// creation calls ValidateBlueprint, which resolves every name and checks each
// config against the definition's JSON Schema when one is declared.
//
// # Schemas
//
// A definition's ConfigSchema is a JSON Schema document compiled at
// registration. Definitions without a schema accept any config. Violations
// surface as ErrConfigRejected with the schema's own description of what
// failed, so blueprint authors see field-level messages.
//
// # Builtins
//
// Builtins() preloads the development catalog the sigil-hub ships with:
// connectivity and LLM tools plus the on-chain investigation set (solana_rpc,
// transaction_tracer, mixer_detector, twitter_research, thread_generator) and
// the plan_execute and juliaxbt_investigation strategies.
package catalog
