// Package blueprint defines the declarative description of an agent.
//
// # Overview
//
// A blueprint bundles everything the hub needs to instantiate an agent:
// an ordered list of tool configurations, exactly one strategy, and exactly
// one trigger. Blueprints are pure data — they carry no reference to any
// deployed instance and belong to the caller until handed to the reconciler.
//
// # File Format
//
// Blueprints are authored as YAML:
//
//	tools:
//	  - name: solana_rpc
//	    config:
//	      rpc_url: "${SOLANA_RPC_URL}"
//	      timeout_seconds: 30
//	  - name: transaction_tracer
//	    config:
//	      max_hops: 7
//	strategy:
//	  name: juliaxbt_investigation
//	  config:
//	    max_investigation_depth: 7
//	trigger:
//	  type: webhook
//	  params:
//	    path: /investigate
//	    method: POST
//
// Environment variables referenced as ${VAR} are expanded at load time.
//
// # Validation
//
// Validate checks structure only: unique nonempty tool names, a nonempty
// strategy name, and a recognized trigger type (webhook, schedule, event).
// Config keys inside each tool are tool-specific; the hub checks them against
// the tool's schema when the agent is created.
package blueprint
