// Package marketplace assembles catalog listings for published agents.
//
// A Listing holds the human-facing metadata (category, tags, pricing,
// documentation) authored as a TOML file next to the agent's blueprint.
// Package combines a listing with the agent's identity and blueprint into a
// Record, rendering the markdown documentation to HTML for preview.
//
// Submission is deliberately unimplemented: the hub has no marketplace
// endpoint, and Submit reports ErrNotAvailable instead of masking that gap.
package marketplace
