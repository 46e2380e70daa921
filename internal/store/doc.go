// Package store provides persistent storage for the hub using SQLite.
//
// # Architecture
//
// The Store interface covers everything the hub persists: the agent resources
// themselves and their execution logs. SQLiteStore is the only production
// implementation, backed by modernc.org/sqlite (pure Go, no cgo).
//
// # Schema
//
// Two tables:
//
//   - agents: one row per registered agent — identity, lifecycle state, the
//     JSON blueprint it was created from, and denormalized summary columns
//     (tool_count, strategy_name, trigger_type) for listings
//   - agent_logs: append-only log lines per agent, cleared when the agent is
//     deleted
//
// The schema is created automatically on first open. WAL mode is enabled for
// concurrent readers.
//
// # Conventions
//
// Timestamps are stored as RFC3339 strings in UTC. Absent rows surface as
// ErrNotFound; duplicate agent ids as ErrDuplicateAgent. Both are sentinels
// for errors.Is.
//
// # Usage
//
//	s, err := store.NewSQLiteStore("/var/lib/sigil/hub.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	err = s.CreateAgent(ctx, &store.Agent{...})
package store
