// Package reconcile publishes agent blueprints to a hub idempotently.
//
// # Overview
//
// Publishing makes the hub's actual resource set match a desired blueprint
// under a stable identity. The hub has no update primitive, so the workflow
// converges by replacement: load any agent already registered under the id,
// delete it, create a fresh one from the blueprint, start it, and read back
// what the hub holds.
//
//	conn, err := hub.Open(ctx, endpoint)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	info, err := reconcile.New(conn, logger).Publish(ctx, identity, bp)
//
// Run wraps the same workflow with connection setup and teardown for
// callers that hold a Config rather than an open connection.
//
// # Failure Policy
//
// The workflow recovers exactly one condition: the absence of a prior agent
// (hub.ErrNotFound on the initial load, or on the cleanup delete when the
// agent vanished concurrently). That absence is the common case, not an
// error. Everything else — connection failures, create conflicts, blueprint
// validation rejections, illegal transitions — returns to the caller
// unmodified, with the remote resource left in whatever state the last
// successful step produced. There is no rollback and no retry; the caller
// decides whether to run the whole publish again.
//
// # Known Window
//
// Delete-then-create is not atomic. Between the two calls the identity has
// no resource, and a concurrent writer can claim the id (surfacing as
// hub.ErrConflict from the create). Workflows that cannot tolerate the
// window need an update-in-place primitive the hub does not offer.
package reconcile
