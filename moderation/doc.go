// Package moderation holds the trust and moderation domain logic for the
// quarterdeck console: report grouping, edit history re-attribution, and the
// access level hierarchy with its promotion/demotion matrix.
//
// Everything here is pure CPU work over values fetched from the upstream
// store. No I/O, no shared mutable state; transforms are safe to run
// concurrently across requests with no coordination.
package moderation
