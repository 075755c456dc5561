// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): chunking, embedding, vector indexing,
// document storage, and snapshot persistence.
package driven
