// Package driving provides interfaces for primary/inbound ports: the
// operations the presentation layer invokes on the retrieval core, and
// the producer capability that ingestion adapters implement.
package driving
