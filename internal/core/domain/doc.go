// Package domain contains the core business types for the retrieval
// engine: documents, chunks, query results, configuration enums, and
// the error taxonomy. It has no dependencies on adapters or services.
package domain
