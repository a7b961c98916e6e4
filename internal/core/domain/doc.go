// Package domain contains the core business entities and rules for the
// repository knowledge base: namespaces (tenant isolation), chunks,
// vector records, query matches, and the error taxonomy.
//
// The domain layer has no dependencies on infrastructure; adapters map
// their transport-level failures onto the sentinel errors defined here.
package domain
