// Package services contains the application services composing the
// ingestion and retrieval pipeline: the ingestion orchestrator (walk,
// chunk, embed, upsert) and the query engine (embed, retrieve,
// synthesize, log).
package services
