// Package rag implements retrieval for the career chat: an in-memory
// embedding index over the knowledge corpus, a keyword intent
// classifier, and the retriever that combines them into ranked context
// for the response synthesizer.
package rag

import "time"

// Default retrieval parameters. Tunable policy, overridable through
// configuration. The threshold directly controls hallucination risk:
// lower admits irrelevant context, higher starves the model.
const (
	// DefaultTopK is the number of candidates considered per search.
	DefaultTopK = 5

	// DefaultThreshold is the minimum cosine similarity; results must
	// score strictly above it.
	DefaultThreshold = 0.30

	// DefaultEmbedTimeout bounds a single embedding service call.
	DefaultEmbedTimeout = 5 * time.Second
)

// Marker document texts injected as context when retrieval cannot
// produce real documents. The synthesizer prompts instruct the model to
// respond gracefully to these instead of inventing facts.
const (
	// NoRelevantInfoMarker replaces an empty semantic search result.
	NoRelevantInfoMarker = "No relevant information was found in the knowledge base for this question."

	// RetrievalErrorMarker replaces context when the embedding service
	// fails or times out.
	RetrievalErrorMarker = "An error occurred while retrieving information; the knowledge base is temporarily unavailable."
)
