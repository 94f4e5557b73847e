package rag

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/firebase/genkit/go/ai"

	"github.com/maximotodev/portfolio-api/internal/knowledge"
)

// ScoredDocument pairs a corpus document with its similarity score.
// Score is cosine similarity in [0, 1] for normalized text embeddings.
type ScoredDocument struct {
	Document knowledge.Document
	Score    float64
}

// Index holds the embedded corpus and answers similarity searches.
// Vector i corresponds to document i, always. After Build returns the
// index is read-only and safe for concurrent use.
type Index struct {
	embedder ai.Embedder
	docs     []knowledge.Document
	vectors  [][]float32
}

// NewIndex creates an empty Index using the given embedder for both
// corpus and query encoding.
func NewIndex(embedder ai.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Build embeds every document text and stores the normalized vectors.
// The whole corpus is sent as one batch request.
func (ix *Index) Build(ctx context.Context, docs []knowledge.Document) error {
	if len(docs) == 0 {
		ix.docs = nil
		ix.vectors = nil
		return nil
	}

	input := make([]*ai.Document, len(docs))
	for i, doc := range docs {
		input[i] = ai.DocumentFromText(doc.Text, nil)
	}

	resp, err := ix.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return fmt.Errorf("embedding corpus: %w", err)
	}
	if len(resp.Embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: got %d vectors for %d documents",
			len(resp.Embeddings), len(docs))
	}

	vectors := make([][]float32, len(docs))
	for i, emb := range resp.Embeddings {
		vectors[i] = normalize(emb.Embedding)
	}

	ix.docs = docs
	ix.vectors = vectors
	return nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.docs)
}

// Documents returns the indexed corpus in index order. Callers must not
// mutate the returned slice.
func (ix *Index) Documents() []knowledge.Document {
	if ix == nil {
		return nil
	}
	return ix.docs
}

// Search embeds the query and returns the top-k documents by cosine
// similarity, strictly above threshold, ordered by descending score with
// ties broken by corpus position. candidates restricts the search to the
// given corpus indexes; nil means the full corpus.
//
// An unbuilt index returns an empty result, not an error.
func (ix *Index) Search(ctx context.Context, query string, candidates []int, k int, threshold float64) ([]ScoredDocument, error) {
	if ix == nil || len(ix.vectors) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	resp, err := ix.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(query, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned for query")
	}
	queryVec := normalize(resp.Embeddings[0].Embedding)

	if candidates == nil {
		candidates = make([]int, len(ix.vectors))
		for i := range candidates {
			candidates[i] = i
		}
	}

	type hit struct {
		index int
		score float64
	}
	hits := make([]hit, 0, len(candidates))
	for _, idx := range candidates {
		if idx < 0 || idx >= len(ix.vectors) {
			continue
		}
		hits = append(hits, hit{index: idx, score: dot(queryVec, ix.vectors[idx])})
	}

	// Stable ordering: descending score, ties by corpus position.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	scored := make([]ScoredDocument, 0, k)
	for _, h := range hits {
		if len(scored) >= k {
			break
		}
		if h.score <= threshold {
			break
		}
		scored = append(scored, ScoredDocument{Document: ix.docs[h.index], Score: h.score})
	}
	return scored, nil
}

// normalize scales a vector to unit length so cosine similarity reduces
// to a dot product. A zero vector is returned unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dot computes the dot product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
