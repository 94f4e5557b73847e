package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/maximotodev/portfolio-api/internal/knowledge"
)

// Mode is the response mode selected by retrieval.
type Mode string

const (
	// ModeStructured means the caller asked for "all of X" and the
	// answer should be machine-parseable JSON.
	ModeStructured Mode = "structured"

	// ModeConversational means relevance-ranked context feeds a
	// free-text answer.
	ModeConversational Mode = "conversational"
)

// Result is the outcome of one retrieval pass.
type Result struct {
	Documents []knowledge.Document
	Mode      Mode

	// Category is the matched intent category in structured mode,
	// empty otherwise.
	Category knowledge.Kind
}

// Retriever selects context documents for a question. Listing requests
// ("show me all projects") take the exact-category path because they
// need completeness; open questions take the semantic path because they
// need relevance ranking. One strategy cannot serve both.
type Retriever struct {
	index        *Index
	topK         int
	threshold    float64
	embedTimeout time.Duration
	logger       *slog.Logger
}

// NewRetriever creates a Retriever over the given index. Zero values
// for topK, threshold and embedTimeout fall back to the package
// defaults.
func NewRetriever(index *Index, topK int, threshold float64, embedTimeout time.Duration, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if embedTimeout <= 0 {
		embedTimeout = DefaultEmbedTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		index:        index,
		topK:         topK,
		threshold:    threshold,
		embedTimeout: embedTimeout,
		logger:       logger,
	}
}

// Retrieve returns the context documents and response mode for a
// question. It never returns an error: retrieval failures are converted
// into marker documents so the synthesizer always has something valid
// to work with.
func (r *Retriever) Retrieve(ctx context.Context, question string) Result {
	if category, ok := ClassifyIntent(question); ok {
		// Explicit "all of X" request: completeness over relevance,
		// no ranking, no threshold.
		docs := r.allOfKind(category)
		r.logger.Debug("intent matched",
			"category", string(category), "documents", len(docs))
		return Result{Documents: docs, Mode: ModeStructured, Category: category}
	}

	candidates := r.keywordFilter(question)

	searchCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	defer cancel()

	scored, err := r.index.Search(searchCtx, question, candidates, r.topK, r.threshold)
	if err != nil {
		r.logger.Warn("semantic search failed, substituting marker context", "error", err)
		return Result{Documents: []knowledge.Document{markerDocument(RetrievalErrorMarker)}, Mode: ModeConversational}
	}
	if len(scored) == 0 {
		return Result{Documents: []knowledge.Document{markerDocument(NoRelevantInfoMarker)}, Mode: ModeConversational}
	}

	docs := make([]knowledge.Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}
	return Result{Documents: docs, Mode: ModeConversational}
}

// allOfKind returns every corpus document of the given kind in corpus
// order.
func (r *Retriever) allOfKind(kind knowledge.Kind) []knowledge.Document {
	var out []knowledge.Document
	for _, doc := range r.index.Documents() {
		if doc.Kind == kind {
			out = append(out, doc)
		}
	}
	if out == nil {
		out = []knowledge.Document{}
	}
	return out
}

// keywordFilter reduces the corpus to documents sharing at least one
// question token, returning corpus indexes for Index.Search. When the
// filter matches nothing it returns nil so search runs over the full
// corpus; an over-aggressive filter must never starve retrieval.
func (r *Retriever) keywordFilter(question string) []int {
	tokens := tokenize(question)
	if len(tokens) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		want[tok] = struct{}{}
	}

	var matched []int
	for i, doc := range r.index.Documents() {
		for _, tok := range tokenize(doc.Text) {
			if _, ok := want[tok]; ok {
				matched = append(matched, i)
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return matched
}

// tokenize lowercases the text and splits on any non-letter, non-digit
// rune. Tokens shorter than 3 runes are dropped; stopwords are kept.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

// markerDocument wraps a marker string as a corpus-shaped document so
// it flows through the same context-building path as real documents.
func markerDocument(text string) knowledge.Document {
	return knowledge.Document{
		Kind:     knowledge.KindTopic,
		Title:    "Retrieval Status",
		Text:     text,
		Category: "general",
	}
}
