package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/maximotodev/portfolio-api/internal/knowledge"
	"github.com/maximotodev/portfolio-api/internal/testutil"
)

func newTestRetriever(t *testing.T, docs []knowledge.Document) (*Retriever, *testutil.MockEmbedder) {
	t.Helper()
	ix, mock := newTestIndex(t)
	if err := ix.Build(context.Background(), docs); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return NewRetriever(ix, 5, 0.30, 0, testutil.DiscardLogger()), mock
}

// TestRetrieveIntentPath tests the exact-category structured path
func TestRetrieveIntentPath(t *testing.T) {
	docs := []knowledge.Document{
		{Kind: knowledge.KindProject, Title: "A", Text: "doc-a"},
		{Kind: knowledge.KindBlog, Title: "B", Text: "doc-b"},
		{Kind: knowledge.KindProject, Title: "C", Text: "doc-c"},
	}
	r, _ := newTestRetriever(t, docs)

	res := r.Retrieve(context.Background(), "show me all your projects")

	if res.Mode != ModeStructured {
		t.Fatalf("mode = %q, want structured", res.Mode)
	}
	if res.Category != knowledge.KindProject {
		t.Errorf("category = %q, want project", res.Category)
	}
	if len(res.Documents) != 2 {
		t.Fatalf("got %d documents, want every project document", len(res.Documents))
	}
	if res.Documents[0].Title != "A" || res.Documents[1].Title != "C" {
		t.Errorf("documents out of corpus order: %q, %q", res.Documents[0].Title, res.Documents[1].Title)
	}
}

// TestRetrieveIntentPathEmptyKind tests a matched intent with no documents of that kind
func TestRetrieveIntentPathEmptyKind(t *testing.T) {
	docs := []knowledge.Document{{Kind: knowledge.KindProject, Title: "A", Text: "doc-a"}}
	r, _ := newTestRetriever(t, docs)

	res := r.Retrieve(context.Background(), "show me your certifications")
	if res.Mode != ModeStructured {
		t.Fatalf("mode = %q, want structured", res.Mode)
	}
	if res.Documents == nil || len(res.Documents) != 0 {
		t.Errorf("expected empty (not nil) document set, got %v", res.Documents)
	}
}

// TestRetrieveSemanticPath tests the conversational fallback path
func TestRetrieveSemanticPath(t *testing.T) {
	docs := []knowledge.Document{
		{Kind: knowledge.KindTopic, Title: "Bitcoin", Text: "bitcoin lightning payments"},
		{Kind: knowledge.KindTopic, Title: "Linux", Text: "linux systems administration"},
	}
	r, mock := newTestRetriever(t, docs)

	mock.SetVector("bitcoin lightning payments", []float32{1, 0, 0, 0})
	mock.SetVector("linux systems administration", []float32{0, 1, 0, 0})
	mock.SetVector("tell me about bitcoin", []float32{1, 0, 0, 0})

	res := r.Retrieve(context.Background(), "tell me about bitcoin")

	if res.Mode != ModeConversational {
		t.Fatalf("mode = %q, want conversational", res.Mode)
	}
	if len(res.Documents) != 1 || res.Documents[0].Title != "Bitcoin" {
		t.Fatalf("expected the bitcoin document, got %v", res.Documents)
	}
}

// TestRetrieveKeywordFilterRestriction tests that shared-token documents are preferred
func TestRetrieveKeywordFilterRestriction(t *testing.T) {
	docs := []knowledge.Document{
		{Kind: knowledge.KindTopic, Title: "Bitcoin", Text: "bitcoin lightning payments"},
		{Kind: knowledge.KindTopic, Title: "Linux", Text: "linux systems administration"},
	}
	r, mock := newTestRetriever(t, docs)

	// Both documents would pass the threshold, but only the bitcoin
	// document shares a token with the question.
	mock.SetVector("bitcoin lightning payments", []float32{1, 0, 0, 0})
	mock.SetVector("linux systems administration", []float32{0.9, 0.435, 0, 0})
	mock.SetVector("tell me about bitcoin", []float32{1, 0, 0, 0})

	res := r.Retrieve(context.Background(), "tell me about bitcoin")

	if len(res.Documents) != 1 || res.Documents[0].Title != "Bitcoin" {
		t.Fatalf("keyword filter should restrict candidates, got %v", res.Documents)
	}
}

// TestRetrieveKeywordFilterFallback tests full-corpus search when the filter empties
func TestRetrieveKeywordFilterFallback(t *testing.T) {
	docs := []knowledge.Document{
		{Kind: knowledge.KindTopic, Title: "Bitcoin", Text: "bitcoin lightning payments"},
	}
	r, mock := newTestRetriever(t, docs)

	// No shared tokens, but the embedding is still close; the filter
	// must fall back to the full corpus rather than starve retrieval.
	mock.SetVector("bitcoin lightning payments", []float32{1, 0, 0, 0})
	mock.SetVector("sats over fiat", []float32{0.95, 0.312, 0, 0})

	res := r.Retrieve(context.Background(), "sats over fiat")

	if res.Mode != ModeConversational {
		t.Fatalf("mode = %q, want conversational", res.Mode)
	}
	if len(res.Documents) != 1 || res.Documents[0].Title != "Bitcoin" {
		t.Fatalf("expected full-corpus fallback to find the document, got %v", res.Documents)
	}
}

// TestRetrieveNoRelevantInfo tests the marker document for zero hits
func TestRetrieveNoRelevantInfo(t *testing.T) {
	docs := []knowledge.Document{
		{Kind: knowledge.KindTopic, Title: "Bitcoin", Text: "bitcoin lightning payments"},
	}
	r, mock := newTestRetriever(t, docs)

	mock.SetVector("bitcoin lightning payments", []float32{1, 0, 0, 0})
	mock.SetVector("underwater basket weaving", []float32{0, 1, 0, 0})

	res := r.Retrieve(context.Background(), "underwater basket weaving")

	if len(res.Documents) != 1 {
		t.Fatalf("expected a single marker document, got %d", len(res.Documents))
	}
	if res.Documents[0].Text != NoRelevantInfoMarker {
		t.Errorf("marker text = %q, want no-relevant-info marker", res.Documents[0].Text)
	}
}

// TestRetrieveEmbedderFailure tests the retrieval-error marker on embed failure
func TestRetrieveEmbedderFailure(t *testing.T) {
	docs := []knowledge.Document{
		{Kind: knowledge.KindTopic, Title: "Bitcoin", Text: "bitcoin lightning payments"},
	}
	r, mock := newTestRetriever(t, docs)
	mock.SetError(errors.New("context deadline exceeded"))

	res := r.Retrieve(context.Background(), "anything at all")

	if res.Mode != ModeConversational {
		t.Fatalf("mode = %q, want conversational", res.Mode)
	}
	if len(res.Documents) != 1 || res.Documents[0].Text != RetrievalErrorMarker {
		t.Fatalf("expected the retrieval-error marker, got %v", res.Documents)
	}
}

// TestTokenize tests the documented tokenization rules
func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lowercase and punctuation stripped", input: "Do you KNOW Rust?!", want: []string{"know", "rust"}},
		{name: "short tokens dropped", input: "is it a go api", want: []string{"api"}},
		{name: "stopwords kept", input: "the projects", want: []string{"the", "projects"}},
		{name: "digits kept", input: "web3 stuff", want: []string{"web3", "stuff"}},
		{name: "empty", input: "?!", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
