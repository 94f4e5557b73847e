// Package knowledge assembles the chat knowledge base from portfolio
// content. Structured entities are projected into a flat, ordered
// collection of typed text documents; the rag package embeds and
// searches that collection.
package knowledge

// Kind identifies the document type. The set is closed; new kinds
// require code changes, not data changes.
type Kind string

const (
	KindExperience    Kind = "experience"
	KindProject       Kind = "project"
	KindCertification Kind = "certification"
	KindBlog          Kind = "blog"
	KindTechStack     Kind = "tech_stack"
	KindMasterList    Kind = "master_list"
	KindCoreInfo      Kind = "core_info"
	KindTopic         Kind = "topic"
	KindGuardrail     Kind = "guardrail"
)

// Document is a single retrievable unit of knowledge.
//
// Text is the full blob used both for embedding and as LLM context. It is
// a pure projection of the source entity fields; the assembler never
// infers or invents content.
type Document struct {
	Kind     Kind   `json:"kind"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category,omitempty"`
}

// EditorialDoc is a fixed knowledge snippet configured in code rather
// than derived from portfolio entities. Topic docs supply domain facts
// the entities cannot express (including explicit "no experience with X"
// statements that keep the model from inventing claims); guardrail docs
// state conversational boundaries; core info docs carry basic identity.
type EditorialDoc struct {
	Kind    Kind
	Name    string
	Content string
}
