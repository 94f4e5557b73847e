package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/maximotodev/portfolio-api/internal/portfolio"
)

// blogExcerptRunes caps the length of blog document excerpts.
const blogExcerptRunes = 250

// Source provides the structured entities the knowledge base is built
// from. *portfolio.Store satisfies it in production.
type Source interface {
	ListWorkExperiences(ctx context.Context) ([]portfolio.WorkExperience, error)
	ListProjects(ctx context.Context) ([]portfolio.Project, error)
	ListCertifications(ctx context.Context) ([]portfolio.Certification, error)
	ListPublishedPosts(ctx context.Context) ([]portfolio.Post, error)
}

// Assembler projects portfolio entities into the document corpus.
// Building is a pure read plus projection; running it twice on unchanged
// source data yields byte-identical documents.
type Assembler struct {
	source      Source
	frontendURL string
	editorial   []EditorialDoc
	logger      *slog.Logger
}

// NewAssembler creates an Assembler. frontendURL is the base used to
// build external blog links. editorial may be nil, in which case
// DefaultEditorialDocs() applies.
func NewAssembler(source Source, frontendURL string, editorial []EditorialDoc, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if editorial == nil {
		editorial = DefaultEditorialDocs()
	}
	return &Assembler{
		source:      source,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		editorial:   editorial,
		logger:      logger,
	}
}

// Build assembles the full ordered document collection. Order is fixed:
// experience, project, certification, blog, tech_stack, master_list,
// then the editorial documents in their configured order. Within a kind,
// documents follow the source collection's ordering.
//
// Missing optional fields are substituted with empty strings; a single
// sparse entity never aborts the build. A failing source query does.
func (a *Assembler) Build(ctx context.Context) ([]Document, error) {
	experiences, err := a.source.ListWorkExperiences(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading work experiences: %w", err)
	}
	projects, err := a.source.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	certifications, err := a.source.ListCertifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading certifications: %w", err)
	}
	posts, err := a.source.ListPublishedPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}

	docs := make([]Document, 0,
		len(experiences)+len(projects)+len(certifications)+len(posts)+2+len(a.editorial))

	for _, exp := range experiences {
		docs = append(docs, experienceDoc(exp))
	}
	for _, p := range projects {
		docs = append(docs, projectDoc(p))
	}
	for _, c := range certifications {
		docs = append(docs, certificationDoc(c))
	}
	for _, post := range posts {
		// The store only returns published posts; re-check so a future
		// source can never leak a draft into the corpus.
		if !post.IsPublished {
			continue
		}
		docs = append(docs, a.blogDoc(post))
	}

	if doc, ok := techStackDoc(projects); ok {
		docs = append(docs, doc)
	}
	if doc, ok := masterListDoc(projects); ok {
		docs = append(docs, doc)
	}

	for _, ed := range a.editorial {
		docs = append(docs, editorialDoc(ed))
	}

	a.logger.Debug("knowledge base assembled",
		"documents", len(docs),
		"experiences", len(experiences),
		"projects", len(projects),
		"certifications", len(certifications),
		"posts", len(posts))

	return docs, nil
}

// mustJSON marshals a projection payload for use as document text.
// Struct field order is fixed, so output is deterministic for identical
// input. Payloads are plain structs of strings and string slices and
// cannot fail to marshal.
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("BUG: marshaling document payload: %v", err))
	}
	return string(data)
}

func experienceDoc(exp portfolio.WorkExperience) Document {
	payload := struct {
		Type             string   `json:"type"`
		Title            string   `json:"title"`
		Company          string   `json:"company"`
		Date             string   `json:"date"`
		Responsibilities []string `json:"responsibilities"`
	}{
		Type:             string(KindExperience),
		Title:            exp.JobTitle,
		Company:          exp.Company,
		Date:             formatDateRange(exp.StartDate, exp.EndDate),
		Responsibilities: splitResponsibilities(exp.Description),
	}
	return Document{
		Kind:     KindExperience,
		Title:    exp.JobTitle,
		Text:     mustJSON(payload),
		Category: "experience",
	}
}

func projectDoc(p portfolio.Project) Document {
	technologies := p.TechnologyList()
	if technologies == nil {
		technologies = []string{}
	}
	payload := struct {
		Type         string   `json:"type"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		URL          string   `json:"url"`
		RepoURL      string   `json:"repo_url"`
		Technologies []string `json:"technologies"`
	}{
		Type:         string(KindProject),
		Title:        p.Title,
		Description:  p.Description,
		URL:          p.LiveURL,
		RepoURL:      p.RepositoryURL,
		Technologies: technologies,
	}
	url := p.LiveURL
	if url == "" {
		url = p.RepositoryURL
	}
	return Document{
		Kind:     KindProject,
		Title:    p.Title,
		Text:     mustJSON(payload),
		URL:      url,
		Category: "projects",
	}
}

func certificationDoc(c portfolio.Certification) Document {
	payload := struct {
		Type   string `json:"type"`
		Name   string `json:"name"`
		Issuer string `json:"issuer"`
		URL    string `json:"url"`
	}{
		Type:   string(KindCertification),
		Name:   c.Name,
		Issuer: c.Issuer,
		URL:    c.CredentialURL,
	}
	return Document{
		Kind:     KindCertification,
		Title:    c.Name,
		Text:     mustJSON(payload),
		URL:      c.CredentialURL,
		Category: "certifications",
	}
}

func (a *Assembler) blogDoc(post portfolio.Post) Document {
	url := a.frontendURL + "/blog/" + post.Slug
	payload := struct {
		Type    string `json:"type"`
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	}{
		Type:    string(KindBlog),
		Title:   post.Title,
		Content: post.Excerpt(blogExcerptRunes),
		URL:     url,
	}
	return Document{
		Kind:     KindBlog,
		Title:    post.Title,
		Text:     mustJSON(payload),
		URL:      url,
		Category: "posts",
	}
}

// techStackDoc aggregates every project's technology list into one
// document. Duplicates are folded case-insensitively (first spelling
// wins) and the result is sorted case-insensitively. Returns false when
// no project lists any technology.
func techStackDoc(projects []portfolio.Project) (Document, bool) {
	seen := make(map[string]string)
	for _, p := range projects {
		for _, tech := range p.TechnologyList() {
			key := strings.ToLower(tech)
			if _, ok := seen[key]; !ok {
				seen[key] = tech
			}
		}
	}
	if len(seen) == 0 {
		return Document{}, false
	}

	technologies := make([]string, 0, len(seen))
	for _, tech := range seen {
		technologies = append(technologies, tech)
	}
	sort.Slice(technologies, func(i, j int) bool {
		li, lj := strings.ToLower(technologies[i]), strings.ToLower(technologies[j])
		if li != lj {
			return li < lj
		}
		return technologies[i] < technologies[j]
	})

	payload := struct {
		Type         string   `json:"type"`
		Technologies []string `json:"technologies"`
	}{
		Type:         string(KindTechStack),
		Technologies: technologies,
	}
	return Document{
		Kind:     KindTechStack,
		Title:    "Technology Stack",
		Text:     mustJSON(payload),
		Category: "projects",
	}, true
}

// masterListDoc lists every project title in one document so "what have
// you built" style questions can retrieve the complete set at once.
func masterListDoc(projects []portfolio.Project) (Document, bool) {
	if len(projects) == 0 {
		return Document{}, false
	}
	titles := make([]string, 0, len(projects))
	for _, p := range projects {
		titles = append(titles, p.Title)
	}
	payload := struct {
		Type     string   `json:"type"`
		Projects []string `json:"projects"`
	}{
		Type:     string(KindMasterList),
		Projects: titles,
	}
	return Document{
		Kind:     KindMasterList,
		Title:    "All Projects",
		Text:     mustJSON(payload),
		Category: "projects",
	}, true
}

func editorialDoc(ed EditorialDoc) Document {
	payload := struct {
		Type    string `json:"type"`
		Name    string `json:"name"`
		Content string `json:"content"`
	}{
		Type:    string(ed.Kind),
		Name:    ed.Name,
		Content: ed.Content,
	}
	return Document{
		Kind:     ed.Kind,
		Title:    ed.Name,
		Text:     mustJSON(payload),
		Category: "general",
	}
}

// formatDateRange renders "Jan 2006 - Present" style ranges. A nil end
// date means a current position.
func formatDateRange(start time.Time, end *time.Time) string {
	const layout = "Jan 2006"
	if end == nil {
		return start.Format(layout) + " - Present"
	}
	return start.Format(layout) + " - " + end.Format(layout)
}

// splitResponsibilities turns the raw multi-line description into
// discrete bullet strings, one per non-blank line.
func splitResponsibilities(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{}
	}
	return out
}

// DefaultEditorialDocs returns the fixed editorial documents shipped
// with the assistant. The Rust topic exists specifically to stop the
// model from inventing experience the knowledge base does not contain.
func DefaultEditorialDocs() []EditorialDoc {
	return []EditorialDoc{
		{
			Kind:    KindCoreInfo,
			Name:    "About Maximoto",
			Content: "Maximoto is a full-stack software developer. This assistant answers questions about his professional experience, projects, certifications and writing.",
		},
		{
			Kind:    KindTopic,
			Name:    "Bitcoin",
			Content: "Maximoto is a passionate Bitcoin maximalist with deep knowledge of its principles, demonstrated by his work at Tribe BTC and the on-chain Bitcoin tipping feature in his portfolio.",
		},
		{
			Kind:    KindTopic,
			Name:    "Linux",
			Content: "Maximoto holds a 'Linux and SQL' certification from Coursera, validating his foundational skills in Linux environments.",
		},
		{
			Kind:    KindTopic,
			Name:    "AI/ML",
			Content: "Maximoto builds practical AI applications, including a semantic search Skill Matcher and this RAG-powered AI Career Assistant.",
		},
		{
			Kind:    KindTopic,
			Name:    "Rust",
			Content: "Maximoto's current knowledge base does not contain information about experience with the Rust programming language.",
		},
		{
			Kind:    KindGuardrail,
			Name:    "Scope",
			Content: "The assistant only discusses Maximoto's professional background. Questions outside that scope get a polite redirect to career topics.",
		},
	}
}
