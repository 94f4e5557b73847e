// Package portfolio provides read access to the portfolio content tables:
// work experience, projects, certifications and blog posts. The chat
// knowledge base is assembled from the same data.
package portfolio

import (
	"strings"
	"time"
)

// WorkExperience is a single position in the career history.
// EndDate is nil for a current position.
type WorkExperience struct {
	ID          int64      `json:"id"`
	JobTitle    string     `json:"job_title"`
	Company     string     `json:"company"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description"`
}

// Project is a portfolio project. Technologies is stored as a
// comma-separated string; use TechnologyList for the parsed form.
type Project struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Technologies  string `json:"technologies"`
	RepositoryURL string `json:"repository_url,omitempty"`
	LiveURL       string `json:"live_url,omitempty"`
}

// TechnologyList parses the comma-separated Technologies field.
// Entries are trimmed and empty entries dropped; original casing and
// order are preserved.
func (p Project) TechnologyList() []string {
	if strings.TrimSpace(p.Technologies) == "" {
		return nil
	}
	parts := strings.Split(p.Technologies, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Certification is a professional certification or course completion.
type Certification struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Issuer        string     `json:"issuer"`
	DateIssued    *time.Time `json:"date_issued,omitempty"`
	CredentialURL string     `json:"credential_url,omitempty"`
}

// Post is a blog post. Only published posts are exposed through the API
// and the chat knowledge base.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Excerpt returns the first n runes of the post content, with an
// ellipsis appended when the content was truncated.
func (p Post) Excerpt(n int) string {
	runes := []rune(p.Content)
	if len(runes) <= n {
		return p.Content
	}
	return string(runes[:n]) + "..."
}
