package rag

import (
	"strings"

	"github.com/maximotodev/portfolio-api/internal/knowledge"
)

// intentRule maps one content category to its trigger phrases.
type intentRule struct {
	category knowledge.Kind
	triggers []string
}

// intentRules is the single place trigger phrases live. Rules are
// checked in order and the first match wins; there is no scoring or
// overlap resolution beyond this fixed priority. tech_stack comes first
// so "tech stack" questions are not swallowed by the broader project
// triggers.
var intentRules = []intentRule{
	{
		category: knowledge.KindTechStack,
		triggers: []string{"tech stack", "technology stack", "technologies", "stack"},
	},
	{
		category: knowledge.KindProject,
		triggers: []string{"project", "projects", "portfolio", "built", "apps"},
	},
	{
		category: knowledge.KindExperience,
		triggers: []string{"experience", "work history", "career", "jobs", "employment", "worked"},
	},
	{
		category: knowledge.KindCertification,
		triggers: []string{"certification", "certifications", "certificate", "certified", "credentials"},
	},
	{
		category: knowledge.KindBlog,
		triggers: []string{"blog", "post", "posts", "article", "articles", "writing", "written"},
	},
}

// ClassifyIntent maps a free-text question to a content category via
// case-folded substring matching against the trigger table. Returns
// false when nothing matches, signaling the retriever to fall back to
// semantic search.
func ClassifyIntent(question string) (knowledge.Kind, bool) {
	q := strings.ToLower(question)
	for _, rule := range intentRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(q, trigger) {
				return rule.category, true
			}
		}
	}
	return "", false
}
