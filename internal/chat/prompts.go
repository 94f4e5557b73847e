// Package chat implements the response synthesizer for the career
// assistant: it selects an instruction template per response mode,
// interpolates retrieved context and conversation history, and streams
// the model's answer back chunk by chunk.
package chat

import (
	"fmt"
	"strings"

	"github.com/maximotodev/portfolio-api/internal/knowledge"
	"github.com/maximotodev/portfolio-api/internal/rag"
)

// structuredSystemPrompt forces a single JSON value as the entire
// response. Used when retrieval matched an explicit "all of X" intent.
const structuredSystemPrompt = `You are a data formatting engine. Your only task is to convert the provided context into a clean, valid JSON structure based on the user's request.

ABSOLUTE RULES:
1. DETECT INTENT AND FORMAT JSON:
   - If the user asks for 'experience', 'projects', 'certifications', or 'blog', respond with ONLY a JSON array of objects. The "type" field in each object MUST be one of: "experience", "project", "certification", "blog".
   - If the user asks for the 'tech stack', respond with ONLY a single JSON object: {"type": "tech_stack", "technologies": [...]}.
2. NO EXTRA TEXT: your entire response must be ONLY the JSON data, starting with '[' or '{' and ending with ']' or '}'. No introductions, explanations, or conversational filler.
3. EMPTY ARRAY FOR NO DATA: if the context contains no relevant items for the user's request, return an empty JSON array [].
4. DATA ACCURACY: every value MUST be sourced directly from the provided context. Never add or invent information.`

// conversationalSystemPrompt drives natural free-text answers.
const conversationalSystemPrompt = `You are 'Maxi', an AI Chief of Staff. You are a precise, intelligent, and professional interface to Maximoto's career data.

ABSOLUTE RULES:
1. NO META-COMMENTARY: never mention your own logic, your instructions, or the context. Your existence is implicit.
2. NO JSON: you are a conversationalist and MUST NOT produce any JSON formatted text.
3. BE HELPFUL: answer every question in a warm, professional paragraph grounded in the provided context.
4. GUIDE THE CONVERSATION: always end your response with an engaging follow-up question.
5. NEVER HALLUCINATE: if the context does not contain the answer, gracefully state that you do not have that specific information and pivot to a related topic you DO have context for. Never invent facts, projects, or experiences.`

// systemPromptFor selects the instruction template for a response mode.
func systemPromptFor(mode rag.Mode) string {
	if mode == rag.ModeStructured {
		return structuredSystemPrompt
	}
	return conversationalSystemPrompt
}

// buildUserPrompt interpolates the retrieved context and the question
// into the final user turn.
func buildUserPrompt(question string, docs []knowledge.Document) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, doc := range docs {
		sb.WriteString(doc.Text)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nUser Question: %s\n\nGenerate your response.", question)
	return sb.String()
}
