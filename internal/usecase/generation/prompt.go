package generation

import "strings"

// NotFoundAnswer is the literal the model must emit when the context lacks the answer.
// The query path returns it directly when retrieval finds nothing.
const NotFoundAnswer = "Not found in documents."

// BuildPrompt binds the model to the retrieved context.
func BuildPrompt(query, context string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant. Answer ONLY using the context below. ")
	b.WriteString("Be concise and specific.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(query)
	b.WriteString("\n\nIf the answer is not found in the context, say '" + NotFoundAnswer + "'")
	return b.String()
}

// Placeholder is the deterministic answer when no provider is configured.
func Placeholder(context string) string {
	return "[No LLM key configured, set GROQ_API_KEY in .env]\n\nRetrieved context:\n" + context
}
