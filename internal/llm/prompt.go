package llm

import "fmt"

// SystemPrompt restricts the model to the supplied documents.
const SystemPrompt = "You are a professional knowledge-base assistant. Answer the user's question " +
	"strictly based on the provided reference documents. If the documents do not contain " +
	"the information needed to answer, say so honestly instead of guessing."

// BuildMessages returns the system preamble followed by a user turn carrying the
// retrieved context and the question.
func BuildMessages(question, context string) []Message {
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf("reference documents:\n\n%s\n\nquestion:\n\n%s", context, question)},
	}
}
