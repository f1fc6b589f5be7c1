package driven

// Prompt names known to PromptStore.
const (
	// PromptAnswerSystem is the system prompt of the answering model.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the question; %s is replaced with it.
	PromptAnswerUser = "answer_user"
)

// PromptStore loads user-editable prompt templates.
type PromptStore interface {
	// Load returns the template for name, falling back to a built-in default.
	Load(name string) (string, error)
}
