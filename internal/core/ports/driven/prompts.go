package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when there is none.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptChat answers a question from retrieved context.
	// The template expects %s (context) then %s (question).
	PromptChat = "chat"

	// PromptSummarisePart summarises one piece of a long context.
	// The template expects %s (content).
	PromptSummarisePart = "summarise_part"

	// PromptSummariseCombine condenses the joined partial summaries.
	// The template expects %s (summaries).
	PromptSummariseCombine = "summarise_combine"

	// PromptQuiz writes multiple-choice questions.
	// The template expects %d (question count) then %s (content).
	PromptQuiz = "quiz"

	// PromptTranslate asks an LLM to translate.
	// The template expects %s (target language name) then %s (text).
	PromptTranslate = "translate"
)
