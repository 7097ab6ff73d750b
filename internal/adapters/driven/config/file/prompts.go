package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves LLM prompt templates from user-editable files.
// The directory is populated with the built-in templates on first Load;
// a missing or unusable file falls back to the built-in template.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptChat: "Context: %s\nQuestion: %s\nAnswer clearly and concisely:",

	driven.PromptSummarisePart: "Summarize clearly for a student:\n\n%s",

	driven.PromptSummariseCombine: "Summarize the following concisely:\n\n%s",

	driven.PromptQuiz: "Generate %d multiple-choice questions (with 4 options each) from the following text:\n\n%s\nProvide correct answers.",

	driven.PromptTranslate: `Translate the following text into %s.
Keep the meaning, names and numbers intact. Return ONLY the translation.

%s`,
}

// NewPromptStore creates a prompt store rooted at promptDir, or at
// <HomeDir>/prompts when empty. No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	builtin, hasBuiltin := defaultPrompts[name]
	if s.initErr != nil {
		if hasBuiltin {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	switch {
	case err != nil && !hasBuiltin:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		prompt = builtin
	case hasBuiltin && verbs(prompt) != verbs(builtin):
		// Changed placeholders would garble the formatted prompt.
		prompt = builtin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise writes the built-in templates that are not on disk yet.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// verbs returns the sequence of fmt verbs in a template, ignoring %%.
func verbs(tmpl string) string {
	var b strings.Builder
	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] != '%' {
			continue
		}
		i++
		if tmpl[i] != '%' {
			b.WriteByte(tmpl[i])
		}
	}
	return b.String()
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Athena Prompts

These templates drive the LLM features of athena. Edit a file to change the
wording; changes apply to the next command.

## Files

- ` + "`chat.txt`" + ` - Answers a question from retrieved context (%s context, %s question)
- ` + "`summarise_part.txt`" + ` - Summarises one part of a long context (%s)
- ` + "`summarise_combine.txt`" + ` - Condenses the partial summaries (%s)
- ` + "`quiz.txt`" + ` - Writes multiple-choice questions (%d count, %s text)
- ` + "`translate.txt`" + ` - Translates text when the llm translator is selected (%s language, %s text)

## Placeholders

Keep the placeholders in the same order. A file whose placeholders differ from
the built-in template is ignored and the built-in template is used instead.
`
	return os.WriteFile(path, []byte(content), 0600)
}
