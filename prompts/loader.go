package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PromptKey is a type for identifying specific prompts.
type PromptKey string

const (
	// KeySuggestTemplates is the key for the enrichment prompt.
	KeySuggestTemplates PromptKey = "SuggestTemplates"
)

// promptConfig defines the default content and filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

// promptRegistry maps a PromptKey to its configuration.
var promptRegistry = map[PromptKey]promptConfig{
	KeySuggestTemplates: {
		defaultContent: SuggestTemplatesSystemPrompt,
		filename:       "suggest_templates_prompt.txt",
	},
}

// GetPrompt searches for a user-provided prompt file in the project's
// templates directory. If found, it returns the content of that file.
// Otherwise, it returns the hardcoded default prompt content.
func GetPrompt(key PromptKey, templatesDir string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	// If templatesDir is not configured or is empty, always use default.
	if strings.TrimSpace(templatesDir) == "" {
		return config.defaultContent, nil
	}

	customPromptPath := filepath.Join(templatesDir, config.filename)
	content, err := os.ReadFile(customPromptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config.defaultContent, nil
		}
		return "", fmt.Errorf("read custom prompt %s: %w", customPromptPath, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return config.defaultContent, nil
	}
	return string(content), nil
}
