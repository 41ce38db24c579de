// Package prompts provides the default LLM prompt templates and the
// builders that turn a request's context into a concrete prompt.
// Defaults are stored as JSON and embedded at compile time; the prompt
// store may override them per document type.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed templates.json
var promptFiles embed.FS

var (
	defaultsOnce sync.Once
	defaults     map[string]string
	defaultsErr  error
)

// Default returns the embedded default template for a key
// ("resumeGeneration", "coverLetterGeneration", "revision", "trim_preamble").
func Default(key string) (string, error) {
	defaultsOnce.Do(func() {
		data, err := promptFiles.ReadFile("templates.json")
		if err != nil {
			defaultsErr = fmt.Errorf("failed to read embedded templates: %w", err)
			return
		}
		if err := json.Unmarshal(data, &defaults); err != nil {
			defaultsErr = fmt.Errorf("failed to parse embedded templates: %w", err)
		}
	})
	if defaultsErr != nil {
		return "", defaultsErr
	}
	tpl, ok := defaults[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in embedded templates", key)
	}
	return tpl, nil
}

// MustDefault returns an embedded template, panicking if missing. Use only
// for templates required at initialization time.
func MustDefault(key string) string {
	tpl, err := Default(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tpl
}

// Format replaces named placeholders in the form {{.Key}} with values from
// data. This is a simple template system for prompt customization.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
