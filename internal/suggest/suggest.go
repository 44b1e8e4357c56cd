// Package suggest produces machine translation suggestions for terminology
// labels through an OpenAI chat model, driven by a YAML prompt spec.
package suggest

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

// PromptSpec is the YAML prompt definition. The user template supports
// {{label}}, {{source_language}}, {{source_term}} and {{target_language}}
// placeholders.
type PromptSpec struct {
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Service turns suggestion requests into chat completions.
type Service struct {
	client *openai.Client
	model  string
	spec   PromptSpec
}

// Load reads the prompt spec from path and builds a Service.
func Load(path string, client *openai.Client, model string) (*Service, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt spec: %w", err)
	}
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("parse prompt spec %s: %w", path, err)
	}
	if strings.TrimSpace(spec.User) == "" {
		return nil, fmt.Errorf("prompt spec %s has no user template", path)
	}
	return &Service{client: client, model: model, spec: spec}, nil
}

// Model returns the configured model name.
func (s *Service) Model() string { return s.model }

// Request names the term to translate and the language pair.
type Request struct {
	Label          string
	SourceLanguage string
	SourceTerm     string
	TargetLanguage string
}

// Suggest returns a suggested term in the target language.
func (s *Service) Suggest(ctx context.Context, req Request) (string, error) {
	user := s.spec.User
	for placeholder, value := range map[string]string{
		"{{label}}":           req.Label,
		"{{source_language}}": req.SourceLanguage,
		"{{source_term}}":     req.SourceTerm,
		"{{target_language}}": req.TargetLanguage,
	} {
		user = strings.ReplaceAll(user, placeholder, value)
	}

	var messages []openai.ChatCompletionMessage
	if s.spec.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: s.spec.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: s.spec.Temperature,
		MaxTokens:   s.spec.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	suggestion := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`)
	if suggestion == "" {
		return "", fmt.Errorf("completion returned an empty suggestion")
	}
	return suggestion, nil
}
