package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PromptConfig carries the generation persona. The original deployments
// hardcoded this per environment; here it is a configuration input.
type PromptConfig struct {
	Instructions string `yaml:"instructions"`
}

const defaultInstructions = `You are 'Outreach Assistant', an assistant that writes personalized, human-like outreach emails.
Given a project type, a customer message and a target email address, write a short outreach email.
Respond strictly as JSON: {"subject": "<email subject>", "body": "<email body>"}`

// LoadPrompt reads the prompt file, or returns the built-in persona when no
// path is configured.
func LoadPrompt(path string) (*PromptConfig, error) {
	if path == "" {
		return &PromptConfig{Instructions: defaultInstructions}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt config: %w", err)
	}

	var pc PromptConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("parsing prompt config: %w", err)
	}
	if pc.Instructions == "" {
		pc.Instructions = defaultInstructions
	}
	return &pc, nil
}
