// Package compose drafts outreach emails through an OpenAI-compatible
// chat-completions backend (Gemini's compat endpoint by default).
package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/config"
	"github.com/pysugar/outreach-mailer/internal/util"
)

const defaultTimeout = 120 * time.Second

// Request carries the caller-supplied context for one draft.
type Request struct {
	ProjectType     string `json:"project_type"`
	CustomerMessage string `json:"customer_message"`
	TargetEmail     string `json:"email"`
}

// Draft is the structured output the model must produce.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generator calls the configured chat-completions backend.
type Generator struct {
	apiKey       string
	baseURL      string
	model        string
	instructions string
	httpClient   *http.Client
}

// NewGenerator wires the generator from config and the persona prompt.
func NewGenerator(cfg *config.Config, prompt *config.PromptConfig) *Generator {
	timeout := cfg.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{
		apiKey:       cfg.GenAPIKey,
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.GenBaseURL), "/"),
		model:        cfg.GenModel,
		instructions: prompt.Instructions,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a backend API key is configured.
func (g *Generator) Enabled() bool {
	return g != nil && g.apiKey != "" && g.baseURL != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces a subject/body draft. Failures are surfaced as
// generate_failed and never retried here.
func (g *Generator) Generate(ctx context.Context, req Request) (*Draft, error) {
	if !g.Enabled() {
		return nil, apperr.E(apperr.KindGenerateFailed, "generation backend is not configured", nil)
	}

	prompt := fmt.Sprintf(
		"Project type: %s\nCustomer message: %s\nTarget email: %s\n\nGenerate a personalized outreach subject and email body as per your instructions.",
		req.ProjectType, req.CustomerMessage, req.TargetEmail,
	)

	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: g.instructions},
			{Role: "user", Content: prompt},
		},
	}
	payload.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.E(apperr.KindGenerateFailed, "encoding generation request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.E(apperr.KindGenerateFailed, "building generation request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.E(apperr.KindGenerateFailed, "generation call failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.E(apperr.KindGenerateFailed, "reading generation response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.E(apperr.KindGenerateFailed,
			fmt.Sprintf("backend returned %d: %s", resp.StatusCode, util.TruncateBytes(respBody)), nil)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, apperr.E(apperr.KindGenerateFailed, "parsing generation response", err)
	}
	if len(chat.Choices) == 0 {
		return nil, apperr.E(apperr.KindGenerateFailed, "backend returned no choices", nil)
	}

	var draft Draft
	content := stripCodeFence(chat.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, apperr.E(apperr.KindGenerateFailed,
			"model output is not the expected JSON: "+util.TruncateLog(content, 256), err)
	}
	if draft.Subject == "" && draft.Body == "" {
		return nil, apperr.E(apperr.KindGenerateFailed, "model produced an empty draft", nil)
	}
	return &draft, nil
}

// stripCodeFence unwraps ```json fenced output some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
