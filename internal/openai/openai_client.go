package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"slackdigest/internal/commontypes"
)

const (
	completionsOp = "completions"

	// DefaultModel is a completion-capable model; chat-only models are
	// rejected by the completions endpoint.
	DefaultModel = goopenai.GPT3Dot5TurboInstruct

	// DefaultMaxTokens caps the generated summary length.
	DefaultMaxTokens = 1024

	promptHeader = "Generate a monthly summary based on these daily activities:\n"
)

// CompletionAPI is the subset of the OpenAI client used here. *goopenai.Client satisfies it.
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, request goopenai.CompletionRequest) (goopenai.CompletionResponse, error)
}

// NewClient builds an OpenAI client authenticated with apiKey. baseURL
// overrides the API base (e.g. "https://proxy.example.com/v1") when set.
func NewClient(apiKey, baseURL string) *goopenai.Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return goopenai.NewClientWithConfig(cfg)
}

// Summarizer asks a text-completion model for a monthly summary of the
// self-user's messages.
type Summarizer struct {
	client    CompletionAPI
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewSummarizer constructs a Summarizer. Empty model and non-positive
// maxTokens fall back to the defaults.
func NewSummarizer(client CompletionAPI, model string, maxTokens int, logger *zap.Logger) *Summarizer {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{client: client, model: model, maxTokens: maxTokens, logger: logger}
}

// Summarize sends the prompt built from grouped and returns the first
// completion choice's text.
func (s *Summarizer) Summarize(ctx context.Context, grouped *commontypes.MessagesByDate) (string, error) {
	prompt := BuildPrompt(grouped)
	s.logger.Debug("Generated OpenAI prompt",
		zap.Int("prompt_length_chars", len(prompt)),
		zap.Int("dates", len(grouped.Dates())))

	s.logger.Info("Sending request to OpenAI", zap.String("model", s.model), zap.Int("max_tokens", s.maxTokens))
	resp, err := s.client.CreateCompletion(ctx, goopenai.CompletionRequest{
		Model:     s.model,
		Prompt:    prompt,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", &commontypes.FetchError{Op: completionsOp, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &commontypes.FetchError{Op: completionsOp, Message: "openai returned no choices"}
	}
	s.logger.Info("Summary generated successfully", zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Text, nil
}

// BuildPrompt lists each date's self-authored messages, unprefixed, under a
// bold date heading. Dates without self messages are left out.
func BuildPrompt(grouped *commontypes.MessagesByDate) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	for _, date := range grouped.Dates() {
		var mine []string
		for _, e := range grouped.Entries(date) {
			if e.Self {
				mine = append(mine, e.Original)
			}
		}
		if len(mine) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("**%s**:\n- %s\n", date, strings.Join(mine, "\n- ")))
	}
	return sb.String()
}
