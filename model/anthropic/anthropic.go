// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/model"
)

// Options configure the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic model using the official client.
func New(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   800,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.APIKey == "" {
		return nil, core.NewConfigError("ANTHROPIC_API_KEY")
	}

	client := anthropic.NewClient(option.WithAPIKey(opts.APIKey))

	return &Model{client: &client, opts: opts}, nil
}

// NewFromClient creates a new Anthropic model from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   800,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model for the non-streaming message path.
func (m *Model) Generate(ctx context.Context, req model.Request) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:       m.modelName(req.Model),
		Messages:    buildMessages(req.Messages),
		MaxTokens:   m.maxTokens(req),
		Temperature: anthropic.Float(m.temperature(req)),
	}
	if system := extractSystem(req.Messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return "", wrapError(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic: empty completion")
	}
	return sb.String(), nil
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic"}
}

func (m *Model) modelName(override string) anthropic.Model {
	if override != "" {
		return anthropic.Model(override)
	}
	return m.opts.Model
}

func (m *Model) temperature(req model.Request) float64 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return m.opts.Temperature
}

func (m *Model) maxTokens(req model.Request) int64 {
	if req.MaxTokens > 0 {
		return int64(req.MaxTokens)
	}
	return m.opts.MaxTokens
}

// buildMessages converts normalized messages into Anthropic message params.
// System messages are handled separately via the System field.
func buildMessages(msgs []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case "system":
			continue
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}

// extractSystem concatenates system messages into a single system prompt.
func extractSystem(msgs []model.Message) string {
	var parts []string
	for _, msg := range msgs {
		if msg.Role == "system" && msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &model.StatusError{Status: apiErr.StatusCode, Msg: apiErr.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("anthropic api error: %w", err)
}
