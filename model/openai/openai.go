// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. It adapts cargobot's normalized message list into
// the SDK's message format and maps SDK failures onto model.StatusError so
// the retry executor can classify them.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI model adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI model using the official client. A missing API
// key is a deployment fault and is reported as a ConfigError.
func New(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
		Temperature: 0.7,
		MaxTokens:   800,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	} else {
		return nil, core.NewConfigError("OPENAI_API_KEY")
	}

	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}, nil
}

// NewFromClient creates a new OpenAI model from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
		Temperature: 0.7,
		MaxTokens:   800,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model for the non-streaming completion path.
func (m *Model) Generate(ctx context.Context, req model.Request) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               m.modelName(req.Model),
		Temperature:         openai.Float(m.temperature(req)),
		MaxCompletionTokens: openai.Int(m.maxTokens(req)),
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}

func (m *Model) modelName(override string) string {
	if override != "" {
		return override
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

// buildMessages converts normalized messages into OpenAI chat messages.
func buildMessages(msgs []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case "system":
			out = append(out, openai.SystemMessage(msg.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// wrapError maps SDK failures onto model.StatusError, preserving context
// cancellation errors untouched so deadline classification still works.
func wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &model.StatusError{Status: apiErr.StatusCode, Code: apiErr.Code, Msg: apiErr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("openai api error: %w", err)
}
