package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lfmotta/cargobot/cache"
	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/format"
	"github.com/lfmotta/cargobot/logging"
	"github.com/lfmotta/cargobot/model"
	"github.com/lfmotta/cargobot/retry"
)

const (
	// DefaultHistoryLimit bounds how much history is loaded per message.
	DefaultHistoryLimit = 50
	// DefaultModelHistoryLimit bounds how many turns go to the model
	// verbatim; older turns are condensed into a summary block.
	DefaultModelHistoryLimit = 10

	// summaryMaxLen caps the condensed older-history block.
	summaryMaxLen = 800

	persistTimeout = 5 * time.Second
)

const defaultSystemPrompt = `Você é o assistente virtual de uma transportadora brasileira. Atenda os clientes com cordialidade e objetividade, sempre em português. Você ajuda com dúvidas sobre rastreamento de mercadorias, cotações de frete, agendamento de coletas, vagas de emprego e cadastro de fornecedores. Quando não souber uma informação, oriente o cliente a falar com um atendente. Nunca invente prazos ou valores.`

const (
	fallbackRateLimited = "🤖 Desculpe, estou com muitas solicitações no momento. Tente novamente em alguns minutos, por favor."
	fallbackServerError = "🤖 Estou com problemas técnicos temporários. Tente novamente em alguns instantes."
	fallbackGeneric     = "🤖 Não consegui processar sua mensagem no momento. Tente reformular ou aguarde um pouco."
)

// FlowRouter is the dialogue-flow boundary. Process returns handled=false
// when the message should fall through to the model.
type FlowRouter interface {
	Process(ctx context.Context, userKey string, customerID core.CustomerID, text string) (string, bool)
}

// Options configure a Pipeline.
type Options struct {
	// Flows intercepts messages before the model. Optional.
	Flows FlowRouter
	// Cache deduplicates identical model calls. Optional; no cache means
	// every message hits the model.
	Cache *cache.Cache
	// Retry governs the model call. Defaults to retry.DefaultPolicy.
	Retry *retry.Policy
	// SystemPrompt overrides the built-in assistant instructions.
	SystemPrompt string
	// ModelName, Temperature and MaxTokens override the gateway defaults.
	ModelName   string
	Temperature float64
	MaxTokens   int
	// HistoryLimit bounds history loaded from the store per message.
	HistoryLimit int
	// ModelHistoryLimit bounds verbatim turns sent to the model.
	ModelHistoryLimit int
	Logger            logging.Logger
}

// Pipeline is the end-to-end handler for one inbound message.
type Pipeline struct {
	customers core.CustomerStore
	gateway   model.Model
	flows     FlowRouter
	cache     *cache.Cache
	policy    retry.Policy
	opts      Options
	logger    logging.Logger

	persistWG sync.WaitGroup
}

// New creates a Pipeline around a customer store and a model gateway.
func New(customers core.CustomerStore, gateway model.Model, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		SystemPrompt:      defaultSystemPrompt,
		HistoryLimit:      DefaultHistoryLimit,
		ModelHistoryLimit: DefaultModelHistoryLimit,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.ModelHistoryLimit <= 0 {
		opts.ModelHistoryLimit = DefaultModelHistoryLimit
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}

	policy := retry.DefaultPolicy()
	if opts.Retry != nil {
		policy = *opts.Retry
	}

	return &Pipeline{
		customers: customers,
		gateway:   gateway,
		flows:     opts.Flows,
		cache:     opts.Cache,
		policy:    policy,
		opts:      opts,
		logger:    core.EnsureLogger(opts.Logger),
	}
}

// Run processes one inbound message and returns the outbound reply.
func (p *Pipeline) Run(ctx context.Context, userKey, text string) (string, error) {
	customerID, err := p.customers.GetOrCreateCustomer(ctx, userKey)
	if err != nil {
		return "", fmt.Errorf("resolve customer: %w", err)
	}

	history, err := p.customers.GetRecentHistory(ctx, customerID, p.opts.HistoryLimit)
	if err != nil {
		// A history miss degrades the model context but never blocks the
		// reply.
		p.logger.Warn("loading history failed", "customerID", customerID, "error", err)
		history = nil
	}

	if p.flows != nil {
		if reply, handled := p.flows.Process(ctx, userKey, customerID, text); handled {
			p.persistAsync(customerID, text, reply)
			return reply, nil
		}
	}

	reply := format.ToChat(p.respond(ctx, text, history))
	p.persistAsync(customerID, text, reply)
	return reply, nil
}

// Close waits for in-flight history writes to finish.
func (p *Pipeline) Close() {
	p.persistWG.Wait()
}

// respond produces the model answer for a free-conversation message,
// consulting the cache first and degrading to a category fallback when all
// attempts fail.
func (p *Pipeline) respond(ctx context.Context, text string, history []core.HistoryEntry) string {
	key := cache.Key(text, len(history))
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			p.logger.Debug("reply served from cache", "historyLen", len(history))
			return cached
		}
	}

	start := time.Now()
	reply, err := retry.Do(ctx, p.policy, func(ctx context.Context, attempt int) (string, error) {
		return p.gateway.Generate(ctx, model.Request{
			Messages:    p.buildMessages(text, history),
			Model:       p.opts.ModelName,
			Temperature: p.opts.Temperature,
			MaxTokens:   p.opts.MaxTokens,
		})
	})
	if err != nil {
		p.logger.Error("all model attempts failed", "duration", time.Since(start), "error", err)
		return fallbackReply(err)
	}

	p.logger.Debug("model reply generated", "duration", time.Since(start))
	if p.cache != nil {
		p.cache.Set(key, reply)
	}
	return reply
}

// buildMessages assembles the provider input: system instructions, a
// condensed block for turns beyond the verbatim window, the recent turns
// and the current message.
func (p *Pipeline) buildMessages(text string, history []core.HistoryEntry) []model.Message {
	limit := p.opts.ModelHistoryLimit
	recent := history
	var older []core.HistoryEntry
	if len(history) > limit {
		older = history[:len(history)-limit]
		recent = history[len(history)-limit:]
	}

	msgs := make([]model.Message, 0, len(recent)+3)
	msgs = append(msgs, model.Message{Role: core.RoleSystem, Content: p.opts.SystemPrompt})
	if summary := summarizeHistory(older); summary != "" {
		msgs = append(msgs, model.Message{Role: core.RoleSystem, Content: summary})
	}
	for _, entry := range recent {
		if entry.Text == "" {
			continue
		}
		msgs = append(msgs, model.Message{Role: entry.Role, Content: entry.Text})
	}
	msgs = append(msgs, model.Message{Role: core.RoleUser, Content: text})
	return msgs
}

// summarizeHistory condenses older turns into a single block without any
// extra model call: one line per turn, whitespace collapsed, tail-truncated.
func summarizeHistory(entries []core.HistoryEntry) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Text == "" {
			continue
		}
		tag := "A"
		if entry.Role == core.RoleUser {
			tag = "U"
		}
		parts = append(parts, tag+": "+entry.Text)
	}
	joined := strings.Join(parts, "\n")
	joined = strings.Join(strings.Fields(joined), " ")
	if len(joined) > summaryMaxLen {
		joined = joined[len(joined)-summaryMaxLen:]
		for len(joined) > 0 && !utf8.RuneStart(joined[0]) {
			joined = joined[1:]
		}
	}
	if joined == "" {
		return ""
	}
	return "Contexto resumido (anteriores): " + joined
}

// fallbackReply picks the user-facing message for an exhausted model call.
func fallbackReply(err error) string {
	switch {
	case retry.IsRateLimit(err):
		return fallbackRateLimited
	case retry.IsServer(err):
		return fallbackServerError
	default:
		return fallbackGeneric
	}
}

// persistAsync records the turn without blocking the reply. Writes are best
// effort; failures only log.
func (p *Pipeline) persistAsync(customerID core.CustomerID, userText, reply string) {
	p.persistWG.Add(1)
	go func() {
		defer p.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := p.customers.AppendHistory(ctx, customerID, core.RoleUser, userText); err != nil {
			p.logger.Warn("persisting user turn failed", "customerID", customerID, "error", err)
			return
		}
		if reply == "" {
			return
		}
		if err := p.customers.AppendHistory(ctx, customerID, core.RoleAssistant, reply); err != nil {
			p.logger.Warn("persisting assistant turn failed", "customerID", customerID, "error", err)
		}
	}()
}
