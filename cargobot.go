// Package cargobot provides a high-level façade over the message pipeline
// and its services (sessions, flows, cache, queue & logging) enabling rapid
// construction of a conversational assistant for a logistics operation.
// Most applications interact with this package by:
//  1. Creating a Bot via New() (optionally overriding default in-memory services)
//  2. Calling Start() to attach the queue consumer and session sweeper
//  3. Feeding inbound messages through Handle() and delivering replies via OnReply
//
// All defaults are safe for local development and testing; production
// deployments typically supply the SQLite store, a real tracking service and
// a structured logger.
package cargobot

import (
	"context"
	"fmt"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/lfmotta/cargobot/cache"
	"github.com/lfmotta/cargobot/command"
	"github.com/lfmotta/cargobot/config"
	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/flow"
	"github.com/lfmotta/cargobot/intent"
	"github.com/lfmotta/cargobot/logging"
	"github.com/lfmotta/cargobot/model"
	"github.com/lfmotta/cargobot/model/anthropic"
	"github.com/lfmotta/cargobot/model/openai"
	"github.com/lfmotta/cargobot/pipeline"
	"github.com/lfmotta/cargobot/queue"
	"github.com/lfmotta/cargobot/retry"
	"github.com/lfmotta/cargobot/routing"
	"github.com/lfmotta/cargobot/session"
	"github.com/lfmotta/cargobot/store"
)

// Options configures the Bot instance.
type Options struct {
	// CustomerStore persists customers and history. Defaults to the shared
	// in-memory store.
	CustomerStore core.CustomerStore
	// Recruiting backs the recruiting flow. Defaults to the shared
	// in-memory store.
	Recruiting core.RecruitingStore
	// Suppliers backs the supplier registration flow. Defaults to the
	// shared in-memory store.
	Suppliers core.SupplierStore
	// Tracking performs shipment lookups. Nil disables the tracking flow.
	Tracking core.TrackingService
	// Branches resolves handover targets. Nil produces generic handover
	// messages.
	Branches core.BranchResolver
	// Classifier overrides the default intent classifier. By default the
	// bot classifies with the same model gateway it answers with.
	Classifier *intent.Classifier

	// OnReply delivers outbound replies. Required for Start.
	OnReply func(sender, reply string)

	// CacheTTL expires cached replies. Zero keeps them until cleared.
	CacheTTL time.Duration
	// SessionIdleTimeout and SessionSweepInterval govern dialogue expiry.
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	// Retry overrides the model-call retry policy.
	Retry *retry.Policy
	// SystemPrompt overrides the assistant instructions.
	SystemPrompt string
	// HistoryLimit and ModelHistoryLimit bound conversation context.
	HistoryLimit      int
	ModelHistoryLimit int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Bot is the high-level façade aggregating the queue, pipeline and services.
type Bot struct {
	opts     Options
	pipeline *pipeline.Pipeline
	queue    *queue.Queue
	sessions *session.InMemoryStore
	cache    *cache.Cache
	bus      *command.Bus
	logger   logging.Logger
}

// New creates a new Bot around a model gateway. Any unset service is
// initialized with an in-memory implementation.
func New(gateway model.Model, optFns ...func(o *Options)) *Bot {
	opts := Options{
		SessionIdleTimeout:   session.DefaultIdleTimeout,
		SessionSweepInterval: session.DefaultSweepInterval,
		Logger:               logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := core.EnsureLogger(opts.Logger)

	shared := store.NewInMemoryStore()
	if opts.CustomerStore == nil {
		opts.CustomerStore = shared
	}
	if opts.Recruiting == nil {
		opts.Recruiting = shared
	}
	if opts.Suppliers == nil {
		opts.Suppliers = shared
	}

	replyCache := cache.New(func(o *cache.Options) {
		o.TTL = opts.CacheTTL
	})

	sessions := session.NewInMemoryStore(func(o *session.Options) {
		o.IdleTimeout = opts.SessionIdleTimeout
		o.SweepInterval = opts.SessionSweepInterval
		o.Logger = logger
	})

	classifier := opts.Classifier
	if classifier == nil {
		classifier = intent.NewClassifier(gateway, func(o *intent.ClassifierOptions) {
			o.Logger = logger
		})
	}

	flows := flow.NewEngine(sessions, classifier, func(o *flow.Options) {
		o.Tracking = opts.Tracking
		o.Recruiting = opts.Recruiting
		o.Suppliers = opts.Suppliers
		o.Branches = opts.Branches
		o.Profiles = opts.CustomerStore
		o.Logger = logger
	})

	p := pipeline.New(opts.CustomerStore, gateway, func(o *pipeline.Options) {
		o.Flows = flows
		o.Cache = replyCache
		o.Retry = opts.Retry
		o.SystemPrompt = opts.SystemPrompt
		o.HistoryLimit = opts.HistoryLimit
		o.ModelHistoryLimit = opts.ModelHistoryLimit
		o.Logger = logger
	})

	q := queue.New(func(o *queue.Options) {
		o.Logger = logger
	})

	bus := command.New(func(o *command.Options) {
		o.Logger = logger
	})
	command.RegisterCache(bus, replyCache)
	command.RegisterQueue(bus, q)
	command.RegisterSessions(bus, sessions)

	return &Bot{
		opts:     opts,
		pipeline: p,
		queue:    q,
		sessions: sessions,
		cache:    replyCache,
		bus:      bus,
		logger:   logger,
	}
}

// NewFromConfig builds a production Bot from environment configuration: the
// configured provider gateway, the SQLite store and the branch list file.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Bot, error) {
	gateway, err := newGateway(cfg)
	if err != nil {
		return nil, err
	}

	db, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var branches core.BranchResolver
	if cfg.BranchesFile != "" {
		resolver, err := routing.NewResolverFromFile(cfg.BranchesFile)
		if err != nil {
			return nil, fmt.Errorf("load branches: %w", err)
		}
		branches = resolver
	}

	policy := retry.DefaultPolicy()
	policy.Retries = cfg.Retry.Retries
	policy.BaseDelay = cfg.Retry.BaseDelay
	policy.InitialTimeout = cfg.Retry.InitialTimeout
	policy.MaxTimeout = cfg.Retry.MaxTimeout

	return New(gateway, func(o *Options) {
		o.CustomerStore = db
		o.Recruiting = db
		o.Suppliers = db
		o.Branches = branches
		o.CacheTTL = cfg.CacheTTL
		o.SessionIdleTimeout = cfg.Session.IdleTimeout
		o.SessionSweepInterval = cfg.Session.SweepInterval
		o.Retry = &policy
		o.HistoryLimit = cfg.HistoryLimit
		o.ModelHistoryLimit = cfg.ModelHistoryLimit
		for _, fn := range optFns {
			fn(o)
		}
	}), nil
}

func newGateway(cfg *config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case config.ProviderAnthropic:
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
			o.Temperature = cfg.Model.Temperature
			o.MaxTokens = int64(cfg.Model.MaxTokens)
			o.APIKey = cfg.Model.APIKey
		})
	default:
		return openai.New(func(o *openai.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			o.Temperature = cfg.Model.Temperature
			o.MaxTokens = int64(cfg.Model.MaxTokens)
			o.APIKey = cfg.Model.APIKey
		})
	}
}

// Start attaches the queue consumer and the session sweeper. Both stop when
// ctx is cancelled; pending messages are still drained on Close.
func (b *Bot) Start(ctx context.Context) error {
	b.sessions.StartSweeper(ctx)
	return b.queue.Start(ctx, func(ctx context.Context, msg core.Message) error {
		reply, err := b.pipeline.Run(ctx, msg.Sender, msg.Body)
		if err != nil {
			return err
		}
		if b.opts.OnReply != nil && reply != "" {
			b.opts.OnReply(msg.Sender, reply)
		}
		return nil
	})
}

// Handle enqueues one inbound message.
func (b *Bot) Handle(sender, body string) error {
	return b.queue.Enqueue(core.NewMessage(sender, body))
}

// Admin executes an operator command line ("cache stats", "queue size",
// "sessions") and returns its output.
func (b *Bot) Admin(ctx context.Context, line string) string {
	return b.bus.Execute(ctx, line)
}

// CacheStats reports reply-cache usage.
func (b *Bot) CacheStats() cache.Stats {
	return b.cache.Stats()
}

// ClearCache empties the reply cache and returns how many entries were
// removed.
func (b *Bot) ClearCache() int {
	return b.cache.Clear()
}

// QueueSize returns the number of pending inbound messages.
func (b *Bot) QueueSize() int {
	return b.queue.Size()
}

// ActiveSessions returns how many users currently hold a dialogue session.
func (b *Bot) ActiveSessions() int {
	return b.sessions.Len()
}

// Close drains the queue and waits for pending history writes.
func (b *Bot) Close() {
	b.queue.Close()
	b.pipeline.Close()
}
