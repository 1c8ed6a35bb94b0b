// Package command implements the operator command bus: small text commands
// ("cache stats", "queue size") used for inspecting a running bot from an
// admin channel.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lfmotta/cargobot/cache"
	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/logging"
	"github.com/lfmotta/cargobot/session"
)

// Handler executes one command. args holds the tokens after the command
// name.
type Handler func(ctx context.Context, args []string) (string, error)

// Options configure a Bus.
type Options struct {
	Logger logging.Logger
}

// Bus dispatches operator commands by their first token.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	help     map[string]string
	logger   logging.Logger
}

// New creates an empty Bus.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Bus{
		handlers: make(map[string]Handler),
		help:     make(map[string]string),
		logger:   core.EnsureLogger(opts.Logger),
	}
}

// Register adds a command. Re-registering a name replaces the handler.
func (b *Bus) Register(name, description string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = h
	b.help[name] = description
}

// Execute parses and runs one command line. Unknown commands and empty
// input return the help text.
func (b *Bus) Execute(ctx context.Context, line string) string {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return b.helpText()
	}

	b.mu.RLock()
	h, ok := b.handlers[fields[0]]
	b.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("comando desconhecido: %s\n\n%s", fields[0], b.helpText())
	}

	out, err := h(ctx, fields[1:])
	if err != nil {
		b.logger.Warn("command failed", "command", fields[0], "error", err)
		return fmt.Sprintf("erro: %v", err)
	}
	return out
}

func (b *Bus) helpText() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.help))
	for name := range b.help {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("comandos disponíveis:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "  %s - %s\n", name, b.help[name])
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RegisterCache adds the "cache" command (stats, clear).
func RegisterCache(b *Bus, c *cache.Cache) {
	b.Register("cache", "cache stats | cache clear", func(ctx context.Context, args []string) (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("uso: cache stats | cache clear")
		}
		switch args[0] {
		case "stats":
			raw, err := json.MarshalIndent(c.Stats(), "", "  ")
			if err != nil {
				return "", err
			}
			return string(raw), nil
		case "clear":
			removed := c.Clear()
			return fmt.Sprintf("cache limpo: %d entradas removidas", removed), nil
		default:
			return "", fmt.Errorf("subcomando desconhecido: %s", args[0])
		}
	})
}

// Sizer exposes a pending-item count. The message queue implements it.
type Sizer interface {
	Size() int
}

// RegisterQueue adds the "queue" command (size).
func RegisterQueue(b *Bus, q Sizer) {
	b.Register("queue", "queue size", func(ctx context.Context, args []string) (string, error) {
		if len(args) == 0 || args[0] != "size" {
			return "", fmt.Errorf("uso: queue size")
		}
		return fmt.Sprintf("mensagens pendentes: %d", q.Size()), nil
	})
}

// RegisterSessions adds the "sessions" command reporting active dialogue
// sessions per flow.
func RegisterSessions(b *Bus, s *session.InMemoryStore) {
	b.Register("sessions", "sessões ativas por fluxo", func(ctx context.Context, args []string) (string, error) {
		counts := s.FlowCounts()

		flows := make([]string, 0, len(counts))
		for flow := range counts {
			flows = append(flows, string(flow))
		}
		sort.Strings(flows)

		var sb strings.Builder
		fmt.Fprintf(&sb, "sessões ativas: %d\n", s.Len())
		for _, flow := range flows {
			name := flow
			if name == "" {
				name = "idle"
			}
			fmt.Fprintf(&sb, "  %s: %d\n", name, counts[session.Flow(flow)])
		}
		return strings.TrimRight(sb.String(), "\n"), nil
	})
}
