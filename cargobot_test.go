package cargobot

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/intent"
	"github.com/lfmotta/cargobot/model"
)

type stubTracking struct{}

func (stubTracking) Query(ctx context.Context, taxID, docNo string) (core.TrackingResult, error) {
	return core.TrackingResult{Success: true, Status: "Em trânsito", Location: "Curitiba/PR"}, nil
}

func TestBotEndToEnd(t *testing.T) {
	gateway := model.NewMockModel("mock")
	gateway.AddResponse("bom dia", "Bom dia! Como posso ajudar?")

	var mu sync.Mutex
	var replies []string

	bot := New(gateway, func(o *Options) {
		o.Tracking = stubTracking{}
		o.Classifier = intent.NewClassifier(nil)
		o.OnReply = func(sender, reply string) {
			mu.Lock()
			replies = append(replies, reply)
			mu.Unlock()
		}
	})

	require.NoError(t, bot.Start(context.Background()))

	const user = "+5541999990000"
	require.NoError(t, bot.Handle(user, "bom dia"))
	require.NoError(t, bot.Handle(user, "quero rastrear minha mercadoria"))
	require.NoError(t, bot.Handle(user, "12345678000195"))
	require.NoError(t, bot.Handle(user, "123456"))
	bot.Close()

	require.Len(t, replies, 4)
	assert.Equal(t, "Bom dia! Como posso ajudar?", replies[0])
	assert.Contains(t, replies[1], "RASTREAMENTO DE MERCADORIA")
	assert.Contains(t, replies[2], "Nota Fiscal")
	assert.Contains(t, replies[3], "Em trânsito")
	assert.Equal(t, 1, gateway.Calls())
}

func TestBotAdminCommands(t *testing.T) {
	bot := New(model.NewMockModel("mock"), func(o *Options) {
		o.Classifier = intent.NewClassifier(nil)
	})

	out := bot.Admin(context.Background(), "sessions")
	assert.Contains(t, out, "sessões ativas: 0")

	out = bot.Admin(context.Background(), "queue size")
	assert.Contains(t, out, "mensagens pendentes: 0")

	out = bot.Admin(context.Background(), "cache stats")
	assert.Contains(t, out, `"size": 0`)

	assert.Zero(t, bot.QueueSize())
	assert.Zero(t, bot.ActiveSessions())
	assert.Zero(t, bot.ClearCache())
	assert.Zero(t, bot.CacheStats().Size)
}

func TestBotHandleAfterClose(t *testing.T) {
	bot := New(model.NewMockModel("mock"), func(o *Options) {
		o.Classifier = intent.NewClassifier(nil)
	})
	require.NoError(t, bot.Start(context.Background()))
	bot.Close()

	assert.Error(t, bot.Handle("+5511", "oi"))
}
