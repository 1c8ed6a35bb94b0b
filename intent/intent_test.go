package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmotta/cargobot/model"
)

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		taxID string
		docNo string
	}{
		{"formatted tax id", "CNPJ 12.345.678/0001-95 por favor", "12345678000195", ""},
		{"bare tax id", "12345678000195", "12345678000195", ""},
		{"tax id and document", "cnpj 12345678000195 nf 123456", "12345678000195", "123456"},
		{"document only", "nota fiscal 98765", "", "98765"},
		{"short number ignored", "pedido 123", "", ""},
		{"no numbers", "onde está minha encomenda?", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ExtractEntities(tt.text)
			assert.Equal(t, tt.taxID, e.TaxID)
			assert.Equal(t, tt.docNo, e.DocumentNo)
		})
	}
}

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		text   string
		intent Intent
	}{
		{"quero rastrear minha mercadoria", Tracking},
		{"vocês têm vagas abertas?", Recruiting},
		{"quero cadastrar minha empresa como fornecedor", Supplier},
		{"preciso de uma cotação de frete", Quote},
		{"quero agendar uma coleta", Pickup},
		{"quero falar com um atendente", Human},
		{"bom dia", None},
		{"12345678000195", Tracking},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := ClassifyKeywords(tt.text)
			assert.Equal(t, tt.intent, res.Intent)
		})
	}
}

func TestClassifyKeywordsActions(t *testing.T) {
	res := ClassifyKeywords("quero enviar meu currículo")
	assert.Equal(t, Recruiting, res.Intent)
	assert.Equal(t, ActionSendResume, res.RecruitingAction)

	res = ClassifyKeywords("quais vagas estão abertas?")
	assert.Equal(t, Recruiting, res.Intent)
	assert.Equal(t, ActionListOpenings, res.RecruitingAction)

	res = ClassifyKeywords("quero fazer o cadastro de fornecedor")
	assert.Equal(t, Supplier, res.Intent)
	assert.Equal(t, ActionRegister, res.SupplierAction)
}

func TestClassifierUsesModelReply(t *testing.T) {
	gateway := model.NewMockModel("mock")
	gateway.AddResponse("bom dia, tudo bem?", `{"intent":"none","entities":{"tax_id":null,"document_no":null}}`)

	c := NewClassifier(gateway)
	res := c.Classify(context.Background(), "bom dia, tudo bem?")
	assert.Equal(t, None, res.Intent)
	assert.Equal(t, 1, gateway.Calls())
}

func TestClassifierGuardRailOverridesModel(t *testing.T) {
	gateway := model.NewMockModel("mock")
	gateway.AddResponse("quero enviar meu currículo", `{"intent":"tracking","entities":{"tax_id":null,"document_no":null}}`)

	c := NewClassifier(gateway)
	res := c.Classify(context.Background(), "quero enviar meu currículo")
	assert.Equal(t, Recruiting, res.Intent)
	assert.Equal(t, ActionSendResume, res.RecruitingAction)
}

func TestClassifierSalvagesFencedJSON(t *testing.T) {
	gateway := model.NewMockModel("mock")
	gateway.AddResponse("status do pedido", "```json\n{\"intent\":\"tracking\",\"entities\":{\"tax_id\":null,\"document_no\":null}}\n```")

	c := NewClassifier(gateway)
	res := c.Classify(context.Background(), "status do pedido")
	assert.Equal(t, Tracking, res.Intent)
}

func TestClassifierFallsBackOnModelError(t *testing.T) {
	gateway := model.NewMockModel("mock")
	gateway.FailWith(model.NewStatusError(500, "boom"))

	c := NewClassifier(gateway)
	res := c.Classify(context.Background(), "preciso de uma cotação")
	assert.Equal(t, Quote, res.Intent)
}

func TestClassifierBackfillsEntities(t *testing.T) {
	gateway := model.NewMockModel("mock")
	gateway.AddResponse("status cnpj 12.345.678/0001-95 nf 445566",
		`{"intent":"tracking","entities":{"tax_id":"123","document_no":null}}`)

	c := NewClassifier(gateway)
	res := c.Classify(context.Background(), "status cnpj 12.345.678/0001-95 nf 445566")
	require.Equal(t, Tracking, res.Intent)
	assert.Equal(t, "12345678000195", res.Entities.TaxID)
	assert.Equal(t, "445566", res.Entities.DocumentNo)
}

func TestClassifierWithoutGateway(t *testing.T) {
	c := NewClassifier(nil)
	res := c.Classify(context.Background(), "quero agendar uma coleta")
	assert.Equal(t, Pickup, res.Intent)
}
