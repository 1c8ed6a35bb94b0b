package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/intent"
	"github.com/lfmotta/cargobot/session"
)

const (
	stepSupplierCompany   = "company_name"
	stepSupplierTaxID     = "tax_id"
	stepSupplierCategory  = "category"
	stepSupplierPortfolio = "portfolio_url"
	stepSupplierSite      = "site_url"
	stepSupplierCities    = "cities"
	stepSupplierContact   = "contact"
	stepSupplierConfirm   = "confirm"

	keyCompany   = "company_name"
	keyCategory  = "category"
	keyPortfolio = "portfolio_url"
	keySite      = "site_url"
	keyCities    = "cities"
	keyContact   = "contact"
)

const supplierProtocolDigits = 8

const supplierIntro = `🏭 *CADASTRO DE FORNECEDOR*

Que bom que você quer trabalhar conosco! Vou coletar alguns dados da sua empresa.

Para começar, informe a *razão social*:`

const supplierAskTaxID = `✅ Razão social registrada.

Agora, informe o *CNPJ* da empresa (somente números):

💡 _Exemplo: 12345678000195_`

const supplierInvalidTaxID = `❌ *CNPJ inválido*

O CNPJ deve ter exatamente 14 números.

Por favor, informe o CNPJ correto (somente números):`

const supplierAskCategory = `✅ CNPJ registrado.

Qual a *categoria de produtos ou serviços* que sua empresa fornece?

💡 _Exemplo: Materiais de embalagem_`

const supplierAskPortfolio = `✅ Categoria registrada.

Envie o *link do portfólio* da empresa (PDF ou página):

💡 _Digite "pular" se não tiver portfólio_`

const supplierAskSite = `✅ Anotado.

Agora envie o *site* da empresa:

💡 _Digite "pular" se não tiver site_`

const supplierAskCities = `✅ Anotado.

Quais *cidades* sua empresa atende?

💡 _Exemplo: São Paulo, Guarulhos, Osasco_`

const supplierAskContact = `✅ Cidades registradas.

Para finalizar, informe um *contato* (nome, telefone e e-mail):

💡 _Exemplo: Maria Silva - (11) 90000-0000 - maria@acme.com_`

const supplierConfirmRetry = `⚠️ *Não entendi sua resposta*

✅ Digite "SIM" para confirmar o cadastro
✏️ Digite "EDITAR" para recomeçar
❌ Digite "CANCELAR" para desistir`

const supplierCancelled = `❌ *Cadastro cancelado*

Nenhum dado foi salvo. Caso mude de ideia, digite "fornecedor" novamente.`

var (
	supplierConfirmYes    = map[string]bool{"sim": true, "confirmar": true, "confirm": true}
	supplierConfirmEdit   = map[string]bool{"editar": true, "edit": true, "reiniciar": true}
	supplierConfirmCancel = map[string]bool{"cancelar": true, "cancel": true, "nao": true, "não": true}
)

func isSkip(lower string) bool {
	return lower == "skip" || lower == "pular"
}

// startSupplier opens the supplier registration flow.
func (e *Engine) startSupplier(st *session.State) string {
	st.Begin(session.FlowSupplier, stepSupplierCompany)
	e.logger.Info("supplier flow started", "user", st.UserKey)
	return supplierIntro
}

func (e *Engine) handleSupplier(ctx context.Context, st *session.State, customerID core.CustomerID, text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch st.Step() {
	case stepSupplierCompany:
		st.Set(keyCompany, trimmed)
		st.Advance(stepSupplierTaxID)
		return supplierAskTaxID, true

	case stepSupplierTaxID:
		taxID := intent.OnlyDigits(trimmed)
		if !validTaxID(taxID) {
			return supplierInvalidTaxID, true
		}
		st.Set(keyTaxID, taxID)
		st.Advance(stepSupplierCategory)
		return supplierAskCategory, true

	case stepSupplierCategory:
		st.Set(keyCategory, trimmed)
		st.Advance(stepSupplierPortfolio)
		return supplierAskPortfolio, true

	case stepSupplierPortfolio:
		if !isSkip(lower) {
			st.Set(keyPortfolio, trimmed)
		}
		st.Advance(stepSupplierSite)
		return supplierAskSite, true

	case stepSupplierSite:
		if !isSkip(lower) {
			st.Set(keySite, trimmed)
		}
		st.Advance(stepSupplierCities)
		return supplierAskCities, true

	case stepSupplierCities:
		st.Set(keyCities, trimmed)
		st.Advance(stepSupplierContact)
		return supplierAskContact, true

	case stepSupplierContact:
		st.Set(keyContact, trimmed)
		st.Advance(stepSupplierConfirm)
		return supplierSummary(st), true

	case stepSupplierConfirm:
		return e.handleSupplierConfirm(ctx, st, customerID, lower), true

	default:
		e.sessions.Clear(st.UserKey)
		return "", false
	}
}

func (e *Engine) handleSupplierConfirm(ctx context.Context, st *session.State, customerID core.CustomerID, lower string) string {
	switch {
	case supplierConfirmYes[lower]:
		return e.saveSupplier(ctx, st, customerID)
	case supplierConfirmEdit[lower]:
		st.Begin(session.FlowSupplier, stepSupplierCompany)
		return supplierIntro
	case supplierConfirmCancel[lower]:
		e.sessions.Clear(st.UserKey)
		return supplierCancelled
	default:
		return supplierConfirmRetry
	}
}

// supplierSummary renders the collected data for the confirmation step.
func supplierSummary(st *session.State) string {
	get := func(key string) string {
		v, ok := st.Get(key)
		if !ok || v == "" {
			return "não informado"
		}
		return v
	}

	return fmt.Sprintf(`📋 *CONFIRME OS DADOS DO CADASTRO*

🏭 Razão social: %s
🆔 CNPJ: %s
📦 Categoria: %s
📎 Portfólio: %s
🌐 Site: %s
📍 Cidades atendidas: %s
👤 Contato: %s

✅ Digite "SIM" para confirmar
✏️ Digite "EDITAR" para recomeçar
❌ Digite "CANCELAR" para desistir`,
		get(keyCompany), get(keyTaxID), get(keyCategory), get(keyPortfolio),
		get(keySite), get(keyCities), get(keyContact))
}

func (e *Engine) saveSupplier(ctx context.Context, st *session.State, customerID core.CustomerID) string {
	get := func(key string) string {
		v, _ := st.Get(key)
		return v
	}
	record := core.SupplierRecord{
		Protocol:     core.NewProtocol("FOR", supplierProtocolDigits),
		CompanyName:  get(keyCompany),
		TaxID:        get(keyTaxID),
		Category:     get(keyCategory),
		PortfolioURL: get(keyPortfolio),
		SiteURL:      get(keySite),
		Cities:       get(keyCities),
		Contact:      get(keyContact),
	}
	e.sessions.Clear(st.UserKey)

	saved, err := e.suppliers.SaveSupplier(ctx, customerID, record)
	if err != nil {
		e.logger.Error("saving supplier failed", "protocol", record.Protocol, "error", err)
		return `❌ *Não foi possível concluir o cadastro*

Tivemos um problema ao salvar seus dados. Por favor, tente novamente em alguns instantes digitando "fornecedor".`
	}

	e.logger.Info("supplier registered", "protocol", saved.Protocol)
	return fmt.Sprintf(`✅ *CADASTRO RECEBIDO COM SUCESSO!*

📋 *Protocolo:* %s

Sua empresa foi registrada em nossa base de fornecedores. O setor de Compras entrará em contato caso haja interesse na sua categoria.

Guarde o protocolo para futuras consultas. Obrigado!`, saved.Protocol)
}
