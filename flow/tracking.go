package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/intent"
	"github.com/lfmotta/cargobot/session"
)

const (
	stepTrackingTaxID = "tax_id"
	stepTrackingDocNo = "document_no"

	keyTaxID = "tax_id"
	keyDocNo = "document_no"
)

const trackingIntro = `📦 *RASTREAMENTO DE MERCADORIA*

Para consultar o status da sua mercadoria, preciso de algumas informações:

Por favor, informe o *CNPJ* (somente números, sem pontos ou traços):

💡 _Exemplo: 12345678000195_`

const trackingInvalidTaxID = `❌ *CNPJ inválido*

O CNPJ deve ter exatamente 14 números.

Por favor, informe o CNPJ correto (somente números):
💡 _Exemplo: 12345678000195_`

const trackingAskDocNo = `✅ *CNPJ registrado*

Agora, informe o *número da Nota Fiscal*:

💡 _Exemplo: 123456_`

const trackingInvalidDocNo = `❌ *Nota Fiscal inválida*

A Nota Fiscal deve conter apenas números (até 10 dígitos).

Por favor, informe o número correto da Nota Fiscal:`

const trackingLookupFailed = `❌ *Não encontramos essa Nota Fiscal*

Possíveis motivos:
• CNPJ ou NF incorretos
• Mercadoria ainda não foi coletada
• Sistema temporariamente indisponível

🔄 _Digite "rastreio" para tentar novamente_
👤 _Digite "atendente" para falar com nossa equipe_`

// startTracking opens the tracking flow. Entities already extracted from
// the message skip their collection steps; with both present the lookup
// runs immediately.
func (e *Engine) startTracking(ctx context.Context, st *session.State, entities intent.Entities) (string, bool) {
	taxID := entities.TaxID
	docNo := entities.DocumentNo

	if validTaxID(taxID) && validDocNo(docNo) {
		return e.runTrackingLookup(ctx, st.UserKey, taxID, docNo), true
	}

	if validTaxID(taxID) {
		st.Begin(session.FlowTracking, stepTrackingDocNo)
		st.Set(keyTaxID, taxID)
		e.logger.Info("tracking flow started", "user", st.UserKey, "seeded", true)
		return trackingAskDocNo, true
	}

	st.Begin(session.FlowTracking, stepTrackingTaxID)
	e.logger.Info("tracking flow started", "user", st.UserKey, "seeded", false)
	return trackingIntro, true
}

func (e *Engine) handleTracking(ctx context.Context, st *session.State, text string) (string, bool) {
	switch st.Step() {
	case stepTrackingTaxID:
		taxID := intent.OnlyDigits(text)
		if !validTaxID(taxID) {
			return trackingInvalidTaxID, true
		}
		st.Set(keyTaxID, taxID)
		st.Advance(stepTrackingDocNo)
		return trackingAskDocNo, true

	case stepTrackingDocNo:
		docNo := intent.OnlyDigits(text)
		if !validDocNo(docNo) {
			return trackingInvalidDocNo, true
		}
		taxID, _ := st.Get(keyTaxID)
		e.sessions.Clear(st.UserKey)
		return e.runTrackingLookup(ctx, st.UserKey, taxID, docNo), true

	default:
		e.sessions.Clear(st.UserKey)
		return "", false
	}
}

// runTrackingLookup queries the tracking service and formats the outcome.
// The session is already closed by the time this runs.
func (e *Engine) runTrackingLookup(ctx context.Context, userKey, taxID, docNo string) string {
	start := time.Now()
	result, err := e.tracking.Query(ctx, taxID, docNo)
	e.logger.Debug("tracking lookup finished", "duration", time.Since(start), "success", err == nil)
	if err != nil {
		e.logger.Warn("tracking lookup failed", "user", userKey, "error", err)
		return trackingLookupFailed
	}
	return formatTrackingResult(result, docNo)
}

func formatTrackingResult(result core.TrackingResult, docNo string) string {
	if !result.Success {
		return fmt.Sprintf(`❌ *Mercadoria não encontrada*

NF %s não foi localizada em nosso sistema.

🔄 _Digite "rastreio" para nova consulta_
👤 _Digite "atendente" para ajuda especializada_`, docNo)
	}

	if result.Message != "" {
		return result.Message
	}

	return fmt.Sprintf(`✅ *RASTREAMENTO - NF %s*

📍 *Status:* %s
📍 *Localização:* %s
🕐 *Última atualização:* %s
📅 *Previsão de entrega:* %s

Precisa de mais alguma coisa?

🔄 _Rastrear outra mercadoria_
👤 _Falar com atendente_`,
		docNo,
		orDefault(result.Status, "Não informado"),
		orDefault(result.Location, "Não informado"),
		orDefault(result.UpdatedAt, "Não informado"),
		orDefault(result.Forecast, "A definir"))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func validTaxID(s string) bool {
	return len(s) == 14 && allDigits(s)
}

func validDocNo(s string) bool {
	return len(s) >= 1 && len(s) <= 10 && allDigits(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
