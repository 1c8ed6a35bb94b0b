package intent

import (
	"regexp"
	"strings"
)

// Intent is a coarse routing label for an inbound message.
type Intent string

const (
	// Tracking asks for the status of a shipment.
	Tracking Intent = "tracking"
	// Recruiting covers job openings and resume submission.
	Recruiting Intent = "recruiting"
	// Supplier covers supplier registration requests.
	Supplier Intent = "supplier"
	// Quote asks for freight pricing.
	Quote Intent = "quote"
	// Pickup asks to schedule a cargo pickup.
	Pickup Intent = "pickup"
	// Human asks to talk to a person.
	Human Intent = "human"
	// None means no intent could be determined.
	None Intent = "none"
)

// Recruiting sub-actions.
const (
	ActionListOpenings = "list_openings"
	ActionSendResume   = "send_resume"
)

// Supplier sub-actions.
const (
	ActionRegister = "register"
)

// Entities holds structured values extracted from the message text,
// normalized to digits only.
type Entities struct {
	TaxID      string `json:"tax_id,omitempty"`
	DocumentNo string `json:"document_no,omitempty"`
}

// Result is the outcome of classifying one message.
type Result struct {
	Intent           Intent   `json:"intent"`
	Entities         Entities `json:"entities"`
	RecruitingAction string   `json:"recruiting_action,omitempty"`
	SupplierAction   string   `json:"supplier_action,omitempty"`
}

var (
	taxIDPattern = regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b|\b\d{14}\b`)
	docNoPattern = regexp.MustCompile(`\b\d{4,10}\b`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// OnlyDigits strips every non-digit rune from s.
func OnlyDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ExtractEntities pulls a tax id and a document number out of free text.
// The tax id wins its match first so a bare 14-digit number is not also
// consumed as a document number.
func ExtractEntities(text string) Entities {
	var e Entities
	rest := text
	if m := taxIDPattern.FindString(text); m != "" {
		e.TaxID = OnlyDigits(m)
		rest = strings.Replace(text, m, " ", 1)
	}
	if m := docNoPattern.FindString(rest); m != "" {
		e.DocumentNo = OnlyDigits(m)
	}
	return e
}

// rule maps trigger keywords to a forced intent. Rules are evaluated in
// order and the last matching rule wins, mirroring how ambiguous messages
// ("cotação para coleta com atendente") resolve toward the handover intents.
type rule struct {
	intent   Intent
	keywords []string
}

var guardRails = []rule{
	{Recruiting, []string{"curriculo", "currículo", "cv", "vagas", "vaga", "emprego", "trabalho", "carreira", "rh", "recursos humanos"}},
	{Tracking, []string{"rastreio", "rastrear", "mercadoria", "encomenda", "pedido", "nota fiscal", "nf", "cnpj", "status", "onde está"}},
	{Supplier, []string{"fornecedor", "fornecedores", "compras", "suprimentos", "portfólio", "portfolio"}},
	{Quote, []string{"cotacao", "cotação", "orcamento", "orçamento", "preco", "preço", "cotar"}},
	{Pickup, []string{"coleta", "agendar coleta", "retirada"}},
	{Human, []string{"atendente", "falar com atendente", "humano", "suporte", "atendimento"}},
}

// matchGuardRail returns the forced intent for text, or None when no
// keyword matches.
func matchGuardRail(lower string) Intent {
	matched := None
	for _, r := range guardRails {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				matched = r.intent
				break
			}
		}
	}
	return matched
}

func recruitingAction(lower string) string {
	if strings.Contains(lower, "vaga") {
		return ActionListOpenings
	}
	if strings.Contains(lower, "curriculo") || strings.Contains(lower, "currículo") || strings.Contains(lower, "cv") {
		return ActionSendResume
	}
	return ""
}

func supplierAction(lower string) string {
	if strings.Contains(lower, "cadastrar") || strings.Contains(lower, "cadastro") || strings.Contains(lower, "registrar") {
		return ActionRegister
	}
	return ""
}

// ClassifyKeywords classifies text using the keyword table alone. It is the
// fallback when no model is available and the guard-rail backbone otherwise.
func ClassifyKeywords(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))
	res := Result{Intent: None, Entities: ExtractEntities(text)}

	switch matched := matchGuardRail(lower); matched {
	case Recruiting:
		res.Intent = Recruiting
		res.RecruitingAction = recruitingAction(lower)
	case Supplier:
		res.Intent = Supplier
		res.SupplierAction = supplierAction(lower)
	case None:
		// A bare tax id is a tracking request even without keywords.
		if res.Entities.TaxID != "" {
			res.Intent = Tracking
		}
	default:
		res.Intent = matched
	}
	return res
}
