package intent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/logging"
	"github.com/lfmotta/cargobot/model"
)

const systemPrompt = `Você é um classificador de intenções para o atendimento de uma transportadora. Sempre responda APENAS um JSON. Campos: intent ∈ {"tracking","recruiting","supplier","quote","pickup","human","none"}; entities: { tax_id (14 dígitos ou null), document_no (apenas números 4-10 dígitos ou null) }; recruiting_action ∈ {"send_resume","list_openings",null}; supplier_action ∈ {"register",null}. Não explique, não inclua texto fora do JSON.

Exemplos:
Usuário: "Preciso saber onde está meu pedido"
{"intent":"tracking","entities":{"tax_id":null,"document_no":null}}
Usuário: "Pode verificar o status? CNPJ 12345678000195 NF 123456"
{"intent":"tracking","entities":{"tax_id":"12345678000195","document_no":"123456"}}
Usuário: "Quero enviar meu currículo"
{"intent":"recruiting","entities":{"tax_id":null,"document_no":null},"recruiting_action":"send_resume"}
Usuário: "Quais vagas estão abertas?"
{"intent":"recruiting","entities":{"tax_id":null,"document_no":null},"recruiting_action":"list_openings"}
Usuário: "Quero cadastrar minha empresa como fornecedora"
{"intent":"supplier","entities":{"tax_id":null,"document_no":null},"supplier_action":"register"}
Usuário: "Preciso de uma cotação"
{"intent":"quote","entities":{"tax_id":null,"document_no":null}}
Usuário: "Quero agendar uma coleta"
{"intent":"pickup","entities":{"tax_id":null,"document_no":null}}
Usuário: "Quero falar com atendente"
{"intent":"human","entities":{"tax_id":null,"document_no":null}}`

// ClassifierOptions configure a Classifier.
type ClassifierOptions struct {
	// ModelName overrides the gateway's default model.
	ModelName string
	// Timeout bounds the classification call.
	Timeout time.Duration
	Logger  logging.Logger
}

// Classifier turns raw message text into a Result. The model gateway is
// optional; without one the keyword path is used directly.
type Classifier struct {
	gateway model.Model
	opts    ClassifierOptions
	logger  logging.Logger
}

// NewClassifier creates a Classifier. A nil gateway is valid and restricts
// classification to the keyword path.
func NewClassifier(gateway model.Model, optFns ...func(o *ClassifierOptions)) *Classifier {
	opts := ClassifierOptions{
		Timeout: 8 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{
		gateway: gateway,
		opts:    opts,
		logger:  core.EnsureLogger(opts.Logger),
	}
}

// Classify classifies text. It never returns an error: model failures and
// unparseable replies degrade to the keyword classification.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	fallback := ClassifyKeywords(text)

	if c.gateway == nil || text == "" {
		return fallback
	}

	raw, err := c.gateway.Generate(ctx, model.Request{
		Messages: []model.Message{
			{Role: core.RoleSystem, Content: systemPrompt},
			{Role: core.RoleUser, Content: text},
		},
		Model:       c.opts.ModelName,
		Temperature: 0,
		MaxTokens:   200,
		Timeout:     c.opts.Timeout,
	})
	if err != nil {
		c.logger.Warn("intent classification call failed", "error", err)
		return fallback
	}

	parsed, ok := parseResult(raw)
	if !ok {
		c.logger.Warn("intent classification reply was not valid json", "reply", raw)
		return fallback
	}

	return c.merge(parsed, fallback, strings.ToLower(text))
}

// merge normalizes the model output, backfills entities from regex
// extraction and lets the keyword guard-rails override the model's intent.
// Backfill only fills absent values; a document number the model returns is
// kept as-is, whatever its length.
func (c *Classifier) merge(parsed Result, fallback Result, lower string) Result {
	res := parsed
	if res.Intent == "" {
		res.Intent = None
	}

	res.Entities.TaxID = OnlyDigits(res.Entities.TaxID)
	res.Entities.DocumentNo = OnlyDigits(res.Entities.DocumentNo)
	if len(res.Entities.TaxID) != 14 {
		res.Entities.TaxID = fallback.Entities.TaxID
	}
	if res.Entities.DocumentNo == "" {
		res.Entities.DocumentNo = fallback.Entities.DocumentNo
	}

	if forced := matchGuardRail(lower); forced != None && forced != res.Intent {
		res.Intent = forced
		switch forced {
		case Recruiting:
			if res.RecruitingAction == "" {
				res.RecruitingAction = recruitingAction(lower)
			}
		case Supplier:
			if res.SupplierAction == "" {
				res.SupplierAction = supplierAction(lower)
			}
		}
	}
	return res
}

// parseResult decodes the model reply. Replies wrapped in prose or code
// fences are salvaged by extracting the first balanced JSON object.
func parseResult(raw string) (Result, bool) {
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err == nil {
		return res, true
	}
	if block, ok := firstJSONObject(raw); ok {
		if err := json.Unmarshal([]byte(block), &res); err == nil {
			return res, true
		}
	}
	return Result{}, false
}

func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
