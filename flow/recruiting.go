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
	stepRecruitingMenu    = "menu"
	stepRecruitingConsent = "consent"
	stepRecruitingName    = "name"
	stepRecruitingCity    = "city"
	stepRecruitingArea    = "area"

	keyName = "name"
	keyCity = "city"
	keyArea = "area"
)

// recruitingProtocolDigits is how many trailing timestamp digits make up an
// application protocol.
const recruitingProtocolDigits = 6

const recruitingMenu = `👥 *RECURSOS HUMANOS*

Bem-vindo ao nosso portal de RH! Como posso ajudá-lo hoje?

*Opções disponíveis:*
1️⃣ Enviar currículo
2️⃣ Ver vagas abertas

Digite o número da opção desejada ou a palavra-chave:`

const recruitingInvalidOption = `❌ *Opção inválida*

Por favor, escolha uma das opções:

1️⃣ Enviar currículo
2️⃣ Ver vagas abertas

Digite o número da opção ou a palavra-chave:`

const recruitingConsentNotice = `📄 *ENVIO DE CURRÍCULO*

⚖️ *AVISO LGPD - Lei Geral de Proteção de Dados*

Para processar seu currículo, precisamos coletar e armazenar seus dados pessoais (nome, contato, experiências profissionais).

*Seus dados serão utilizados exclusivamente para:*
• Análise de adequação às vagas disponíveis
• Contato para processos seletivos
• Manutenção em banco de talentos

*Você concorda com o processamento dos seus dados pessoais?*

✅ Digite "SIM" para concordar
❌ Digite "NÃO" para cancelar`

const recruitingConsentRetry = `⚖️ *Confirmação necessária*

Para continuar, preciso da sua confirmação sobre o processamento dos dados.

✅ Digite "SIM" para concordar
❌ Digite "NÃO" para cancelar`

const recruitingConsentDeclined = `❌ *Processo cancelado*

Sem o consentimento LGPD, não podemos processar seu currículo.

Caso mude de ideia, digite "RH" novamente.`

const recruitingAskName = `✅ *CONSENTIMENTO CONFIRMADO*

Agora preciso de algumas informações básicas:

📝 *Por favor, informe:*

*Nome completo:*`

const recruitingNoOpenings = `📋 *VAGAS ABERTAS*

Atualmente não temos vagas abertas.

🔔 *Cadastre seu interesse:*
Digite "currículo" para enviar seu CV e ser notificado sobre novas oportunidades.`

const recruitingOpeningsFailed = `❌ *Erro ao carregar vagas*

Tente novamente em alguns instantes.`

// startRecruiting opens the recruiting flow. A pre-classified action skips
// the menu step.
func (e *Engine) startRecruiting(ctx context.Context, st *session.State, action string) (string, bool) {
	switch action {
	case intent.ActionListOpenings:
		return e.listOpenings(ctx), true
	case intent.ActionSendResume:
		st.Begin(session.FlowRecruiting, stepRecruitingConsent)
		return recruitingConsentNotice, true
	default:
		st.Begin(session.FlowRecruiting, stepRecruitingMenu)
		e.logger.Info("recruiting flow started", "user", st.UserKey)
		return recruitingMenu, true
	}
}

func (e *Engine) handleRecruiting(ctx context.Context, st *session.State, text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch st.Step() {
	case stepRecruitingMenu:
		return e.handleRecruitingMenu(ctx, st, lower)

	case stepRecruitingConsent:
		return e.handleRecruitingConsent(st, lower), true

	case stepRecruitingName:
		st.Set(keyName, strings.TrimSpace(text))
		st.Advance(stepRecruitingCity)
		name, _ := st.Get(keyName)
		return fmt.Sprintf("👋 Olá, %s!\n\n*Cidade onde reside:*", name), true

	case stepRecruitingCity:
		st.Set(keyCity, strings.TrimSpace(text))
		st.Advance(stepRecruitingArea)
		city, _ := st.Get(keyCity)
		return fmt.Sprintf("📍 %s - Perfeito!\n\n*Área de interesse profissional:*\n(Ex: Logística, Administrativo, Vendas, TI, etc.)", city), true

	case stepRecruitingArea:
		st.Set(keyArea, strings.TrimSpace(text))
		return e.saveApplication(ctx, st), true

	default:
		e.sessions.Clear(st.UserKey)
		return "", false
	}
}

func (e *Engine) handleRecruitingMenu(ctx context.Context, st *session.State, lower string) (string, bool) {
	switch {
	case lower == "1" || strings.Contains(lower, "curriculo") || strings.Contains(lower, "currículo") || strings.Contains(lower, "cv"):
		st.Advance(stepRecruitingConsent)
		return recruitingConsentNotice, true
	case lower == "2" || strings.Contains(lower, "vagas") || strings.Contains(lower, "emprego") || strings.Contains(lower, "trabalho"):
		e.sessions.Clear(st.UserKey)
		return e.listOpenings(ctx), true
	default:
		return recruitingInvalidOption, true
	}
}

func (e *Engine) handleRecruitingConsent(st *session.State, lower string) string {
	switch lower {
	case "sim", "s", "aceito", "concordo":
		st.Advance(stepRecruitingName)
		return recruitingAskName
	case "não", "nao", "n", "recuso":
		e.sessions.Clear(st.UserKey)
		return recruitingConsentDeclined
	default:
		return recruitingConsentRetry
	}
}

// saveApplication persists the collected application and closes the flow.
func (e *Engine) saveApplication(ctx context.Context, st *session.State) string {
	name, _ := st.Get(keyName)
	city, _ := st.Get(keyCity)
	area, _ := st.Get(keyArea)
	e.sessions.Clear(st.UserKey)

	record := core.Application{
		Protocol: core.NewProtocol("RH", recruitingProtocolDigits),
		Name:     name,
		City:     city,
		Area:     area,
	}
	protocol, err := e.recruiting.SaveApplication(ctx, record)
	if err != nil {
		// Saving is best effort: the applicant still gets the protocol so a
		// human can recover the data from the logs.
		e.logger.Error("saving application failed", "protocol", record.Protocol, "error", err)
		protocol = record.Protocol
	}

	return fmt.Sprintf(`✅ *CURRÍCULO RECEBIDO COM SUCESSO!*

📋 *Protocolo:* %s

*Dados registrados:*
👤 Nome: %s
📍 Cidade: %s
💼 Área: %s

*Próximos passos:*
• Seu currículo foi adicionado ao nosso banco de talentos
• Entraremos em contato caso surjam vagas compatíveis
• Guarde seu protocolo para futuras consultas

📎 *Para enviar seu arquivo PDF/DOC:*
Envie o arquivo do currículo agora ou posteriormente mencionando o protocolo %s

Obrigado pelo interesse em nossa empresa!`, protocol, name, city, area, protocol)
}

// listOpenings renders the current job openings.
func (e *Engine) listOpenings(ctx context.Context) string {
	openings, err := e.recruiting.ListOpenings(ctx)
	if err != nil {
		e.logger.Error("listing openings failed", "error", err)
		return recruitingOpeningsFailed
	}
	if len(openings) == 0 {
		return recruitingNoOpenings
	}

	var sb strings.Builder
	sb.WriteString("📋 *VAGAS ABERTAS*\n\n")
	for i, o := range openings {
		fmt.Fprintf(&sb, "*%d. %s*\n📍 %s\n📋 %s\n", i+1, o.Title, o.City, o.Requirements)
		if o.Link != "" {
			fmt.Fprintf(&sb, "🔗 Mais info: %s\n", o.Link)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("💼 *Interessado em alguma vaga?*\nDigite \"currículo\" para enviar seu CV")
	return sb.String()
}
