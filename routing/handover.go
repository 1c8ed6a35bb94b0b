package routing

import (
	"fmt"

	"github.com/lfmotta/cargobot/core"
)

// TransferKind names the human team a conversation is handed over to.
type TransferKind string

const (
	TransferQuote     TransferKind = "quote"
	TransferPickup    TransferKind = "pickup"
	TransferAttendant TransferKind = "attendant"
)

const fallbackPhone = "0800-000-0000"

// TransferMessage builds the handover reply for a transfer. When branch is
// nil a generic central-office message is produced.
func TransferMessage(kind TransferKind, branch *core.Branch) string {
	if branch == nil {
		return genericTransferMessage(kind)
	}

	phone := fallbackPhone
	if len(branch.Phones) > 0 {
		phone = branch.Phones[0]
	}
	email := branch.Email
	if email == "" {
		email = "contato@cargobot.com.br"
	}
	unit := fmt.Sprintf("%s/%s", branch.Name, branch.UF)

	switch kind {
	case TransferQuote:
		return fmt.Sprintf(`💰 *SOLICITAÇÃO DE COTAÇÃO*

Vou te encaminhar para o setor de Cotações da Filial %s.

📞 *Contato direto:* %s
📧 *E-mail:* %s
⏱️ *Horário:* Segunda a Sexta, 8h às 18h

Em instantes, um de nossos especialistas entrará em contato para elaborar sua cotação personalizada.`, unit, phone, email)
	case TransferPickup:
		return fmt.Sprintf(`📋 *AGENDAMENTO DE COLETA*

Vou te encaminhar para o setor de Coletas da Filial %s.

📞 *Contato direto:* %s
📧 *E-mail:* %s
⏱️ *Horário:* Segunda a Sexta, 8h às 18h

Nossa equipe entrará em contato para agendar a coleta em sua localização.`, unit, phone, email)
	default:
		return fmt.Sprintf(`👤 *TRANSFERÊNCIA PARA ATENDENTE*

Conectando você com um atendente da Filial %s.

📞 *Contato direto:* %s
📧 *E-mail:* %s
⏱️ *Horário:* Segunda a Sexta, 8h às 18h

Aguarde um momento que nosso atendente especializado irá te auxiliar.`, unit, phone, email)
	}
}

func genericTransferMessage(kind TransferKind) string {
	switch kind {
	case TransferQuote:
		return fmt.Sprintf(`💰 *SOLICITAÇÃO DE COTAÇÃO*

Vou te encaminhar para nosso setor de Cotações.

⏱️ *Horário:* Segunda a Sexta, 8h às 18h
📞 *Central:* %s

Em instantes, um de nossos especialistas entrará em contato.`, fallbackPhone)
	case TransferPickup:
		return fmt.Sprintf(`📋 *AGENDAMENTO DE COLETA*

Vou te encaminhar para nosso setor de Coletas.

⏱️ *Horário:* Segunda a Sexta, 8h às 18h
📞 *Central:* %s

Nossa equipe entrará em contato para agendar a coleta.`, fallbackPhone)
	default:
		return fmt.Sprintf(`👤 *TRANSFERÊNCIA PARA ATENDENTE*

Conectando você com nosso atendimento.

⏱️ *Horário:* Segunda a Sexta, 8h às 18h
📞 *Central:* %s

Aguarde um momento que nosso atendente irá te auxiliar.`, fallbackPhone)
	}
}
