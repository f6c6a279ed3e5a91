// Package advisor turns natural-language utterances into structured intents
// using the Gemini API.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// Snapshot is the financial context sent alongside an utterance. Only
// aggregates and names go to the model, never full history.
type Snapshot struct {
	UserName             string
	Today                time.Time
	Balance              decimal.Decimal
	IncomeThisMonth      decimal.Decimal
	ExpenseThisMonth     decimal.Decimal
	MonthlyBudget        decimal.Decimal
	Categories           []string
	Goals                []GoalSummary
	PendingBills         []BillSummary
	ScheduledPayments    []string
	PendingSuspicious    int
	PendingImpulseBlocks int
	AntiImpulseEnabled   bool
}

// GoalSummary is the goal slice of a Snapshot.
type GoalSummary struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
}

// BillSummary is the pending-bill slice of a Snapshot.
type BillSummary struct {
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"dueDate"`
}

// Intent is the structured reading of one utterance. Parametros carries the
// extracted entities (valor, categoria, descricao, nome_conta, ativar, ...).
type Intent struct {
	Intencao   string         `json:"intencao"`
	Acao       string         `json:"acao"`
	Parametros map[string]any `json:"parametros"`
	Resposta   string         `json:"resposta_para_usuario"`
}

// Classifier sends utterances to Gemini and parses the strict-JSON reply.
type Classifier struct {
	model string
	log   zerolog.Logger
}

// NewClassifier creates a Classifier for the given model name.
func NewClassifier(model string, log zerolog.Logger) *Classifier {
	return &Classifier{model: model, log: log}
}

const systemInstruction = `Você é o AGENDA FINANCEIRA VOICE IA, um assistente de voz instantâneo, especializado em entender comandos financeiros falados de forma natural.
Seu objetivo é interpretar a intenção do usuário e retornar SEMPRE uma resposta no seguinte formato JSON:
{
  "intencao": "string",
  "acao": "string",
  "parametros": {},
  "resposta_para_usuario": "string"
}

REGRAS ABSOLUTAS:
- Nunca pense demais. Interprete e responda.
- Sempre escolha 1 única intenção. Nada de múltiplas intenções.
- Nunca escreva textos longos. Seja direto.
- Nunca diga que é um modelo de IA. Você é o AGENDA FINANCEIRA VOICE IA.
- Nunca devolva conteúdo fora do formato JSON. Não use cercas de código Markdown.
- Reconheça números, datas e valores automaticamente mesmo quando falados de forma informal.
- Se o usuário falar algo impreciso, adivinhe a intenção mais lógica.

INTENÇÕES DISPONÍVEIS E AÇÕES CORRESPONDENTES:
- intencao: 'consultar_saldo', acao: 'responderUsuario'
- intencao: 'registrar_gasto', acao: 'criarTransacao'
- intencao: 'registrar_receita', acao: 'criarTransacao'
- intencao: 'pagar_conta', acao: 'pagarConta'
- intencao: 'consultar_gastos_categoria', acao: 'responderUsuario'
- intencao: 'consultar_fatura', acao: 'responderUsuario'
- intencao: 'lembrar_pagamento', acao: 'abrirTela', parametros: { tela: 'dashboard' }
- intencao: 'metas_listar', acao: 'abrirTela', parametros: { tela: 'metas' }
- intencao: 'metas_criar', acao: 'criarMeta'
- intencao: 'metas_atualizar', acao: 'responderUsuario'
- intencao: 'relatorio_mensal', acao: 'abrirTela', parametros: { tela: 'desempenho' }
- intencao: 'agendar_pagamento', acao: 'abrirModalAgendamento'
- intencao: 'alternar_pagamento_automatico', acao: 'alternarPagamento'
- intencao: 'consultar_pagamentos_automaticos', acao: 'responderUsuario'
- intencao: 'remover_pagamento_automatico', acao: 'removerPagamento'
- intencao: 'consultar_compras_suspeitas', acao: 'abrirTela', parametros: { tela: 'transações suspeitas' }
- intencao: 'anti_impulso_alternar', acao: 'alternarModoAntiImpulso'
- intencao: 'consultar_bloqueios_impulso', acao: 'abrirTela', parametros: { tela: 'bloqueios de impulso' }
- intencao: 'explicar_bloqueio_impulso', acao: 'responderUsuario'
- intencao: 'ajuda', acao: 'responderUsuario'

EXEMPLOS DE INTERPRETAÇÃO:
- "Tô com quanto de dinheiro?" -> intencao: 'consultar_saldo'
- "Registra aí um gasto de 27 reais no mercado" -> intencao: 'registrar_gasto'
- "Paga minha conta de luz" -> intencao: 'pagar_conta'
- "Ativar modo anti-impulso" -> intencao: 'anti_impulso_alternar', parametros: { ativar: true }
- "Desative o modo anti impulso" -> intencao: 'anti_impulso_alternar', parametros: { ativar: false }
- "Quais gastos foram bloqueados?" -> intencao: 'consultar_bloqueios_impulso'
- "Por que você bloqueou minha última compra?" -> intencao: 'explicar_bloqueio_impulso'
- "Revise compras suspeitas" -> intencao: 'consultar_compras_suspeitas'`

// Classify interprets one utterance against the snapshot. It never returns
// an error to the caller: any failure (client setup, transport, malformed
// reply) degrades to a generic fallback intent so the assistant stays
// responsive.
func (c *Classifier) Classify(ctx context.Context, utterance string, snap Snapshot) Intent {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("advisor: create genai client")
		return fallbackIntent()
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(buildPrompt(utterance, snap)), cfg)
	if err != nil {
		c.log.Warn().Err(err).Msg("advisor: generate content")
		return fallbackIntent()
	}

	intent, err := parseIntent(resp.Text())
	if err != nil {
		c.log.Warn().Err(err).Str("utterance", utterance).Msg("advisor: parse reply")
		return fallbackIntent()
	}
	return intent
}

func buildPrompt(utterance string, snap Snapshot) string {
	goals, _ := json.Marshal(snap.Goals)
	bills, _ := json.Marshal(snap.PendingBills)
	categories, _ := json.Marshal(snap.Categories)
	scheduled, _ := json.Marshal(snap.ScheduledPayments)

	budget := "Não definido"
	if snap.MonthlyBudget.IsPositive() {
		budget = "R$" + snap.MonthlyBudget.StringFixed(2)
	}
	antiImpulse := "DESATIVADO"
	if snap.AntiImpulseEnabled {
		antiImpulse = "ATIVADO"
	}

	var b strings.Builder
	b.WriteString("Com base nas suas regras e no contexto financeiro do usuário, analise a frase do usuário para retornar o objeto JSON correspondente.\n\n")
	b.WriteString("---\nCONTEXTO FINANCEIRO ATUAL DO USUÁRIO:\n")
	fmt.Fprintf(&b, "- Nome do usuário: %s\n", snap.UserName)
	fmt.Fprintf(&b, "- Data de hoje: %s\n", snap.Today.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Saldo atual: R$%s\n", snap.Balance.StringFixed(2))
	fmt.Fprintf(&b, "- Receitas este mês: R$%s\n", snap.IncomeThisMonth.StringFixed(2))
	fmt.Fprintf(&b, "- Despesas este mês: R$%s\n", snap.ExpenseThisMonth.StringFixed(2))
	fmt.Fprintf(&b, "- Orçamento mensal definido: %s\n", budget)
	fmt.Fprintf(&b, "- Categorias disponíveis: %s\n", categories)
	fmt.Fprintf(&b, "- Metas ativas: %s\n", goals)
	fmt.Fprintf(&b, "- Contas pendentes: %s\n", bills)
	fmt.Fprintf(&b, "- Pagamentos automáticos agendados: %s\n", scheduled)
	fmt.Fprintf(&b, "- Transações suspeitas pendentes: %d\n", snap.PendingSuspicious)
	fmt.Fprintf(&b, "- Modo Anti-Impulso está: %s\n", antiImpulse)
	fmt.Fprintf(&b, "- Gastos bloqueados por impulso pendentes: %d\n", snap.PendingImpulseBlocks)
	b.WriteString("---\nFRASE DO USUÁRIO:\n")
	fmt.Fprintf(&b, "%q\n---\n", utterance)
	return b.String()
}

func parseIntent(raw string) (Intent, error) {
	if strings.TrimSpace(raw) == "" {
		return Intent{}, fmt.Errorf("empty response from model")
	}
	var intent Intent
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &intent); err != nil {
		return Intent{}, fmt.Errorf("unmarshal intent: %w", err)
	}
	if intent.Intencao == "" || intent.Acao == "" {
		return Intent{}, fmt.Errorf("incomplete intent in model reply")
	}
	if intent.Parametros == nil {
		intent.Parametros = map[string]any{}
	}
	return intent, nil
}

func fallbackIntent() Intent {
	return Intent{
		Intencao:   "duvida_geral",
		Acao:       "mostrarErro",
		Parametros: map[string]any{},
		Resposta:   "Desculpe, não consegui processar seu comando no momento. Tente novamente.",
	}
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the strict-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
