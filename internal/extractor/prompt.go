package extractor

import (
	"fmt"
	"strings"
)

// promptTemplate — инструкция ассистенту: извлечь из диалога поля
// задачи и ответить единственным JSON-объектом точной схемы.
// Схема совпадает со strictResponse; толерантная стратегия умеет
// читать и отклонения от неё.
const promptTemplate = `Analise a conversa de atendimento abaixo e extraia os dados para abertura de uma tarefa.

Responda APENAS com um objeto JSON, sem texto adicional, no formato exato:
{
  "titulo": "título curto da tarefa",
  "descricao": {
    "cliente": "nome do cliente",
    "motivo": "motivo do atendimento"
  },
  "comentario": "resumo da solução ou comentário",
  "responsavel": "nome do atendente responsável",
  "empresa": "empresa do cliente",
  "datas_horarios": {
    "data_inicial": "YYYY-MM-DD",
    "hora_inicial": "HH:MM",
    "data_vencimento": "YYYY-MM-DD",
    "hora_vencimento": "HH:MM"
  }
}

Campos sem informação na conversa devem ser strings vazias.

Conversa:
%s`

// BuildPrompt собирает prompt для ассистента из текста диалога.
func BuildPrompt(conversation string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(conversation))
}
