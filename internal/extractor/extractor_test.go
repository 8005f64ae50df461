package extractor

import (
	"errors"
	"strings"
	"testing"

	"github.com/flowcenter/flowcenter/internal/config"
)

func TestNew(t *testing.T) {
	tol, err := New(config.ExtractorTolerant)
	if err != nil {
		t.Fatalf("New(tolerant) ошибка: %v", err)
	}
	if tol.Name() != config.ExtractorTolerant {
		t.Errorf("Name() = %q, ожидалось tolerant", tol.Name())
	}

	str, err := New(config.ExtractorStrict)
	if err != nil {
		t.Fatalf("New(strict) ошибка: %v", err)
	}
	if str.Name() != config.ExtractorStrict {
		t.Errorf("Name() = %q, ожидалось strict", str.Name())
	}

	if _, err := New("lenient"); err == nil {
		t.Error("New() неизвестного режима должен вернуть ошибку")
	}
}

func TestTolerant_ExactSchema(t *testing.T) {
	raw := `Claro! Aqui está o resultado:
{
  "titulo": "Erro no login",
  "descricao": {"cliente": "João Silva", "motivo": "Não consegue acessar o sistema"},
  "comentario": "Senha redefinida",
  "responsavel": "Marcos",
  "empresa": "STV",
  "datas_horarios": {
    "data_inicial": "2024-05-01",
    "hora_inicial": "14:30",
    "data_vencimento": "2024-05-02",
    "hora_vencimento": "18:00"
  }
}
Espero ter ajudado!`

	draft, err := (&TolerantExtractor{}).Extract(raw)
	if err != nil {
		t.Fatalf("Extract() ошибка: %v", err)
	}

	if draft.Title != "Erro no login" {
		t.Errorf("Title = %q", draft.Title)
	}
	if draft.Client != "João Silva" {
		t.Errorf("Client = %q", draft.Client)
	}
	if draft.Reason != "Não consegue acessar o sistema" {
		t.Errorf("Reason = %q", draft.Reason)
	}
	if draft.Comment != "Senha redefinida" {
		t.Errorf("Comment = %q", draft.Comment)
	}
	if draft.Attendant != "Marcos" {
		t.Errorf("Attendant = %q", draft.Attendant)
	}
	if draft.Company != "STV" {
		t.Errorf("Company = %q", draft.Company)
	}
	if draft.StartDate != "2024-05-01" || draft.StartTime != "14:30" {
		t.Errorf("StartDate/StartTime = %q/%q", draft.StartDate, draft.StartTime)
	}
	if draft.DueDate != "2024-05-02" || draft.DueTime != "18:00" {
		t.Errorf("DueDate/DueTime = %q/%q", draft.DueDate, draft.DueTime)
	}
}

func TestTolerant_AliasesWithAccents(t *testing.T) {
	// Модель иногда отвечает с диакритикой в именах полей
	raw := `{
  "título": "Chamado urgente",
  "descrição": {"cliente": "Maria", "motivo": "Cobrança"},
  "comentário": "Resolvido por telefone",
  "responsável": "Ana"
}`

	draft, err := (&TolerantExtractor{}).Extract(raw)
	if err != nil {
		t.Fatalf("Extract() ошибка: %v", err)
	}

	if draft.Title != "Chamado urgente" {
		t.Errorf("Title = %q", draft.Title)
	}
	if draft.Client != "Maria" {
		t.Errorf("Client = %q", draft.Client)
	}
	if draft.Reason != "Cobrança" {
		t.Errorf("Reason = %q", draft.Reason)
	}
	if draft.Attendant != "Ana" {
		t.Errorf("Attendant = %q", draft.Attendant)
	}
}

func TestTolerant_EnglishAliases(t *testing.T) {
	raw := `{"title": "Ticket", "client": "Bob", "reason": "Billing", "comment": "Done", "company": "ACME"}`

	draft, _ := (&TolerantExtractor{}).Extract(raw)
	if draft.Title != "Ticket" || draft.Client != "Bob" || draft.Company != "ACME" {
		t.Errorf("английские псевдонимы не распознаны: %+v", draft)
	}
}

func TestTolerant_TrailingCommas(t *testing.T) {
	raw := `{
  "titulo": "Teste",
  "descricao": {"cliente": "Carlos",},
}`

	draft, err := (&TolerantExtractor{}).Extract(raw)
	if err != nil {
		t.Fatalf("Extract() ошибка: %v", err)
	}
	if draft.Title != "Teste" || draft.Client != "Carlos" {
		t.Errorf("висячие запятые не вычищены: %+v", draft)
	}
}

func TestTolerant_BracesInsideStrings(t *testing.T) {
	raw := `{"titulo": "Erro {500} no servidor", "comentario": "log: \"{a: {b}}\""}`

	draft, _ := (&TolerantExtractor{}).Extract(raw)
	if draft.Title != "Erro {500} no servidor" {
		t.Errorf("скобки в строках нарушили баланс: Title = %q", draft.Title)
	}
}

func TestTolerant_FallbackOnPlainText(t *testing.T) {
	raw := "Desculpe, não consegui estruturar os dados desta conversa."

	draft, err := (&TolerantExtractor{}).Extract(raw)
	if err != nil {
		t.Fatalf("Extract() ошибка: %v", err)
	}
	if draft.Title != "" {
		t.Errorf("Title = %q, ожидалось пустое при деградации", draft.Title)
	}
	if draft.Comment != raw {
		t.Errorf("Comment = %q, ожидался исходный текст", draft.Comment)
	}
}

func TestTolerant_FallbackOnBrokenJSON(t *testing.T) {
	raw := `{"titulo": "Quebrado", "cliente": }`

	draft, err := (&TolerantExtractor{}).Extract(raw)
	if err != nil {
		t.Fatalf("Extract() ошибка: %v", err)
	}
	if draft.Comment != raw {
		t.Errorf("при битом JSON исходный текст должен попасть в Comment: %+v", draft)
	}
}

func TestTolerant_FallbackOnUnknownFields(t *testing.T) {
	raw := `{"foo": "bar", "baz": 42}`

	draft, _ := (&TolerantExtractor{}).Extract(raw)
	if draft.Comment != raw {
		t.Errorf("JSON без знакомых полей должен деградировать: %+v", draft)
	}
}

func TestTolerant_NumericValues(t *testing.T) {
	raw := `{"titulo": "OS 123", "empresa": 42}`

	draft, _ := (&TolerantExtractor{}).Extract(raw)
	if draft.Company != "42" {
		t.Errorf("Company = %q, числовое значение должно приводиться к строке", draft.Company)
	}
}

func TestStrict_Valid(t *testing.T) {
	raw := `Resultado:
{
  "name": "Erro no login",
  "description": "Acesso",
  "content": "Resolvido",
  "assignees": [49170204],
  "status": "concluído",
  "start_date": 1714584600000,
  "due_date": null,
  "custom_fields": {"cliente": "João", "empresa": "STV", "responsavel": "Marcos"}
}`

	draft, err := (&StrictExtractor{}).Extract(raw)
	if err != nil {
		t.Fatalf("Extract() ошибка: %v", err)
	}
	if draft.Title != "Erro no login" || draft.Reason != "Acesso" || draft.Comment != "Resolvido" {
		t.Errorf("неверный черновик: %+v", draft)
	}
	if draft.Client != "João" || draft.Company != "STV" || draft.Attendant != "Marcos" {
		t.Errorf("custom_fields не разобраны: %+v", draft)
	}
	if len(draft.AssigneeIDs) != 1 || draft.AssigneeIDs[0] != 49170204 {
		t.Errorf("AssigneeIDs = %v", draft.AssigneeIDs)
	}
	if draft.StartMillis == nil || *draft.StartMillis != 1714584600000 {
		t.Errorf("StartMillis = %v, ожидалось 1714584600000", draft.StartMillis)
	}
	if draft.DueMillis != nil {
		t.Errorf("DueMillis = %v, ожидалось nil", *draft.DueMillis)
	}
}

func TestStrict_NoJSON(t *testing.T) {
	if _, err := (&StrictExtractor{}).Extract("sem json aqui"); !errors.Is(err, ErrNoJSON) {
		t.Errorf("ошибка = %v, ожидалось ErrNoJSON", err)
	}
}

func TestStrict_UnknownField(t *testing.T) {
	raw := `{"name": "X", "campo_estranho": true}`

	if _, err := (&StrictExtractor{}).Extract(raw); !errors.Is(err, ErrBadSchema) {
		t.Errorf("ошибка = %v, ожидалось ErrBadSchema для неизвестного поля", err)
	}
}

func TestStrict_PromptSchemaRejected(t *testing.T) {
	// Внутренняя схема подсказки принимается только толерантной
	// стратегией; строгая требует внешнюю схему задачи
	raw := `{"titulo": "X", "descricao": {"cliente": "A", "motivo": "B"}}`

	if _, err := (&StrictExtractor{}).Extract(raw); !errors.Is(err, ErrBadSchema) {
		t.Errorf("ошибка = %v, ожидалось ErrBadSchema", err)
	}
}

func TestStrict_EmptyName(t *testing.T) {
	raw := `{"name": "  "}`

	if _, err := (&StrictExtractor{}).Extract(raw); !errors.Is(err, ErrBadSchema) {
		t.Errorf("ошибка = %v, ожидалось ErrBadSchema для пустого name", err)
	}
}

func TestFindJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"голый объект", `{"a": 1}`, `{"a": 1}`},
		{"текст вокруг", `prefix {"a": 1} suffix`, `{"a": 1}`},
		{"вложенность", `{"a": {"b": {"c": 1}}}`, `{"a": {"b": {"c": 1}}}`},
		{"скобка в строке", `{"a": "}"}`, `{"a": "}"}`},
		{"экранированная кавычка", `{"a": "\"}"}`, `{"a": "\"}"}`},
		{"нет объекта", `plain text`, ""},
		{"незакрытый объект", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findJSONObject(tt.in); got != tt.want {
				t.Errorf("findJSONObject() = %q, ожидалось %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("  Cliente: bom dia\nAtendente: olá  ")

	if !strings.Contains(prompt, "Cliente: bom dia") {
		t.Error("prompt должен содержать текст диалога")
	}
	if !strings.Contains(prompt, `"titulo"`) || !strings.Contains(prompt, `"datas_horarios"`) {
		t.Error("prompt должен описывать схему ответа")
	}
	if strings.Contains(prompt, "  Cliente") {
		t.Error("текст диалога должен быть очищен от крайних пробелов")
	}
}
