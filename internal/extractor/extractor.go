// Пакет extractor — извлечение структурированного черновика задачи
// из текстового ответа ИИ-ассистента.
//
// Ответ ассистента — человекочитаемый текст, внутри которого обычно
// есть JSON-объект. Две стратегии извлечения:
//
//   - tolerant: находит первый сбалансированный JSON-объект, чистит
//     висячие запятые, читает поля по спискам псевдонимов (португальские
//     варианты с диакритикой и без, английские). При любой неудаче
//     деградирует: возвращает черновик с исходным текстом в комментарии.
//   - strict: принимает дословно внешнюю схему задачи (name, description,
//     content, assignees, epoch-ms даты, плоский объект custom_fields),
//     любое отклонение — ошибка.
//
// Стратегия выбирается конфигурацией (FC_EXTRACTOR_MODE).
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/flowcenter/flowcenter/internal/config"
	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// Ошибки строгой стратегии.
var (
	// ErrNoJSON — в тексте не найден JSON-объект.
	ErrNoJSON = errors.New("в ответе не найден JSON-объект")
	// ErrBadSchema — JSON не соответствует ожидаемой схеме.
	ErrBadSchema = errors.New("ответ не соответствует схеме")
)

// Extractor — стратегия извлечения черновика задачи из текста.
type Extractor interface {
	// Extract разбирает текст ответа ассистента в черновик задачи.
	Extract(raw string) (*model.TaskDraft, error)
	// Name возвращает имя стратегии.
	Name() string
}

// New возвращает стратегию по имени режима из конфигурации.
func New(mode string) (Extractor, error) {
	switch mode {
	case config.ExtractorTolerant:
		return &TolerantExtractor{}, nil
	case config.ExtractorStrict:
		return &StrictExtractor{}, nil
	default:
		return nil, fmt.Errorf("неизвестный режим извлечения: %q", mode)
	}
}

// Списки псевдонимов полей в порядке приоритета.
// Путь с точкой означает вложенный объект.
var (
	titleAliases     = []string{"titulo", "título", "title"}
	clientAliases    = []string{"descricao.cliente", "descrição.cliente", "cliente", "client"}
	reasonAliases    = []string{"descricao.motivo", "descrição.motivo", "motivo", "reason"}
	commentAliases   = []string{"comentario", "comentário", "comment", "solucao", "solução", "solution"}
	attendantAliases = []string{"responsavel", "responsável", "atendente", "attendant"}
	companyAliases   = []string{"empresa", "company"}
	startDateAliases = []string{"datas_horarios.data_inicial", "datas.inicial", "data_inicial", "start_date"}
	startTimeAliases = []string{"datas_horarios.hora_inicial", "datas.hora_inicial", "hora_inicial", "start_time"}
	dueDateAliases   = []string{"datas_horarios.data_vencimento", "datas.vencimento", "data_vencimento", "due_date"}
	dueTimeAliases   = []string{"datas_horarios.hora_vencimento", "datas.hora_vencimento", "hora_vencimento", "due_time"}
)

// trailingCommaRe — висячая запятая перед закрывающей скобкой.
// Модели регулярно генерируют такой почти-JSON.
var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// TolerantExtractor — толерантная стратегия с деградацией.
type TolerantExtractor struct{}

// Name возвращает имя стратегии.
func (e *TolerantExtractor) Name() string { return config.ExtractorTolerant }

// Extract извлекает черновик из текста. Никогда не возвращает ошибку:
// при неудаче разбора черновик содержит исходный текст в Comment,
// чтобы оператор мог поправить задачу вручную.
func (e *TolerantExtractor) Extract(raw string) (*model.TaskDraft, error) {
	candidate := findJSONObject(raw)
	if candidate == "" {
		return fallbackDraft(raw), nil
	}

	cleaned := trailingCommaRe.ReplaceAllString(candidate, "$1")

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return fallbackDraft(raw), nil
	}

	draft := draftFromMap(data)
	if draft.Title == "" && draft.Client == "" && draft.Comment == "" {
		// JSON разобран, но ни одного знакомого поля — деградация
		return fallbackDraft(raw), nil
	}
	return draft, nil
}

// fallbackDraft — черновик деградации: поля пустые, исходный текст
// целиком уходит в комментарий.
func fallbackDraft(raw string) *model.TaskDraft {
	return &model.TaskDraft{Comment: strings.TrimSpace(raw)}
}

// StrictExtractor — строгая стратегия: внешняя схема задачи дословно,
// ошибка при любом отклонении.
type StrictExtractor struct{}

// Name возвращает имя стратегии.
func (e *StrictExtractor) Name() string { return config.ExtractorStrict }

// strictResponse — внешняя схема задачи, принимаемая дословно:
// ответственные — список числовых id, даты — epoch-ms или null,
// custom_fields — плоский объект.
type strictResponse struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Content      string         `json:"content"`
	Assignees    []int64        `json:"assignees"`
	Status       string         `json:"status"`
	StartDate    *int64         `json:"start_date"`
	DueDate      *int64         `json:"due_date"`
	CustomFields map[string]any `json:"custom_fields"`
}

// Extract разбирает текст строго по внешней схеме.
// Отсутствие JSON, лишнее поле, ошибка разбора или пустой name — ошибка,
// деградации нет.
func (e *StrictExtractor) Extract(raw string) (*model.TaskDraft, error) {
	candidate := findJSONObject(raw)
	if candidate == "" {
		return nil, ErrNoJSON
	}

	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.DisallowUnknownFields()

	var resp strictResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSchema, err)
	}
	if strings.TrimSpace(resp.Name) == "" {
		return nil, fmt.Errorf("%w: пустой name", ErrBadSchema)
	}

	return &model.TaskDraft{
		Title:       strings.TrimSpace(resp.Name),
		Reason:      strings.TrimSpace(resp.Description),
		Comment:     strings.TrimSpace(resp.Content),
		Client:      stringify(resp.CustomFields["cliente"]),
		Attendant:   stringify(resp.CustomFields["responsavel"]),
		Company:     stringify(resp.CustomFields["empresa"]),
		AssigneeIDs: resp.Assignees,
		StartMillis: resp.StartDate,
		DueMillis:   resp.DueDate,
	}, nil
}

// draftFromMap собирает черновик из разобранного JSON по спискам псевдонимов.
func draftFromMap(data map[string]any) *model.TaskDraft {
	return &model.TaskDraft{
		Title:     firstAlias(data, titleAliases),
		Client:    firstAlias(data, clientAliases),
		Reason:    firstAlias(data, reasonAliases),
		Comment:   firstAlias(data, commentAliases),
		Attendant: firstAlias(data, attendantAliases),
		Company:   firstAlias(data, companyAliases),
		StartDate: firstAlias(data, startDateAliases),
		StartTime: firstAlias(data, startTimeAliases),
		DueDate:   firstAlias(data, dueDateAliases),
		DueTime:   firstAlias(data, dueTimeAliases),
	}
}

// firstAlias возвращает первое непустое значение по списку путей.
func firstAlias(data map[string]any, aliases []string) string {
	for _, path := range aliases {
		if v := lookupPath(data, path); v != "" {
			return v
		}
	}
	return ""
}

// lookupPath читает значение по пути с точками (descricao.cliente).
func lookupPath(data map[string]any, path string) string {
	parts := strings.Split(path, ".")
	cur := any(data)
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}
	return stringify(cur)
}

// stringify приводит значение JSON к строке.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// findJSONObject возвращает первый сбалансированный JSON-объект в тексте.
// Скобки внутри строковых литералов и экранированные кавычки учитываются.
// Пустая строка — объект не найден.
func findJSONObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
