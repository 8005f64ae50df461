package clickup

import (
	"fmt"
	"strings"
	"time"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// fallbackTaskName — имя задачи, когда извлечение не дало заголовка.
const fallbackTaskName = "Atendimento"

// BuildTask собирает payload создания задачи ClickUp из черновика.
//
//   - даты конвертируются в epoch-ms в зоне loc; дата без времени
//     трактуется как полночь; заданные напрямую epoch-ms (StartMillis,
//     DueMillis) уходят как есть;
//   - компания STV отображается в вариант поля Cliente X Produto,
//     прочие компании — null (поле остаётся незаполненным);
//   - поле Produto всегда заполняется вариантом Eobra;
//   - ответственный передаётся уже разрешённым идентификатором;
//     заданный напрямую список AssigneeIDs имеет приоритет.
func BuildTask(draft *model.TaskDraft, assigneeID int64, status string, loc *time.Location) (*CreateTaskRequest, error) {
	name := strings.TrimSpace(draft.Title)
	if name == "" {
		name = fallbackTaskName
	}

	startDate := draft.StartMillis
	if startDate == nil {
		var err error
		startDate, err = epochMillis(draft.StartDate, draft.StartTime, loc)
		if err != nil {
			return nil, fmt.Errorf("дата начала: %w", err)
		}
	}
	dueDate := draft.DueMillis
	if dueDate == nil {
		var err error
		dueDate, err = epochMillis(draft.DueDate, draft.DueTime, loc)
		if err != nil {
			return nil, fmt.Errorf("дата завершения: %w", err)
		}
	}

	assignees := draft.AssigneeIDs
	if len(assignees) == 0 {
		assignees = []int64{assigneeID}
	}

	req := &CreateTaskRequest{
		Name:        name,
		Description: buildDescription(draft),
		Content:     strings.TrimSpace(draft.Comment),
		Status:      status,
		Assignees:   assignees,
		StartDate:   startDate,
		DueDate:     dueDate,
		CustomFields: []CustomField{
			{ID: FieldClientProduct, Value: companyOption(draft.Company)},
			{ID: FieldProduct, Value: OptionProductEobra},
		},
	}
	return req, nil
}

// buildDescription собирает сводку обращения из полей черновика.
// Пустые поля пропускаются; комментарий уходит отдельным полем content.
func buildDescription(draft *model.TaskDraft) string {
	var b strings.Builder
	if draft.Client != "" {
		fmt.Fprintf(&b, "Cliente: %s\n", draft.Client)
	}
	if draft.Reason != "" {
		fmt.Fprintf(&b, "Motivo: %s\n", draft.Reason)
	}
	if draft.Attendant != "" {
		fmt.Fprintf(&b, "Responsável: %s\n", draft.Attendant)
	}
	return b.String()
}

// companyOption возвращает ID варианта dropdown для компании.
// Неизвестная компания — nil (поле не заполняется).
func companyOption(company string) any {
	if strings.EqualFold(strings.TrimSpace(company), "STV") {
		return OptionCompanySTV
	}
	return nil
}

// epochMillis конвертирует дату (YYYY-MM-DD) и время (HH:MM)
// в epoch-ms в зоне loc. Пустая дата — nil. Пустое время — полночь.
func epochMillis(date, timeStr string, loc *time.Location) (*int64, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, nil
	}

	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		timeStr = "00:00"
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, loc)
	if err != nil {
		return nil, fmt.Errorf("некорректные дата/время %q %q: %w", date, timeStr, err)
	}

	ms := t.UnixMilli()
	return &ms, nil
}
