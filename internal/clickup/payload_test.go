package clickup

import (
	"strings"
	"testing"
	"time"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("загрузка зоны: %v", err)
	}
	return loc
}

func TestEpochMillis(t *testing.T) {
	loc := saoPaulo(t)

	// 2024-05-01 14:30 в Сан-Паулу (UTC-3) = 17:30 UTC
	ms, err := epochMillis("2024-05-01", "14:30", loc)
	if err != nil {
		t.Fatalf("epochMillis() ошибка: %v", err)
	}
	if ms == nil || *ms != 1714584600000 {
		t.Errorf("epochMillis() = %v, ожидалось 1714584600000", ms)
	}
}

func TestEpochMillis_EmptyDate(t *testing.T) {
	ms, err := epochMillis("", "14:30", saoPaulo(t))
	if err != nil {
		t.Fatalf("epochMillis() ошибка: %v", err)
	}
	if ms != nil {
		t.Errorf("epochMillis() пустой даты = %v, ожидалось nil", *ms)
	}
}

func TestEpochMillis_DateWithoutTime(t *testing.T) {
	loc := saoPaulo(t)

	ms, err := epochMillis("2024-05-01", "", loc)
	if err != nil {
		t.Fatalf("epochMillis() ошибка: %v", err)
	}
	// Полночь по Сан-Паулу = 03:00 UTC
	want := int64(1714532400000)
	if ms == nil || *ms != want {
		t.Errorf("epochMillis() = %v, ожидалось %d", ms, want)
	}
}

func TestEpochMillis_Invalid(t *testing.T) {
	if _, err := epochMillis("01/05/2024", "14:30", saoPaulo(t)); err == nil {
		t.Error("epochMillis() неверного формата должен вернуть ошибку")
	}
}

func TestBuildTask(t *testing.T) {
	draft := &model.TaskDraft{
		Title:     "Erro no login",
		Client:    "João",
		Reason:    "Acesso",
		Comment:   "Senha redefinida",
		Attendant: "Marcos",
		Company:   "stv",
		StartDate: "2024-05-01",
		StartTime: "14:30",
	}

	req, err := BuildTask(draft, 49170204, "concluído", saoPaulo(t))
	if err != nil {
		t.Fatalf("BuildTask() ошибка: %v", err)
	}

	if req.Name != "Erro no login" {
		t.Errorf("Name = %q", req.Name)
	}
	if req.Status != "concluído" {
		t.Errorf("Status = %q", req.Status)
	}
	if len(req.Assignees) != 1 || req.Assignees[0] != 49170204 {
		t.Errorf("Assignees = %v", req.Assignees)
	}
	if req.StartDate == nil || *req.StartDate != 1714584600000 {
		t.Errorf("StartDate = %v, ожидалось 1714584600000", req.StartDate)
	}
	if req.DueDate != nil {
		t.Errorf("DueDate = %v, ожидалось nil", *req.DueDate)
	}

	if len(req.CustomFields) != 2 {
		t.Fatalf("CustomFields = %v, ожидалось 2 поля", req.CustomFields)
	}
	// Компания stv (без учёта регистра) отображается в вариант STV
	if req.CustomFields[0].ID != FieldClientProduct || req.CustomFields[0].Value != OptionCompanySTV {
		t.Errorf("поле Cliente X Produto = %+v", req.CustomFields[0])
	}
	if req.CustomFields[1].ID != FieldProduct || req.CustomFields[1].Value != OptionProductEobra {
		t.Errorf("поле Produto = %+v", req.CustomFields[1])
	}

	for _, want := range []string{"Cliente: João", "Motivo: Acesso", "Responsável: Marcos"} {
		if !strings.Contains(req.Description, want) {
			t.Errorf("Description не содержит %q: %q", want, req.Description)
		}
	}
	// Решение уходит отдельным полем content, не в description
	if req.Content != "Senha redefinida" {
		t.Errorf("Content = %q, ожидалось Senha redefinida", req.Content)
	}
	if strings.Contains(req.Description, "Senha redefinida") {
		t.Errorf("Description не должна содержать комментарий: %q", req.Description)
	}
}

func TestBuildTask_DirectMillisAndAssignees(t *testing.T) {
	start := int64(1714584600000)
	draft := &model.TaskDraft{
		Title:       "Chamado",
		Comment:     "Resolvido",
		AssigneeIDs: []int64{111, 222},
		StartMillis: &start,
	}

	req, err := BuildTask(draft, 49170204, "concluído", saoPaulo(t))
	if err != nil {
		t.Fatalf("BuildTask() ошибка: %v", err)
	}

	// Заданные напрямую значения уходят как есть, без разрешения имени
	if len(req.Assignees) != 2 || req.Assignees[0] != 111 || req.Assignees[1] != 222 {
		t.Errorf("Assignees = %v, ожидалось [111 222]", req.Assignees)
	}
	if req.StartDate == nil || *req.StartDate != start {
		t.Errorf("StartDate = %v, ожидалось %d", req.StartDate, start)
	}
	if req.DueDate != nil {
		t.Errorf("DueDate = %v, ожидалось nil", *req.DueDate)
	}
}

func TestBuildTask_UnknownCompany(t *testing.T) {
	draft := &model.TaskDraft{Title: "X", Company: "ACME"}

	req, err := BuildTask(draft, 1, "aberto", saoPaulo(t))
	if err != nil {
		t.Fatalf("BuildTask() ошибка: %v", err)
	}
	if req.CustomFields[0].Value != nil {
		t.Errorf("неизвестная компания должна давать null: %v", req.CustomFields[0].Value)
	}
}

func TestBuildTask_EmptyTitle(t *testing.T) {
	req, err := BuildTask(&model.TaskDraft{Comment: "texto bruto"}, 1, "aberto", saoPaulo(t))
	if err != nil {
		t.Fatalf("BuildTask() ошибка: %v", err)
	}
	if req.Name != fallbackTaskName {
		t.Errorf("Name = %q, ожидалось %q", req.Name, fallbackTaskName)
	}
	if req.Content != "texto bruto" {
		t.Errorf("Content = %q", req.Content)
	}
}
