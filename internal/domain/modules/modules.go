// Пакет modules — каталог модулей консоли и правила их видимости.
//
// Каталог фиксирован в коде: состав модулей меняется релизом,
// а не данными. Таблица modules в БД заполняется из этого же
// списка миграцией и служит для ссылочной целостности user_modules.
package modules

import (
	"sort"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// Идентификаторы модулей каталога.
const (
	IDDashboard = 1
	IDPortal    = 2
	IDTasks     = 3
	IDSchedule  = 4
	IDClients   = 5
	IDSettings  = 6
	IDAdmin     = 7
)

// catalog — полный каталог модулей в порядке навигации.
var catalog = []model.Module{
	{ID: IDDashboard, Name: "Dashboard", Path: "/dashboard", Icon: "layout-dashboard", SortOrder: 1},
	{ID: IDPortal, Name: "Sacmais", Path: "/sacmais", Icon: "globe", SortOrder: 2},
	{ID: IDTasks, Name: "Atendimentos", Path: "/atendimentos", Icon: "headset", SortOrder: 3},
	{ID: IDSchedule, Name: "Agenda", Path: "/agenda", Icon: "calendar", SortOrder: 4},
	{ID: IDClients, Name: "Clientes", Path: "/clientes", Icon: "users", SortOrder: 5},
	{ID: IDSettings, Name: "Configurações", Path: "/configuracoes", Icon: "settings", SortOrder: 6},
	{ID: IDAdmin, Name: "Admin", Path: "/admin", Icon: "shield", AdminOnly: true, SortOrder: 7},
}

// Catalog возвращает копию полного каталога модулей в порядке навигации.
func Catalog() []model.Module {
	out := make([]model.Module, len(catalog))
	copy(out, catalog)
	return out
}

// ByID возвращает модуль каталога по идентификатору.
// Второе значение false, если модуль не найден.
func ByID(id int) (model.Module, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return model.Module{}, false
}

// Exists проверяет наличие модуля в каталоге.
func Exists(id int) bool {
	_, ok := ByID(id)
	return ok
}

// Visible возвращает модули, видимые пользователю с указанной ролью
// и набором включённых модулей. Модуль виден, когда доступ включён
// в accessSet И (модуль не AdminOnly ИЛИ роль — admin): AdminOnly-модуль
// не виден обычной роли даже при включённом доступе. Дубликаты по ID
// отсеиваются, порядок — по SortOrder.
func Visible(role string, accessSet map[int]bool) []model.Module {
	result := make([]model.Module, 0, len(catalog))
	seen := make(map[int]bool, len(catalog))
	for _, m := range catalog {
		if seen[m.ID] {
			continue
		}
		if m.AdminOnly && role != model.RoleAdmin {
			continue
		}
		if !accessSet[m.ID] {
			continue
		}
		seen[m.ID] = true
		result = append(result, m)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SortOrder < result[j].SortOrder
	})
	return result
}

// NavigationItems преобразует модули в элементы навигации для консоли.
func NavigationItems(mods []model.Module) []model.NavigationItem {
	items := make([]model.NavigationItem, 0, len(mods))
	for _, m := range mods {
		items = append(items, model.NavigationItem{
			ID:   m.ID,
			Name: m.Name,
			Path: m.Path,
			Icon: m.Icon,
		})
	}
	return items
}
