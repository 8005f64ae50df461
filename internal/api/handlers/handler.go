// handler.go — общие помощники HTTP-обработчиков API FlowCenter.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
)

// writeJSON сериализует v в тело ответа со статусом status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON читает JSON-тело запроса в dst.
// При ошибке пишет 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return false
	}
	return true
}
