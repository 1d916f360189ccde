package www

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nekkaida/Cardose-sub003/service"
	"github.com/nekkaida/Cardose-sub003/workflow"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeServiceError maps validation failures to 400, missing rows to
// 404, illegal status transitions to 409 and everything else (store
// I/O) to 500. Transient remote failures never reach here; the
// services absorb them.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	var te *workflow.TransitionError
	if errors.As(err, &te) {
		writeError(w, http.StatusConflict, te.Error())
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// listResult wraps a read with the branch that served it, so the UI
// can show an "offline data" badge.
type listResult struct {
	Origin string `json:"origin"`
	Data   any    `json:"data"`
}
