package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filesmanager/internal/common"
)

const (
	reasonUnauthorized = "Unauthorized"
	reasonNotFound     = "Not found"
	reasonInternal     = "Internal Server Error"
	reasonInvalidJSON  = "Invalid JSON"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, errorResponse{Error: reason})
}

// writeServiceError maps a service error onto the API taxonomy. Anything
// unrecognised is logged and reported as a bare 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if reason, ok := common.ValidationReason(err); ok {
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusBadRequest, common.ReasonAlreadyExist)
	case errors.Is(err, common.ErrorFolderContent):
		writeError(w, http.StatusBadRequest, common.ErrorFolderContent.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, reasonUnauthorized)
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, reasonNotFound)
	default:
		h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, reasonInternal)
	}
}
