package httpapi

import "net/http"

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status.Status(r.Context()))
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.status.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
