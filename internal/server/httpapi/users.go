package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filesmanager/internal/common"
)

// connect exchanges Basic credentials for a session token.
func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	token, err := h.users.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Disconnect(r.Context(), r.Header.Get(common.TokenHeaderName)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, reasonInvalidJSON)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(u))
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), userID(r.Context()))
	if err != nil {
		// a session for a user that no longer resolves is not a valid session
		if errors.Is(err, common.ErrorNotFound) {
			err = common.ErrorUnauthorized
		}
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}
