package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) createFile(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, reasonInvalidJSON)
		return
	}

	f, err := h.files.Create(r.Context(), userID(r.Context()), services.CreateFileRequest{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: string(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFileResponse(f))
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	f, err := h.files.Get(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileResponse(f))
}

// listFiles serves GET /files?parentId=&page=. A missing or malformed page
// is the first page; a page too large for an int is past the end.
func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parsePage(q.Get("page"))

	files, err := h.files.List(r.Context(), userID(r.Context()), q.Get("parentId"), page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileListResponse(files))
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	switch {
	case err == nil:
		return page
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		return math.MaxInt
	default:
		return 0
	}
}

func (h *Handler) publishFile(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

func (h *Handler) unpublishFile(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	f, err := h.files.SetVisibility(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), isPublic)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileResponse(f))
}

func (h *Handler) getFileData(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.files.ReadContent(r.Context(), userID(r.Context()),
		chi.URLParam(r, "id"), r.URL.Query().Get("size"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
