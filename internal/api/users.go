package api

import (
	"net/http"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if user == nil {
		h.handleServiceError(w, r, model.NotFoundErrorf("user"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *Handler) BecomeTutor(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.MakeTutor(r.Context(), GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
