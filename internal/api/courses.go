package api

import "net/http"

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Duration    int    `json:"duration"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	course, err := h.courses.CreateCourse(r.Context(), GetUserID(r.Context()), req.Name, req.Description, req.Duration)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"course": course})
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.idParam(w, r, "tutorID")
	if !ok {
		return
	}

	courses, err := h.courses.GetTutorCourses(r.Context(), tutorID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}
