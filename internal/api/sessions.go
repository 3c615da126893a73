package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

func (h *Handler) ScheduleSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TutorID         int64          `json:"tutor_id"`
		CourseID        int64          `json:"course_id"`
		Start           time.Time      `json:"start"`
		DurationMinutes int            `json:"duration_minutes"`
		StudentQuestion string         `json:"student_question"`
		Priority        model.Priority `json:"priority"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.scheduler.ScheduleSession(r.Context(), service.BookingRequest{
		StudentID:       GetUserID(r.Context()),
		TutorID:         req.TutorID,
		CourseID:        req.CourseID,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		StudentQuestion: req.StudentQuestion,
		Priority:        req.Priority,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"session": session})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	var statuses []model.SessionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, model.SessionStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	sessions, err := h.lifecycle.ListSessions(r.Context(), GetUserID(r.Context()), statuses)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*model.TutoringSession{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.idParam(w, r, "sessionID")
	if !ok {
		return
	}

	session, err := h.lifecycle.GetSession(r.Context(), sessionID, GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":       session,
		"next_statuses": service.NextStatuses(session, GetUserID(r.Context())),
	})
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.idParam(w, r, "sessionID")
	if !ok {
		return
	}

	var req struct {
		ScheduledAt     *time.Time      `json:"scheduled_at"`
		DurationMinutes *int            `json:"duration_minutes"`
		CourseID        *int64          `json:"course_id"`
		Priority        *model.Priority `json:"priority"`
		TutorNotes      *string         `json:"tutor_notes"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.lifecycle.UpdateTutoringSession(r.Context(), sessionID, GetUserID(r.Context()), service.SessionChanges{
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		CourseID:        req.CourseID,
		Priority:        req.Priority,
		TutorNotes:      req.TutorNotes,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (h *Handler) UpdateSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.idParam(w, r, "sessionID")
	if !ok {
		return
	}

	var req struct {
		Status model.SessionStatus `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.lifecycle.UpdateSessionStatus(r.Context(), sessionID, GetUserID(r.Context()), req.Status)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.idParam(w, r, "sessionID")
	if !ok {
		return
	}

	var req struct {
		Summary string `json:"summary"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.lifecycle.CompleteSession(r.Context(), sessionID, GetUserID(r.Context()), req.Summary)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.idParam(w, r, "sessionID")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.lifecycle.CancelSession(r.Context(), sessionID, GetUserID(r.Context()), req.Reason)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (h *Handler) AddSessionNotes(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.idParam(w, r, "sessionID")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.lifecycle.AddSessionNotes(r.Context(), sessionID, GetUserID(r.Context()), req.Notes)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}
