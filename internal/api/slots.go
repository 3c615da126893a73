package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

func (h *Handler) CreateTimeSlots(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days              []string `json:"days"`
		Start             string   `json:"start"`
		End               string   `json:"end"`
		RecurrenceEndDate *string  `json:"recurrence_end_date"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	days := make([]time.Weekday, 0, len(req.Days))
	for _, d := range req.Days {
		day, err := formatting.ParseWeekday(d)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		days = append(days, day)
	}

	start, err := formatting.ParseMinute(req.Start)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	end, err := formatting.ParseMinute(req.End)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var recurrenceEnd *time.Time
	if req.RecurrenceEndDate != nil {
		d, err := formatting.ParseDate(*req.RecurrenceEndDate, h.location)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		recurrenceEnd = &d
	}

	tutorID := GetUserID(r.Context())

	var slots []*model.TimeSlot
	if len(days) == 1 {
		slot, err := h.timeSlots.CreateTimeSlot(r.Context(), tutorID, days[0], start, end, recurrenceEnd)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		slots = []*model.TimeSlot{slot}
	} else {
		slots, err = h.timeSlots.CreateTimeSlotGroup(r.Context(), tutorID, days, start, end, recurrenceEnd)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"slots": slots})
}

func (h *Handler) ListTimeSlots(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.idParam(w, r, "tutorID")
	if !ok {
		return
	}

	slots, err := h.timeSlots.ListTimeSlots(r.Context(), tutorID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

func (h *Handler) DeleteTimeSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := h.idParam(w, r, "slotID")
	if !ok {
		return
	}

	if err := h.timeSlots.DeleteTimeSlot(r.Context(), GetUserID(r.Context()), slotID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetTimeSlotAvailability(w http.ResponseWriter, r *http.Request) {
	slotID, ok := h.idParam(w, r, "slotID")
	if !ok {
		return
	}

	var req struct {
		IsAvailable *bool `json:"is_available"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.IsAvailable == nil {
		h.badRequest(w, r, "is_available is required")
		return
	}

	slot, err := h.timeSlots.SetTimeSlotAvailability(r.Context(), GetUserID(r.Context()), slotID, *req.IsAvailable)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"slot": slot})
}

func (h *Handler) SetRecurrenceEndDate(w http.ResponseWriter, r *http.Request) {
	slotID, ok := h.idParam(w, r, "slotID")
	if !ok {
		return
	}

	var req struct {
		Date *string `json:"date"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	var date *time.Time
	if req.Date != nil {
		d, err := formatting.ParseDate(*req.Date, h.location)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		date = &d
	}

	slot, err := h.timeSlots.SetRecurrenceEndDate(r.Context(), GetUserID(r.Context()), slotID, date)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"slot": slot})
}

func (h *Handler) FindAvailableSlots(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.idParam(w, r, "tutorID")
	if !ok {
		return
	}

	q := r.URL.Query()
	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		h.badRequest(w, r, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		h.badRequest(w, r, "to must be an RFC 3339 timestamp")
		return
	}
	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil {
		h.badRequest(w, r, "duration must be a number of minutes")
		return
	}

	query := service.AvailabilityQuery{
		TutorID:         tutorID,
		StudentID:       GetUserID(r.Context()),
		From:            from,
		To:              to,
		DurationMinutes: duration,
	}
	if raw := q.Get("course_id"); raw != "" {
		courseID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.badRequest(w, r, "Invalid course_id")
			return
		}
		query.CourseID = &courseID
	}

	windows, err := h.finder.FindAvailableSlots(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if windows == nil {
		windows = []model.AvailableWindow{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"windows": windows})
}
