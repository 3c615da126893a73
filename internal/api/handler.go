// Package api отдаёт операции планировщика по HTTP в JSON
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

type Handler struct {
	users     *service.UserService
	courses   *service.CourseService
	timeSlots *service.TimeSlotService
	finder    *service.AvailabilityFinder
	scheduler *service.SchedulingService
	lifecycle *service.SessionLifecycleManager
	location  *time.Location
	logger    *zap.Logger
}

func NewHandler(
	users *service.UserService,
	courses *service.CourseService,
	timeSlots *service.TimeSlotService,
	finder *service.AvailabilityFinder,
	scheduler *service.SchedulingService,
	lifecycle *service.SessionLifecycleManager,
	location *time.Location,
	logger *zap.Logger,
) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		users:     users,
		courses:   courses,
		timeSlots: timeSlots,
		finder:    finder,
		scheduler: scheduler,
		lifecycle: lifecycle,
		location:  location,
		logger:    logger,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.badRequest(w, r, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(w, r, "Invalid "+name)
		return 0, false
	}
	return id, true
}
