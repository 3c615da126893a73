package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, jwtAuth *JWTAuth, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtAuth.Middleware)

		r.Get("/me", h.GetMe)
		r.Post("/me/tutor", h.BecomeTutor)

		r.Route("/tutors/{tutorID}", func(r chi.Router) {
			r.Get("/slots", h.ListTimeSlots)
			r.Get("/courses", h.ListCourses)
			r.Get("/availability", h.FindAvailableSlots)
		})

		r.Post("/courses", h.CreateCourse)

		r.Route("/slots", func(r chi.Router) {
			r.Post("/", h.CreateTimeSlots)
			r.Delete("/{slotID}", h.DeleteTimeSlot)
			r.Put("/{slotID}/availability", h.SetTimeSlotAvailability)
			r.Put("/{slotID}/recurrence-end", h.SetRecurrenceEndDate)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.ScheduleSession)
			r.Get("/{sessionID}", h.GetSession)
			r.Patch("/{sessionID}", h.UpdateSession)
			r.Post("/{sessionID}/status", h.UpdateSessionStatus)
			r.Post("/{sessionID}/complete", h.CompleteSession)
			r.Post("/{sessionID}/cancel", h.CancelSession)
			r.Post("/{sessionID}/notes", h.AddSessionNotes)
		})
	})

	return r
}
