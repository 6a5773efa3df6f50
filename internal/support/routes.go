package support

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/messages", h.PostMessage)
		r.Get("/sessions/{userID}", h.GetSession)
	})

	r.Route("/console", func(r chi.Router) {
		r.Get("/notifications", h.ListNotifications)
		r.Get("/notifications/{id}", h.GetNotification)
		r.Post("/notifications/{id}/respond", h.Respond)
		r.Post("/notifications/{id}/resolve", h.Resolve)
		r.Get("/counts", h.Counts)
	})
}
