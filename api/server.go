/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zerolog request line, tagged with the request ID
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a browser frontend

ROUTE GROUPS:
  /api/teachers/*       Teacher management
  /api/subjects/*       Subject management
  /api/years/*          Years, grids and reports
  /api/year-subjects/*  Weekly quotas
  /api/schedule/*       Placing and removing lessons
  /api/scenarios/*      Demo scenarios
  /api/export, /import  Whole-school JSON
  /                     Plain index page

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/teachers", func(r chi.Router) {
			r.Get("/", h.ListTeachers)
			r.Post("/", h.CreateTeacher)
			r.Get("/{id}", h.GetTeacher)
			r.Put("/{id}", h.UpdateTeacher)
			r.Delete("/{id}", h.DeleteTeacher)
			r.Get("/{id}/subjects", h.ListTeacherSubjects)
		})

		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", h.ListSubjects)
			r.Post("/", h.CreateSubject)
			r.Put("/{id}", h.UpdateSubject)
			r.Delete("/{id}", h.DeleteSubject)
		})

		r.Route("/years", func(r chi.Router) {
			r.Get("/", h.ListYears)
			r.Post("/", h.CreateYear)
			r.Put("/{id}", h.UpdateYear)
			r.Delete("/{id}", h.DeleteYear)
			r.Get("/{id}/subjects", h.ListYearSubjects)
			r.Get("/{id}/grid", h.GetYearGrid)
			r.Get("/{id}/report", h.GetYearReport)
			r.Get("/{id}/available-subjects", h.ListAvailableSubjects)
		})

		r.Route("/year-subjects", func(r chi.Router) {
			r.Post("/", h.CreateYearSubject)
			r.Put("/{id}", h.UpdateYearSubject)
			r.Delete("/{id}", h.DeleteYearSubject)
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Post("/", h.PlaceLesson)
			r.Delete("/{id}", h.RemoveLesson)
			r.Get("/availability", h.CheckAvailability)
			r.Get("/available-teachers", h.ListAvailableTeachers)
		})

		r.Get("/completion", h.GetCompletion)
		r.Get("/timeslots", h.ListTimeSlots)
		r.Get("/days", h.ListDays)

		r.Get("/export", h.Export)
		r.Post("/import", h.Import)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetAll)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Timetable Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Timetable Engine API</h1>
<ul>
<li><a href="/api/teachers">/api/teachers</a> - List teachers</li>
<li><a href="/api/years">/api/years</a> - List years</li>
<li><a href="/api/timeslots">/api/timeslots</a> - Time slots</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
