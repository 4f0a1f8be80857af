package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/nairobi-county/county-tickets/internal/api/http/handlers"
	"github.com/nairobi-county/county-tickets/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Geo            *handlers.GeoHandler
	Preferences    *handlers.PreferencesHandler
	MetricsHandler http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.MetricsHandler))
	}

	app.Get("/geo/resolve", cfg.Geo.Resolve)
	app.Get("/wards", cfg.Geo.ListWards)
	app.Get("/wards/:code", cfg.Geo.GetWard)
	app.Get("/routing/:issueCategory", cfg.Geo.PreviewRoute)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Post("/:id/rating", cfg.Tickets.RateTicket)
	tickets.Post("/:id/remarks", cfg.Tickets.AddRemark)

	staff := app.Group("/staff", auth.RequireStaff())
	staff.Get("/tickets/overdue", cfg.StaffTickets.ListOverdue)
	staff.Post("/tickets/:id/assign", cfg.StaffTickets.AssignTicket)
	staff.Post("/tickets/:id/advance", cfg.StaffTickets.AdvanceTicket)
	staff.Post("/tickets/:id/escalate", cfg.StaffTickets.EscalateTicket)
	staff.Post("/tickets/:id/resolve", cfg.StaffTickets.ResolveTicket)
	staff.Post("/tickets/:id/reject", cfg.StaffTickets.RejectTicket)
	staff.Post("/tickets/:id/recompute-sla", cfg.StaffTickets.RecomputeSLA)

	prefs := app.Group("/preferences")
	prefs.Get("/:owner", cfg.Preferences.ListPreferences)
	prefs.Get("/:owner/:key", cfg.Preferences.GetPreference)
	prefs.Put("/:owner/:key", cfg.Preferences.PutPreference)
}
