package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/upkeep/internal/http/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/http/booking"
	"github.com/MrJamesThe3rd/upkeep/internal/http/client"
	"github.com/MrJamesThe3rd/upkeep/internal/http/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/http/employee"
	"github.com/MrJamesThe3rd/upkeep/internal/http/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/http/export"
	"github.com/MrJamesThe3rd/upkeep/internal/http/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/http/lead"
	authmw "github.com/MrJamesThe3rd/upkeep/internal/http/middleware"
	"github.com/MrJamesThe3rd/upkeep/internal/http/payroll"
	"github.com/MrJamesThe3rd/upkeep/internal/http/workorder"
)

type Handlers struct {
	Leads      *lead.Handler
	Bookings   *booking.Handler
	Clients    *client.Handler
	Employees  *employee.Handler
	Estimates  *estimate.Handler
	WorkOrders *workorder.Handler
	Invoices   *invoice.Handler
	Payroll    *payroll.Handler
	Dashboard  *dashboard.Handler
	Activity   *activity.Handler
	Exports    *export.Handler
}

func New(h Handlers, tokens authmw.Verifier, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.Authenticate(tokens))

		r.Route("/leads", h.Leads.Routes)

		r.Route("/bookings", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Bookings.Routes(r)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Clients.Routes(r)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Clients.ContactRoutes(r)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Employees.Routes(r)
		})

		r.Route("/estimates", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Estimates.Routes(r)
		})

		r.Route("/work-orders", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.WorkOrders.Routes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Invoices.Routes(r)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Payroll.Routes(r)
		})

		r.Route("/dashboard", h.Dashboard.Routes)
		r.Route("/reports", h.Dashboard.ReportRoutes)
		r.Route("/activity", h.Activity.Routes)
		r.Route("/exports", h.Exports.Routes)
	})

	return router
}
