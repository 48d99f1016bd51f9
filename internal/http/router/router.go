package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/http/handlers"
)

// RequestTimeout bounds every non-streaming request.
const RequestTimeout = 5 * time.Second

// Deps carries the handlers and optional middleware mounted by New.
type Deps struct {
	Base     *handlers.Handlers
	Couriers *handlers.CourierHandler
	Orders   *handlers.OrderHandler
	Routes   *handlers.RouteHandler
	Sessions *handlers.SessionHandler

	// Observability and RateLimit are applied when set.
	Observability func(http.Handler) http.Handler
	RateLimit     func(http.Handler) http.Handler
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Observability != nil {
		r.Use(d.Observability)
	}

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	r.Group(func(r chi.Router) {
		if d.RateLimit != nil {
			r.Use(d.RateLimit)
		}

		// the track stream outlives any request timeout
		if d.Sessions != nil {
			r.Get("/couriers/{id}/track", d.Sessions.Track)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(RequestTimeout))
			mountCouriers(r, d)
			mountOrders(r, d)
		})
	})

	return r
}

func mountCouriers(r chi.Router, d Deps) {
	if d.Couriers != nil {
		r.Get("/couriers", d.Couriers.List)
		r.Post("/couriers", d.Couriers.Create)
		r.Get("/couriers/{id}", d.Couriers.GetByID)
		r.Patch("/couriers/{id}", d.Couriers.Update)
	}
	if d.Routes != nil {
		r.Post("/couriers/{id}/route", d.Routes.Plan)
	}
	if d.Sessions != nil {
		r.Post("/couriers/{id}/session", d.Sessions.Start)
		r.Delete("/couriers/{id}/session", d.Sessions.Stop)
		r.Post("/couriers/{id}/positions", d.Sessions.Positions)
		r.Get("/couriers/{id}/trail", d.Sessions.Trail)
		r.Get("/couriers/{id}/notifications", d.Sessions.Notifications)
		r.Post("/couriers/{id}/notifications/{itemID}/accept", d.Sessions.AcceptOffer)
		r.Post("/couriers/{id}/notifications/{itemID}/reject", d.Sessions.RejectOffer)
		r.Post("/couriers/{id}/notifications/{itemID}/confirm", d.Sessions.ConfirmMessage)
	}
}

func mountOrders(r chi.Router, d Deps) {
	if d.Orders == nil {
		return
	}
	r.Get("/orders/{id}/status", d.Orders.Status)
	r.Post("/orders/{id}/arrived-at-store", d.Orders.ArrivedAtStore())
	r.Post("/orders/{id}/pickup", d.Orders.Pickup())
	r.Post("/orders/{id}/depart", d.Orders.Depart())
	r.Post("/orders/{id}/arrived-at-customer", d.Orders.ArrivedAtCustomer())
	r.Post("/orders/{id}/deliver", d.Orders.Deliver())
	r.Post("/orders/{id}/cancel", d.Orders.Cancel())
}
