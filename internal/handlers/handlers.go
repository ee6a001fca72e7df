package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"groupdump/internal/auth"
	"groupdump/internal/core"
)

// Handlers holds the HTTP boundary's dependencies.
type Handlers struct {
	svc  *core.Service
	auth *auth.Manager
}

func New(svc *core.Service, authManager *auth.Manager) *Handlers {
	return &Handlers{svc: svc, auth: authManager}
}

// RouterOptions carries deployment-level tuning for the router.
type RouterOptions struct {
	AllowedOrigins []string
}

// Router builds the full HTTP router. Everything under /api/v1 except
// registration, login, and the processor webhook requires a bearer token.
func (h *Handlers) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Post("/webhooks/processor", h.processorWebhook)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)

			r.Get("/auth/me", h.me)

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", h.createGroup)
				r.Get("/", h.listGroups)

				r.Route("/{groupID}", func(r chi.Router) {
					r.Get("/", h.getGroup)
					r.Delete("/", h.deleteGroup)
					r.Post("/join", h.joinGroup)
					r.Get("/members", h.groupMembers)
					r.Get("/invitees", h.groupInvitees)
					r.Put("/selections", h.setSelections)
					r.Get("/slot-analysis", h.slotAnalysis)
					r.Get("/funding", h.funding)
					r.Post("/payment/setup", h.beginPaymentSetup)
					r.Post("/payment/confirm", h.confirmPaymentSetup)
					r.Post("/schedule", h.scheduleService)
					r.Post("/complete", h.completeGroup)
					r.Get("/card", h.card)
					r.Post("/card/freeze", h.freezeCard)
					r.Post("/card/unfreeze", h.unfreezeCard)
					r.Get("/card/transactions", h.cardTransactions)
				})
			})

			r.Post("/invites/redeem", h.redeemInvite)

			r.Route("/vendors", func(r chi.Router) {
				r.Post("/", h.createVendor)
				r.Get("/", h.listVendors)
				r.Get("/{vendorID}", h.getVendor)
			})

			r.Route("/rentals", func(r chi.Router) {
				r.Post("/", h.createRental)
				r.Get("/", h.listRentals)
			})
		})
	})

	return r
}
