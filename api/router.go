package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Bookings  *BookingHandler
	Locations *LocationHandler
	Pricing   *PricingHandler
	Contact   *ContactHandler
	Messaging *MessagingHandler
	Settings  *SettingsHandler
	Auth      *AuthHandler
}

type RouterOptions struct {
	Verifier     TokenVerifier
	CORSOrigins  []string
	HealthChecks map[string]HealthCheck
	Log          logrus.FieldLogger
}

// NewRouter mounts every handler under /api. Staff routes live under
// /api/admin behind AdminAuth; /api/admin/login stays public.
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(opts.Log), CORS(opts.CORSOrigins))

	public := r.Group("/api")
	public.GET("/health", health(opts.HealthChecks))
	h.Locations.Register(public)
	h.Pricing.Register(public)
	h.Bookings.Register(public)
	h.Contact.Register(public)
	h.Auth.Register(public)

	admin := r.Group("/api/admin", AdminAuth(opts.Verifier))
	h.Bookings.RegisterAdmin(admin)
	h.Locations.RegisterAdmin(admin)
	h.Pricing.RegisterAdmin(admin)
	h.Contact.RegisterAdmin(admin)
	h.Messaging.RegisterAdmin(admin)
	h.Settings.RegisterAdmin(admin)

	return r
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
