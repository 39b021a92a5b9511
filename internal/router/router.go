package router

import (
	"net/http"

	"mini-pos/internal/auth"
	"mini-pos/internal/handler"
	"mini-pos/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers the router dispatches to.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Sales    *handler.SalesHandler
	Report   *handler.ReportHandler
	Events   *handler.EventsHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// A nil limiter disables rate limiting.
func New(
	h Handlers,
	sessions auth.SessionStore,
	limiter *middleware.RateLimiter,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	limit := func(rule middleware.Rule, next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return limiter.Limit(rule)(next)
	}

	requireSession := middleware.RequireSession(sessions, logger)

	// protect wraps fn so it runs only for a session whose role holds perm.
	protect := func(perm auth.Permission, fn http.HandlerFunc) http.Handler {
		return requireSession(middleware.RequirePermission(perm, logger)(fn))
	}

	// Public endpoints
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.Handle("POST /api/auth/login", limit(middleware.LoginLimit, http.HandlerFunc(h.Auth.Login)))

	// Accounts
	mux.Handle("POST /api/auth/logout", requireSession(http.HandlerFunc(h.Auth.Logout)))
	mux.Handle("POST /api/auth/register", limit(middleware.RegisterLimit, protect(auth.PermRegisterUser, h.Auth.Register)))

	// Categories
	mux.Handle("GET /api/categories", protect(auth.PermViewCatalog, h.Category.List))
	mux.Handle("POST /api/categories", limit(middleware.CatalogWriteLimit, protect(auth.PermManageCatalog, h.Category.Create)))
	mux.Handle("PUT /api/categories/{id}", limit(middleware.CatalogWriteLimit, protect(auth.PermManageCatalog, h.Category.Update)))
	mux.Handle("DELETE /api/categories/{id}", limit(middleware.DeleteLimit, protect(auth.PermManageCatalog, h.Category.Delete)))
	mux.Handle("GET /api/categories/{id}/products", protect(auth.PermViewCatalog, h.Category.Products))

	// Products
	mux.Handle("GET /api/products", protect(auth.PermViewCatalog, h.Product.List))
	mux.Handle("GET /api/products/{id}", protect(auth.PermViewCatalog, h.Product.GetByID))
	mux.Handle("POST /api/products", limit(middleware.CatalogWriteLimit, protect(auth.PermManageCatalog, h.Product.Create)))
	mux.Handle("PUT /api/products/{id}", limit(middleware.CatalogWriteLimit, protect(auth.PermManageCatalog, h.Product.Update)))
	mux.Handle("DELETE /api/products/{id}", limit(middleware.DeleteLimit, protect(auth.PermManageCatalog, h.Product.Delete)))
	mux.Handle("POST /api/products/{id}/stock", limit(middleware.StockLimit, protect(auth.PermAdjustStock, h.Product.DecrementStock)))

	// Sales
	mux.Handle("POST /api/cart", limit(middleware.CartLimit, protect(auth.PermSell, h.Sales.Cart)))
	mux.Handle("POST /api/checkout", limit(middleware.CheckoutLimit, protect(auth.PermSell, h.Sales.Checkout)))

	// Reports
	mux.Handle("GET /api/reports/daily", limit(middleware.ReportLimit, protect(auth.PermViewReports, h.Report.Daily)))
	mux.Handle("GET /api/reports/weekly", limit(middleware.ReportLimit, protect(auth.PermViewReports, h.Report.Weekly)))
	mux.Handle("POST /api/reports/filter", limit(middleware.ReportLimit, protect(auth.PermViewReports, h.Report.Filter)))
	mux.Handle("GET /api/dashboard", protect(auth.PermViewDashboard, h.Report.Dashboard))

	// Live stock events
	mux.Handle("GET /api/events", protect(auth.PermSubscribe, h.Events.Stream))

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
