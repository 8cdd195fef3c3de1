package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mokolo-market/mokolo-backend/api/controllers"
	"github.com/mokolo-market/mokolo-backend/api/middleware"
	"github.com/mokolo-market/mokolo-backend/internal/accounts"
	authsvc "github.com/mokolo-market/mokolo-backend/internal/auth"
	catalogsvc "github.com/mokolo-market/mokolo-backend/internal/catalog"
	checkoutsvc "github.com/mokolo-market/mokolo-backend/internal/checkout"
	contactsvc "github.com/mokolo-market/mokolo-backend/internal/contact"
	ordersvc "github.com/mokolo-market/mokolo-backend/internal/orders"
	paymentsvc "github.com/mokolo-market/mokolo-backend/internal/payments"
	shippingsvc "github.com/mokolo-market/mokolo-backend/internal/shipping"
	vendorsvc "github.com/mokolo-market/mokolo-backend/internal/vendors"
	"github.com/mokolo-market/mokolo-backend/pkg/auth/session"
	"github.com/mokolo-market/mokolo-backend/pkg/config"
	"github.com/mokolo-market/mokolo-backend/pkg/db"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
	"github.com/mokolo-market/mokolo-backend/pkg/metrics"
	"github.com/mokolo-market/mokolo-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth     authsvc.Service
	Accounts accounts.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Payments paymentsvc.Service
	Catalog  catalogsvc.Service
	Vendors  vendorsvc.Service
	Shipping shippingsvc.Service
	Contact  contactsvc.Service
}

// Deps carries infrastructure handles for middleware and health checks.
type Deps struct {
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Registry    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)

	passthrough := func(next http.Handler) http.Handler { return next }
	loginLimit, registerLimit := passthrough, passthrough

	var idemStore redis.IdempotencyStore
	var cachePinger db.Pinger
	if deps.Redis != nil {
		idemStore = deps.Redis
		cachePinger = deps.Redis
		loginLimit = middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)
		registerLimit = middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)
	}
	idempotency := middleware.Idempotency(idemStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, cachePinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Public storefront.
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(registerLimit).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.With(loginLimit).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
		})

		r.Get("/categories", controllers.ListCategories(svcs.Catalog, logg))
		r.Get("/products", controllers.ListProducts(svcs.Catalog, logg))
		r.Get("/products/{idOrSlug}", controllers.ProductDetail(svcs.Catalog, logg))
		r.Post("/contact", controllers.ContactSubmit(svcs.Contact, logg))

		// Orders and payments allow guests; a token, when present, must be valid.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth, idempotency)
			r.Post("/orders", controllers.Checkout(svcs.Checkout, logg))
			r.Get("/orders/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Post("/payments", controllers.PaymentInit(svcs.Payments, logg))
			r.Post("/payments/{txId}/confirm", controllers.PaymentConfirm(svcs.Payments, logg))
			r.Get("/payments/{txId}", controllers.PaymentDetail(svcs.Payments, logg))
			r.Get("/payments", controllers.PaymentsByOrder(svcs.Payments, logg))
			r.Get("/shipments/track", controllers.ShipmentTrack(svcs.Shipping, logg))
		})

		// Account surface.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", controllers.Me(svcs.Accounts, logg))
			r.Put("/me", controllers.UpdateMe(svcs.Accounts, logg))
			r.Get("/me/activity", controllers.MyActivity(svcs.Accounts, logg))
			r.Get("/orders", controllers.MyOrders(svcs.Orders, logg))
		})

		// Vendor back office. Applying only needs a signed-in customer; the
		// rest requires the vendor role.
		r.Route("/vendor", func(r chi.Router) {
			r.With(requireAuth).Post("/apply", controllers.VendorApply(svcs.Vendors, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, middleware.RequireRole(string(enums.UserRoleVendor), logg), idempotency)
				r.Get("/profile", controllers.VendorProfile(svcs.Vendors, logg))
				r.Get("/stats", controllers.VendorStats(svcs.Vendors, logg))
				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.VendorListProducts(svcs.Catalog, logg))
					r.Post("/", controllers.VendorCreateProduct(svcs.Catalog, logg))
					r.Patch("/{productId}", controllers.VendorUpdateProduct(svcs.Catalog, logg))
					r.Delete("/{productId}", controllers.VendorDeleteProduct(svcs.Catalog, logg))
					r.Put("/{productId}/inventory", controllers.VendorSetInventory(svcs.Catalog, logg))
					r.Post("/{productId}/restock", controllers.VendorRestock(svcs.Catalog, logg))
				})
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.VendorOrders(svcs.Vendors, logg))
					r.Get("/{orderId}", controllers.VendorOrderDetail(svcs.Vendors, logg))
					r.Patch("/{orderId}/fulfillment-status", controllers.VendorUpdateFulfillment(svcs.Vendors, svcs.Orders, logg))
				})
			})
		})

		// Courier timeline writes need a signed-in operator.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, idempotency)
			r.Post("/shipments", controllers.ShipmentCreate(svcs.Shipping, logg))
			r.Post("/shipments/{shipmentId}/events", controllers.ShipmentAppendEvent(svcs.Shipping, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth, middleware.RequireRole(string(enums.UserRoleAdmin), logg), idempotency)
		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", controllers.AdminListVendorApplications(svcs.Vendors, logg))
			r.Post("/{profileId}/approve", controllers.AdminApproveVendor(svcs.Vendors, logg))
			r.Post("/{profileId}/reject", controllers.AdminRejectVendor(svcs.Vendors, logg))
			r.Post("/{profileId}/suspend", controllers.AdminSuspendVendor(svcs.Vendors, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
			r.Get("/by-number/{number}", controllers.AdminGetOrderByNumber(svcs.Orders, logg))
			r.Get("/{orderId}/history", controllers.AdminOrderHistory(svcs.Orders, logg))
			r.Patch("/{orderId}/payment-status", controllers.AdminUpdatePaymentStatus(svcs.Orders, logg))
			r.Patch("/{orderId}/fulfillment-status", controllers.AdminUpdateFulfillment(svcs.Orders, logg))
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(svcs.Accounts, logg))
			r.Get("/{userId}", controllers.AdminGetUser(svcs.Accounts, logg))
			r.Post("/{userId}/ban", controllers.AdminBanUser(svcs.Accounts, logg))
			r.Post("/{userId}/unban", controllers.AdminUnbanUser(svcs.Accounts, logg))
		})
		r.Route("/contact-messages", func(r chi.Router) {
			r.Get("/", controllers.AdminListContactMessages(svcs.Contact, logg))
			r.Patch("/{messageId}", controllers.AdminTriageContact(svcs.Contact, logg))
		})
		r.Post("/categories", controllers.AdminCreateCategory(svcs.Catalog, logg))
	})

	return r
}
