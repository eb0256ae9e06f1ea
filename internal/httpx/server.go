package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/auth"
	"github.com/ariefcatur/evn-storefront/internal/cart"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/ariefcatur/evn-storefront/internal/reporting"
	"github.com/ariefcatur/evn-storefront/internal/users"
	"github.com/ariefcatur/evn-storefront/internal/wishlist"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

// API bundles the services behind the HTTP surface. Redis is optional; when
// nil, order idempotency and the status cache are skipped.
type API struct {
	Auth      *auth.Service
	Users     *users.Service
	Catalog   *catalog.Service
	Cart      *cart.Service
	Wishlist  *wishlist.Service
	Orders    *orders.Service
	Reporting *reporting.Service
	Redis     redis.Cmdable

	// Production hides internal error detail from clients.
	Production bool
}

func NewRouter(allowedOrigin string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (a *API) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.register)
			r.Post("/login", a.login)
			r.Post("/verify-otp", a.verifyOTP)
			r.Post("/resend-otp", a.resendOTP)
			r.Post("/request-otp", a.requestOTP)
			r.With(a.requireAuth).Get("/me", a.me)
		})

		r.Get("/products", a.listProducts)
		r.Get("/products/{id}", a.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Get("/cart", a.getCart)
			r.Post("/cart/add", a.addToCart)
			r.Put("/cart/items/{itemId}", a.updateCartItem)
			r.Delete("/cart/items/{itemId}", a.removeCartItem)
			r.Delete("/cart", a.clearCart)

			r.Get("/wishlist", a.getWishlist)
			r.Post("/wishlist/{productId}", a.addToWishlist)
			r.Delete("/wishlist/{productId}", a.removeFromWishlist)

			r.Get("/users/me", a.me)
			r.Put("/users/me", a.updateProfile)
			r.Post("/users/me/addresses", a.addAddress)
			r.Delete("/users/me/addresses/{addressId}", a.removeAddress)

			r.Post("/orders", a.createOrder)
			r.Get("/orders", a.listMyOrders)
			r.Get("/orders/{id}", a.getOrder)
			r.Get("/orders/{id}/status", a.getOrderStatus)
			r.Put("/orders/{id}/cancel", a.cancelOrder)
			r.Post("/orders/{id}/cancel", a.cancelOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(a.requireAuth, requireAdmin)

			r.Get("/products", a.adminListProducts)
			r.Post("/products", a.adminCreateProduct)
			r.Get("/products/{id}", a.adminGetProduct)
			r.Put("/products/{id}", a.adminUpdateProduct)
			r.Delete("/products/{id}", a.adminDeleteProduct)

			r.Get("/orders", a.adminListOrders)
			r.Get("/orders/stats", a.adminOrderStats)
			r.Patch("/orders/{id}/status", a.adminUpdateOrderStatus)
			r.Put("/orders/{id}/status", a.adminUpdateOrderStatus)

			r.Get("/analytics", a.adminAnalytics)
			r.Get("/customers", a.adminCustomers)
		})
	})
}
