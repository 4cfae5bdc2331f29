package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srakshitha0802/Book-review-application/internal/auth"
	"github.com/srakshitha0802/Book-review-application/internal/service"
	"github.com/srakshitha0802/Book-review-application/pkg/health"
	"github.com/srakshitha0802/Book-review-application/pkg/middleware"
)

const serviceName = "bookreview-service"

// RouterConfig bundles the dependencies the router wires into handlers.
type RouterConfig struct {
	Books           *service.BookService
	Catalog         *service.CatalogService
	Reviews         *service.ReviewService
	Profiles        *service.ProfileService
	JWT             *auth.JWTManager
	DevTokenEnabled bool
	TokenExpiry     time.Duration
	Health          *health.Handler
	CORS            middleware.CORSConfig
	Logger          *slog.Logger
}

// NewRouter creates a chi router with all service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	// Health and metrics endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.Auth(func(token string) (*middleware.Claims, error) {
		claims, err := cfg.JWT.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
	})

	bookHandler := NewBookHandler(cfg.Books, cfg.Catalog, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Logger)
	profileHandler := NewProfileHandler(cfg.Profiles, cfg.Logger)
	authHandler := NewAuthHandler(cfg.JWT, cfg.Profiles, cfg.DevTokenEnabled, int64(cfg.TokenExpiry.Seconds()), cfg.Logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/token", authHandler.IssueToken)
	})

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog reads
		r.Get("/", bookHandler.ListBooks)
		r.Get("/{id}", bookHandler.GetBook)
		r.Get("/{id}/reviews", reviewHandler.ListReviews)

		// Authenticated mutations
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/", bookHandler.CreateBook)
			r.Put("/{id}", bookHandler.UpdateBook)
			r.Delete("/{id}", bookHandler.DeleteBook)
			r.Get("/{id}/reviews/me", reviewHandler.GetMyReview)
			r.Post("/{id}/reviews", reviewHandler.SubmitReview)
		})
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(requireAuth)

		r.Put("/{id}", reviewHandler.AmendReview)
		r.Delete("/{id}", reviewHandler.WithdrawReview)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/me", profileHandler.GetMe)
	})

	return r
}
