package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/anonto42/nano-social/backend/internal/blobstore"
	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Dependencies are the collaborators built at startup and shared by every route.
type Dependencies struct {
	DB      *gorm.DB
	Store   blobstore.Store
	Cache   cache.ViewCache
	Metrics *observability.Metrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Verifiers resolve bearer tokens, tried in order.
	Verifiers []middleware.TokenVerifier
	// IDTokens verifies identity provider tokens for the session exchange.
	// Nil disables POST /auth/session.
	IDTokens middleware.TokenVerifier
	Sessions *middleware.SessionTokens

	// UploadRateLimit is the sustained uploads per second allowed per caller.
	UploadRateLimit float64
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Validator = validators.NewValidator()
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRoutePath: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.String("route", v.RoutePath),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= 500 {
					level = slog.LevelError
				}
			}
			slog.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	}))
	slog.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	viewCache := deps.Cache
	if viewCache == nil {
		viewCache = cache.Noop{}
	}

	e.GET("/health", handlers.HealthCheck(deps.DB))
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if mem, ok := deps.Store.(*blobstore.Memory); ok {
		handlers.NewMediaHandler(mem).RegisterMediaRoutes(e)
	}

	// --- Initialize Repositories ---
	profileRepo := repositories.NewPostgresProfileRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	repostRepo := repositories.NewPostgresRepostRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB)
	settingsRepo := repositories.NewPostgresNotificationSettingsRepository(deps.DB)
	tagRepo := repositories.NewPostgresTagRepository(deps.DB)

	// --- Services ---
	identity := services.NewIdentityResolver(profileRepo)
	notificationSvc := services.NewNotificationService(identity, profileRepo, notificationRepo, settingsRepo, deps.Metrics)
	feedSvc := services.NewFeedService(identity, postRepo, profileRepo, likeRepo, repostRepo, followRepo, viewCache, deps.Metrics)
	interactionSvc := services.NewInteractionService(identity, postRepo, profileRepo, likeRepo, repostRepo, followRepo, notificationSvc, viewCache, deps.Metrics)
	mediaSvc := services.NewMediaService(deps.Store, deps.Metrics)
	postSvc := services.NewPostService(identity, postRepo, notificationSvc, mediaSvc, viewCache)
	profileSvc := services.NewProfileService(identity, profileRepo, tagRepo, followRepo, postRepo, viewCache)
	tagSvc := services.NewTagService(tagRepo)

	// Every /api/v1 route accepts anonymous callers; services decide what needs an identity.
	api := e.Group("/api/v1")
	api.Use(middleware.Authenticate(deps.Verifiers...))

	if deps.IDTokens != nil && deps.Sessions != nil {
		handlers.NewAuthHandler(deps.IDTokens, deps.Sessions).RegisterAuthRoutes(api)
		slog.Info("Auth routes configured.")
	}

	handlers.NewFeedHandler(feedSvc).RegisterFeedRoutes(api)
	handlers.NewPostHandler(postSvc, feedSvc).RegisterPostRoutes(api)
	handlers.NewLikeHandler(interactionSvc).RegisterLikeRoutes(api)
	handlers.NewRepostHandler(interactionSvc).RegisterRepostRoutes(api)
	handlers.NewFollowHandler(interactionSvc).RegisterFollowRoutes(api)
	handlers.NewProfileHandler(profileSvc, feedSvc).RegisterProfileRoutes(api)
	handlers.NewNotificationHandler(notificationSvc).RegisterNotificationRoutes(api)
	handlers.NewTagHandler(tagSvc).RegisterTagRoutes(api)
	handlers.NewUploadHandler(mediaSvc).RegisterUploadRoutes(api, uploadLimiter(deps.UploadRateLimit))

	slog.Info("All routes configured.")
}

// uploadLimiter throttles uploads per identity, falling back to the client IP.
func uploadLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 2
	}
	store := eMiddleware.NewRateLimiterMemoryStoreWithConfig(eMiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(perSecond*2) + 1,
		ExpiresIn: 3 * time.Minute,
	})
	return eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if uid := middleware.ExternalID(c); uid != "" {
				return "uid:" + uid, nil
			}
			return "ip:" + c.RealIP(), nil
		},
	})
}
