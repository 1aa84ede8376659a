package app

import (
	"net/http"

	"boligmatch-backend/internal/admin"
	"boligmatch-backend/internal/auth"
	"boligmatch-backend/internal/cases"
	"boligmatch-backend/internal/config"
	"boligmatch-backend/internal/database"
	"boligmatch-backend/internal/health"
	"boligmatch-backend/internal/middleware"
	"boligmatch-backend/internal/notify"
	"boligmatch-backend/internal/offers"
	"boligmatch-backend/internal/selection"
	"boligmatch-backend/internal/showings"
	"boligmatch-backend/internal/valuation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. Returns the DB and Redis handles so main can verify
// connectivity on startup.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		if db, err = database.Open(cfg.DatabaseURL); err != nil {
			return nil, nil, nil, err
		}
	}

	// Auth (no auth middleware): POST login, GET me, DELETE logout
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{UserFinder: userFinder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	app.Get("/health", func(c *fiber.Ctx) error {
		var pinger health.DBPinger
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				pinger = sqlDB
			}
		}
		res := health.Collect(c.Context(), rdb, pinger)
		code := fiber.StatusOK
		if res.Status != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(res)
	})

	if db != nil {
		registerRoutes(app, db, cfg)
	}

	return app, db, rdb, nil
}

// registerRoutes wires the protected feature modules. Split out so tests
// can build an app over an in-memory DB and injected collaborators.
func registerRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	dispatcher := &notify.Dispatcher{Sender: &notify.BrevoSender{
		APIKey:   cfg.BrevoAPIKey,
		MailFrom: cfg.MailFrom,
	}}
	estimator := &valuation.HTTPEstimator{BaseURL: cfg.ValuationAPIURL}
	RegisterRoutes(app, db, cfg, dispatcher, estimator)
}

// RegisterRoutes wires all protected feature routes with explicit
// collaborators.
func RegisterRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, dispatcher *notify.Dispatcher, estimator valuation.Estimator) {
	// Cases module
	caseService := &cases.Service{DB: db, Dispatcher: dispatcher, Estimator: estimator}
	caseHandlers := &cases.Handlers{Service: caseService}
	caseGroup := app.Group("/api/v1/cases", middleware.RequireAuth())
	caseGroup.Get("/open", middleware.RequireRole("agent", "admin"), caseHandlers.BrowseOpenCases)
	caseGroup.Get("/my-cases", middleware.RequireRole("seller", "admin"), caseHandlers.ListMyCases)
	caseGroup.Post("/create-case", middleware.RequireRole("seller", "admin"), caseHandlers.CreateCase)
	caseGroup.Get("/:case_id", caseHandlers.GetCase)
	caseGroup.Patch("/:case_id", middleware.RequireRole("seller", "admin"), caseHandlers.UpdateCase)
	caseGroup.Post("/:case_id/submit", middleware.RequireRole("seller", "admin"), caseHandlers.SubmitCase)
	caseGroup.Post("/:case_id/withdraw", middleware.RequireRole("seller", "admin"), caseHandlers.WithdrawCase)

	// Showings module
	showingService := &showings.Service{DB: db}
	showingHandlers := &showings.Handlers{Service: showingService}
	showingGroup := app.Group("/api/v1/showings", middleware.RequireAuth())
	showingGroup.Post("/:case_id/schedule", middleware.RequireRole("seller", "admin"), showingHandlers.ScheduleShowing)
	showingGroup.Post("/:case_id/register", middleware.RequireRole("agent"), showingHandlers.RegisterAgent)
	showingGroup.Post("/:case_id/complete", middleware.RequireRole("seller", "admin"), showingHandlers.CompleteShowing)

	// Offers module
	offerService := &offers.Service{DB: db, Dispatcher: dispatcher, Scoring: cfg.Scoring}
	offerHandlers := &offers.Handlers{Service: offerService}
	offerGroup := app.Group("/api/v1/offers", middleware.RequireAuth())
	offerGroup.Post("/:case_id", middleware.RequireRole("agent"), offerHandlers.SubmitOffer)
	offerGroup.Get("/:case_id", offerHandlers.ListOffers)

	// Selection module
	selectionService := &selection.Service{DB: db, Dispatcher: dispatcher}
	selectionHandlers := &selection.Handlers{Service: selectionService}
	selectionGroup := app.Group("/api/v1/selection", middleware.RequireAuth())
	selectionGroup.Post("/:case_id/select", middleware.RequireRole("seller", "admin"), selectionHandlers.SelectOffer)
	selectionGroup.Post("/:case_id/complete", middleware.RequireRole("seller", "admin"), selectionHandlers.CompleteCase)

	// Admin module. ReturnToAdmin is outside RequireRole: an impersonated
	// session carries the target's role and gets back only via the
	// impersonator back-reference.
	adminService := &admin.Service{DB: db}
	adminHandlers := &admin.Handlers{Service: adminService}
	adminGroup := app.Group("/api/v1/admin", middleware.RequireAuth())
	adminGroup.Get("/cases", middleware.RequireRole("admin"), adminHandlers.ListCases)
	adminGroup.Post("/cases/:case_id/force-status", middleware.RequireRole("admin"), adminHandlers.ForceStatus)
	adminGroup.Post("/impersonate", middleware.RequireRole("admin"), adminHandlers.Impersonate)
	adminGroup.Post("/return", adminHandlers.ReturnToAdmin)
}

// Handler returns an http.Handler (Fiber app as net/http handler).
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
