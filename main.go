package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"prensa/autogen"
	"prensa/config"
	"prensa/database"
	"prensa/logger"
	"prensa/openai"
	"prensa/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	database.SetPath(cfg.DBPath)
	_ = database.GetDB() // force database initialization

	var generator *autogen.Generator
	var dispatcher *autogen.Dispatcher
	llm, err := openai.NewClient(cfg.OpenAI, log)
	if err != nil {
		// the site still works without auto-generation
		log.Warn("auto-content generation disabled", "reason", err.Error())
	} else {
		generator = autogen.NewGenerator(database.GetDB(), llm, log)
		dispatcher = autogen.NewDispatcher(database.GetDB(), generator, log)
	}

	site.Configure(log, generator)
	r := initRouter(log, generator, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if dispatcher != nil && cfg.DispatchIntervalMinutes > 0 {
		interval := time.Duration(cfg.DispatchIntervalMinutes) * time.Minute
		scheduler := autogen.NewScheduler(database.GetDB(), dispatcher, log, interval, cfg.PromoteOverdue)
		go scheduler.Run(ctx)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	addr := ":" + cfg.Port
	go func() {
		log.Info("server running", "addr", "http://localhost"+addr)
		if err := http.ListenAndServe(addr, r); err != nil {
			log.Error("HTTP server stopped", "error", err)
		}
	}()

	// Block until a signal is received
	<-signals
	log.Info("shutting down gracefully")
	cancel()
	database.CloseDB()
}

func initRouter(log *logger.Logger, generator *autogen.Generator, dispatcher *autogen.Dispatcher) *chi.Mux {
	r := chi.NewRouter()

	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(CORSMiddleware.Handler)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(httprate.LimitByIP(100, time.Minute)) // general rate limiter for all routes (shared across all routes)
	r.Use(middleware.Recoverer)
	r.Use(site.TryPutUserInContextMiddleware)

	// public site
	r.Get("/", site.Home)
	r.Get("/articulo/{slug}", site.PublicViewArticle)

	r.HandleFunc("/signin", site.UserSignIn)
	r.HandleFunc("/signup", site.UserSignUp)
	r.Post("/logout", site.UserLogout)

	// dashboard
	r.With(site.AuthProtectedMiddleware).Route("/dashboard", func(r chi.Router) {
		r.Get("/", site.DashboardPostList)

		r.HandleFunc("/post/new", site.DashboardCreatePost)
		r.HandleFunc("/post/{postID}", site.DashboardEditPost)
		r.Post("/post/{postID}/delete", site.DashboardDeletePost)

		r.Get("/scheduled", site.DashboardScheduledPosts)
		r.Post("/post/{postID}/schedule", site.DashboardSchedulePost)
		r.Post("/post/{postID}/cancel-schedule", site.DashboardCancelSchedule)
		r.Post("/post/{postID}/publish-now", site.DashboardPublishNow)

		r.Get("/hero", site.DashboardHeroManager)
		r.Post("/post/{postID}/toggle-hero", site.DashboardToggleHeroPin)

		r.Get("/autocontent", site.DashboardAutoContent)
		r.Post("/autocontent/new", site.DashboardCreateAutoContentSetting)
		r.Post("/autocontent/{settingID}/toggle", site.DashboardToggleAutoContentSetting)
		r.Post("/autocontent/{settingID}/delete", site.DashboardDeleteAutoContentSetting)
		r.Post("/autocontent/{settingID}/test", site.DashboardTestAutoContentSetting)
	})

	// the serverless-style function endpoints
	if generator != nil && dispatcher != nil {
		fn := autogen.NewHandler(dispatcher, generator, log)
		r.Route("/functions/v1", func(r chi.Router) {
			r.HandleFunc("/auto-content-cron", fn.Cron)
			r.HandleFunc("/generate-article", fn.GenerateArticle)
		})
	}

	// JSON feed
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/posts", site.APIListPosts)
		})
	})

	fileServer := http.FileServer(http.Dir("./assets"))
	r.Handle("/assets/*", http.StripPrefix("/assets", fileServer))

	return r
}
