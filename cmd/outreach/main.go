package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/pysugar/outreach-mailer/internal/api/handlers"
	"github.com/pysugar/outreach-mailer/internal/api/middleware"
	"github.com/pysugar/outreach-mailer/internal/auth/google"
	"github.com/pysugar/outreach-mailer/internal/auth/token"
	"github.com/pysugar/outreach-mailer/internal/compose"
	"github.com/pysugar/outreach-mailer/internal/config"
	"github.com/pysugar/outreach-mailer/internal/db"
	"github.com/pysugar/outreach-mailer/internal/mailer"
	"github.com/pysugar/outreach-mailer/internal/version"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	if err := godotenv.Load(); err == nil {
		log.Printf("📄 Loaded environment from .env")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	store := db.NewCredentialStore(database)
	flow := google.NewFlow(cfg, store)
	refresher := token.NewRefresher(cfg.ProviderTimeout)
	dispatcher := mailer.NewDispatcher(store, refresher, cfg.ProviderTimeout)

	prompt, err := config.LoadPrompt(cfg.PromptPath)
	if err != nil {
		log.Fatalf("Failed to load prompt config: %v", err)
	}
	generator := compose.NewGenerator(cfg, prompt)
	if !generator.Enabled() {
		log.Printf("⚠️ GEMINI_API_KEY not set, /api/generate-email is disabled")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.WithCORS(cfg.CORSOrigins))

	// OAuth flow
	r.Get("/auth/google/start", handlers.StartHandler(flow))
	r.Get("/auth/google/callback", handlers.CallbackHandler(flow, cfg))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"` + version.Version + `"}`))
	})

	// API routes (API key required once one is configured)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(database))
		r.Post("/send-email", handlers.SendEmailHandler(dispatcher))
		r.Post("/generate-email", handlers.GenerateEmailHandler(generator))
		r.Get("/history", handlers.SendHistoryHandler(store))
		r.Get("/config/apikey", handlers.GetAPIKeyHandler(database))
		r.Post("/config/apikey/regenerate", handlers.RegenerateAPIKeyHandler(database))
	})

	addr := cfg.Addr()
	log.Printf("🚀 Outreach Mailer %s starting on http://%s", version.Version, addr)
	log.Printf("🔑 Gmail connect: http://%s/auth/google/start?user_id=<id>", addr)
	log.Printf("📧 Send API: http://%s/api/send-email", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
