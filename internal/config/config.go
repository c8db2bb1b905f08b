// Package config loads the process configuration once at startup. Components
// receive the resulting struct by reference; there is no package-level state.
//
// Environment variables:
//
//   - HOST, PORT: listen address (defaults 127.0.0.1:8080)
//   - DATABASE_PATH: sqlite file path (default outreach.db)
//   - GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET: OAuth client (required)
//   - GOOGLE_OAUTH_REDIRECT: callback URL registered with Google (required)
//   - FRONTEND_AFTER_CONNECT: front-end location for post-OAuth redirects
//   - CORS_ORIGINS: comma-separated allowed origins
//   - STATE_SECRET: HMAC key for OAuth state tokens (random per-process if unset)
//   - GEMINI_API_KEY, GEMINI_BASE_URL, GEMINI_MODEL: generation backend
//   - PROMPT_CONFIG: yaml file overriding the generation persona
//   - PROVIDER_TIMEOUT: timeout for OAuth/store-facing provider calls (default 30s)
//   - GENERATE_TIMEOUT: timeout for generation calls (default 120s)
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Config holds all runtime settings for the outreach mailer.
type Config struct {
	Host         string
	Port         string
	DatabasePath string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	// Endpoint overrides, captured into stored credentials at exchange time.
	GoogleAuthURL  string
	GoogleTokenURL string

	FrontendAfterConnect string
	CORSOrigins          []string
	StateSecret          string

	GenAPIKey  string
	GenBaseURL string
	GenModel   string
	PromptPath string

	ProviderTimeout time.Duration
	GenerateTimeout time.Duration
}

const (
	defaultGenBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultGenModel   = "gemini-2.5-flash"

	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Host:               getEnv("HOST", "127.0.0.1"),
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "outreach.db"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   os.Getenv("GOOGLE_OAUTH_REDIRECT"),
		GoogleAuthURL:      getEnv("GOOGLE_AUTH_URL", googleAuthURL),
		GoogleTokenURL:     getEnv("GOOGLE_TOKEN_URL", googleTokenURL),

		FrontendAfterConnect: getEnv("FRONTEND_AFTER_CONNECT", "http://localhost:3000/dashboard"),
		CORSOrigins:          splitList(os.Getenv("CORS_ORIGINS")),
		StateSecret:          os.Getenv("STATE_SECRET"),

		GenAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GenBaseURL: getEnv("GEMINI_BASE_URL", defaultGenBaseURL),
		GenModel:   getEnv("GEMINI_MODEL", defaultGenModel),
		PromptPath: os.Getenv("PROMPT_CONFIG"),

		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 30*time.Second),
		GenerateTimeout: getDuration("GENERATE_TIMEOUT", 120*time.Second),
	}

	if cfg.StateSecret == "" {
		// In-flight OAuth redirects won't survive a restart without a
		// stable secret, so warn loudly.
		b := make([]byte, 32)
		rand.Read(b)
		cfg.StateSecret = hex.EncodeToString(b)
		log.Println("⚠️ STATE_SECRET not set, using a random per-process secret")
	}

	return cfg
}

// Validate checks that required settings are present. Secrets never have
// in-source defaults; missing OAuth credentials are a startup error.
func (c *Config) Validate() error {
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if c.OAuthRedirectURL == "" {
		return fmt.Errorf("GOOGLE_OAUTH_REDIRECT is required")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("⚠️ Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
