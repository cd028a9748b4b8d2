package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Expected development environment, got %s", cfg.Server.Environment)
	}
	if cfg.Auth.AccessTokenTTL != 2*time.Hour {
		t.Errorf("Expected 2h access token TTL, got %s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 24*time.Hour {
		t.Errorf("Expected 24h refresh token TTL, got %s", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.Issuer != "taskboard-backend" {
		t.Errorf("Expected default issuer, got %s", cfg.Auth.Issuer)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("Expected rate limiting enabled by default")
	}
	if cfg.IsProduction() {
		t.Error("Expected development config not to report production")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Expected 15m access token TTL, got %s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("Expected 50 max open conns, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.RateLimit.Enabled {
		t.Error("Expected rate limiting disabled")
	}

	origins := cfg.CORS.AllowedOrigins
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Errorf("Expected trimmed origin list, got %v", origins)
	}
}

func TestLoadConfig_ProductionRequiresDBPassword(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when production config has no database password")
	}
}

func TestLoadConfig_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "hunter2")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when production config keeps the dev JWT secret")
	}
}

func TestConfig_Addresses(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_HOST", "cache.internal")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn != "host=db.internal port=5433 user=postgres password= dbname=taskboard sslmode=disable" {
		t.Errorf("Unexpected DSN: %s", dsn)
	}
	if addr := cfg.GetRedisAddr(); addr != "cache.internal:6379" {
		t.Errorf("Unexpected redis address: %s", addr)
	}
	if addr := cfg.GetServerAddr(); addr != "localhost:8080" {
		t.Errorf("Unexpected server address: %s", addr)
	}
}
