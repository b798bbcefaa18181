package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.Name = "procurement"
	cfg.Database.User = "postgres"
	cfg.Database.Password = "secret"
	cfg.Database.SSLMode = "disable"
	cfg.Redis.Host = "localhost"
	cfg.Redis.Port = "6379"
	cfg.Server.Port = "8080"
	cfg.Approval.HighValueThreshold = 1000000
	cfg.Approval.ReceiptOveragePercent = 10
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Valid config should pass, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db name", func(c *Config) { c.Database.Name = "" }},
		{"missing redis host", func(c *Config) { c.Redis.Host = "" }},
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"negative overage", func(c *Config) { c.Approval.ReceiptOveragePercent = -1 }},
		{"overage above 100", func(c *Config) { c.Approval.ReceiptOveragePercent = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation failure")
			}
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	dsn := validConfig().GetDatabaseDSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=procurement", "user=postgres", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN missing %q: %s", part, dsn)
		}
	}
}

func TestGetRedisAddr(t *testing.T) {
	if addr := validConfig().GetRedisAddr(); addr != "localhost:6379" {
		t.Errorf("Expected localhost:6379, got %s", addr)
	}
}

func TestEnvironmentChecks(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "development"
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("Expected development mode")
	}
	cfg.App.Environment = "production"
	if cfg.IsDevelopment() || !cfg.IsProduction() {
		t.Error("Expected production mode")
	}
}
