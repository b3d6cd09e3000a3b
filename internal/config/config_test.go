package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TAX_RATE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.TaxRate.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("expected default tax rate 0.05 got %s", cfg.TaxRate)
	}
	if cfg.JWT.AccessTTL != 24*time.Hour {
		t.Fatalf("unexpected access ttl %s", cfg.JWT.AccessTTL)
	}
	if cfg.AuthStrategy != "password" {
		t.Fatalf("unexpected auth strategy %s", cfg.AuthStrategy)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TAX_RATE", "0.18")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TaxRate.String() != "0.18" {
		t.Fatalf("tax rate not overridden: %s", cfg.TaxRate)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %#v", cfg.CORSOrigins)
	}
	if cfg.Location.String() != "Asia/Kolkata" {
		t.Fatalf("unexpected location %s", cfg.Location)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:          "development",
			DB:           DBConfig{Driver: "mysql", DSN: "user:pw@tcp(localhost:3306)/roti"},
			JWT:          JWTConfig{Secret: defaultJWTSecret},
			AuthStrategy: "password",
			TaxRate:      decimal.RequireFromString("0.05"),
		}
	}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"missing dsn", func(c *Config) { c.DB.DSN = "" }, true},
		{"unknown driver", func(c *Config) { c.DB.Driver = "oracle" }, true},
		{"unknown strategy", func(c *Config) { c.AuthStrategy = "magic" }, true},
		{"tax above one", func(c *Config) { c.TaxRate = decimal.NewFromInt(2) }, true},
		{"production default secret", func(c *Config) { c.Env = "production" }, true},
		{"production fixture auth", func(c *Config) {
			c.Env = "production"
			c.JWT.Secret = "real"
			c.AuthStrategy = "fixture"
		}, true},
		{"production ok", func(c *Config) {
			c.Env = "production"
			c.JWT.Secret = "real"
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v got %v", tc.wantErr, err)
			}
		})
	}
}
