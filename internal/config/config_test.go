package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Errorf("unexpected default port %q", cfg.App.Port)
	}
	if cfg.Auth.TrustedDomain != "@somos.tech" {
		t.Errorf("unexpected trusted domain %q", cfg.Auth.TrustedDomain)
	}
	if cfg.Auth.PrincipalHeader != "x-ms-client-principal" {
		t.Errorf("unexpected principal header %q", cfg.Auth.PrincipalHeader)
	}
	if cfg.Auth.RegistryTimeout() != 2*time.Second {
		t.Errorf("unexpected registry timeout %v", cfg.Auth.RegistryTimeout())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_TRUSTED_DOMAIN", "@example.org")
	t.Setenv("AUTH_REGISTRY_TIMEOUT_SECONDS", "5")
	t.Setenv("MODERATION_TIMEOUT_SECONDS", "bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Auth.TrustedDomain != "@example.org" {
		t.Errorf("unexpected trusted domain %q", cfg.Auth.TrustedDomain)
	}
	if cfg.Auth.RegistryTimeout() != 5*time.Second {
		t.Errorf("unexpected registry timeout %v", cfg.Auth.RegistryTimeout())
	}
	if cfg.Moderation.Timeout() != 5*time.Second {
		t.Errorf("expected fallback moderation timeout, got %v", cfg.Moderation.Timeout())
	}
}

func TestAppConfig_Addr(t *testing.T) {
	app := AppConfig{Host: "127.0.0.1", Port: "9090"}
	if app.Addr() != "127.0.0.1:9090" {
		t.Errorf("unexpected addr %q", app.Addr())
	}
}

func TestAuthConfig_TimeoutFallbacks(t *testing.T) {
	auth := AuthConfig{}
	if auth.RegistryTimeout() != 2*time.Second {
		t.Errorf("expected 2s fallback, got %v", auth.RegistryTimeout())
	}
	if auth.RoleCacheTTL() != 0 {
		t.Errorf("expected cache disabled, got %v", auth.RoleCacheTTL())
	}
}
