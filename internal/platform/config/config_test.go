package config

import (
	"testing"
	"time"

	kit "kydu/internal/platform/testkit"
)

func TestPrefixNesting(t *testing.T) {
	c := New().Prefix("DELIVERY_").Prefix("PUSH_")
	if got := c.key("TIMEOUT"); got != "DELIVERY_PUSH_TIMEOUT" {
		t.Fatalf("key() = %q, want %q", got, "DELIVERY_PUSH_TIMEOUT")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("SERVICE_PGSQL_")
	t.Setenv("SERVICE_PGSQL_DBURL", "  postgres://kydu@localhost/kydu ")
	if got := c.MustString("DBURL"); got != "postgres://kydu@localhost/kydu" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustIntAndDuration(t *testing.T) {
	c := New().Prefix("DELIVERY_")
	t.Setenv("DELIVERY_WORKERS", "8")
	t.Setenv("DELIVERY_RELAY_TIMEOUT", "250ms")
	t.Setenv("DELIVERY_BAD", "soon")

	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt = %d, want 8", got)
	}
	if got := c.MustDuration("RELAY_TIMEOUT"); got != 250*time.Millisecond {
		t.Fatalf("MustDuration = %v", got)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
	kit.MustPanic(t, func() { _ = c.MustDuration("BAD") })
}

func TestMustSecret(t *testing.T) {
	c := New().Prefix("AUTH_")
	t.Setenv("AUTH_JWT_SECRET", "short")
	kit.MustPanic(t, func() { _ = c.MustSecret("JWT_SECRET", 16) })

	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123")
	kit.MustNotPanic(t, func() { _ = c.MustSecret("JWT_SECRET", 16) })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("PUSH_")
	t.Setenv("PUSH_PROJECT_ID", "kydu-prod")
	kit.MustNotPanic(t, func() { c.Require("PROJECT_ID") })
	kit.MustPanic(t, func() { c.Require("PROJECT_ID", "CREDENTIALS_FILE") })
}

func TestMayFallbacks(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_INT", "x")
	t.Setenv("M_BOOL", "maybe")
	t.Setenv("M_DUR", "1 hour")
	t.Setenv("M_FLOAT", "1.5")

	if got := c.MayInt("INT", 4); got != 4 {
		t.Fatalf("MayInt = %d, want default", got)
	}
	if got := c.MayBool("BOOL", true); !got {
		t.Fatalf("MayBool should fall back to default")
	}
	if got := c.MayDuration("DUR", time.Second); got != time.Second {
		t.Fatalf("MayDuration = %v, want default", got)
	}
	if got := c.MayFloat64("FLOAT", 0); got != 1.5 {
		t.Fatalf("MayFloat64 = %v, want 1.5", got)
	}
	if got := c.MayString("UNSET", "def"); got != "def" {
		t.Fatalf("MayString = %q, want def", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CORE_API_")
	t.Setenv("CORE_API_CORS_ORIGINS", " https://a.example , ,https://b.example ")
	got := c.MayCSV("CORS_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("MayCSV = %#v", got)
	}
	t.Setenv("CORE_API_EMPTY", " , ")
	if got := c.MayCSV("EMPTY", []string{"*"}); len(got) != 1 || got[0] != "*" {
		t.Fatalf("MayCSV blank = %#v, want default", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_FORMAT", "JSON")
	if got := c.MayEnum("FORMAT", "console", "console", "json"); got != "json" {
		t.Fatalf("MayEnum = %q, want json", got)
	}
	t.Setenv("LOG_FORMAT", "xml")
	kit.MustPanic(t, func() { _ = c.MayEnum("FORMAT", "console", "console", "json") })
}
