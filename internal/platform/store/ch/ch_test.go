package ch

import (
	"context"
	"runtime"
	"testing"
)

func TestBuildClientInfo(t *testing.T) {
	t.Parallel()

	info := BuildClientInfo("api", "")
	if len(info.Products) != 4 {
		t.Fatalf("products = %+v", info.Products)
	}
	if info.Products[0].Name != "kydu" || info.Products[0].Version != "api" {
		t.Fatalf("first product = %+v", info.Products[0])
	}
	if info.Products[1].Version != runtime.Version() {
		t.Fatalf("go product = %+v", info.Products[1])
	}
}

func TestOpenRejectsBadDSN(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), Config{URL: "%%%"}); err == nil {
		t.Fatal("want dsn error")
	}
}
