package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/bankcore/internal/config"
	"github.com/congo-pay/bankcore/internal/logging"
)

func TestNewServesPing(t *testing.T) {
	srv, err := New(config.Config{AppName: "BankCore", Env: "test", Port: "0"}, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
}

func TestNewRejectsMissingBackendsInProduction(t *testing.T) {
	if _, err := New(config.Config{Env: "production"}, nil, nil, logging.Discard()); err == nil {
		t.Fatal("expected error")
	}
}
