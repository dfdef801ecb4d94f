package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID(zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error {
		if Logger(c, nil) == nil {
			return fiber.ErrInternalServerError
		}
		return c.SendString(GetRequestID(c))
	})
	return app
}

func TestRequestIDGenerated(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	id := resp.Header.Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("header %q is not a uuid: %v", id, err)
	}
}

func TestRequestIDReused(t *testing.T) {
	app := newTestApp()
	want := uuid.New().String()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, want)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(RequestIDHeader); got != want {
		t.Errorf("request id = %q, want %q", got, want)
	}
}

func TestRequestIDRejectsGarbage(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(RequestIDHeader); got == "<script>" {
		t.Error("garbage request id was echoed back")
	}
}
