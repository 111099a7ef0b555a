package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, limit int) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Use(RateLimitMiddleware(rdb, limit, time.Minute))
	app.Get("/resource", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	cleanup := func() {
		rdb.Close()
		mr.Close()
	}
	return app, cleanup
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 3)
	defer cleanup()

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/resource", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
	}
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 2)
	defer cleanup()

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/resource", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/resource", nil))
	if err != nil {
		t.Fatalf("over-limit request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}
