package middleware

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/remitpay/remitpay/internal/logging"
)

type idempotencyEnv struct {
	app   *fiber.App
	calls int
}

func newIdempotencyEnv(t *testing.T) *idempotencyEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	env := &idempotencyEnv{app: fiber.New()}
	env.app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	env.app.Post("/transfers", func(c *fiber.Ctx) error {
		env.calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transfer": env.calls})
	})
	env.app.Get("/transfers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"listed": true})
	})
	return env
}

func (e *idempotencyEnv) post(t *testing.T, key string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/transfers", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	env := newIdempotencyEnv(t)

	status, _ := env.post(t, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d without key header, got %d", fiber.StatusBadRequest, status)
	}
	if env.calls != 0 {
		t.Fatalf("handler should not run without a key, ran %d times", env.calls)
	}
}

func TestIdempotencySafeMethodsBypass(t *testing.T) {
	env := newIdempotencyEnv(t)

	req := httptest.NewRequest(fiber.MethodGet, "/transfers", nil)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET without key should pass through, got %d", resp.StatusCode)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	env := newIdempotencyEnv(t)

	status, first := env.post(t, "tx-42")
	if status != fiber.StatusCreated {
		t.Fatalf("first request: expected %d got %d", fiber.StatusCreated, status)
	}

	status, replayed := env.post(t, "tx-42")
	if status != fiber.StatusCreated {
		t.Fatalf("replay: expected %d got %d", fiber.StatusCreated, status)
	}
	if replayed != first {
		t.Fatalf("replay body %q differs from original %q", replayed, first)
	}
	if env.calls != 1 {
		t.Fatalf("handler ran %d times, want 1", env.calls)
	}
}

func TestIdempotencyDistinctKeysExecuteSeparately(t *testing.T) {
	env := newIdempotencyEnv(t)

	for i := 1; i <= 3; i++ {
		status, _ := env.post(t, fmt.Sprintf("tx-%d", i))
		if status != fiber.StatusCreated {
			t.Fatalf("request %d: expected %d got %d", i, fiber.StatusCreated, status)
		}
	}
	if env.calls != 3 {
		t.Fatalf("handler ran %d times, want 3", env.calls)
	}
}
