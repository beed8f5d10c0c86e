package lap

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MARDON1989/gearbox-live-telemetry/internal/session"

	"github.com/gofiber/fiber/v2"
)

func seededLedger(t *testing.T, n int) *Ledger {
	t.Helper()
	ledger := NewLedger()
	sess := session.Session{ID: "conn-1", DriverName: "Alice", ComputerName: "sim-rig"}
	for i := 1; i <= n; i++ {
		if _, ok := ledger.Append(map[string]any{"lapTime": float64(i)}, sess, time.Now()); !ok {
			t.Fatalf("seed lap %d not recorded", i)
		}
	}
	return ledger
}

func TestLapsRoute(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), seededLedger(t, 3))

	req := httptest.NewRequest("GET", "/api/laps", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var laps []Record
	if err := json.Unmarshal(body, &laps); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(laps) != 3 {
		t.Fatalf("expected 3 laps, got %d", len(laps))
	}
}

func TestRecentLapsRoute(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), seededLedger(t, 5))

	req := httptest.NewRequest("GET", "/api/laps/recent/2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var laps []Record
	if err := json.Unmarshal(body, &laps); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(laps))
	}
	if laps[0].LapTime != 4 || laps[1].LapTime != 5 {
		t.Fatalf("expected trailing window, got %v", laps)
	}
}

func TestRecentLapsRouteBadCount(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), seededLedger(t, 15))

	for _, count := range []string{"abc", "-4", "0"} {
		req := httptest.NewRequest("GET", "/api/laps/recent/"+count, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("test request: %v", err)
		}

		body, _ := io.ReadAll(resp.Body)
		var laps []Record
		if err := json.Unmarshal(body, &laps); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(laps) != 10 {
			t.Fatalf("expected default window of 10 for count %q, got %d", count, len(laps))
		}
	}
}
