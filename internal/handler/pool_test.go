package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"ammcore/internal/engine"
	"ammcore/internal/event"
	"ammcore/internal/ledger"
	"ammcore/internal/model"
	"ammcore/internal/registry"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newTestApp(t *testing.T) (*fiber.App, *ledger.Memory) {
	t.Helper()
	led := ledger.NewMemory()
	eng := engine.New(registry.New(), led, event.NewRecorder(), zap.NewNop())
	app := fiber.New()
	NewPoolHandler(zap.NewNop(), eng).Register(app)
	return app, led
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	decoded := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func createTestPool(t *testing.T, app *fiber.App, led *ledger.Memory) {
	t.Helper()
	led.Mint(alice, "atom", 10_000_000)
	led.Mint(alice, "usdc", 20_000_000)

	resp, body := doJSON(t, app, http.MethodPost, "/pools", createPoolRequest{
		Actor:   alice.Hex(),
		AssetA:  "atom",
		AssetB:  "usdc",
		AmountA: 1_000_000,
		AmountB: 2_000_000,
		FeeBps:  30,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %v", resp.StatusCode, body)
	}
	if body["pool"] != "atom/usdc" {
		t.Fatalf("create body: %v", body)
	}
}

func TestCreateAndGetPool(t *testing.T) {
	app, led := newTestApp(t)
	createTestPool(t, app, led)

	resp, body := doJSON(t, app, http.MethodGet, "/pool?id=atom%2Fusdc", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if body["reserve_a"] != float64(1_000_000) || body["reserve_b"] != float64(2_000_000) {
		t.Fatalf("pool body: %v", body)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/pool?id=osmo%2Fusdc", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing pool status = %d", resp.StatusCode)
	}
}

func TestCreatePoolConflict(t *testing.T) {
	app, led := newTestApp(t)
	createTestPool(t, app, led)

	resp, _ := doJSON(t, app, http.MethodPost, "/pools", createPoolRequest{
		Actor:   alice.Hex(),
		AssetA:  "usdc",
		AssetB:  "atom",
		AmountA: 10_000,
		AmountB: 10_000,
		FeeBps:  30,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d", resp.StatusCode)
	}
}

func TestSwapEndpoint(t *testing.T) {
	app, led := newTestApp(t)
	createTestPool(t, app, led)
	led.Mint(bob, "atom", 100_000)

	resp, body := doJSON(t, app, http.MethodPost, "/swap", swapRequest{
		Actor:    bob.Hex(),
		Pool:     "atom/usdc",
		Side:     model.SideAToB.String(),
		AmountIn: 100_000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("swap status = %d, body %v", resp.StatusCode, body)
	}
	out, ok := body["amount_out"].(float64)
	if !ok || out <= 0 {
		t.Fatalf("swap body: %v", body)
	}

	// Impossible minimum comes back as a client error, not a 500.
	resp, _ = doJSON(t, app, http.MethodPost, "/swap", swapRequest{
		Actor:        bob.Hex(),
		Pool:         "atom/usdc",
		Side:         model.SideBToA.String(),
		AmountIn:     1,
		MinAmountOut: 1 << 50,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("slippage status = %d", resp.StatusCode)
	}
}

func TestLiquidityEndpoints(t *testing.T) {
	app, led := newTestApp(t)
	createTestPool(t, app, led)

	resp, body := doJSON(t, app, http.MethodPost, "/liquidity/add", liquidityRequest{
		Actor:   alice.Hex(),
		Pool:    "atom/usdc",
		AmountA: 100_000,
		AmountB: 200_000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status = %d, body %v", resp.StatusCode, body)
	}
	shares := uint64(body["shares"].(float64))
	if shares == 0 {
		t.Fatalf("no shares minted: %v", body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/liquidity/remove", liquidityRequest{
		Actor:  alice.Hex(),
		Pool:   "atom/usdc",
		Shares: shares,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status = %d, body %v", resp.StatusCode, body)
	}
	if body["amount_a"].(float64) <= 0 || body["amount_b"].(float64) <= 0 {
		t.Fatalf("remove body: %v", body)
	}
}

func TestQuoteSwapEndpoint(t *testing.T) {
	app, led := newTestApp(t)
	createTestPool(t, app, led)

	resp, body := doJSON(t, app, http.MethodGet, "/quote/swap?pool=atom%2Fusdc&side=a_to_b&amount_in=100000", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("quote status = %d, body %v", resp.StatusCode, body)
	}
	if body["amount_out"].(float64) <= 0 || body["price_impact_bps"].(float64) <= 0 {
		t.Fatalf("quote body: %v", body)
	}
}

func TestAdminEndpoints(t *testing.T) {
	app, led := newTestApp(t)
	createTestPool(t, app, led)

	resp, _ := doJSON(t, app, http.MethodPost, "/admin/fee", adminRequest{
		Actor:  bob.Hex(),
		Pool:   "atom/usdc",
		FeeBps: 50,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-owner fee status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/admin/pause", adminRequest{
		Actor:  alice.Hex(),
		Pool:   "atom/usdc",
		Paused: true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pause status = %d", resp.StatusCode)
	}

	// Mutations are rejected while paused.
	led.Mint(bob, "atom", 1000)
	resp, _ = doJSON(t, app, http.MethodPost, "/swap", swapRequest{
		Actor:    bob.Hex(),
		Pool:     "atom/usdc",
		Side:     model.SideAToB.String(),
		AmountIn: 1000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("paused swap status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/admin/owner", adminRequest{
		Actor:    alice.Hex(),
		Pool:     "atom/usdc",
		NewOwner: bob.Hex(),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer status = %d", resp.StatusCode)
	}
}

func TestActorValidation(t *testing.T) {
	app, led := newTestApp(t)
	createTestPool(t, app, led)

	resp, _ := doJSON(t, app, http.MethodPost, "/swap", swapRequest{
		Pool:     "atom/usdc",
		Side:     model.SideAToB.String(),
		AmountIn: 1000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing actor status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/swap", swapRequest{
		Actor:    "not-an-address",
		Pool:     "atom/usdc",
		Side:     model.SideAToB.String(),
		AmountIn: 1000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad actor status = %d", resp.StatusCode)
	}
}
