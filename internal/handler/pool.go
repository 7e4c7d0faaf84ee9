package handler

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"ammcore/internal/engine"
	"ammcore/internal/model"
)

// PoolHandler serves the pool engine's operations and queries.
type PoolHandler struct {
	BaseHandler
	engine *engine.Engine
}

func NewPoolHandler(logger *zap.Logger, eng *engine.Engine) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{logger: logger},
		engine:      eng,
	}
}

// Register mounts every route on the app.
func (h *PoolHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/pools", h.ListPools)
	app.Get("/pool", h.GetPool)
	app.Get("/quote/swap", h.QuoteSwap)
	app.Get("/quote/deposit", h.QuoteDeposit)
	app.Get("/quote/withdraw", h.QuoteWithdraw)
	app.Post("/pools", h.CreatePool)
	app.Post("/liquidity/add", h.AddLiquidity)
	app.Post("/liquidity/remove", h.RemoveLiquidity)
	app.Post("/swap", h.Swap)
	app.Post("/admin/fee", h.SetFee)
	app.Post("/admin/pause", h.SetPause)
	app.Post("/admin/owner", h.TransferOwnership)
}

func (h *PoolHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "pools": len(h.engine.Registry().IDs())})
}

func (h *PoolHandler) ListPools(c fiber.Ctx) error {
	return c.JSON(h.engine.ListPools())
}

func (h *PoolHandler) GetPool(c fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "pool id is required")
	}
	snap, err := h.engine.GetPool(id)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(snap)
}

type quoteSwapRequest struct {
	Pool     string `query:"pool"`
	Side     string `query:"side"`
	AmountIn uint64 `query:"amount_in"`
}

func (h *PoolHandler) QuoteSwap(c fiber.Ctx) error {
	var req quoteSwapRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrInvalidBody
	}
	side, err := model.ParseSide(req.Side)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	quote, err := h.engine.QuoteSwap(req.Pool, side, req.AmountIn)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(quote)
}

type quoteDepositRequest struct {
	Pool     string `query:"pool"`
	DesiredA uint64 `query:"desired_a"`
	DesiredB uint64 `query:"desired_b"`
}

func (h *PoolHandler) QuoteDeposit(c fiber.Ctx) error {
	var req quoteDepositRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrInvalidBody
	}
	optA, optB, shares, err := h.engine.QuoteDeposit(req.Pool, req.DesiredA, req.DesiredB)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"amount_a": optA, "amount_b": optB, "shares": shares})
}

type quoteWithdrawRequest struct {
	Pool   string `query:"pool"`
	Shares uint64 `query:"shares"`
}

func (h *PoolHandler) QuoteWithdraw(c fiber.Ctx) error {
	var req quoteWithdrawRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrInvalidBody
	}
	amountA, amountB, err := h.engine.QuoteWithdraw(req.Pool, req.Shares)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"amount_a": amountA, "amount_b": amountB})
}

type createPoolRequest struct {
	Actor   string `json:"actor"`
	AssetA  string `json:"asset_a"`
	AssetB  string `json:"asset_b"`
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
	FeeBps  uint32 `json:"fee_bps"`
}

func (h *PoolHandler) CreatePool(c fiber.Ctx) error {
	var req createPoolRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrInvalidBody
	}
	actor, err := parseActor(req.Actor, "actor")
	if err != nil {
		return err
	}

	minted, err := h.engine.CreatePool(actor, req.AssetA, req.AssetB, req.AmountA, req.AmountB, req.FeeBps)
	if err != nil {
		return mapEngineError(err)
	}
	h.logger.Info("pool created",
		zap.String("pair", model.PairID(req.AssetA, req.AssetB)),
		zap.String("actor", actor.Hex()),
		zap.Uint64("shares", minted),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"pool":   model.PairID(req.AssetA, req.AssetB),
		"shares": minted,
	})
}

type liquidityRequest struct {
	Actor     string `json:"actor"`
	Pool      string `json:"pool"`
	AmountA   uint64 `json:"amount_a"`
	AmountB   uint64 `json:"amount_b"`
	Shares    uint64 `json:"shares"`
	MinShares uint64 `json:"min_shares"`
	MinA      uint64 `json:"min_a"`
	MinB      uint64 `json:"min_b"`
}

func (h *PoolHandler) AddLiquidity(c fiber.Ctx) error {
	var req liquidityRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrInvalidBody
	}
	actor, err := parseActor(req.Actor, "actor")
	if err != nil {
		return err
	}

	minted, err := h.engine.AddLiquidity(actor, req.Pool, req.AmountA, req.AmountB, req.MinShares)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"shares": minted})
}

func (h *PoolHandler) RemoveLiquidity(c fiber.Ctx) error {
	var req liquidityRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrInvalidBody
	}
	actor, err := parseActor(req.Actor, "actor")
	if err != nil {
		return err
	}

	amountA, amountB, err := h.engine.RemoveLiquidity(actor, req.Pool, req.Shares, req.MinA, req.MinB)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"amount_a": amountA, "amount_b": amountB})
}

type swapRequest struct {
	Actor        string `json:"actor"`
	Pool         string `json:"pool"`
	Side         string `json:"side"`
	AmountIn     uint64 `json:"amount_in"`
	MinAmountOut uint64 `json:"min_amount_out"`
}

func (h *PoolHandler) Swap(c fiber.Ctx) error {
	var req swapRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrInvalidBody
	}
	actor, err := parseActor(req.Actor, "actor")
	if err != nil {
		return err
	}
	side, err := model.ParseSide(req.Side)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	out, err := h.engine.Swap(actor, req.Pool, side, req.AmountIn, req.MinAmountOut)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"amount_out": out})
}

type adminRequest struct {
	Actor    string `json:"actor"`
	Pool     string `json:"pool"`
	FeeBps   uint32 `json:"fee_bps"`
	Paused   bool   `json:"paused"`
	NewOwner string `json:"new_owner"`
}

func (h *PoolHandler) SetFee(c fiber.Ctx) error {
	var req adminRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrInvalidBody
	}
	actor, err := parseActor(req.Actor, "actor")
	if err != nil {
		return err
	}
	if err := h.engine.SetFee(actor, req.Pool, req.FeeBps); err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"fee_bps": req.FeeBps})
}

func (h *PoolHandler) SetPause(c fiber.Ctx) error {
	var req adminRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrInvalidBody
	}
	actor, err := parseActor(req.Actor, "actor")
	if err != nil {
		return err
	}
	if err := h.engine.SetPause(actor, req.Pool, req.Paused); err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"paused": req.Paused})
}

func (h *PoolHandler) TransferOwnership(c fiber.Ctx) error {
	var req adminRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrInvalidBody
	}
	actor, err := parseActor(req.Actor, "actor")
	if err != nil {
		return err
	}
	newOwner, err := parseActor(req.NewOwner, "new_owner")
	if err != nil {
		return err
	}
	if err := h.engine.TransferOwnership(actor, req.Pool, newOwner); err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"owner": newOwner.Hex()})
}

func parseActor(raw, field string) (common.Address, error) {
	if raw == "" {
		return common.Address{}, NewActorRequired(field)
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, NewInvalidActor(field)
	}
	return common.HexToAddress(raw), nil
}
