package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"ammcore/internal/amm"
	"ammcore/internal/engine"
	"ammcore/internal/ledger"
	"ammcore/internal/registry"
)

// ErrInvalidBody indicates that the request payload could not be parsed
// into the expected structure.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// NewActorRequired returns a 400 Bad Request for a missing identity field.
func NewActorRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

// NewInvalidActor returns a 400 Bad Request for a malformed identity field.
func NewInvalidActor(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}

// mapEngineError converts an engine error into an HTTP error while keeping
// the specific failure kind in the message.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, registry.ErrPoolNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrPoolAlreadyExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrSlippageExceeded),
		errors.Is(err, engine.ErrPoolPaused),
		errors.Is(err, engine.ErrInsufficientLiquidity),
		errors.Is(err, engine.ErrInvalidAddress),
		errors.Is(err, engine.ErrInvalidPair),
		errors.Is(err, amm.ErrInvalidFee),
		errors.Is(err, amm.ErrInsufficientInputAmount),
		errors.Is(err, amm.ErrInsufficientLiquidityMinted),
		errors.Is(err, amm.ErrInsufficientLiquidityBurned),
		errors.Is(err, amm.ErrDivisionByZero),
		errors.Is(err, amm.ErrOverflow),
		errors.Is(err, amm.ErrUnderflow),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrAccountFrozen):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
