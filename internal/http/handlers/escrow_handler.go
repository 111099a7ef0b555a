package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/bitcoin-loan/backend/internal/http/dto"
	"github.com/bitcoin-loan/backend/internal/middleware"
	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EscrowHandler struct {
	escrowService *services.EscrowService
	log           *zap.Logger
}

func NewEscrowHandler(escrowService *services.EscrowService, log *zap.Logger) *EscrowHandler {
	return &EscrowHandler{escrowService: escrowService, log: log}
}

// statusForEscrowError maps the ledger's error taxonomy onto HTTP codes.
func statusForEscrowError(err error) int {
	switch {
	case errors.Is(err, models.ErrEscrowNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInvalidState):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

func parseEscrowID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

func (h *EscrowHandler) CreateEscrow(c *fiber.Ctx) error {
	var req dto.CreateEscrowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	borrower := middleware.GetUserID(c)
	escrow, err := h.escrowService.Create(c.Context(), borrower, req.Lender, req.BTCCollateralAddress, req.CollateralAmount, req.LoanAmount)
	if err != nil {
		return c.Status(statusForEscrowError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.CreateEscrowResponse{
		EscrowID: escrow.ID,
		Escrow:   escrow,
	}})
}

func (h *EscrowHandler) GetEscrow(c *fiber.Ctx) error {
	id, err := parseEscrowID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	escrow, err := h.escrowService.Get(c.Context(), id)
	if err != nil {
		return c.Status(statusForEscrowError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) ListEscrows(c *fiber.Ctx) error {
	caller := middleware.GetUserID(c)

	var (
		escrows []models.Escrow
		err     error
	)
	switch c.Query("role") {
	case "lender":
		escrows, err = h.escrowService.ListByLender(c.Context(), caller)
	default:
		escrows, err = h.escrowService.ListByBorrower(c.Context(), caller)
	}
	if err != nil {
		h.log.Error("list escrows failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	if escrows == nil {
		escrows = []models.Escrow{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrows})
}

func (h *EscrowHandler) LockEscrow(c *fiber.Ctx) error {
	return h.transition(c, h.escrowService.Lock)
}

func (h *EscrowHandler) ReleaseEscrow(c *fiber.Ctx) error {
	return h.transition(c, h.escrowService.Release)
}

func (h *EscrowHandler) RefundEscrow(c *fiber.Ctx) error {
	return h.transition(c, h.escrowService.Refund)
}

func (h *EscrowHandler) transition(c *fiber.Ctx, op func(ctx context.Context, id uint64, caller uuid.UUID) error) error {
	id, err := parseEscrowID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	caller := middleware.GetUserID(c)
	if err := op(c.Context(), id, caller); err != nil {
		return c.Status(statusForEscrowError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *EscrowHandler) GetEscrowEvents(c *fiber.Ctx) error {
	id, err := parseEscrowID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	logs, err := h.escrowService.GetEvents(c.Context(), id)
	if err != nil {
		return c.Status(statusForEscrowError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}
