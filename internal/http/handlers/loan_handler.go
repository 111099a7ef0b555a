package handlers

import (
	"github.com/bitcoin-loan/backend/internal/http/dto"
	"github.com/bitcoin-loan/backend/internal/middleware"
	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LoanHandler struct {
	loanService *services.LoanService
	log         *zap.Logger
}

func NewLoanHandler(loanService *services.LoanService, log *zap.Logger) *LoanHandler {
	return &LoanHandler{loanService: loanService, log: log}
}

func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	var req dto.CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	owner := middleware.GetUserID(c)
	loan, err := h.loanService.Create(c.Context(), owner, req.CollateralAmount, req.LoanAmount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: loan})
}

func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	owner := middleware.GetUserID(c)

	loans, err := h.loanService.List(c.Context(), owner)
	if err != nil {
		h.log.Error("list loans failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	if loans == nil {
		loans = []models.Loan{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: loans})
}
