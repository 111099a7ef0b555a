package handlers

import (
	"errors"

	"github.com/bitcoin-loan/backend/internal/http/dto"
	"github.com/bitcoin-loan/backend/internal/middleware"
	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.userService.Get(c.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.log.Error("get user failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *UserHandler) GetBTCAddress(c *fiber.Ctx) error {
	address, err := h.userService.GetBTCAddress(c.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.log.Error("get btc address failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.BTCAddressResponse{Address: address}})
}

func (h *UserHandler) LinkBTCAddress(c *fiber.Ctx) error {
	var req dto.LinkBTCAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if err := h.userService.LinkBTCAddress(c.Context(), middleware.GetUserID(c), req.Address); err != nil {
		if errors.Is(err, models.ErrInvalidBTCAddress) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.log.Error("link btc address failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
