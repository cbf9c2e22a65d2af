package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/finance"
	"github.com/jhoicas/taller-api/internal/domain"
)

// FinanceHandler maneja cuentas por cobrar/pagar y caja (protegido).
type FinanceHandler struct {
	uc *finance.PosterUseCase
}

// NewFinanceHandler construye el handler.
func NewFinanceHandler(uc *finance.PosterUseCase) *FinanceHandler {
	return &FinanceHandler{uc: uc}
}

// ListEntries lista cuentas con overdue y mora derivados.
func (h *FinanceHandler) ListEntries(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	list, err := h.uc.ListEntries(c.UserContext(), c.Query("direction"), c.Query("status"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.AccountEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toEntryResponse(e))
	}
	return c.JSON(items)
}

// GetEntry devuelve una cuenta con overdue/mora derivados.
func (h *FinanceHandler) GetEntry(c *fiber.Ctx) error {
	entry, err := h.uc.GetEntry(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cuenta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toEntryResponse(entry))
}

// Settle registra un abono (o la liquidación total) de una cuenta.
func (h *FinanceHandler) Settle(c *fiber.Ctx) error {
	var in dto.SettleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.uc.Settle(c.UserContext(), c.Params("id"), in.Amount, in.Method, GetUserID(c))
	if err != nil {
		return financeError(c, err)
	}
	return c.JSON(toEntryResponse(entry))
}

// Void anula una cuenta (solo sin abonos aplicados).
func (h *FinanceHandler) Void(c *fiber.Ctx) error {
	entry, err := h.uc.Void(c.UserContext(), c.Params("id"))
	if err != nil {
		return financeError(c, err)
	}
	return c.JSON(toEntryResponse(entry))
}

// RegisterCashMovement registra un movimiento de caja manual.
func (h *FinanceHandler) RegisterCashMovement(c *fiber.Ctx) error {
	var in dto.RegisterCashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.RegisterCashMovement(c.UserContext(), in.Type, in.Category, in.Description, in.Method, GetUserID(c), in.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toCashResponse(mov))
}

// ListCashMovements lista la caja con filtros opcionales.
func (h *FinanceHandler) ListCashMovements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	from, to := parseDateRange(c)
	list, err := h.uc.ListCashMovements(c.UserContext(), c.Query("type"), c.Query("category"), from, to, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.CashMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toCashResponse(m))
	}
	return c.JSON(items)
}

func financeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cuenta no encontrada"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
