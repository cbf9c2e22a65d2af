package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/stock"
	"github.com/jhoicas/taller-api/internal/domain"
)

// StockHandler maneja las peticiones HTTP del libro de stock (protegido).
type StockHandler struct {
	uc *stock.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.LedgerUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// RegisterMovement registra un movimiento manual (entrada, salida o ajuste).
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterStockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.uc.RegisterMovement(c.UserContext(), stock.MovementInputDTO{
		UserID:        GetUserID(c),
		ProductID:     in.ProductID,
		Kind:          in.Kind,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		Notes:         in.Notes,
		AllowNegative: in.AllowNegative,
	})
	if err != nil {
		var shortfall *domain.StockShortfallError
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		case errors.As(err, &shortfall):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: shortfall.Error()})
		case errors.Is(err, domain.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.SendStatus(fiber.StatusCreated)
}

// CurrentStock devuelve el stock actual derivado del libro.
func (h *StockHandler) CurrentStock(c *fiber.Ctx) error {
	productID := c.Params("id")
	qty, err := h.uc.CurrentStock(c.UserContext(), productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.CurrentStockResponse{ProductID: productID, Quantity: qty})
}

// ListMovements lista el historial de movimientos de un producto.
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	productID := c.Params("id")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	from, to := parseDateRange(c)
	list, err := h.uc.ListMovements(c.UserContext(), productID, from, to, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(items)
}

// parseDateRange lee from/to (RFC3339) del query string; nil si ausentes o inválidos.
func parseDateRange(c *fiber.Ctx) (*time.Time, *time.Time) {
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			from = &t
		}
	}
	if s := c.Query("to"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			to = &t
		}
	}
	return from, to
}
