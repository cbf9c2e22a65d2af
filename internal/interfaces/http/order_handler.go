package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/orders"
	"github.com/jhoicas/taller-api/internal/domain"
)

// OrderHandler maneja las peticiones HTTP de órdenes: captura vía UseCase y
// transiciones vía Orchestrator.
type OrderHandler struct {
	uc           *orders.UseCase
	orchestrator *orders.Orchestrator
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase, orchestrator *orders.Orchestrator) *OrderHandler {
	return &OrderHandler{uc: uc, orchestrator: orchestrator}
}

// Create crea una orden en pending.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ord, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return orderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(ord))
}

// GetByID obtiene una orden con líneas.
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	ord, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(toOrderResponse(ord))
}

// List lista órdenes con filtros opcionales kind y status.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	list, err := h.uc.List(c.UserContext(), c.Query("kind"), c.Query("status"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	})
}

// ListByCustomer lista las órdenes de un cliente.
func (h *OrderHandler) ListByCustomer(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	list, err := h.uc.ListByCustomer(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	})
}

// UpdateLines reemplaza líneas/descuento/mano de obra de una orden aún editable.
func (h *OrderHandler) UpdateLines(c *fiber.Ctx) error {
	var in dto.UpdateOrderLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ord, err := h.uc.UpdateLines(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(toOrderResponse(ord))
}

// Transition solicita mover la orden al estado pedido, con pago opcional.
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status es requerido"})
	}
	var payment *orders.PaymentInfo
	if in.Amount.GreaterThan(decimal.Zero) || in.Method != "" {
		payment = &orders.PaymentInfo{Amount: in.Amount, Method: in.Method}
	}
	result, err := h.orchestrator.RequestTransition(c.UserContext(), c.Params("id"), in.Status, GetUserID(c), payment)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(toTransitionResponse(result.Order, result.AppliedEffects))
}

// orderError mapea errores de dominio del ciclo de vida a códigos HTTP.
func orderError(c *fiber.Ctx, err error) error {
	var shortfall *domain.StockShortfallError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.As(err, &shortfall):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: shortfall.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
