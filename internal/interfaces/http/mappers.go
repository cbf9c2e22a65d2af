package http

import (
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/order"
)

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineDiscount: l.LineDiscount,
			LineTotal:    l.LineTotal,
		})
	}
	return dto.OrderResponse{
		ID:             o.ID,
		Number:         o.Number,
		Kind:           o.Kind,
		Status:         o.Status,
		CustomerID:     o.CustomerID,
		VehicleID:      o.VehicleID,
		Lines:          lines,
		DiscountType:   o.OrderDiscountType,
		DiscountValue:  o.OrderDiscountValue,
		LaborCost:      o.LaborCost,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  o.PaymentMethod,
		Paid:           o.Paid,
		ValidUntil:     o.ValidUntil,
		ConvertedToID:  o.ConvertedToID,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func toTransitionResponse(ord *entity.Order, effects []order.Effect) dto.TransitionResponse {
	applied := make([]string, 0, len(effects))
	for _, e := range effects {
		applied = append(applied, string(e))
	}
	return dto.TransitionResponse{
		Order:          toOrderResponse(ord),
		AppliedEffects: applied,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Kind:           m.Kind,
		Quantity:       m.Quantity,
		ResultingStock: m.ResultingStock,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		ReversalOf:     m.ReversalOf,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}

func toEntryResponse(e *entity.AccountEntry) dto.AccountEntryResponse {
	return dto.AccountEntryResponse{
		ID:         e.ID,
		OrderID:    e.OrderID,
		Direction:  e.Direction,
		Amount:     e.Amount,
		DueDate:    e.DueDate,
		Status:     e.Status,
		PaidAmount: e.PaidAmount,
		PaidAt:     e.PaidAt,
		LateFee:    e.LateFee,
		CreatedAt:  e.CreatedAt,
	}
}

func toCashResponse(m *entity.CashMovement) dto.CashMovementResponse {
	return dto.CashMovementResponse{
		ID:             m.ID,
		Type:           m.Type,
		Amount:         m.Amount,
		Category:       m.Category,
		Description:    m.Description,
		AccountEntryID: m.AccountEntryID,
		Method:         m.Method,
		CreatedAt:      m.CreatedAt,
	}
}
