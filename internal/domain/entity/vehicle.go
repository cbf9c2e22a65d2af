package entity

import "time"

// Vehicle representa un vehículo de un cliente, objeto de las órdenes de servicio.
type Vehicle struct {
	ID         string
	CustomerID string
	Plate      string // placa, única
	Brand      string
	Model      string
	Year       int
	Mileage    int // kilometraje al último servicio
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
