package entity

import "time"

// Customer representa un cliente del taller (ventas y órdenes de servicio).
type Customer struct {
	ID        string
	Name      string
	Document  string // cédula o NIT
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
