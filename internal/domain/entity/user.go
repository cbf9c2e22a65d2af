package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleMecanico = "mecanico"
	RoleVendedor = "vendedor"
)

// User representa un usuario del sistema (actor de las transiciones de órdenes).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, mecanico, vendedor
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
