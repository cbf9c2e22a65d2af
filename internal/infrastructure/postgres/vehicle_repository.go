package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo implementación de VehicleRepository sobre PostgreSQL (usable con pool o tx).
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository construye el adaptador de vehículos. Pasar pool o tx (Querier).
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

// Create persiste un vehículo. La placa es única: repetirla devuelve ErrDuplicate.
func (r *VehicleRepo) Create(vehicle *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, customer_id, plate, brand, model, year, mileage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		vehicle.ID, vehicle.CustomerID, vehicle.Plate, vehicle.Brand, vehicle.Model,
		vehicle.Year, vehicle.Mileage, vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// GetByID obtiene un vehículo por ID.
func (r *VehicleRepo) GetByID(id string) (*entity.Vehicle, error) {
	query := `SELECT id, customer_id, plate, brand, model, year, mileage, created_at, updated_at FROM vehicles WHERE id = $1`
	return scanVehicle(r.q.QueryRow(context.Background(), query, id))
}

// GetByPlate obtiene un vehículo por placa.
func (r *VehicleRepo) GetByPlate(plate string) (*entity.Vehicle, error) {
	query := `SELECT id, customer_id, plate, brand, model, year, mileage, created_at, updated_at FROM vehicles WHERE plate = $1`
	return scanVehicle(r.q.QueryRow(context.Background(), query, plate))
}

// ListByCustomer lista los vehículos de un cliente.
func (r *VehicleRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Vehicle, error) {
	query := `
		SELECT id, customer_id, plate, brand, model, year, mileage, created_at, updated_at
		FROM vehicles WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vehicle
	for rows.Next() {
		var v entity.Vehicle
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.Plate, &v.Brand, &v.Model,
			&v.Year, &v.Mileage, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// Update actualiza los datos de un vehículo.
func (r *VehicleRepo) Update(vehicle *entity.Vehicle) error {
	query := `
		UPDATE vehicles SET brand = $2, model = $3, year = $4, mileage = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		vehicle.ID, vehicle.Brand, vehicle.Model, vehicle.Year, vehicle.Mileage, vehicle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return nil
}

// Delete elimina un vehículo por ID.
func (r *VehicleRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}

func scanVehicle(row pgx.Row) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(&v.ID, &v.CustomerID, &v.Plate, &v.Brand, &v.Model, &v.Year, &v.Mileage, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}
