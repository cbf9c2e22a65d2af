package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// VehicleUseCase casos de uso para vehículos de clientes.
type VehicleUseCase struct {
	repo         repository.VehicleRepository
	customerRepo repository.CustomerRepository
}

// NewVehicleUseCase construye el caso de uso.
func NewVehicleUseCase(repo repository.VehicleRepository, customerRepo repository.CustomerRepository) *VehicleUseCase {
	return &VehicleUseCase{repo: repo, customerRepo: customerRepo}
}

// Create registra un vehículo de un cliente. La placa es única.
func (uc *VehicleUseCase) Create(in dto.CreateVehicleRequest) (*dto.VehicleResponse, error) {
	if in.CustomerID == "" || in.Plate == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	existing, _ := uc.repo.GetByPlate(in.Plate)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	vehicle := &entity.Vehicle{
		ID:         uuid.New().String(),
		CustomerID: in.CustomerID,
		Plate:      in.Plate,
		Brand:      in.Brand,
		Model:      in.Model,
		Year:       in.Year,
		Mileage:    in.Mileage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(vehicle); err != nil {
		return nil, err
	}
	return toVehicleResponse(vehicle), nil
}

// GetByID obtiene un vehículo por ID.
func (uc *VehicleUseCase) GetByID(id string) (*dto.VehicleResponse, error) {
	vehicle, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, nil
	}
	return toVehicleResponse(vehicle), nil
}

// Update actualiza datos del vehículo (kilometraje, etc.).
func (uc *VehicleUseCase) Update(id string, in dto.UpdateVehicleRequest) (*dto.VehicleResponse, error) {
	vehicle, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, nil
	}
	if in.Brand != nil {
		vehicle.Brand = *in.Brand
	}
	if in.Model != nil {
		vehicle.Model = *in.Model
	}
	if in.Year != nil {
		vehicle.Year = *in.Year
	}
	if in.Mileage != nil {
		vehicle.Mileage = *in.Mileage
	}
	vehicle.UpdatedAt = time.Now()
	if err := uc.repo.Update(vehicle); err != nil {
		return nil, err
	}
	return toVehicleResponse(vehicle), nil
}

// ListByCustomer lista los vehículos de un cliente.
func (uc *VehicleUseCase) ListByCustomer(customerID string, limit, offset int) ([]*dto.VehicleResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.ListByCustomer(customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.VehicleResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVehicleResponse(v))
	}
	return out, nil
}

// Delete elimina un vehículo por ID.
func (uc *VehicleUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func toVehicleResponse(v *entity.Vehicle) *dto.VehicleResponse {
	return &dto.VehicleResponse{
		ID:         v.ID,
		CustomerID: v.CustomerID,
		Plate:      v.Plate,
		Brand:      v.Brand,
		Model:      v.Model,
		Year:       v.Year,
		Mileage:    v.Mileage,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}
