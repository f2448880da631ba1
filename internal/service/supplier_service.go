package service

import (
	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/repository"
	"go-stockledger-ws/pkg/validator"

	"github.com/google/uuid"
)

type SupplierService interface {
	CreateSupplier(req *model.Supplier, userID string) error
	GetAllSuppliers() ([]model.Supplier, error)
	DeleteSupplier(id uuid.UUID, userID string) error
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
	purchaseRepo repository.PurchaseRequestRepository
}

func NewSupplierService(sRepo repository.SupplierRepository, pRepo repository.PurchaseRequestRepository) SupplierService {
	return &supplierService{supplierRepo: sRepo, purchaseRepo: pRepo}
}

func (s *supplierService) CreateSupplier(req *model.Supplier, userID string) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	req.CreatedBy = userID
	req.UpdatedBy = userID
	return s.supplierRepo.Create(req)
}

func (s *supplierService) GetAllSuppliers() ([]model.Supplier, error) {
	return s.supplierRepo.FindAll()
}

// DeleteSupplier refuses to delete a supplier that still backs a PENDING
// purchase request, so open requests never lose their reference.
func (s *supplierService) DeleteSupplier(id uuid.UUID, userID string) error {
	if _, err := s.supplierRepo.FindByID(id); err != nil {
		return ErrSupplierNotFound
	}

	pending, err := s.purchaseRepo.CountPendingBySupplier(id)
	if err != nil {
		return err
	}
	if pending > 0 {
		return ErrSupplierInUse
	}

	return s.supplierRepo.Delete(id, userID)
}
