package service

import (
	"context"
	"log"
	"strings"

	"go-vendas-api/internal/model"
	"go-vendas-api/internal/repository"
	"go-vendas-api/internal/ws"
	"go-vendas-api/pkg/database"

	"github.com/google/uuid"
)

type CustomerService interface {
	CreateCustomer(req *model.Customer, actor Actor) error
	UpdateCustomer(id uuid.UUID, req *model.Customer, actor Actor) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID, actor Actor) error
	GetCustomer(id uuid.UUID) (*model.Customer, error)
	ListCustomers(search string) ([]model.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	wsHub        *ws.Hub
}

func NewCustomerService(cRepo repository.CustomerRepository, sRepo repository.SaleRepository, hub *ws.Hub) CustomerService {
	return &customerService{
		customerRepo: cRepo,
		saleRepo:     sRepo,
		wsHub:        hub,
	}
}

func (s *customerService) CreateCustomer(req *model.Customer, actor Actor) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return err
	}

	if err := s.checkEmailFree(req.Email, uuid.Nil); err != nil {
		return err
	}

	req.ID = uuid.Nil
	req.CreatedBy = actor.ID
	req.UpdatedBy = actor.ID
	if err := s.customerRepo.Create(req); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return persistenceError("create customer", err)
	}

	s.publish("customer_created", req, actor)
	return nil
}

func (s *customerService) UpdateCustomer(id uuid.UUID, req *model.Customer, actor Actor) (*model.Customer, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	existing, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	if req.Email != existing.Email {
		if err := s.checkEmailFree(req.Email, existing.ID); err != nil {
			return nil, err
		}
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Address = req.Address
	existing.UpdatedBy = actor.ID
	if err := s.customerRepo.Update(existing); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, persistenceError("update customer", err)
	}

	s.publish("customer_updated", existing, actor)
	return existing, nil
}

// DeleteCustomer refuses while any live sale references the customer.
func (s *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID, actor Actor) error {
	count, err := s.saleRepo.CountByCustomer(ctx, id)
	if err != nil {
		return persistenceError("count customer sales", err)
	}
	if count > 0 {
		return ErrCustomerHasSales
	}

	if err := s.customerRepo.Delete(id); err != nil {
		if database.IsNotFound(err) {
			return ErrCustomerNotFound
		}
		if database.IsForeignKeyViolation(err) {
			return ErrCustomerHasSales
		}
		return persistenceError("delete customer", err)
	}
	log.Printf("🗑️ customer %s deleted by %s", id, actor.Name)
	s.wsHub.Publish(map[string]interface{}{
		"type":     "customer_update",
		"action":   "customer_deleted",
		"customer": map[string]interface{}{"id": id},
		"user":     actor.userPayload(),
	})
	return nil
}

func (s *customerService) GetCustomer(id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, persistenceError("load customer", err)
	}
	return customer, nil
}

func (s *customerService) ListCustomers(search string) ([]model.Customer, error) {
	customers, err := s.customerRepo.FindAll(strings.TrimSpace(search))
	if err != nil {
		return nil, persistenceError("list customers", err)
	}
	return customers, nil
}

// checkEmailFree fails when another customer, live or deleted, holds email.
func (s *customerService) checkEmailFree(email string, self uuid.UUID) error {
	holder, err := s.customerRepo.FindByEmail(email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil
		}
		return persistenceError("check customer email", err)
	}
	if holder.ID == self {
		return nil
	}
	if holder.DeletedAt.Valid {
		return ErrEmailArchived
	}
	return ErrEmailExists
}

func (s *customerService) publish(action string, c *model.Customer, actor Actor) {
	s.wsHub.Publish(map[string]interface{}{
		"type":   "customer_update",
		"action": action,
		"customer": map[string]interface{}{
			"id":    c.ID,
			"name":  c.Name,
			"email": c.Email,
		},
		"user": actor.userPayload(),
	})
}
