package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-vendas-api/internal/ledger"
	"go-vendas-api/internal/model"
	"go-vendas-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCustomerRepo struct {
	repository.CustomerRepository
	byID    map[uuid.UUID]*model.Customer
	findErr error
}

func (f *fakeCustomerRepo) Create(c *model.Customer) error {
	c.ID = uuid.New()
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCustomerRepo) FindByEmail(email string) (*model.Customer, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, c := range f.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCustomerRepo) Delete(id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeSaleCounter struct {
	repository.SaleRepository
	counts map[uuid.UUID]int64
}

func (f *fakeSaleCounter) CountByCustomer(_ context.Context, id uuid.UUID) (int64, error) {
	return f.counts[id], nil
}

func TestCreateCustomerNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	customers := &fakeCustomerRepo{byID: map[uuid.UUID]*model.Customer{}}
	svc := NewCustomerService(customers, &fakeSaleCounter{}, nil)

	c := &model.Customer{Name: "Maria", Email: "  Maria@Example.com "}
	require.NoError(t, svc.CreateCustomer(c, Actor{ID: "u1"}))
	assert.Equal(t, "maria@example.com", c.Email)
	assert.Equal(t, "u1", c.CreatedBy)

	err := svc.CreateCustomer(&model.Customer{Name: "Outra", Email: "MARIA@example.com"}, Actor{})
	assert.ErrorIs(t, err, ErrEmailExists)

	err = svc.CreateCustomer(&model.Customer{Name: "Sem email"}, Actor{})
	assert.True(t, ledger.IsValidation(err))
}

func TestDeleteCustomerWithSalesIsRefused(t *testing.T) {
	customers := &fakeCustomerRepo{byID: map[uuid.UUID]*model.Customer{}}
	sales := &fakeSaleCounter{counts: map[uuid.UUID]int64{}}
	svc := NewCustomerService(customers, sales, nil)

	c := &model.Customer{Name: "João", Email: "joao@example.com"}
	require.NoError(t, svc.CreateCustomer(c, Actor{}))
	sales.counts[c.ID] = 2

	assert.ErrorIs(t, svc.DeleteCustomer(context.Background(), c.ID, Actor{}), ErrCustomerHasSales)

	sales.counts[c.ID] = 0
	assert.NoError(t, svc.DeleteCustomer(context.Background(), c.ID, Actor{}))
	assert.ErrorIs(t, svc.DeleteCustomer(context.Background(), c.ID, Actor{}), ErrCustomerNotFound)
}

func TestCreateCustomerWithDeletedCustomersEmail(t *testing.T) {
	gone := &model.Customer{Name: "Antiga", Email: "antiga@example.com"}
	gone.ID = uuid.New()
	gone.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	customers := &fakeCustomerRepo{byID: map[uuid.UUID]*model.Customer{gone.ID: gone}}
	svc := NewCustomerService(customers, &fakeSaleCounter{}, nil)

	err := svc.CreateCustomer(&model.Customer{Name: "Nova", Email: "antiga@example.com"}, Actor{})
	assert.ErrorIs(t, err, ErrEmailArchived)
}

func TestCreateCustomerSurfacesLookupFailure(t *testing.T) {
	customers := &fakeCustomerRepo{byID: map[uuid.UUID]*model.Customer{}, findErr: errors.New("connection refused")}
	svc := NewCustomerService(customers, &fakeSaleCounter{}, nil)

	err := svc.CreateCustomer(&model.Customer{Name: "Maria", Email: "maria@example.com"}, Actor{})
	assert.True(t, ledger.IsPersistence(err))
	assert.Empty(t, customers.byID)
}
