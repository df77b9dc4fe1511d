package handler

import (
	"context"
	"net/http"
	"testing"

	"go-vendas-api/internal/model"
	"go-vendas-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCustomerService struct {
	err       error
	gotSearch string
	created   *model.Customer
}

func (f *fakeCustomerService) CreateCustomer(req *model.Customer, actor service.Actor) error {
	if f.err != nil {
		return f.err
	}
	req.ID = uuid.New()
	req.CreatedBy = actor.ID
	f.created = req
	return nil
}

func (f *fakeCustomerService) UpdateCustomer(id uuid.UUID, req *model.Customer, _ service.Actor) (*model.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	req.ID = id
	return req, nil
}

func (f *fakeCustomerService) DeleteCustomer(_ context.Context, _ uuid.UUID, _ service.Actor) error {
	return f.err
}

func (f *fakeCustomerService) GetCustomer(id uuid.UUID) (*model.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := &model.Customer{Name: "Maria"}
	c.ID = id
	return c, nil
}

func (f *fakeCustomerService) ListCustomers(search string) ([]model.Customer, error) {
	f.gotSearch = search
	return []model.Customer{{Name: "Maria"}}, f.err
}

func newCustomerApp(svc service.CustomerService) *fiber.App {
	app := fiber.New()
	h := NewCustomerHandler(svc)
	app.Get("/customers", h.GetCustomers)
	app.Post("/customers", h.CreateCustomer)
	app.Get("/customers/:id", h.GetCustomer)
	app.Put("/customers/:id", h.UpdateCustomer)
	app.Delete("/customers/:id", h.DeleteCustomer)
	return app
}

func TestCreateCustomerWithoutActorFallsBackToSystem(t *testing.T) {
	svc := &fakeCustomerService{}
	app := newCustomerApp(svc)

	status, out := doJSON(t, app, http.MethodPost, "/customers", `{"name":"Maria","email":"maria@example.com"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Customer created", out["message"])
	require.NotNil(t, svc.created)
	assert.Equal(t, "system", svc.created.CreatedBy)
}

func TestCustomerConflictsAndNotFound(t *testing.T) {
	status, _ := doJSON(t, newCustomerApp(&fakeCustomerService{err: service.ErrEmailExists}),
		http.MethodPost, "/customers", `{"name":"Maria","email":"maria@example.com"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doJSON(t, newCustomerApp(&fakeCustomerService{err: service.ErrCustomerHasSales}),
		http.MethodDelete, "/customers/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doJSON(t, newCustomerApp(&fakeCustomerService{err: service.ErrCustomerNotFound}),
		http.MethodGet, "/customers/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, newCustomerApp(&fakeCustomerService{}),
		http.MethodGet, "/customers/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetCustomersPassesSearch(t *testing.T) {
	svc := &fakeCustomerService{}
	app := newCustomerApp(svc)

	req, err := http.NewRequest(http.MethodGet, "/customers?search=mar", nil)
	require.NoError(t, err)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mar", svc.gotSearch)
}
