package handler

import (
	"time"

	"go-vendas-api/internal/model"
	"go-vendas-api/internal/repository"
	"go-vendas-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

// GetSales lists sales
// GET /api/v1/sales?search=&status=&payment_method=&customer_id=&date_from=&date_to=&sort_by=&sort_order=&page=&per_page=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Search:        c.Query("search"),
		Status:        model.SaleStatus(c.Query("status")),
		PaymentMethod: model.PaymentMethod(c.Query("payment_method")),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
		Page:          c.QueryInt("page", 1),
		PerPage:       c.QueryInt("per_page", repository.DefaultPerPage),
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := parseUUID(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
		}
		filter.CustomerID = &id
	}
	for _, p := range []struct {
		key  string
		dest **time.Time
	}{
		{"date_from", &filter.DateFrom},
		{"date_to", &filter.DateTo},
	} {
		if v := c.Query(p.key); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "Invalid " + p.key + ", use YYYY-MM-DD"})
			}
			*p.dest = &t
		}
	}
	filter.Normalize()

	sales, total, err := h.service.ListSales(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	data := make([]model.SaleResponse, len(sales))
	for i := range sales {
		data[i] = sales[i].ToResponse()
	}
	lastPage := (total + int64(filter.PerPage) - 1) / int64(filter.PerPage)
	return c.JSON(fiber.Map{
		"data": data,
		"meta": fiber.Map{
			"total":     total,
			"page":      filter.Page,
			"per_page":  filter.PerPage,
			"last_page": lastPage,
		},
	})
}

// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseSaleID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale.ToResponse())
}

// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.CreateSale(c.UserContext(), &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale created", "data": sale.ToResponse()})
}

// PUT /api/v1/sales/:id
func (h *SaleHandler) UpdateSale(c *fiber.Ctx) error {
	id, err := parseSaleID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	var req service.UpdateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.UpdateSale(c.UserContext(), id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale updated", "data": sale.ToResponse()})
}

// PUT /api/v1/sales/:id/items
func (h *SaleHandler) ReplaceSaleItems(c *fiber.Ctx) error {
	id, err := parseSaleID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	var req service.ReplaceSaleItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.ReplaceSaleItems(c.UserContext(), id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale items replaced", "data": sale.ToResponse()})
}

// DELETE /api/v1/sales/:id
func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	id, err := parseSaleID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.service.DeleteSale(c.UserContext(), id, getActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale deleted"})
}
