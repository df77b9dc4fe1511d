package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-vendas-api/internal/ledger"
	"go-vendas-api/internal/model"
	"go-vendas-api/internal/repository"
	"go-vendas-api/internal/ws"
	"go-vendas-api/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	saleDateLayout = "2006-01-02"

	// saleNumberIndex is the unique index gorm creates for Sale.SaleNumber.
	saleNumberIndex = "idx_sales_sale_number"
)

// SaleItemInput is one requested line. UnitPrice falls back to the product's
// current price; Discount and DiscountPercent are mutually exclusive.
type SaleItemInput struct {
	ProductID       uuid.UUID        `json:"product_id" validate:"uuid_required"`
	Quantity        int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice       *decimal.Decimal `json:"unit_price" validate:"omitempty,decimal_gte0"`
	Discount        *decimal.Decimal `json:"discount" validate:"omitempty,decimal_gte0"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	Notes           string           `json:"notes"`
}

type CreateSaleRequest struct {
	CustomerID    uuid.UUID           `json:"customer_id" validate:"uuid_required"`
	Shipping      decimal.Decimal     `json:"shipping" validate:"decimal_gte0"`
	DiscountTotal decimal.Decimal     `json:"discount_total" validate:"decimal_gte0"`
	TaxTotal      decimal.Decimal     `json:"tax_total" validate:"decimal_gte0"`
	Status        model.SaleStatus    `json:"status" validate:"omitempty,oneof=paid pending cancelled"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=mastercard visa pix boleto"`
	SaleDate      string              `json:"sale_date"`
	Notes         string              `json:"notes"`
	Items         []SaleItemInput     `json:"items" validate:"required,min=1,dive"`
}

// UpdateSaleRequest changes header fields only; nil means unchanged.
type UpdateSaleRequest struct {
	CustomerID    *uuid.UUID           `json:"customer_id"`
	Shipping      *decimal.Decimal     `json:"shipping" validate:"omitempty,decimal_gte0"`
	DiscountTotal *decimal.Decimal     `json:"discount_total" validate:"omitempty,decimal_gte0"`
	TaxTotal      *decimal.Decimal     `json:"tax_total" validate:"omitempty,decimal_gte0"`
	Status        *model.SaleStatus    `json:"status" validate:"omitempty,oneof=paid pending cancelled"`
	PaymentMethod *model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=mastercard visa pix boleto"`
	SaleDate      *string              `json:"sale_date"`
	Notes         *string              `json:"notes"`
}

type ReplaceSaleItemsRequest struct {
	Items []SaleItemInput `json:"items" validate:"required,min=1,dive"`
}

type SaleService interface {
	CreateSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error)
	ReplaceSaleItems(ctx context.Context, id uint, req *ReplaceSaleItemsRequest, actor Actor) (*model.Sale, error)
	UpdateSale(ctx context.Context, id uint, req *UpdateSaleRequest, actor Actor) (*model.Sale, error)
	DeleteSale(ctx context.Context, id uint, actor Actor) error
	GetSale(ctx context.Context, id uint) (*model.Sale, error)
	ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error)
}

type saleService struct {
	db           *gorm.DB
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	allocator    *ledger.Allocator
	wsHub        *ws.Hub
	now          func() time.Time
}

func NewSaleService(db *gorm.DB, sRepo repository.SaleRepository, pRepo repository.ProductRepository, cRepo repository.CustomerRepository, allocator *ledger.Allocator, hub *ws.Hub) SaleService {
	return &saleService{
		db:           db,
		saleRepo:     sRepo,
		productRepo:  pRepo,
		customerRepo: cRepo,
		allocator:    allocator,
		wsHub:        hub,
		now:          time.Now,
	}
}

func (s *saleService) CreateSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	createdAt := s.now()
	saleDate, err := parseSaleDate(req.SaleDate, createdAt.In(s.allocator.Location))
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.SalePending
	}
	payment := req.PaymentMethod
	if payment == "" {
		payment = model.PayPix
	}

	var saleID uint
	err = s.allocator.Run(ctx, func(ctx context.Context) error {
		return s.inTx(ctx, "create sale", func(tx *gorm.DB) error {
			if err := s.requireCustomer(tx, req.CustomerID); err != nil {
				return err
			}
			items, err := s.resolveItems(tx, req.Items)
			if err != nil {
				return err
			}

			sale := &model.Sale{
				CustomerID:    req.CustomerID,
				Shipping:      req.Shipping,
				DiscountTotal: req.DiscountTotal,
				TaxTotal:      req.TaxTotal,
				Status:        status,
				PaymentMethod: payment,
				SaleDate:      saleDate,
				Notes:         req.Notes,
				Items:         items,
				CreatedBy:     actor.ID,
				UpdatedBy:     actor.ID,
			}
			if err := ledger.RequireItems(sale); err != nil {
				return err
			}
			if err := ledger.Recalculate(sale); err != nil {
				return err
			}

			sales := s.saleRepo.WithTx(tx)
			number, err := s.allocator.Next(ctx, sales, createdAt)
			if err != nil {
				return err
			}
			sale.SaleNumber = number

			if err := sales.Create(ctx, sale); err != nil {
				if isSaleNumberConflict(err) {
					return ledger.ErrUniquenessConflict
				}
				return err
			}
			saleID = sale.ID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, persistenceError("load sale", err)
	}
	log.Printf("✅ sale %s created by %s (total %s)", sale.SaleNumber, actor.Name, sale.Total.StringFixed(2))
	s.broadcast("sale_created", sale, actor, fmt.Sprintf("%s created sale %s", actor.Name, sale.SaleNumber))
	return sale, nil
}

func (s *saleService) ReplaceSaleItems(ctx context.Context, id uint, req *ReplaceSaleItemsRequest, actor Actor) (*model.Sale, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, "replace sale items", func(tx *gorm.DB) error {
		sales := s.saleRepo.WithTx(tx)
		sale, err := s.lockSale(ctx, sales, id)
		if err != nil {
			return err
		}

		items, err := s.resolveItems(tx, req.Items)
		if err != nil {
			return err
		}
		sale.Items = items
		if err := ledger.RequireItems(sale); err != nil {
			return err
		}
		if err := ledger.Recalculate(sale); err != nil {
			return err
		}
		sale.UpdatedBy = actor.ID

		if err := sales.ReplaceItems(ctx, sale.ID, sale.Items); err != nil {
			return err
		}
		return sales.UpdateHeader(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndBroadcast(ctx, id, "sale_updated", actor)
}

func (s *saleService) UpdateSale(ctx context.Context, id uint, req *UpdateSaleRequest, actor Actor) (*model.Sale, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, "update sale", func(tx *gorm.DB) error {
		sales := s.saleRepo.WithTx(tx)
		sale, err := s.lockSale(ctx, sales, id)
		if err != nil {
			return err
		}

		if req.CustomerID != nil && *req.CustomerID != sale.CustomerID {
			if err := s.requireCustomer(tx, *req.CustomerID); err != nil {
				return err
			}
			sale.CustomerID = *req.CustomerID
		}
		if req.Shipping != nil {
			sale.Shipping = *req.Shipping
		}
		if req.DiscountTotal != nil {
			sale.DiscountTotal = *req.DiscountTotal
		}
		if req.TaxTotal != nil {
			sale.TaxTotal = *req.TaxTotal
		}
		if req.Status != nil {
			sale.Status = *req.Status
		}
		if req.PaymentMethod != nil {
			sale.PaymentMethod = *req.PaymentMethod
		}
		if req.SaleDate != nil {
			saleDate, err := parseSaleDate(*req.SaleDate, sale.SaleDate)
			if err != nil {
				return err
			}
			sale.SaleDate = saleDate
		}
		if req.Notes != nil {
			sale.Notes = *req.Notes
		}

		if err := ledger.Recalculate(sale); err != nil {
			return err
		}
		sale.UpdatedBy = actor.ID
		return sales.UpdateHeader(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndBroadcast(ctx, id, "sale_updated", actor)
}

func (s *saleService) DeleteSale(ctx context.Context, id uint, actor Actor) error {
	var number string
	err := s.inTx(ctx, "delete sale", func(tx *gorm.DB) error {
		sales := s.saleRepo.WithTx(tx)
		sale, err := s.lockSale(ctx, sales, id)
		if err != nil {
			return err
		}
		number = sale.SaleNumber
		if err := sales.Delete(ctx, id, actor.ID); err != nil {
			if database.IsNotFound(err) {
				return ErrSaleNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ sale %s deleted by %s", number, actor.Name)
	s.wsHub.Publish(map[string]interface{}{
		"type":   "sale_update",
		"action": "sale_deleted",
		"sale": map[string]interface{}{
			"id":          id,
			"sale_number": number,
		},
		"user":    actor.userPayload(),
		"message": fmt.Sprintf("%s deleted sale %s", actor.Name, number),
	})
	return nil
}

func (s *saleService) GetSale(ctx context.Context, id uint) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, persistenceError("load sale", err)
	}
	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	if filter.Status != "" && !model.ValidSaleStatus(filter.Status) {
		return nil, 0, ledger.NewValidationError("status", "unknown status %q", filter.Status)
	}
	if filter.PaymentMethod != "" && !model.ValidPaymentMethod(filter.PaymentMethod) {
		return nil, 0, ledger.NewValidationError("payment_method", "unknown payment method %q", filter.PaymentMethod)
	}
	sales, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, persistenceError("list sales", err)
	}
	return sales, total, nil
}

// inTx runs fn in one transaction and classifies whatever it fails with.
func (s *saleService) inTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	return persistenceError(op, err)
}

func (s *saleService) lockSale(ctx context.Context, sales repository.SaleRepository, id uint) (*model.Sale, error) {
	sale, err := sales.FindByIDForUpdate(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) requireCustomer(tx *gorm.DB, id uuid.UUID) error {
	ok, err := s.customerRepo.ExistsTx(tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ledger.NewValidationError("customer_id", "customer %s does not exist", id)
	}
	return nil
}

func (s *saleService) resolveItems(tx *gorm.DB, inputs []SaleItemInput) ([]model.SaleItem, error) {
	products, err := s.productRepo.FindByIDs(tx, productIDs(inputs))
	if err != nil {
		return nil, err
	}
	return buildItems(inputs, products)
}

func (s *saleService) reloadAndBroadcast(ctx context.Context, id uint, action string, actor Actor) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceError("load sale", err)
	}
	log.Printf("✅ sale %s updated by %s (total %s)", sale.SaleNumber, actor.Name, sale.Total.StringFixed(2))
	s.broadcast(action, sale, actor, fmt.Sprintf("%s updated sale %s", actor.Name, sale.SaleNumber))
	return sale, nil
}

func (s *saleService) broadcast(action string, sale *model.Sale, actor Actor, message string) {
	s.wsHub.Publish(map[string]interface{}{
		"type":    "sale_update",
		"action":  action,
		"sale":    sale.ToResponse(),
		"user":    actor.userPayload(),
		"message": message,
	})
}

// buildItems turns requested lines into ledger items, snapshotting the
// product price when none was given. Totals are left to ledger.Recalculate.
func buildItems(inputs []SaleItemInput, products map[uuid.UUID]model.Product) ([]model.SaleItem, error) {
	items := make([]model.SaleItem, 0, len(inputs))
	for i, in := range inputs {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		product, ok := products[in.ProductID]
		if !ok {
			return nil, ledger.NewValidationError(field("product_id"), "product %s does not exist", in.ProductID)
		}

		unitPrice := product.Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}

		discount := decimal.Zero
		switch {
		case in.Discount != nil && in.DiscountPercent != nil:
			return nil, ledger.NewValidationError(field("discount"), "set either discount or discount_percent, not both")
		case in.Discount != nil:
			discount = *in.Discount
		case in.DiscountPercent != nil:
			gross := ledger.RoundMoney(unitPrice).Mul(decimal.NewFromInt(int64(in.Quantity)))
			d, err := ledger.PercentDiscount(gross, *in.DiscountPercent)
			if err != nil {
				var ve *ledger.ValidationError
				if errors.As(err, &ve) {
					ve.Field = field(ve.Field)
				}
				return nil, err
			}
			discount = d
		}

		items = append(items, model.SaleItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			Discount:  discount,
			Notes:     in.Notes,
		})
	}
	return items, nil
}

// isSaleNumberConflict reports a unique violation on the sale number. A
// translated error carries no index name; sale_number is the only unique
// index the insert touches, so it is taken as the conflict.
func isSaleNumberConflict(err error) bool {
	if !database.IsUniqueViolation(err) {
		return false
	}
	constraint := database.UniqueViolationConstraint(err)
	return constraint == "" || constraint == saleNumberIndex
}

func productIDs(inputs []SaleItemInput) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		if !seen[in.ProductID] {
			seen[in.ProductID] = true
			ids = append(ids, in.ProductID)
		}
	}
	return ids
}

// parseSaleDate accepts YYYY-MM-DD; an empty value means the calendar day of
// fallback. The result is midnight UTC so the date column never shifts.
func parseSaleDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := fallback.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(saleDateLayout, value)
	if err != nil {
		return time.Time{}, ledger.NewValidationError("sale_date", "expected YYYY-MM-DD, got %q", value)
	}
	return t, nil
}
