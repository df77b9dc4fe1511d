package repository

import (
	"context"
	"strings"
	"time"

	"go-vendas-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter drives the sales listing
type SaleFilter struct {
	Search        string // customer name, case insensitive
	Status        model.SaleStatus
	PaymentMethod model.PaymentMethod
	CustomerID    *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
	SortBy        string
	SortOrder     string
	Page          int
	PerPage       int
}

// Sortable columns for the listing; anything else falls back to sale_date
var saleSortColumns = map[string]string{
	"sale_date":   "sales.sale_date",
	"sale_number": "sales.sale_number",
	"total":       "sales.total",
	"created_at":  "sales.created_at",
	"status":      "sales.status",
}

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Normalize applies defaults and bounds to paging and sorting.
func (f *SaleFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	if _, ok := saleSortColumns[f.SortBy]; !ok {
		f.SortBy = "sale_date"
	}
	if strings.ToLower(f.SortOrder) != "asc" {
		f.SortOrder = "desc"
	} else {
		f.SortOrder = "asc"
	}
}

type SaleRepository interface {
	// WithTx returns a repository bound to tx
	WithTx(tx *gorm.DB) SaleRepository

	// Sale number lookups include soft-deleted rows
	HighestSaleNumber(ctx context.Context, prefix string) (string, error)
	SaleNumberExists(ctx context.Context, number string) (bool, error)

	Create(ctx context.Context, sale *model.Sale) error
	UpdateHeader(ctx context.Context, sale *model.Sale) error
	ReplaceItems(ctx context.Context, saleID uint, items []model.SaleItem) error
	Delete(ctx context.Context, id uint, deletedBy string) error

	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) WithTx(tx *gorm.DB) SaleRepository {
	return &saleRepo{tx}
}

func (r *saleRepo) HighestSaleNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	// Length first so that a 7 digit sequence sorts above 999999
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Sale{}).
		Where("sale_number LIKE ?", prefix+"%").
		Order("LENGTH(sale_number) DESC, sale_number DESC").
		Limit(1).
		Pluck("sale_number", &numbers).Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *saleRepo) SaleNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Sale{}).
		Where("sale_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the sale together with its items
func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// UpdateHeader persists the sale row only; items are written by ReplaceItems
func (r *saleRepo) UpdateHeader(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Model(sale).
		Select("customer_id", "subtotal", "discount_total", "tax_total", "shipping", "total",
			"status", "payment_method", "sale_date", "notes", "updated_by", "updated_at").
		Updates(sale).Error
}

// ReplaceItems deletes every item of the sale and inserts items in their place
func (r *saleRepo) ReplaceItems(ctx context.Context, saleID uint, items []model.SaleItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("sale_id = ?", saleID).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].SaleID = saleID
	}
	return db.Omit("Product").Create(&items).Error
}

// Delete removes the items and soft deletes the sale, keeping its number reserved
func (r *saleRepo) Delete(ctx context.Context, id uint, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("sale_id = ?", id).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Sale{}).Where("id = ?", id).Update("updated_by", deletedBy).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Sale{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.id ASC") }).
		Preload("Items.Product").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindByIDForUpdate locks the sale row for the rest of the transaction
func (r *saleRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("sale_id = ?", id).Order("id ASC").Find(&sale.Items).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.Search != "" {
		query = query.Joins("JOIN customers ON customers.id = sales.customer_id").
			Where("customers.name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query = query.Where("sales.status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("sales.payment_method = ?", filter.PaymentMethod)
	}
	if filter.CustomerID != nil {
		query = query.Where("sales.customer_id = ?", *filter.CustomerID)
	}
	if filter.DateFrom != nil {
		query = query.Where("sales.sale_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("sales.sale_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := query.Session(&gorm.Session{}).
		Select("sales.*").
		Preload("Customer").
		Preload("Items").
		Order(saleSortColumns[filter.SortBy] + " " + filter.SortOrder).
		Order("sales.id " + filter.SortOrder).
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}
