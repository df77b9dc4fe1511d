package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-vendas-api/internal/ledger"
	"go-vendas-api/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func catalogOf(products ...model.Product) map[uuid.UUID]model.Product {
	m := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func TestBuildItemsUsesCurrentPriceWhenUnitPriceMissing(t *testing.T) {
	p := model.Product{Price: dec("15.90")}
	p.ID = uuid.New()

	items, err := buildItems([]SaleItemInput{
		{ProductID: p.ID, Quantity: 3},
		{ProductID: p.ID, Quantity: 1, UnitPrice: decPtr("12.00")},
	}, catalogOf(p))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].UnitPrice.Equal(dec("15.90")))
	assert.True(t, items[1].UnitPrice.Equal(dec("12.00")))
	assert.True(t, items[0].Discount.IsZero())
}

func TestBuildItemsThenRecalculate(t *testing.T) {
	a := model.Product{Price: dec("10.00")}
	a.ID = uuid.New()
	b := model.Product{Price: dec("15.90")}
	b.ID = uuid.New()

	items, err := buildItems([]SaleItemInput{
		{ProductID: a.ID, Quantity: 2, Discount: decPtr("1.00")},
		{ProductID: b.ID, Quantity: 1},
	}, catalogOf(a, b))
	require.NoError(t, err)

	sale := &model.Sale{Items: items, Shipping: dec("5.00"), TaxTotal: dec("1.00")}
	require.NoError(t, ledger.Recalculate(sale))
	assert.Equal(t, "34.90", sale.Subtotal.StringFixed(2))
	assert.Equal(t, "40.90", sale.Total.StringFixed(2))
}

func TestBuildItemsDiscountPercent(t *testing.T) {
	p := model.Product{Price: dec("33.33")}
	p.ID = uuid.New()

	items, err := buildItems([]SaleItemInput{
		{ProductID: p.ID, Quantity: 1, DiscountPercent: decPtr("10")},
	}, catalogOf(p))
	require.NoError(t, err)
	assert.Equal(t, "3.33", items[0].Discount.StringFixed(2))
}

func TestBuildItemsRejects(t *testing.T) {
	p := model.Product{Price: dec("10.00")}
	p.ID = uuid.New()

	tests := []struct {
		name  string
		input SaleItemInput
		field string
	}{
		{"unknown product", SaleItemInput{ProductID: uuid.New(), Quantity: 1}, "items[0].product_id"},
		{"both discounts", SaleItemInput{ProductID: p.ID, Quantity: 1, Discount: decPtr("1"), DiscountPercent: decPtr("5")}, "items[0].discount"},
		{"percent above 100", SaleItemInput{ProductID: p.ID, Quantity: 1, DiscountPercent: decPtr("120")}, "items[0].discount_percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildItems([]SaleItemInput{tt.input}, catalogOf(p))
			var ve *ledger.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestProductIDsDeduplicates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids := productIDs([]SaleItemInput{{ProductID: a}, {ProductID: b}, {ProductID: a}})
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}

func TestParseSaleDate(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 01:30 UTC on Jan 1st is still Dec 31st in BRT
	fallback := time.Date(2025, 1, 1, 1, 30, 0, 0, time.UTC).In(loc)

	got, err := parseSaleDate("", fallback)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", got.Format(saleDateLayout))

	got, err = parseSaleDate("2025-03-15", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = parseSaleDate("15/03/2025", fallback)
	assert.True(t, ledger.IsValidation(err))
}

func TestValidateRequestReportsFirstFailure(t *testing.T) {
	err := validateRequest(&CreateSaleRequest{})
	var ve *ledger.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Field, "CustomerID")

	err = validateRequest(&CreateSaleRequest{
		CustomerID: uuid.New(),
		Items:      []SaleItemInput{{ProductID: uuid.New(), Quantity: 0}},
	})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Field, "Quantity")
}

func TestPersistenceErrorClassification(t *testing.T) {
	assert.Nil(t, persistenceError("op", nil))

	ve := ledger.NewValidationError("x", "bad")
	assert.Same(t, ve, persistenceError("op", ve))
	assert.ErrorIs(t, persistenceError("op", ledger.ErrUniquenessConflict), ledger.ErrUniquenessConflict)
	assert.ErrorIs(t, persistenceError("op", ErrSaleNotFound), ErrSaleNotFound)
	assert.ErrorIs(t, persistenceError("op", context.Canceled), context.Canceled)

	wrapped := persistenceError("create sale", &pgconn.PgError{Code: "40001"})
	var pe *ledger.PersistenceError
	require.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "create sale", pe.Op)
	assert.True(t, pe.Retryable())

	// already classified errors are not wrapped twice
	assert.Same(t, wrapped, persistenceError("outer", wrapped))

	generic := persistenceError("load", fmt.Errorf("conn reset: %w", gorm.ErrInvalidDB))
	require.True(t, errors.As(generic, &pe))
	assert.False(t, pe.Retryable())
}

func TestPersistenceErrorTurnsDataErrorsIntoValidation(t *testing.T) {
	err := persistenceError("create sale", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}))
	assert.True(t, ledger.IsValidation(err))
	assert.False(t, ledger.IsPersistence(err))
}

func TestPersistenceErrorMarksLedgerStoreFailures(t *testing.T) {
	scan := &ledger.PersistenceError{Op: "scan sale numbers", Err: &pgconn.PgError{Code: "08006"}}
	var pe *ledger.PersistenceError
	require.True(t, errors.As(persistenceError("create sale", scan), &pe))
	assert.True(t, pe.Retryable())

	data := &ledger.PersistenceError{Op: "scan sale numbers", Err: errors.New("malformed sale number")}
	require.True(t, errors.As(persistenceError("create sale", data), &pe))
	assert.False(t, pe.Retryable())
}

func TestIsSaleNumberConflict(t *testing.T) {
	assert.True(t, isSaleNumberConflict(&pgconn.PgError{Code: "23505", ConstraintName: "idx_sales_sale_number"}))
	assert.True(t, isSaleNumberConflict(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, isSaleNumberConflict(&pgconn.PgError{Code: "23505", ConstraintName: "idx_customers_email"}))
	assert.False(t, isSaleNumberConflict(&pgconn.PgError{Code: "23503", ConstraintName: "fk_sales_customer"}))
	assert.False(t, isSaleNumberConflict(nil))
}
