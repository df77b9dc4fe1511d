package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleStatus string

const (
	SalePaid      SaleStatus = "paid"
	SalePending   SaleStatus = "pending"
	SaleCancelled SaleStatus = "cancelled"
)

type PaymentMethod string

const (
	PayMastercard PaymentMethod = "mastercard"
	PayVisa       PaymentMethod = "visa"
	PayPix        PaymentMethod = "pix"
	PayBoleto     PaymentMethod = "boleto"
)

// Sale is the ledger header. Rows are only soft deleted so that the unique
// index on sale_number keeps every number ever issued.
type Sale struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SaleNumber string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"sale_number"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`
	DiscountTotal decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_total"`
	TaxTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax_total"`
	Shipping      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total"`

	Status        SaleStatus    `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(12);not null;default:'pix'" json:"payment_method"`
	SaleDate      time.Time     `gorm:"type:date;not null;index" json:"sale_date"`
	Notes         string        `gorm:"type:text" json:"notes"`

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	UpdatedBy string         `gorm:"type:varchar(255)" json:"updated_by"`
}

// SaleItem is one line of a sale. UnitPrice is captured at sale time and
// TotalPrice is always quantity*unit_price-discount.
type SaleItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SaleID    uint      `gorm:"not null;index:idx_sale_items_sale_product" json:"sale_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_sale_items_sale_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity   int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Discount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Notes      string          `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidSaleStatus reports whether s is one of the known statuses.
func ValidSaleStatus(s SaleStatus) bool {
	switch s {
	case SalePaid, SalePending, SaleCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PayMastercard, PayVisa, PayPix, PayBoleto:
		return true
	}
	return false
}

// SaleItemResponse is the API shape of a line item
type SaleItemResponse struct {
	ID         uint      `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Product    *Product  `json:"product,omitempty"`
	Quantity   int       `json:"quantity"`
	UnitPrice  string    `json:"unit_price"`
	Discount   string    `json:"discount"`
	TotalPrice string    `json:"total_price"`
	Notes      string    `json:"notes,omitempty"`
}

// SaleResponse is the API shape of a sale, money rendered with two decimals
type SaleResponse struct {
	ID            uint               `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	CustomerID    uuid.UUID          `json:"customer_id"`
	Customer      *Customer          `json:"customer,omitempty"`
	Subtotal      string             `json:"subtotal"`
	DiscountTotal string             `json:"discount_total"`
	TaxTotal      string             `json:"tax_total"`
	Shipping      string             `json:"shipping"`
	Total         string             `json:"total"`
	Status        SaleStatus         `json:"status"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
	SaleDate      string             `json:"sale_date"`
	Notes         string             `json:"notes,omitempty"`
	ItemsCount    int                `json:"items_count"`
	ProductsCount int                `json:"products_count"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CreatedBy     string             `json:"created_by"`
	UpdatedBy     string             `json:"updated_by"`
}

// ToResponse converts Sale to SaleResponse
func (s *Sale) ToResponse() SaleResponse {
	response := SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		CustomerID:    s.CustomerID,
		Customer:      s.Customer,
		Subtotal:      s.Subtotal.StringFixed(2),
		DiscountTotal: s.DiscountTotal.StringFixed(2),
		TaxTotal:      s.TaxTotal.StringFixed(2),
		Shipping:      s.Shipping.StringFixed(2),
		Total:         s.Total.StringFixed(2),
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		SaleDate:      s.SaleDate.Format("2006-01-02"),
		Notes:         s.Notes,
		ProductsCount: len(s.Items),
		Items:         make([]SaleItemResponse, len(s.Items)),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		CreatedBy:     s.CreatedBy,
		UpdatedBy:     s.UpdatedBy,
	}

	for i, item := range s.Items {
		response.ItemsCount += item.Quantity
		response.Items[i] = SaleItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Product:    item.Product,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			Discount:   item.Discount.StringFixed(2),
			TotalPrice: item.TotalPrice.StringFixed(2),
			Notes:      item.Notes,
		}
	}

	return response
}
