package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	EAN         string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"ean" validate:"required,numeric,min=8,max=14"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	Brand       string          `gorm:"type:varchar(120)" json:"brand"`
	NCM         string          `gorm:"type:varchar(20)" json:"ncm"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit"`
	GrossWeight decimal.Decimal `gorm:"type:numeric(8,3);default:0" json:"gross_weight" validate:"decimal_gte0"`
	NetWeight   decimal.Decimal `gorm:"type:numeric(8,3);default:0" json:"net_weight" validate:"decimal_gte0"`
	Image       string          `gorm:"type:varchar(500)" json:"image"`
	Source      string          `gorm:"type:varchar(50)" json:"source"`
	Complete    bool            `gorm:"default:false" json:"complete"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"price" validate:"decimal_gte0"`
	Cost        decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"cost" validate:"decimal_gte0"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
}
