package model

type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "active"
	CategoryInactive CategoryStatus = "inactive"
)

type Category struct {
	BaseModel
	Name        string         `gorm:"type:varchar(120);not null" json:"name" validate:"required,max=120"`
	Slug        string         `gorm:"type:varchar(140);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Status      CategoryStatus `gorm:"type:varchar(10);not null;default:'active'" json:"status" validate:"omitempty,oneof=active inactive"`
	Image       string         `gorm:"type:varchar(500)" json:"image"`

	Products []Product `json:"products,omitempty" validate:"-"`
}
