package model

type Customer struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Email   string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Phone   string `gorm:"type:varchar(20)" json:"phone" validate:"omitempty,max=20"`
	Address string `gorm:"type:text" json:"address"`
}
