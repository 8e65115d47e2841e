package domain

import (
	"time"

	"gorm.io/gorm"

	"sunday-market/pkg/utils"
)

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name" validate:"required,max=64"`
	Color     string    `gorm:"size:16" json:"color" validate:"omitempty,hexcolor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated by listing queries only.
	ProductCount int64 `gorm:"->;-:migration" json:"product_count"`

	Products []Product `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = utils.NewID()
	}
	return nil
}
