package domain

import (
	"time"

	"gorm.io/gorm"

	"sunday-market/pkg/utils"
)

type Product struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Summary    string    `gorm:"type:text" json:"summary"`
	Price      float64   `gorm:"not null;default:0" json:"price"`
	UserID     string    `gorm:"size:36;index;not null" json:"user_id"`
	CategoryID *string   `gorm:"size:36;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	return nil
}
