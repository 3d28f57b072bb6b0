package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Course is a sellable unit. PriceUSD is the listed price; the amount a
// buyer is actually charged is computed and frozen on the Order at
// checkout time, so later price edits never touch existing orders.
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Slug        string         `gorm:"type:varchar(200);uniqueIndex" json:"slug" validate:"required,max=200"`
	Description string         `gorm:"type:text" json:"description"`
	PriceUSD    float64        `gorm:"type:decimal(10,2);not null;default:0" json:"price_usd" validate:"gte=0"`
	Level       string         `gorm:"type:varchar(50);default:'beginner'" json:"level"`
	IsPublished bool           `gorm:"default:false;index" json:"is_published"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Course) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
