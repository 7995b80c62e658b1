package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DbProduct is a seller's listing.
type DbProduct struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Name        string          `gorm:"column:name;type:varchar(255);index;not null" json:"name"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	OwnerID     uint            `gorm:"column:owner_id;index;not null" json:"owner_id"`
	MediaPaths  StringArray     `gorm:"column:media_paths;type:text" json:"media_paths"`
}

// TableName overrides default naming.
func (DbProduct) TableName() string {
	return "products"
}

// ProductQuery filters the catalog listing.
type ProductQuery struct {
	OwnerID uint `json:"owner_id" form:"owner_id" query:"owner_id"`
}

type ProductCreateRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	MediaPaths  []string         `json:"media_paths,omitempty"`
}

type ProductUpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	MediaPaths  *[]string        `json:"media_paths,omitempty"`
}

// ProductMediaRequest carries an inline base64 or data URL payload.
type ProductMediaRequest struct {
	Data string `json:"data" binding:"required"`
}

type ProductSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	OwnerID     uint      `json:"owner_id"`
	MediaPaths  []string  `json:"media_paths"`
	MediaURLs   []string  `json:"media_urls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
