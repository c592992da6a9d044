package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a seller's listing in the store.
type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SellerID    string           `json:"seller_id" gorm:"type:varchar(36);index;not null"`
	CategoryID  *string          `json:"category_id,omitempty" gorm:"type:varchar(36);index"`
	Name        string           `json:"name" gorm:"type:varchar(200);not null"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null"`
	IsActive    bool             `json:"is_active" gorm:"not null"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Inventory   []Inventory      `json:"inventory,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductVariant is a SKU under a product with its own price and stock.
type ProductVariant struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index;not null"`
	SKU       string          `json:"sku" gorm:"uniqueIndex;type:varchar(64)"`
	Name      string          `json:"name" gorm:"type:varchar(100)"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Inventory holds the stock of a product, or of one of its variants when
// VariantID is set.
type Inventory struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);index;not null"`
	VariantID *string   `json:"variant_id,omitempty" gorm:"type:varchar(36);index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// FindVariant returns the loaded variant with the given id, or nil.
func (p *Product) FindVariant(variantID string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// StockFor returns the loaded inventory quantity for the product itself
// (variantID nil) or for one variant. A missing row counts as zero.
func (p *Product) StockFor(variantID *string) int {
	for _, inv := range p.Inventory {
		if variantID == nil && inv.VariantID == nil {
			return inv.Quantity
		}
		if variantID != nil && inv.VariantID != nil && *inv.VariantID == *variantID {
			return inv.Quantity
		}
	}
	return 0
}
