package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Product status values
const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

// ConfigOption is a single priced choice inside an option group (e.g. "16GB: +1500")
type ConfigOption struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	PriceDelta float64 `json:"price_delta"`
}

// ConfigOptionGroup is a named customization axis of a product (e.g. "RAM")
type ConfigOptionGroup struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Options []ConfigOption `json:"options"`
}

// OptionGroups is stored as a serialized JSON document on the product row
type OptionGroups []ConfigOptionGroup

// Value implements driver.Valuer for storing option groups as JSON
func (g OptionGroups) Value() (driver.Value, error) {
	if len(g) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading option groups back from JSON
func (g *OptionGroups) Scan(value interface{}) error {
	if value == nil {
		*g = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for OptionGroups: %T", value)
	}
	return json.Unmarshal(data, g)
}

// Product represents the product master data
type Product struct {
	ID                uint           `json:"id" gorm:"primarykey"`
	SKU               string         `json:"sku" gorm:"type:varchar(100);unique;not null"`
	Name              string         `json:"name" gorm:"type:varchar(255);not null"`
	Description       string         `json:"description" gorm:"type:text"`
	CategoryID        uint           `json:"category_id" gorm:"index"`
	BrandID           uint           `json:"brand_id" gorm:"index"`
	BasePrice         float64        `json:"base_price" gorm:"not null"`
	DiscountPrice     *float64       `json:"discount_price,omitempty"`
	StockQuantity     int            `json:"stock_quantity" gorm:"default:0"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"default:5"`
	Status            string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	OptionGroups      OptionGroups   `json:"option_groups,omitempty" gorm:"type:text"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Category represents product categories
type Category struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;unique"`
	Slug      string         `json:"slug" gorm:"type:varchar(100);index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Brand represents product manufacturers
type Brand struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;unique"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
