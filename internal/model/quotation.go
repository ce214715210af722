package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Quotation status values
const (
	QuotationStatusDraft    = "draft"
	QuotationStatusPending  = "pending"
	QuotationStatusSent     = "sent"
	QuotationStatusApproved = "approved"
	QuotationStatusRejected = "rejected"
)

// ValidQuotationStatus reports whether s is one of the enumerated status values
func ValidQuotationStatus(s string) bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusPending, QuotationStatusSent,
		QuotationStatusApproved, QuotationStatusRejected:
		return true
	}
	return false
}

// QuotationItem is a frozen line item inside a quotation. Name, SKU and unit
// price are snapshots taken when the item was quoted, not live product reads.
type QuotationItem struct {
	ProductID     uint              `json:"productId"`
	ProductName   string            `json:"productName"`
	ProductSKU    string            `json:"productSku"`
	Quantity      int               `json:"quantity"`
	UnitPrice     float64           `json:"unitPrice"`
	Configuration map[string]string `json:"configuration,omitempty"`
	ConfigPrice   float64           `json:"configurationPrice"`
	Subtotal      float64           `json:"subtotal"`
}

// QuotationItems is stored as a serialized JSON document on the quotation row
type QuotationItems []QuotationItem

// Value implements driver.Valuer for storing items as JSON
func (q QuotationItems) Value() (driver.Value, error) {
	if len(q) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading items back from JSON
func (q *QuotationItems) Scan(value interface{}) error {
	if value == nil {
		*q = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for QuotationItems: %T", value)
	}
	return json.Unmarshal(data, q)
}

// Quotation represents a customer-requested price quote awaiting admin review
type Quotation struct {
	ID              uint           `json:"id" gorm:"primarykey"`
	QuotationNumber string         `json:"quotationNumber" gorm:"type:varchar(32);unique;not null"`
	CustomerName    string         `json:"customerName" gorm:"type:varchar(255);not null"`
	CustomerEmail   string         `json:"customerEmail" gorm:"type:varchar(255);not null"`
	CustomerPhone   string         `json:"customerPhone" gorm:"type:varchar(50);not null"`
	CompanyName     string         `json:"companyName" gorm:"type:varchar(255)"`
	Items           QuotationItems `json:"items" gorm:"type:text"`
	ItemCount       int            `json:"itemCount"`
	Subtotal        float64        `json:"subtotal"`
	Tax             float64        `json:"tax"`
	Discount        float64        `json:"discount"`
	Total           float64        `json:"total"`
	Status          string         `json:"status" gorm:"type:varchar(20);index;default:'pending'"`
	Notes           string         `json:"notes" gorm:"type:text"`
	ValidUntil      time.Time      `json:"validUntil"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
