package model

import "time"

// Well-known setting keys
const (
	SettingTaxRate   = "tax_rate"
	SettingStoreName = "store_name"
	SettingCurrency  = "currency"
)

// Setting is a key/value store configuration row (tax rate, store name, ...)
type Setting struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Key       string    `json:"key" gorm:"type:varchar(100);unique;not null"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
