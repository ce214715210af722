package cart

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/pricing"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/sessionstore"
)

// CustomerInfo is the contact block captured when a draft is finalized
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Draft is the session-scoped quotation draft container. Unlike the cart it
// holds price/name/SKU snapshots, so the quote reflects prices as quoted even
// if an admin later edits the product. Lines are keyed by
// (product ID, configuration) rather than by a generated line ID.
type Draft struct {
	store sessionstore.Store
	key   string
	log   *zap.Logger

	Items     []model.QuotationItem
	Subtotal  float64
	ItemCount int
}

// NewDraft rehydrates the quotation draft for a session from the store
func NewDraft(store sessionstore.Store, sessionID string, log *zap.Logger) *Draft {
	d := &Draft{
		store: store,
		key:   "quotation-draft:" + sessionID,
		log:   log,
	}
	if data, ok := store.Get(d.key); ok {
		if err := json.Unmarshal(data, &d.Items); err != nil {
			log.Warn("Discarding malformed persisted draft state",
				zap.String("key", d.key),
				zap.Error(err))
			d.Items = nil
		}
	}
	d.recompute()
	return d
}

// Add snapshots the product into a draft line, merging quantities when the
// same product with the same configuration is already drafted.
func (d *Draft) Add(product model.Product, quantity int, configuration map[string]string, configPrice float64) {
	if quantity <= 0 {
		quantity = 1
	}
	key := configKey(configuration)
	for idx := range d.Items {
		if d.Items[idx].ProductID == product.ID && configKey(d.Items[idx].Configuration) == key {
			d.Items[idx].Quantity += quantity
			d.Items[idx].Subtotal = pricing.LineSubtotal(d.Items[idx].UnitPrice, d.Items[idx].ConfigPrice, d.Items[idx].Quantity)
			d.commit()
			return
		}
	}
	unitPrice := pricing.EffectiveUnitPrice(product.BasePrice, product.DiscountPrice)
	d.Items = append(d.Items, model.QuotationItem{
		ProductID:     product.ID,
		ProductName:   product.Name,
		ProductSKU:    product.SKU,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Configuration: configuration,
		ConfigPrice:   configPrice,
		Subtotal:      pricing.LineSubtotal(unitPrice, configPrice, quantity),
	})
	d.commit()
}

// Remove drops the line for a product/configuration pair
func (d *Draft) Remove(productID uint, configuration map[string]string) {
	key := configKey(configuration)
	kept := d.Items[:0]
	for _, item := range d.Items {
		if item.ProductID == productID && configKey(item.Configuration) == key {
			continue
		}
		kept = append(kept, item)
	}
	d.Items = kept
	d.commit()
}

// UpdateQuantity sets the quantity of a line; zero or negative removes it
func (d *Draft) UpdateQuantity(productID uint, configuration map[string]string, quantity int) {
	if quantity <= 0 {
		d.Remove(productID, configuration)
		return
	}
	key := configKey(configuration)
	for idx := range d.Items {
		if d.Items[idx].ProductID == productID && configKey(d.Items[idx].Configuration) == key {
			d.Items[idx].Quantity = quantity
			d.Items[idx].Subtotal = pricing.LineSubtotal(d.Items[idx].UnitPrice, d.Items[idx].ConfigPrice, quantity)
			break
		}
	}
	d.commit()
}

// ReplaceAll transplants cart contents into the draft, converting each cart
// line into a snapshotted quotation line. Used on "proceed to quotation".
func (d *Draft) ReplaceAll(items []Item) {
	d.Items = make([]model.QuotationItem, 0, len(items))
	for _, item := range items {
		unitPrice := item.UnitPrice()
		d.Items = append(d.Items, model.QuotationItem{
			ProductID:     item.Product.ID,
			ProductName:   item.Product.Name,
			ProductSKU:    item.Product.SKU,
			Quantity:      item.Quantity,
			UnitPrice:     unitPrice,
			Configuration: item.Configuration,
			ConfigPrice:   item.ConfigPrice,
			Subtotal:      pricing.LineSubtotal(unitPrice, item.ConfigPrice, item.Quantity),
		})
	}
	d.commit()
}

// SetItems replaces the draft lines with already-snapshotted quotation items.
// Used to put a finalized draft back when persisting the quotation failed.
func (d *Draft) SetItems(items []model.QuotationItem) {
	d.Items = make([]model.QuotationItem, len(items))
	copy(d.Items, items)
	d.commit()
}

// Clear empties the draft
func (d *Draft) Clear() {
	d.Items = nil
	d.commit()
}

// Finalize assembles a Quotation from the current draft, clears the draft and
// returns the record for persistence. Tax is computed here, once, at the rate
// the caller resolved from store settings.
func (d *Draft) Finalize(info CustomerInfo, taxRate float64, validityDays int) model.Quotation {
	items := make(model.QuotationItems, len(d.Items))
	copy(items, d.Items)

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{
			UnitPrice:   item.UnitPrice,
			ConfigPrice: item.ConfigPrice,
			Quantity:    item.Quantity,
		})
	}
	subtotal := pricing.Subtotal(lines)
	tax := pricing.Tax(subtotal, taxRate)

	quotation := model.Quotation{
		CustomerName:  info.Name,
		CustomerEmail: info.Email,
		CustomerPhone: info.Phone,
		CompanyName:   info.Company,
		Notes:         info.Notes,
		Items:         items,
		ItemCount:     len(items),
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         pricing.Total(subtotal, tax, 0),
		ValidUntil:    time.Now().AddDate(0, 0, validityDays),
	}

	d.Clear()
	return quotation
}

func (d *Draft) recompute() {
	lines := make([]pricing.Line, 0, len(d.Items))
	for _, item := range d.Items {
		lines = append(lines, pricing.Line{
			UnitPrice:   item.UnitPrice,
			ConfigPrice: item.ConfigPrice,
			Quantity:    item.Quantity,
		})
	}
	d.Subtotal = pricing.Subtotal(lines)
	d.ItemCount = pricing.ItemCount(lines)
}

func (d *Draft) commit() {
	d.recompute()
	d.persist()
}

func (d *Draft) persist() {
	if len(d.Items) == 0 {
		d.store.Delete(d.key)
		return
	}
	data, err := json.Marshal(d.Items)
	if err != nil {
		d.log.Error("Failed to persist draft state", zap.String("key", d.key), zap.Error(err))
		return
	}
	d.store.Set(d.key, data)
}
