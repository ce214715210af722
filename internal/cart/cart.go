// Package cart holds the per-session client state containers: the shopping
// cart and the quotation draft. Both are reducer-style containers that
// recompute their aggregates on every mutation and persist themselves to a
// session store after each change. A quotation draft snapshots prices at add
// time; the cart keeps a live product reference.
package cart

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/pricing"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/sessionstore"
)

// Item is a single cart line. The ID is derived from the product ID and the
// creation timestamp so two adds of the same product with different
// configurations stay distinct lines.
type Item struct {
	ID            string            `json:"id"`
	Product       model.Product     `json:"product"`
	Quantity      int               `json:"quantity"`
	Configuration map[string]string `json:"configuration,omitempty"`
	ConfigPrice   float64           `json:"config_price"`
}

// UnitPrice returns the effective unit price of the line's product
func (i Item) UnitPrice() float64 {
	return pricing.EffectiveUnitPrice(i.Product.BasePrice, i.Product.DiscountPrice)
}

// Subtotal returns the line subtotal
func (i Item) Subtotal() float64 {
	return pricing.LineSubtotal(i.UnitPrice(), i.ConfigPrice, i.Quantity)
}

// Cart is the session-scoped shopping cart container
type Cart struct {
	store sessionstore.Store
	key   string
	log   *zap.Logger

	Items     []Item
	Subtotal  float64
	ItemCount int
}

// NewCart rehydrates the cart for a session from the store. Malformed
// persisted state is logged and treated as empty.
func NewCart(store sessionstore.Store, sessionID string, log *zap.Logger) *Cart {
	c := &Cart{
		store: store,
		key:   "cart:" + sessionID,
		log:   log,
	}
	if data, ok := store.Get(c.key); ok {
		if err := json.Unmarshal(data, &c.Items); err != nil {
			log.Warn("Discarding malformed persisted cart state",
				zap.String("key", c.key),
				zap.Error(err))
			c.Items = nil
		}
	}
	c.recompute()
	return c
}

// Add appends a new line, or merges into an existing line when the same
// product with the same configuration is already in the cart.
func (c *Cart) Add(product model.Product, quantity int, configuration map[string]string, configPrice float64) {
	if quantity <= 0 {
		quantity = 1
	}
	key := configKey(configuration)
	for idx := range c.Items {
		if c.Items[idx].Product.ID == product.ID && configKey(c.Items[idx].Configuration) == key {
			c.Items[idx].Quantity += quantity
			c.commit()
			return
		}
	}
	c.Items = append(c.Items, Item{
		ID:            fmt.Sprintf("%d-%d", product.ID, time.Now().UnixNano()),
		Product:       product,
		Quantity:      quantity,
		Configuration: configuration,
		ConfigPrice:   configPrice,
	})
	c.commit()
}

// Remove drops the line with the given ID
func (c *Cart) Remove(itemID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.commit()
}

// UpdateQuantity sets the quantity of a line; zero or negative removes it.
// Clamping to available stock is the caller's concern.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.Remove(itemID)
		return
	}
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items[idx].Quantity = quantity
			break
		}
	}
	c.commit()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = nil
	c.commit()
}

func (c *Cart) recompute() {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, pricing.Line{
			UnitPrice:   item.UnitPrice(),
			ConfigPrice: item.ConfigPrice,
			Quantity:    item.Quantity,
		})
	}
	c.Subtotal = pricing.Subtotal(lines)
	c.ItemCount = pricing.ItemCount(lines)
}

func (c *Cart) commit() {
	c.recompute()
	c.persist()
}

func (c *Cart) persist() {
	if len(c.Items) == 0 {
		c.store.Delete(c.key)
		return
	}
	data, err := json.Marshal(c.Items)
	if err != nil {
		c.log.Error("Failed to persist cart state", zap.String("key", c.key), zap.Error(err))
		return
	}
	c.store.Set(c.key, data)
}

// configKey canonicalizes a configuration map for merge comparisons.
// json.Marshal sorts map keys, so equal maps always serialize identically.
func configKey(configuration map[string]string) string {
	if len(configuration) == 0 {
		return ""
	}
	data, err := json.Marshal(configuration)
	if err != nil {
		return ""
	}
	return string(data)
}
