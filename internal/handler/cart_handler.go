package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/cart"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/pricing"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/quotation"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/sessionstore"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/config"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/database"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/logger"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/prometheus"
)

// CartHandler exposes the session cart and quotation draft over HTTP.
// Sessions are identified by the X-Session-ID header.
type CartHandler struct {
	store sessionstore.Store
	svc   *quotation.Service
	cfg   *config.Config
}

// NewCartHandler creates a cart handler
func NewCartHandler(store sessionstore.Store, svc *quotation.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{store: store, svc: svc, cfg: cfg}
}

// AddItemRequest is the payload for adding a product to the cart
type AddItemRequest struct {
	ProductID          interface{}       `json:"productId"`
	Quantity           interface{}       `json:"quantity"`
	Configuration      map[string]string `json:"configuration"`
	ConfigurationPrice interface{}       `json:"configurationPrice"`
}

// UpdateItemRequest is the payload for changing a cart line quantity
type UpdateItemRequest struct {
	Quantity interface{} `json:"quantity"`
}

// SubmitRequest is the payload for finalizing the draft into a quotation
type SubmitRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	CompanyName   string `json:"companyName"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
}

func sessionID(c echo.Context) (string, bool) {
	id := c.Request().Header.Get("X-Session-ID")
	return id, id != ""
}

func cartResponse(crt *cart.Cart) echo.Map {
	return echo.Map{
		"items":     crt.Items,
		"subtotal":  crt.Subtotal,
		"itemCount": crt.ItemCount,
	}
}

// GetCart returns the session cart
func (h *CartHandler) GetCart(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	crt := cart.NewCart(h.store, sid, log)
	return c.JSON(http.StatusOK, cartResponse(crt))
}

// AddToCart adds a product line to the session cart, merging with an
// existing line when product and configuration match.
func (h *CartHandler) AddToCart(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid cart item data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	productID := uint(pricing.Quantity(req.ProductID))
	var product model.Product
	if err := database.GetDB().First(&product, productID).Error; err != nil {
		log.Warn("Product not found for cart add", zap.Uint("product_id", productID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	crt := cart.NewCart(h.store, sid, log)
	crt.Add(product, pricing.Quantity(req.Quantity), req.Configuration, pricing.Money(req.ConfigurationPrice))

	log.Info("Product added to cart",
		zap.String("session_id", sid),
		zap.Uint("product_id", product.ID),
		zap.Int("cart_items", len(crt.Items)))
	return c.JSON(http.StatusOK, cartResponse(crt))
}

// UpdateCartItem sets a cart line quantity; zero removes the line
func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid cart update data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	crt := cart.NewCart(h.store, sid, log)
	crt.UpdateQuantity(c.Param("id"), pricing.Quantity(req.Quantity))
	return c.JSON(http.StatusOK, cartResponse(crt))
}

// RemoveCartItem removes a cart line
func (h *CartHandler) RemoveCartItem(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	crt := cart.NewCart(h.store, sid, log)
	crt.Remove(c.Param("id"))
	return c.JSON(http.StatusOK, cartResponse(crt))
}

// ClearCart empties the session cart
func (h *CartHandler) ClearCart(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	crt := cart.NewCart(h.store, sid, log)
	crt.Clear()
	return c.JSON(http.StatusOK, cartResponse(crt))
}

// Checkout transplants the cart contents into the quotation draft and clears
// the cart ("proceed to quotation").
func (h *CartHandler) Checkout(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	crt := cart.NewCart(h.store, sid, log)
	if len(crt.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cart is empty"})
	}

	draft := cart.NewDraft(h.store, sid, log)
	draft.ReplaceAll(crt.Items)
	crt.Clear()

	log.Info("Cart transplanted to quotation draft",
		zap.String("session_id", sid),
		zap.Int("items", len(draft.Items)))
	return c.JSON(http.StatusOK, echo.Map{
		"items":     draft.Items,
		"subtotal":  draft.Subtotal,
		"itemCount": draft.ItemCount,
	})
}

// GetDraft returns the session quotation draft
func (h *CartHandler) GetDraft(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	draft := cart.NewDraft(h.store, sid, log)
	return c.JSON(http.StatusOK, echo.Map{
		"items":     draft.Items,
		"subtotal":  draft.Subtotal,
		"itemCount": draft.ItemCount,
	})
}

// SubmitDraft finalizes the draft with the customer contact block and
// persists it as a pending quotation. The draft is cleared only after the
// quotation is stored, so a failed submit leaves it intact for retry.
func (h *CartHandler) SubmitDraft(c echo.Context) error {
	log := logger.FromContext(c)
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "X-Session-ID header is required"})
	}

	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid quotation submit data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	draft := cart.NewDraft(h.store, sid, log)
	if len(draft.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Quotation draft is empty"})
	}

	taxRate := ResolveTaxRate(database.GetDB(), h.cfg.Quotation.DefaultTaxRate)
	assembled := draft.Finalize(cart.CustomerInfo{
		Name:    req.CustomerName,
		Email:   req.CustomerEmail,
		Phone:   req.CustomerPhone,
		Company: req.CompanyName,
		Address: req.Address,
		Notes:   req.Notes,
	}, taxRate, h.cfg.Quotation.ValidityDays)

	created, err := h.svc.Create(quotation.CreateInput{
		CustomerName:  assembled.CustomerName,
		CustomerEmail: assembled.CustomerEmail,
		CustomerPhone: assembled.CustomerPhone,
		CompanyName:   assembled.CompanyName,
		Items:         assembled.Items,
		Subtotal:      assembled.Subtotal,
		Tax:           assembled.Tax,
		Total:         assembled.Total,
		Notes:         assembled.Notes,
	})
	if err != nil {
		// Put the lines back so the customer can retry the submission
		draft.SetItems(assembled.Items)
		log.Error("Failed to submit quotation draft", zap.String("session_id", sid), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	prometheus.RecordQuotationOperation("submit")
	log.Info("Quotation draft submitted",
		zap.String("session_id", sid),
		zap.String("quotation_number", created.QuotationNumber))
	return c.JSON(http.StatusCreated, echo.Map{"quotation": created})
}
