package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/pricing"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/quotation"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/logger"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/prometheus"
)

// QuotationHandler exposes the quotation endpoints over the quotation service
type QuotationHandler struct {
	svc *quotation.Service
}

// NewQuotationHandler creates a quotation handler
func NewQuotationHandler(svc *quotation.Service) *QuotationHandler {
	return &QuotationHandler{svc: svc}
}

// QuotationItemRequest is a submitted line item. Numeric fields are untyped
// because clients send them both as numbers and as strings; they are coerced
// at this boundary and typed from here on.
type QuotationItemRequest struct {
	ProductID          interface{}       `json:"productId"`
	ProductName        string            `json:"productName"`
	ProductSKU         string            `json:"productSku"`
	Quantity           interface{}       `json:"quantity"`
	Price              interface{}       `json:"price"`
	UnitPrice          interface{}       `json:"unitPrice"`
	Configuration      map[string]string `json:"configuration"`
	ConfigurationPrice interface{}       `json:"configurationPrice"`
	Subtotal           interface{}       `json:"subtotal"`
}

// QuotationRequest is the quotation submission payload
type QuotationRequest struct {
	CustomerName  string                 `json:"customerName"`
	CustomerEmail string                 `json:"customerEmail"`
	CustomerPhone string                 `json:"customerPhone"`
	CompanyName   string                 `json:"companyName"`
	Items         []QuotationItemRequest `json:"items"`
	Subtotal      interface{}            `json:"subtotal"`
	Tax           interface{}            `json:"tax"`
	Discount      interface{}            `json:"discount"`
	Total         interface{}            `json:"total"`
	Notes         string                 `json:"notes"`
}

// StatusRequest is the body of a status transition request
type StatusRequest struct {
	Status string `json:"status"`
}

func toQuotationItems(reqs []QuotationItemRequest) model.QuotationItems {
	items := make(model.QuotationItems, 0, len(reqs))
	for _, r := range reqs {
		unitPrice := pricing.Money(r.UnitPrice)
		if unitPrice == 0 {
			unitPrice = pricing.Money(r.Price)
		}
		item := model.QuotationItem{
			ProductID:     uint(pricing.Quantity(r.ProductID)),
			ProductName:   r.ProductName,
			ProductSKU:    r.ProductSKU,
			Quantity:      pricing.Quantity(r.Quantity),
			UnitPrice:     unitPrice,
			Configuration: r.Configuration,
			ConfigPrice:   pricing.Money(r.ConfigurationPrice),
			Subtotal:      pricing.Money(r.Subtotal),
		}
		if item.Subtotal == 0 {
			item.Subtotal = pricing.LineSubtotal(item.UnitPrice, item.ConfigPrice, item.Quantity)
		}
		items = append(items, item)
	}
	return items
}

// CreateQuotation handles a customer quotation submission
func (h *QuotationHandler) CreateQuotation(c echo.Context) error {
	log := logger.FromContext(c)

	var req QuotationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid quotation request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	created, err := h.svc.Create(quotation.CreateInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CompanyName:   req.CompanyName,
		Items:         toQuotationItems(req.Items),
		Subtotal:      pricing.Money(req.Subtotal),
		Tax:           pricing.Money(req.Tax),
		Discount:      pricing.Money(req.Discount),
		Total:         pricing.Money(req.Total),
		Notes:         req.Notes,
	})
	if err != nil {
		if errors.Is(err, quotation.ErrValidation) {
			log.Warn("Quotation submission rejected", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		log.Error("Failed to create quotation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create quotation"})
	}

	prometheus.RecordQuotationOperation("create")
	return c.JSON(http.StatusCreated, echo.Map{"quotation": created})
}

// ListQuotations returns quotations newest-first, optionally filtered by status
func (h *QuotationHandler) ListQuotations(c echo.Context) error {
	log := logger.FromContext(c)

	status := c.QueryParam("status")
	quotations, err := h.svc.List(status)
	if err != nil {
		log.Error("Failed to list quotations", zap.String("status", status), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve quotations"})
	}

	log.Info("Quotations retrieved", zap.Int("count", len(quotations)), zap.String("status", status))
	return c.JSON(http.StatusOK, echo.Map{"quotations": quotations})
}

// GetQuotation returns a single quotation by ID
func (h *QuotationHandler) GetQuotation(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
	}

	q, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, quotation.ErrNotFound) {
			log.Warn("Quotation not found", zap.Uint("quotation_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
		}
		log.Error("Failed to get quotation", zap.Uint("quotation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve quotation"})
	}

	return c.JSON(http.StatusOK, echo.Map{"quotation": q})
}

// UpdateQuotation applies a merge-patch to a quotation. Fields absent from
// the body keep their stored value.
func (h *QuotationHandler) UpdateQuotation(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
	}

	var body map[string]interface{}
	if err := c.Bind(&body); err != nil {
		log.Error("Invalid quotation patch data", zap.Uint("quotation_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var input quotation.UpdateInput
	if v, ok := body["customerName"].(string); ok {
		input.CustomerName = &v
	}
	if v, ok := body["customerEmail"].(string); ok {
		input.CustomerEmail = &v
	}
	if v, ok := body["customerPhone"].(string); ok {
		input.CustomerPhone = &v
	}
	if v, ok := body["companyName"].(string); ok {
		input.CompanyName = &v
	}
	if v, ok := body["notes"].(string); ok {
		input.Notes = &v
	}
	if raw, ok := body["subtotal"]; ok {
		v := pricing.Money(raw)
		input.Subtotal = &v
	}
	if raw, ok := body["tax"]; ok {
		v := pricing.Money(raw)
		input.Tax = &v
	}
	if raw, ok := body["discount"]; ok {
		v := pricing.Money(raw)
		input.Discount = &v
	}
	if raw, ok := body["total"]; ok {
		v := pricing.Money(raw)
		input.Total = &v
	}
	if raw, ok := body["items"]; ok {
		data, err := json.Marshal(raw)
		if err == nil {
			var reqs []QuotationItemRequest
			if err := json.Unmarshal(data, &reqs); err == nil {
				items := toQuotationItems(reqs)
				input.Items = &items
			}
		}
	}

	updated, err := h.svc.Update(id, input)
	if err != nil {
		if errors.Is(err, quotation.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
		}
		log.Error("Failed to update quotation", zap.Uint("quotation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update quotation"})
	}

	prometheus.RecordQuotationOperation("update")
	return c.JSON(http.StatusOK, echo.Map{"quotation": updated})
}

// DeleteQuotation hard-deletes a quotation
func (h *QuotationHandler) DeleteQuotation(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
	}

	if err := h.svc.Delete(id); err != nil {
		if errors.Is(err, quotation.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
		}
		log.Error("Failed to delete quotation", zap.Uint("quotation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete quotation"})
	}

	prometheus.RecordQuotationOperation("delete")
	log.Info("Quotation deleted", zap.Uint("quotation_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Quotation deleted successfully"})
}

// SetQuotationStatus handles the status transition endpoint. Approving a
// quotation deducts stock inside the service.
func (h *QuotationHandler) SetQuotationStatus(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
	}

	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid status request data", zap.Uint("quotation_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updated, err := h.svc.SetStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, quotation.ErrInvalidStatus) {
			log.Warn("Invalid quotation status requested",
				zap.Uint("quotation_id", id),
				zap.String("status", req.Status))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status"})
		}
		if errors.Is(err, quotation.ErrNotFound) {
			log.Warn("Quotation not found for status update", zap.Uint("quotation_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quotation not found"})
		}
		log.Error("Failed to update quotation status", zap.Uint("quotation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update quotation status"})
	}

	prometheus.RecordQuotationOperation("status")
	return c.JSON(http.StatusOK, echo.Map{"quotation": updated})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
