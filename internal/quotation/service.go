// Package quotation implements the quotation lifecycle: persistence of
// customer quote requests, the status state machine, and the inventory
// deduction applied when a quote is approved.
package quotation

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/prometheus"
)

// Service owns quotation records and their status transitions
type Service struct {
	quotations   QuotationRepo
	products     ProductRepo
	log          *zap.Logger
	validityDays int
}

// NewService creates a quotation service over the given repositories
func NewService(quotations QuotationRepo, products ProductRepo, log *zap.Logger, validityDays int) *Service {
	if validityDays <= 0 {
		validityDays = 30
	}
	return &Service{
		quotations:   quotations,
		products:     products,
		log:          log,
		validityDays: validityDays,
	}
}

// CreateInput carries a quotation submission. Numeric fields are already
// coerced at the API boundary; anything malformed arrived here as zero.
type CreateInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CompanyName   string
	Items         model.QuotationItems
	Subtotal      float64
	Tax           float64
	Discount      float64
	Total         float64
	Notes         string
}

// Create persists a new quotation with status pending, a generated quotation
// number and a validity window. Presence of the three customer contact fields
// is the only validation.
func (s *Service) Create(input CreateInput) (*model.Quotation, error) {
	if input.CustomerName == "" {
		return nil, fmt.Errorf("%w: customerName is required", ErrValidation)
	}
	if input.CustomerEmail == "" {
		return nil, fmt.Errorf("%w: customerEmail is required", ErrValidation)
	}
	if input.CustomerPhone == "" {
		return nil, fmt.Errorf("%w: customerPhone is required", ErrValidation)
	}

	q := &model.Quotation{
		QuotationNumber: GenerateNumber(),
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		CompanyName:     input.CompanyName,
		Items:           input.Items,
		ItemCount:       len(input.Items),
		Subtotal:        input.Subtotal,
		Tax:             input.Tax,
		Discount:        input.Discount,
		Total:           input.Total,
		Notes:           input.Notes,
		Status:          model.QuotationStatusPending,
		ValidUntil:      time.Now().AddDate(0, 0, s.validityDays),
	}

	if err := s.quotations.Create(q); err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}

	s.log.Info("Quotation created",
		zap.Uint("quotation_id", q.ID),
		zap.String("quotation_number", q.QuotationNumber),
		zap.String("customer_email", q.CustomerEmail),
		zap.Int("item_count", q.ItemCount),
		zap.Float64("total", q.Total))
	return q, nil
}

// Get fetches a quotation by ID
func (s *Service) Get(id uint) (*model.Quotation, error) {
	return s.quotations.GetByID(id)
}

// List returns quotations newest-first, optionally filtered by exact status
func (s *Service) List(status string) ([]model.Quotation, error) {
	return s.quotations.List(status)
}

// UpdateInput carries a merge-patch: nil fields keep their stored value
type UpdateInput struct {
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CompanyName   *string
	Items         *model.QuotationItems
	Subtotal      *float64
	Tax           *float64
	Discount      *float64
	Total         *float64
	Notes         *string
}

// Update applies a merge-patch to a quotation. Status changes go through
// SetStatus so the stock side effect cannot be bypassed.
func (s *Service) Update(id uint, input UpdateInput) (*model.Quotation, error) {
	q, err := s.quotations.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.CustomerName != nil {
		q.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		q.CustomerEmail = *input.CustomerEmail
	}
	if input.CustomerPhone != nil {
		q.CustomerPhone = *input.CustomerPhone
	}
	if input.CompanyName != nil {
		q.CompanyName = *input.CompanyName
	}
	if input.Items != nil {
		q.Items = *input.Items
		q.ItemCount = len(q.Items)
	}
	if input.Subtotal != nil {
		q.Subtotal = *input.Subtotal
	}
	if input.Tax != nil {
		q.Tax = *input.Tax
	}
	if input.Discount != nil {
		q.Discount = *input.Discount
	}
	if input.Total != nil {
		q.Total = *input.Total
	}
	if input.Notes != nil {
		q.Notes = *input.Notes
	}
	q.UpdatedAt = time.Now()

	if err := s.quotations.Save(q); err != nil {
		return nil, fmt.Errorf("update quotation %d: %w", id, err)
	}
	return q, nil
}

// Delete hard-deletes a quotation
func (s *Service) Delete(id uint) error {
	return s.quotations.Delete(id)
}

// SetStatus validates and applies a status transition. Entering approved from
// any other status deducts stock for every line item; re-approving an already
// approved quotation is a no-op for stock. Deduction failures are logged per
// item and never block the status update itself.
func (s *Service) SetStatus(id uint, newStatus string) (*model.Quotation, error) {
	if !model.ValidQuotationStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	q, err := s.quotations.GetByID(id)
	if err != nil {
		return nil, err
	}

	previousStatus := q.Status
	if newStatus == model.QuotationStatusApproved && previousStatus != model.QuotationStatusApproved {
		s.deductStock(q)
	}

	q.Status = newStatus
	q.UpdatedAt = time.Now()
	if err := s.quotations.Save(q); err != nil {
		return nil, fmt.Errorf("update status of quotation %d: %w", id, err)
	}

	prometheus.RecordStatusTransition(newStatus)
	s.log.Info("Quotation status updated",
		zap.Uint("quotation_id", q.ID),
		zap.String("quotation_number", q.QuotationNumber),
		zap.String("previous_status", previousStatus),
		zap.String("new_status", newStatus))
	return q, nil
}

// deductStock walks the frozen item list and decrements product stock. Each
// item is processed independently: a missing product or a failed write is
// logged and the remaining items still get their deduction.
func (s *Service) deductStock(q *model.Quotation) {
	for _, item := range q.Items {
		if item.Quantity <= 0 {
			continue
		}
		p, err := s.products.DeductStock(item.ProductID, item.Quantity)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				prometheus.StockDeductionSkippedCounter.Inc()
				s.log.Warn("Skipping stock deduction, product no longer exists",
					zap.Uint("quotation_id", q.ID),
					zap.Uint("product_id", item.ProductID),
					zap.String("product_name", item.ProductName))
				continue
			}
			prometheus.StockDeductionErrorsCounter.Inc()
			s.log.Error("Stock deduction failed, continuing with remaining items",
				zap.Uint("quotation_id", q.ID),
				zap.Uint("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
			continue
		}
		prometheus.StockDeductionsCounter.Inc()
		prometheus.UpdateProductInventory(strconv.FormatUint(uint64(p.ID), 10), p.Name, float64(p.StockQuantity))
		s.log.Info("Stock deducted for approved quotation",
			zap.Uint("quotation_id", q.ID),
			zap.Uint("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity),
			zap.Int("remaining_stock", p.StockQuantity))
	}
}

// GenerateNumber produces a quotation number in the form QT-<year>-<6 digits>
func GenerateNumber() string {
	return fmt.Sprintf("QT-%d-%06d", time.Now().Year(), rand.Intn(1000000))
}
