package quotation

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/config"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/prometheus"
)

func TestMain(m *testing.M) {
	cfg, _ := config.Load()
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}

// fakeQuotationRepo is an in-memory QuotationRepo
type fakeQuotationRepo struct {
	seq     uint
	records map[uint]model.Quotation
}

func newFakeQuotationRepo() *fakeQuotationRepo {
	return &fakeQuotationRepo{records: make(map[uint]model.Quotation)}
}

func (r *fakeQuotationRepo) Create(q *model.Quotation) error {
	r.seq++
	q.ID = r.seq
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	q.UpdatedAt = q.CreatedAt
	r.records[q.ID] = *q
	return nil
}

func (r *fakeQuotationRepo) GetByID(id uint) (*model.Quotation, error) {
	q, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := q
	return &out, nil
}

func (r *fakeQuotationRepo) Save(q *model.Quotation) error {
	if _, ok := r.records[q.ID]; !ok {
		return ErrNotFound
	}
	r.records[q.ID] = *q
	return nil
}

func (r *fakeQuotationRepo) Delete(id uint) error {
	if _, ok := r.records[id]; !ok {
		return ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeQuotationRepo) List(status string) ([]model.Quotation, error) {
	var out []model.Quotation
	for _, q := range r.records {
		if status == "" || q.Status == status {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeProductRepo is an in-memory ProductRepo with per-product error injection
type fakeProductRepo struct {
	products map[uint]*model.Product
	failOn   map[uint]error
	deducts  int
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products: make(map[uint]*model.Product),
		failOn:   make(map[uint]error),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetByID(id uint) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	out := *p
	return &out, nil
}

func (r *fakeProductRepo) DeductStock(id uint, quantity int) (*model.Product, error) {
	if err, ok := r.failOn[id]; ok {
		return nil, err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p.StockQuantity -= quantity
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	r.deducts++
	out := *p
	return &out, nil
}

func product(id uint, stock int) *model.Product {
	return &model.Product{
		ID:            id,
		SKU:           fmt.Sprintf("SKU-%d", id),
		Name:          fmt.Sprintf("Product %d", id),
		BasePrice:     1000,
		StockQuantity: stock,
		Status:        model.ProductStatusActive,
	}
}

func newTestService(products ...*model.Product) (*Service, *fakeQuotationRepo, *fakeProductRepo) {
	quotations := newFakeQuotationRepo()
	repo := newFakeProductRepo(products...)
	return NewService(quotations, repo, zap.NewNop(), 30), quotations, repo
}

func TestCreateDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	before := time.Now()
	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Items: model.QuotationItems{
			{ProductID: 1, ProductName: "Product 1", Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
		},
		Subtotal: 2000,
		Tax:      240,
		Total:    2240,
	})
	require.NoError(t, err)

	assert.Equal(t, model.QuotationStatusPending, q.Status)
	assert.Equal(t, 1, q.ItemCount)
	assert.Equal(t, 2000.0, q.Subtotal)
	assert.Equal(t, 2240.0, q.Total)
	assert.Regexp(t, regexp.MustCompile(`^QT-\d{4}-\d{6}$`), q.QuotationNumber)
	assert.WithinDuration(t, before.AddDate(0, 0, 30), q.ValidUntil, time.Minute)
}

func TestCreateRequiresContactFields(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(CreateInput{CustomerEmail: "a@b.c", CustomerPhone: "1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(CreateInput{CustomerName: "A", CustomerPhone: "1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(CreateInput{CustomerName: "A", CustomerEmail: "a@b.c"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListFiltersAndSortsNewestFirst(t *testing.T) {
	svc, quotations, _ := newTestService()

	for i := 0; i < 3; i++ {
		q, err := svc.Create(CreateInput{
			CustomerName:  fmt.Sprintf("Customer %d", i),
			CustomerEmail: "c@example.com",
			CustomerPhone: "555",
		})
		require.NoError(t, err)
		// Force distinct creation times
		stored := quotations.records[q.ID]
		stored.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		quotations.records[q.ID] = stored
	}

	_, err := svc.SetStatus(2, model.QuotationStatusRejected)
	require.NoError(t, err)

	all, err := svc.List("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	rejected, err := svc.List(model.QuotationStatusRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, uint(2), rejected[0].ID)
}

func TestUpdateMergePatch(t *testing.T) {
	svc, _, _ := newTestService()

	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Notes:         "original notes",
		Subtotal:      100,
	})
	require.NoError(t, err)

	notes := "updated notes"
	updated, err := svc.Update(q.ID, UpdateInput{Notes: &notes})
	require.NoError(t, err)

	// Patched field changes, everything else keeps its stored value
	assert.Equal(t, "updated notes", updated.Notes)
	assert.Equal(t, "Dana Reyes", updated.CustomerName)
	assert.Equal(t, 100.0, updated.Subtotal)
	assert.Equal(t, model.QuotationStatusPending, updated.Status)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	notes := "x"
	_, err := svc.Update(99, UpdateInput{Notes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	assert.ErrorIs(t, svc.Delete(42), ErrNotFound)
}

func TestSetStatusInvalidValueLeavesRecordUnchanged(t *testing.T) {
	svc, quotations, _ := newTestService()

	q, err := svc.Create(CreateInput{CustomerName: "A", CustomerEmail: "a@b.c", CustomerPhone: "1"})
	require.NoError(t, err)

	_, err = svc.SetStatus(q.ID, "not-a-real-status")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored := quotations.records[q.ID]
	assert.Equal(t, model.QuotationStatusPending, stored.Status)
}

func TestSetStatusNotFoundDoesNotTouchStock(t *testing.T) {
	p := product(1, 5)
	svc, _, repo := newTestService(p)

	_, err := svc.SetStatus(123, model.QuotationStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 5, p.StockQuantity)
	assert.Zero(t, repo.deducts)
}

func TestApprovalDeductsStock(t *testing.T) {
	p := product(1, 5)
	svc, _, _ := newTestService(p)

	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Items: model.QuotationItems{
			{ProductID: 1, ProductName: "Product 1", Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
		},
		Subtotal: 2000,
		Tax:      240,
		Total:    2240,
	})
	require.NoError(t, err)
	assert.Equal(t, model.QuotationStatusPending, q.Status)
	assert.Equal(t, 1, q.ItemCount)

	updated, err := svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.QuotationStatusApproved, updated.Status)
	assert.Equal(t, 3, p.StockQuantity)
}

func TestApprovalClampsStockAtZero(t *testing.T) {
	p := product(2, 1)
	svc, _, _ := newTestService(p)

	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Items: model.QuotationItems{
			{ProductID: 2, ProductName: "Product 2", Quantity: 5, UnitPrice: 100, Subtotal: 500},
		},
	})
	require.NoError(t, err)

	updated, err := svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.QuotationStatusApproved, updated.Status)
	assert.Equal(t, 0, p.StockQuantity, "stock is clamped at zero, never negative")
}

func TestReApprovalDoesNotDoubleDeduct(t *testing.T) {
	p := product(1, 10)
	svc, _, repo := newTestService(p)

	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Items: model.QuotationItems{
			{ProductID: 1, Quantity: 4, UnitPrice: 1000, Subtotal: 4000},
		},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockQuantity)
	assert.Equal(t, 1, repo.deducts)

	_, err = svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockQuantity, "re-approval must not deduct again")
	assert.Equal(t, 1, repo.deducts)
}

func TestApprovalAfterRejectionDeductsAgain(t *testing.T) {
	// Leaving approved and coming back re-runs the deduction; the guard only
	// covers approved -> approved.
	p := product(1, 10)
	svc, _, _ := newTestService(p)

	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Items: model.QuotationItems{
			{ProductID: 1, Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
		},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err)
	_, err = svc.SetStatus(q.ID, model.QuotationStatusRejected)
	require.NoError(t, err)
	_, err = svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err)

	assert.Equal(t, 6, p.StockQuantity)
}

func TestApprovalToleratesMissingProducts(t *testing.T) {
	p := product(2, 8)
	svc, _, _ := newTestService(p)

	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Items: model.QuotationItems{
			{ProductID: 7, ProductName: "Deleted Product", Quantity: 3, UnitPrice: 100, Subtotal: 300},
			{ProductID: 2, ProductName: "Product 2", Quantity: 1, UnitPrice: 100, Subtotal: 100},
		},
	})
	require.NoError(t, err)

	updated, err := svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err, "a missing product must not block the approval")
	assert.Equal(t, model.QuotationStatusApproved, updated.Status)
	assert.Equal(t, 7, p.StockQuantity, "remaining items still get their deduction")
}

func TestApprovalToleratesDeductionErrors(t *testing.T) {
	p1 := product(1, 5)
	p2 := product(2, 5)
	svc, _, repo := newTestService(p1, p2)
	repo.failOn[1] = fmt.Errorf("connection reset")

	q, err := svc.Create(CreateInput{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "555-0101",
		Items: model.QuotationItems{
			{ProductID: 1, Quantity: 2, UnitPrice: 100, Subtotal: 200},
			{ProductID: 2, Quantity: 2, UnitPrice: 100, Subtotal: 200},
		},
	})
	require.NoError(t, err)

	updated, err := svc.SetStatus(q.ID, model.QuotationStatusApproved)
	require.NoError(t, err, "a failed deduction must not block the approval")
	assert.Equal(t, model.QuotationStatusApproved, updated.Status)
	assert.Equal(t, 5, p1.StockQuantity)
	assert.Equal(t, 3, p2.StockQuantity)
}

func TestStatusTransitionsThroughWorkflow(t *testing.T) {
	svc, _, _ := newTestService()

	q, err := svc.Create(CreateInput{CustomerName: "A", CustomerEmail: "a@b.c", CustomerPhone: "1"})
	require.NoError(t, err)

	for _, status := range []string{
		model.QuotationStatusDraft,
		model.QuotationStatusPending,
		model.QuotationStatusSent,
		model.QuotationStatusRejected,
	} {
		updated, err := svc.SetStatus(q.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestGenerateNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^QT-\d{4}-\d{6}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, re, GenerateNumber())
	}
}
