package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/quotation"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/config"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/jwtutil"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/prometheus"
)

func TestMain(m *testing.M) {
	cfg, _ := config.Load()
	prometheus.InitMetrics(cfg)
	jwtutil.Initialize(&cfg.JWT)
	os.Exit(m.Run())
}

type memQuotationRepo struct {
	seq     uint
	records map[uint]model.Quotation
}

func newMemQuotationRepo() *memQuotationRepo {
	return &memQuotationRepo{records: make(map[uint]model.Quotation)}
}

func (r *memQuotationRepo) Create(q *model.Quotation) error {
	r.seq++
	q.ID = r.seq
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	r.records[q.ID] = *q
	return nil
}

func (r *memQuotationRepo) GetByID(id uint) (*model.Quotation, error) {
	q, ok := r.records[id]
	if !ok {
		return nil, quotation.ErrNotFound
	}
	out := q
	return &out, nil
}

func (r *memQuotationRepo) Save(q *model.Quotation) error {
	r.records[q.ID] = *q
	return nil
}

func (r *memQuotationRepo) Delete(id uint) error {
	if _, ok := r.records[id]; !ok {
		return quotation.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memQuotationRepo) List(status string) ([]model.Quotation, error) {
	var out []model.Quotation
	for _, q := range r.records {
		if status == "" || q.Status == status {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memProductRepo struct {
	products map[uint]*model.Product
}

func (r *memProductRepo) GetByID(id uint) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, quotation.ErrProductNotFound
	}
	out := *p
	return &out, nil
}

func (r *memProductRepo) DeductStock(id uint, quantity int) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, quotation.ErrProductNotFound
	}
	p.StockQuantity -= quantity
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	out := *p
	return &out, nil
}

func newTestHandler(products ...*model.Product) (*QuotationHandler, *memQuotationRepo, *memProductRepo) {
	quotations := newMemQuotationRepo()
	repo := &memProductRepo{products: make(map[uint]*model.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	svc := quotation.NewService(quotations, repo, zap.NewNop(), 30)
	return NewQuotationHandler(svc), quotations, repo
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	require.NoError(t, h(c))
	return rec
}

func TestCreateQuotationEndpoint(t *testing.T) {
	h, _, _ := newTestHandler()

	body := `{
		"customerName": "Dana Reyes",
		"customerEmail": "dana@example.com",
		"customerPhone": "555-0101",
		"items": [{"productId": "1", "productName": "Product 1", "quantity": "2", "price": "1000"}],
		"subtotal": "2000",
		"tax": 240,
		"total": 2240
	}`
	rec := doJSON(t, h.CreateQuotation, http.MethodPost, "/api/quotations", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Quotation model.Quotation `json:"quotation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// String-typed numerics from the client are coerced at the boundary
	assert.Equal(t, model.QuotationStatusPending, resp.Quotation.Status)
	assert.Equal(t, 2000.0, resp.Quotation.Subtotal)
	assert.Equal(t, 240.0, resp.Quotation.Tax)
	assert.Equal(t, 2240.0, resp.Quotation.Total)
	assert.Equal(t, 1, resp.Quotation.ItemCount)
	require.Len(t, resp.Quotation.Items, 1)
	assert.Equal(t, uint(1), resp.Quotation.Items[0].ProductID)
	assert.Equal(t, 2, resp.Quotation.Items[0].Quantity)
	assert.Equal(t, 1000.0, resp.Quotation.Items[0].UnitPrice)
	assert.Equal(t, 2000.0, resp.Quotation.Items[0].Subtotal)
}

func TestCreateQuotationMissingContact(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h.CreateQuotation, http.MethodPost, "/api/quotations",
		`{"customerEmail": "dana@example.com", "customerPhone": "555"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetStatusApprovedDeductsStock(t *testing.T) {
	p := &model.Product{ID: 1, Name: "Product 1", StockQuantity: 5}
	h, _, _ := newTestHandler(p)

	createBody := `{
		"customerName": "Dana Reyes",
		"customerEmail": "dana@example.com",
		"customerPhone": "555-0101",
		"items": [{"productId": 1, "productName": "Product 1", "quantity": 2, "price": 1000}],
		"subtotal": 2000, "tax": 240, "total": 2240
	}`
	rec := doJSON(t, h.CreateQuotation, http.MethodPost, "/api/quotations", createBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.SetQuotationStatus, http.MethodPut, "/api/quotations/1/status",
		`{"status": "approved"}`, map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quotation model.Quotation `json:"quotation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.QuotationStatusApproved, resp.Quotation.Status)
	assert.Equal(t, 3, p.StockQuantity)
}

func TestSetStatusInvalidValue(t *testing.T) {
	h, quotations, _ := newTestHandler()
	quotations.records[1] = model.Quotation{ID: 1, Status: model.QuotationStatusPending}

	rec := doJSON(t, h.SetQuotationStatus, http.MethodPut, "/api/quotations/1/status",
		`{"status": "not-a-real-status"}`, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Invalid status"}`, rec.Body.String())
	assert.Equal(t, model.QuotationStatusPending, quotations.records[1].Status)
}

func TestSetStatusNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h.SetQuotationStatus, http.MethodPut, "/api/quotations/99/status",
		`{"status": "approved"}`, map[string]string{"id": "99"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Quotation not found"}`, rec.Body.String())
}

func TestGetQuotationNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h.GetQuotation, http.MethodGet, "/api/quotations/5", "", map[string]string{"id": "5"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Quotation not found"}`, rec.Body.String())
}

func TestUpdateQuotationMergePatch(t *testing.T) {
	h, quotations, _ := newTestHandler()
	quotations.records[1] = model.Quotation{
		ID:            1,
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		Notes:         "original",
		Subtotal:      100,
		Status:        model.QuotationStatusPending,
	}

	rec := doJSON(t, h.UpdateQuotation, http.MethodPut, "/api/quotations/1",
		`{"notes": "changed", "subtotal": "250"}`, map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	stored := quotations.records[1]
	assert.Equal(t, "changed", stored.Notes)
	assert.Equal(t, 250.0, stored.Subtotal)
	assert.Equal(t, "Dana Reyes", stored.CustomerName, "absent fields keep their stored value")
}

func TestDeleteQuotationEndpoint(t *testing.T) {
	h, quotations, _ := newTestHandler()
	quotations.records[1] = model.Quotation{ID: 1, Status: model.QuotationStatusPending}

	rec := doJSON(t, h.DeleteQuotation, http.MethodDelete, "/api/quotations/1", "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.DeleteQuotation, http.MethodDelete, "/api/quotations/1", "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListQuotationsEnvelope(t *testing.T) {
	h, quotations, _ := newTestHandler()
	quotations.records[1] = model.Quotation{ID: 1, Status: model.QuotationStatusPending, CreatedAt: time.Now()}
	quotations.records[2] = model.Quotation{ID: 2, Status: model.QuotationStatusApproved, CreatedAt: time.Now().Add(time.Second)}

	rec := doJSON(t, h.ListQuotations, http.MethodGet, "/api/quotations?status=approved", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quotations []model.Quotation `json:"quotations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Quotations, 1)
	assert.Equal(t, uint(2), resp.Quotations[0].ID)
}
