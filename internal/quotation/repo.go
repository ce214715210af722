package quotation

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
)

var (
	// ErrNotFound is returned when a quotation or product ID does not resolve
	ErrNotFound = errors.New("quotation not found")
	// ErrProductNotFound is returned by stock reads for missing products
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidStatus is returned for a status outside the enumerated set
	ErrInvalidStatus = errors.New("invalid status")
	// ErrValidation is returned when a required field is missing on create
	ErrValidation = errors.New("validation failed")
)

// QuotationRepo is the persistence contract for quotation records
type QuotationRepo interface {
	Create(q *model.Quotation) error
	GetByID(id uint) (*model.Quotation, error)
	Save(q *model.Quotation) error
	Delete(id uint) error
	List(status string) ([]model.Quotation, error)
}

// ProductRepo is the slice of the product store the quotation engine needs:
// stock reads and the clamped stock decrement applied on approval.
type ProductRepo interface {
	GetByID(id uint) (*model.Product, error)
	// DeductStock atomically applies stock = max(0, stock - quantity) and
	// returns the product as written. ErrProductNotFound when id is gone.
	DeductStock(id uint, quantity int) (*model.Product, error)
}

// GormQuotationRepo is the PostgreSQL-backed QuotationRepo
type GormQuotationRepo struct {
	db *gorm.DB
}

// NewGormQuotationRepo creates a QuotationRepo over a gorm connection
func NewGormQuotationRepo(db *gorm.DB) *GormQuotationRepo {
	return &GormQuotationRepo{db: db}
}

func (r *GormQuotationRepo) Create(q *model.Quotation) error {
	return r.db.Create(q).Error
}

func (r *GormQuotationRepo) GetByID(id uint) (*model.Quotation, error) {
	var q model.Quotation
	if err := r.db.First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *GormQuotationRepo) Save(q *model.Quotation) error {
	return r.db.Save(q).Error
}

func (r *GormQuotationRepo) Delete(id uint) error {
	result := r.db.Delete(&model.Quotation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormQuotationRepo) List(status string) ([]model.Quotation, error) {
	var quotations []model.Quotation
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&quotations).Error; err != nil {
		return nil, err
	}
	return quotations, nil
}

// GormProductRepo is the PostgreSQL-backed ProductRepo
type GormProductRepo struct {
	db *gorm.DB
}

// NewGormProductRepo creates a ProductRepo over a gorm connection
func NewGormProductRepo(db *gorm.DB) *GormProductRepo {
	return &GormProductRepo{db: db}
}

func (r *GormProductRepo) GetByID(id uint) (*model.Product, error) {
	var p model.Product
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DeductStock decrements stock in a single UPDATE so two concurrent approvals
// touching the same product cannot race a read-modify-write. GREATEST keeps
// the column at zero when the quotation over-promises.
func (r *GormProductRepo) DeductStock(id uint, quantity int) (*model.Product, error) {
	result := r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("GREATEST(stock_quantity - ?, 0)", quantity))
	if result.Error != nil {
		return nil, fmt.Errorf("deduct stock for product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return r.GetByID(id)
}
