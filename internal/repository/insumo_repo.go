package repository

import (
	"context"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/dto"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InsumoRepository is the stock ledger's data access contract. Balance changes
// go exclusively through AjustarStockTx (a store-side relative update) and are
// always paired with a movement row created in the same transaction.
type InsumoRepository interface {
	Create(ctx context.Context, i *model.Insumo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Insumo, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Insumo, error)
	List(ctx context.Context) ([]model.Insumo, error)
	Update(ctx context.Context, i *model.Insumo) error
	// ListBajoStock returns insumos whose balance is at or below their minimum.
	ListBajoStock(ctx context.Context, limit int) ([]model.Insumo, error)

	// AjustarStockTx issues `stock_actual = stock_actual + delta` inside tx.
	// Returns gorm.ErrRecordNotFound when the insumo does not exist.
	AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoInventario) error
	ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type insumoRepo struct{ db *gorm.DB }

func NewInsumoRepository(db *gorm.DB) InsumoRepository { return &insumoRepo{db: db} }

func (r *insumoRepo) DB() *gorm.DB { return r.db }

func (r *insumoRepo) Create(ctx context.Context, i *model.Insumo) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *insumoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Insumo, error) {
	var i model.Insumo
	err := r.db.WithContext(ctx).First(&i, id).Error
	return &i, err
}

func (r *insumoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Insumo, error) {
	var i model.Insumo
	err := tx.First(&i, id).Error
	return &i, err
}

func (r *insumoRepo) List(ctx context.Context) ([]model.Insumo, error) {
	var insumos []model.Insumo
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&insumos).Error
	return insumos, err
}

func (r *insumoRepo) Update(ctx context.Context, i *model.Insumo) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *insumoRepo) ListBajoStock(ctx context.Context, limit int) ([]model.Insumo, error) {
	var insumos []model.Insumo
	err := r.db.WithContext(ctx).
		Where("stock_actual <= stock_minimo").
		Order("stock_actual ASC").
		Limit(limit).
		Find(&insumos).Error
	return insumos, err
}

func (r *insumoRepo) AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	res := tx.Model(&model.Insumo{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *insumoRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoInventario) error {
	return tx.Create(m).Error
}

func (r *insumoRepo) ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoInventario{})
	if filter.InsumoID != "" {
		q = q.Where("insumo_id = ?", filter.InsumoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var movimientos []model.MovimientoInventario
	err := q.Preload("Insumo").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&movimientos).Error
	return movimientos, total, err
}
