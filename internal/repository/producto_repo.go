package repository

import (
	"context"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for the catalog.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling unit testing via in-memory stubs.
type ProductoRepository interface {
	CreateTx(tx *gorm.DB, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	// FindByIDConReceta preloads recipe lines with their insumo.
	FindByIDConReceta(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	// FindByIDConRecetaTx is the in-transaction variant used by the sale path.
	FindByIDConRecetaTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, soloActivos bool) ([]model.Producto, error)
	UpdateTx(tx *gorm.DB, p *model.Producto) error
	// ReplaceRecetaTx deletes the current recipe and inserts the new lines.
	ReplaceRecetaTx(tx *gorm.DB, productoID uuid.UUID, lineas []model.Receta) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByIDConReceta(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Recetas.Insumo").
		Preload("Categoria").
		First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByIDConRecetaTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Preload("Recetas").First(&p, id).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, soloActivos bool) ([]model.Producto, error) {
	var productos []model.Producto
	q := r.db.WithContext(ctx).
		Preload("Recetas.Insumo").
		Preload("Categoria")
	if soloActivos {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Save(p).Error
}

func (r *productoRepo) ReplaceRecetaTx(tx *gorm.DB, productoID uuid.UUID, lineas []model.Receta) error {
	if err := tx.Where("producto_id = ?", productoID).Delete(&model.Receta{}).Error; err != nil {
		return err
	}
	if len(lineas) == 0 {
		return nil
	}
	return tx.Create(&lineas).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).Update("activo", false).Error
}
