package repository

import (
	"context"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaRepository defines tenant-scoped CRUD operations for Categoria.
type CategoriaRepository interface {
	Criar(ctx context.Context, c *model.Categoria) error
	Listar(ctx context.Context, esc Escopo) ([]model.Categoria, error)
	ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Categoria, error)
	// ObterPorIDsTx resolves a selection inside a running transaction.
	ObterPorIDsTx(tx *gorm.DB, esc Escopo, ids []uuid.UUID) ([]model.Categoria, error)
	CodigoEmUso(ctx context.Context, lavanderiaID uuid.UUID, codigo string, exceto uuid.UUID) (bool, error)
	Atualizar(ctx context.Context, c *model.Categoria) error
	Excluir(ctx context.Context, esc Escopo, id uuid.UUID) error
}

type categoriaRepository struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) Criar(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepository) Listar(ctx context.Context, esc Escopo) ([]model.Categoria, error) {
	var list []model.Categoria
	err := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").Order("nome asc").Find(&list).Error
	return list, err
}

func (r *categoriaRepository) ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	if err := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").First(&c, "id = ?", id).Error; err != nil {
		return nil, naoEncontrado(err)
	}
	return &c, nil
}

func (r *categoriaRepository) ObterPorIDsTx(tx *gorm.DB, esc Escopo, ids []uuid.UUID) ([]model.Categoria, error) {
	var list []model.Categoria
	if len(ids) == 0 {
		return list, nil
	}
	err := esc.Aplicar(tx, "lavanderia_id").Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *categoriaRepository) CodigoEmUso(ctx context.Context, lavanderiaID uuid.UUID, codigo string, exceto uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Categoria{}).
		Where("lavanderia_id = ? AND LOWER(codigo) = LOWER(?) AND id <> ?", lavanderiaID, codigo, exceto).
		Count(&n).Error
	return n > 0, err
}

func (r *categoriaRepository) Atualizar(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Excluir is a hard delete. Demand associations keep their name snapshot.
func (r *categoriaRepository) Excluir(ctx context.Context, esc Escopo, id uuid.UUID) error {
	res := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").Delete(&model.Categoria{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNaoEncontrado
	}
	return nil
}
