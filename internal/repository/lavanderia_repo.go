package repository

import (
	"context"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LavanderiaRepository interface {
	Criar(ctx context.Context, l *model.Lavanderia) error
	Listar(ctx context.Context, esc Escopo) ([]model.Lavanderia, error)
	ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Lavanderia, error)
	Atualizar(ctx context.Context, l *model.Lavanderia) error
	Excluir(ctx context.Context, id uuid.UUID) error
	// ContarDependentes counts users, catalog entries and demands still
	// owned by the tenant.
	ContarDependentes(ctx context.Context, id uuid.UUID) (int64, error)
}

type lavanderiaRepo struct{ db *gorm.DB }

func NewLavanderiaRepository(db *gorm.DB) LavanderiaRepository { return &lavanderiaRepo{db: db} }

func (r *lavanderiaRepo) Criar(ctx context.Context, l *model.Lavanderia) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *lavanderiaRepo) Listar(ctx context.Context, esc Escopo) ([]model.Lavanderia, error) {
	var list []model.Lavanderia
	err := esc.Aplicar(r.db.WithContext(ctx), "id").Order("nome asc").Find(&list).Error
	return list, err
}

func (r *lavanderiaRepo) ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Lavanderia, error) {
	var l model.Lavanderia
	err := esc.Aplicar(r.db.WithContext(ctx), "id").First(&l, "id = ?", id).Error
	if err != nil {
		return nil, naoEncontrado(err)
	}
	return &l, nil
}

func (r *lavanderiaRepo) Atualizar(ctx context.Context, l *model.Lavanderia) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *lavanderiaRepo) Excluir(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Lavanderia{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNaoEncontrado
	}
	return nil
}

func (r *lavanderiaRepo) ContarDependentes(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	for _, m := range []interface{}{&model.Usuario{}, &model.Categoria{}, &model.FormaPagamento{}, &model.Demanda{}} {
		var n int64
		if err := r.db.WithContext(ctx).Model(m).Where("lavanderia_id = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
