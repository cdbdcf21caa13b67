package repository

import (
	"context"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FormaPagamentoRepository interface {
	Criar(ctx context.Context, f *model.FormaPagamento) error
	Listar(ctx context.Context, esc Escopo) ([]model.FormaPagamento, error)
	ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.FormaPagamento, error)
	ObterPorIDsTx(tx *gorm.DB, esc Escopo, ids []uuid.UUID) ([]model.FormaPagamento, error)
	Atualizar(ctx context.Context, f *model.FormaPagamento) error
	Excluir(ctx context.Context, esc Escopo, id uuid.UUID) error
}

type formaPagamentoRepo struct{ db *gorm.DB }

func NewFormaPagamentoRepository(db *gorm.DB) FormaPagamentoRepository {
	return &formaPagamentoRepo{db: db}
}

func (r *formaPagamentoRepo) Criar(ctx context.Context, f *model.FormaPagamento) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *formaPagamentoRepo) Listar(ctx context.Context, esc Escopo) ([]model.FormaPagamento, error) {
	var list []model.FormaPagamento
	err := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").Order("descricao asc").Find(&list).Error
	return list, err
}

func (r *formaPagamentoRepo) ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.FormaPagamento, error) {
	var f model.FormaPagamento
	if err := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").First(&f, "id = ?", id).Error; err != nil {
		return nil, naoEncontrado(err)
	}
	return &f, nil
}

func (r *formaPagamentoRepo) ObterPorIDsTx(tx *gorm.DB, esc Escopo, ids []uuid.UUID) ([]model.FormaPagamento, error) {
	var list []model.FormaPagamento
	if len(ids) == 0 {
		return list, nil
	}
	err := esc.Aplicar(tx, "lavanderia_id").Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *formaPagamentoRepo) Atualizar(ctx context.Context, f *model.FormaPagamento) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *formaPagamentoRepo) Excluir(ctx context.Context, esc Escopo, id uuid.UUID) error {
	res := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").Delete(&model.FormaPagamento{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNaoEncontrado
	}
	return nil
}
