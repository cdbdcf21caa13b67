package repository

import (
	"context"
	"time"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SolicitacaoSenhaRepository is the password-reset request queue.
type SolicitacaoSenhaRepository interface {
	Criar(ctx context.Context, s *model.SolicitacaoSenha) error
	PendentesEnvio(ctx context.Context, limite int) ([]model.SolicitacaoSenha, error)
	Atualizar(ctx context.Context, s *model.SolicitacaoSenha) error
	ObterPorTokenHash(ctx context.Context, hash string) (*model.SolicitacaoSenha, error)
	// Consumir marks the token as used. It returns false if it was already used.
	Consumir(ctx context.Context, id uuid.UUID) (bool, error)
}

type solicitacaoSenhaRepo struct{ db *gorm.DB }

func NewSolicitacaoSenhaRepository(db *gorm.DB) SolicitacaoSenhaRepository {
	return &solicitacaoSenhaRepo{db: db}
}

func (r *solicitacaoSenhaRepo) Criar(ctx context.Context, s *model.SolicitacaoSenha) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *solicitacaoSenhaRepo) PendentesEnvio(ctx context.Context, limite int) ([]model.SolicitacaoSenha, error) {
	var list []model.SolicitacaoSenha
	err := r.db.WithContext(ctx).
		Where("enviado = ?", false).
		Order("created_at ASC").
		Limit(limite).
		Find(&list).Error
	return list, err
}

func (r *solicitacaoSenhaRepo) Atualizar(ctx context.Context, s *model.SolicitacaoSenha) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *solicitacaoSenhaRepo) ObterPorTokenHash(ctx context.Context, hash string) (*model.SolicitacaoSenha, error) {
	var s model.SolicitacaoSenha
	if err := r.db.WithContext(ctx).First(&s, "token_hash = ?", hash).Error; err != nil {
		return nil, naoEncontrado(err)
	}
	return &s, nil
}

func (r *solicitacaoSenhaRepo) Consumir(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.SolicitacaoSenha{}).
		Where("id = ? AND usado_em IS NULL", id).
		Update("usado_em", time.Now())
	return res.RowsAffected == 1, res.Error
}
