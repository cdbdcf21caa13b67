package repository

import (
	"context"
	"strings"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Criar(ctx context.Context, u *model.Usuario) error
	ObterPorAuthUID(ctx context.Context, authUID uuid.UUID) (*model.Usuario, error)
	ObterPorEmail(ctx context.Context, email string) (*model.Usuario, error)
	ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Usuario, error)
	Listar(ctx context.Context, esc Escopo) ([]model.Usuario, error)
	Atualizar(ctx context.Context, u *model.Usuario) error
	Desativar(ctx context.Context, esc Escopo, id uuid.UUID) error
	// EstaAtivo is false for deactivated and missing profiles.
	EstaAtivo(ctx context.Context, id uuid.UUID) (bool, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Criar(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) ObterPorAuthUID(ctx context.Context, authUID uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).First(&u, "auth_uid = ?", authUID).Error; err != nil {
		return nil, naoEncontrado(err)
	}
	return &u, nil
}

func (r *usuarioRepo) ObterPorEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, naoEncontrado(err)
	}
	return &u, nil
}

func (r *usuarioRepo) ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	if err := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").First(&u, "id = ?", id).Error; err != nil {
		return nil, naoEncontrado(err)
	}
	return &u, nil
}

func (r *usuarioRepo) Listar(ctx context.Context, esc Escopo) ([]model.Usuario, error) {
	var users []model.Usuario
	err := esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id").Order("nome asc").Find(&users).Error
	return users, err
}

func (r *usuarioRepo) Atualizar(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *usuarioRepo) Desativar(ctx context.Context, esc Escopo, id uuid.UUID) error {
	res := esc.Aplicar(r.db.WithContext(ctx).Model(&model.Usuario{}), "lavanderia_id").
		Where("id = ?", id).
		Update("ativo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNaoEncontrado
	}
	return nil
}

// ── Identidades ──────────────────────────────────────────────────────────────

// IdentidadeRepository stores credentials for the local identity provider.
type IdentidadeRepository interface {
	Criar(ctx context.Context, i *model.Identidade) error
	ObterPorEmail(ctx context.Context, email string) (*model.Identidade, error)
	AtualizarSenha(ctx context.Context, id uuid.UUID, hash string) error
	Excluir(ctx context.Context, id uuid.UUID) error
}

type identidadeRepo struct{ db *gorm.DB }

func NewIdentidadeRepository(db *gorm.DB) IdentidadeRepository { return &identidadeRepo{db: db} }

func (r *identidadeRepo) Criar(ctx context.Context, i *model.Identidade) error {
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *identidadeRepo) ObterPorEmail(ctx context.Context, email string) (*model.Identidade, error) {
	var i model.Identidade
	err := r.db.WithContext(ctx).First(&i, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, naoEncontrado(err)
	}
	return &i, nil
}

func (r *identidadeRepo) AtualizarSenha(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&model.Identidade{}).Where("id = ?", id).Update("senha_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNaoEncontrado
	}
	return nil
}

func (r *identidadeRepo) Excluir(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Identidade{}, "id = ?", id).Error
}

func (r *usuarioRepo) EstaAtivo(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("id = ? AND ativo = ?", id, true).
		Count(&n).Error
	return n > 0, err
}
