package service

import (
	"context"
	"errors"
	"fmt"

	"lavanderia/internal/model"
	"lavanderia/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ProvedorIdentidade verifies credentials and owns password storage. It knows
// nothing about profiles, roles or tenants.
type ProvedorIdentidade interface {
	// Autenticar returns the identity id, or ErrCredenciaisInvalidas.
	Autenticar(ctx context.Context, email, senha string) (uuid.UUID, error)
	Registrar(ctx context.Context, email, senha string) (uuid.UUID, error)
	AlterarSenha(ctx context.Context, id uuid.UUID, novaSenha string) error
	Remover(ctx context.Context, id uuid.UUID) error
}

// BcryptCusto is the work factor used outside tests.
const BcryptCusto = 12

type provedorLocal struct {
	repo  repository.IdentidadeRepository
	custo int
}

// NewProvedorLocal stores bcrypt hashes in the identidades table.
func NewProvedorLocal(repo repository.IdentidadeRepository, custo int) ProvedorIdentidade {
	if custo < bcrypt.MinCost {
		custo = BcryptCusto
	}
	return &provedorLocal{repo: repo, custo: custo}
}

func (p *provedorLocal) Autenticar(ctx context.Context, email, senha string) (uuid.UUID, error) {
	id, err := p.repo.ObterPorEmail(ctx, email)
	if errors.Is(err, repository.ErrNaoEncontrado) {
		return uuid.Nil, ErrCredenciaisInvalidas
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("identidade: consultar: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(id.SenhaHash), []byte(senha)); err != nil {
		return uuid.Nil, ErrCredenciaisInvalidas
	}
	return id.ID, nil
}

func (p *provedorLocal) Registrar(ctx context.Context, email, senha string) (uuid.UUID, error) {
	if _, err := p.repo.ObterPorEmail(ctx, email); err == nil {
		return uuid.Nil, fmt.Errorf("email já cadastrado: %w", ErrConflito)
	} else if !errors.Is(err, repository.ErrNaoEncontrado) {
		return uuid.Nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(senha), p.custo)
	if err != nil {
		return uuid.Nil, err
	}
	id := &model.Identidade{Email: email, SenhaHash: string(hash)}
	if err := p.repo.Criar(ctx, id); err != nil {
		return uuid.Nil, err
	}
	return id.ID, nil
}

func (p *provedorLocal) AlterarSenha(ctx context.Context, id uuid.UUID, novaSenha string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), p.custo)
	if err != nil {
		return err
	}
	return p.repo.AtualizarSenha(ctx, id, string(hash))
}

func (p *provedorLocal) Remover(ctx context.Context, id uuid.UUID) error {
	return p.repo.Excluir(ctx, id)
}
