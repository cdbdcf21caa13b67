package service

import (
	"context"
	"errors"
	"strings"

	"lavanderia/internal/dto"
	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"

	"github.com/google/uuid"
)

// LavanderiaService is the tenant directory.
type LavanderiaService interface {
	Listar(ctx context.Context, s sessao.Sessao) ([]dto.LavanderiaResponse, error)
	Obter(ctx context.Context, s sessao.Sessao, id uuid.UUID) (*dto.LavanderiaResponse, error)
	Criar(ctx context.Context, s sessao.Sessao, req dto.LavanderiaRequest) (*dto.LavanderiaResponse, error)
	Atualizar(ctx context.Context, s sessao.Sessao, id uuid.UUID, req dto.LavanderiaRequest) (*dto.LavanderiaResponse, error)
	Excluir(ctx context.Context, s sessao.Sessao, id uuid.UUID) error
}

type lavanderiaService struct {
	repo repository.LavanderiaRepository
}

func NewLavanderiaService(repo repository.LavanderiaRepository) LavanderiaService {
	return &lavanderiaService{repo: repo}
}

func mapLavanderia(l model.Lavanderia) dto.LavanderiaResponse {
	return dto.LavanderiaResponse{
		ID:                   l.ID.String(),
		Nome:                 l.Nome,
		Endereco:             l.Endereco,
		Telefone:             l.Telefone,
		Email:                l.Email,
		HorarioFuncionamento: l.HorarioFuncionamento,
		PrazoEntregaDias:     l.PrazoEntregaDias,
		Logo:                 l.Logo,
		Status:               l.Status,
		Papeis:               l.ListaPapeis(),
		CreatedAt:            l.CreatedAt,
	}
}

func (s *lavanderiaService) Listar(ctx context.Context, sess sessao.Sessao) ([]dto.LavanderiaResponse, error) {
	list, err := s.repo.Listar(ctx, repository.EscopoDe(sess))
	if err != nil {
		return nil, err
	}
	result := make([]dto.LavanderiaResponse, 0, len(list))
	for _, l := range list {
		result = append(result, mapLavanderia(l))
	}
	return result, nil
}

func (s *lavanderiaService) Obter(ctx context.Context, sess sessao.Sessao, id uuid.UUID) (*dto.LavanderiaResponse, error) {
	l, err := s.repo.ObterPorID(ctx, repository.EscopoDe(sess), id)
	if err != nil {
		return nil, err
	}
	resp := mapLavanderia(*l)
	return &resp, nil
}

func (s *lavanderiaService) Criar(ctx context.Context, sess sessao.Sessao, req dto.LavanderiaRequest) (*dto.LavanderiaResponse, error) {
	if !sess.Global() {
		return nil, ErrProibido
	}
	l := &model.Lavanderia{}
	if err := aplicarLavanderia(l, req); err != nil {
		return nil, err
	}
	if err := s.repo.Criar(ctx, l); err != nil {
		return nil, err
	}
	resp := mapLavanderia(*l)
	return &resp, nil
}

// Atualizar replaces the record with the submitted form. Admins may only
// edit their own tenant.
func (s *lavanderiaService) Atualizar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, req dto.LavanderiaRequest) (*dto.LavanderiaResponse, error) {
	if !sess.Global() && sess.Capacidade() != model.PapelAdmin {
		return nil, ErrProibido
	}
	l, err := s.repo.ObterPorID(ctx, repository.EscopoDe(sess), id)
	if err != nil {
		return nil, err
	}
	if !sess.Global() && req.Status != "" && req.Status != l.Status {
		return nil, ErrProibido
	}
	if err := aplicarLavanderia(l, req); err != nil {
		return nil, err
	}
	if err := s.repo.Atualizar(ctx, l); err != nil {
		return nil, err
	}
	resp := mapLavanderia(*l)
	return &resp, nil
}

// Excluir refuses to remove a tenant that still owns users, catalog entries
// or demands.
func (s *lavanderiaService) Excluir(ctx context.Context, sess sessao.Sessao, id uuid.UUID) error {
	if !sess.Global() {
		return ErrProibido
	}
	if _, err := s.repo.ObterPorID(ctx, repository.EscopoDe(sess), id); err != nil {
		return err
	}
	n, err := s.repo.ContarDependentes(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrLavanderiaComDependentes
	}
	return s.repo.Excluir(ctx, id)
}

func aplicarLavanderia(l *model.Lavanderia, req dto.LavanderiaRequest) error {
	papeis, err := normalizarPapeis(req.Papeis)
	if err != nil {
		return err
	}

	var logo *string
	if req.Logo != nil && *req.Logo != "" {
		processado, err := infra.ProcessarLogo(*req.Logo)
		if err != nil {
			if errors.Is(err, infra.ErrLogoInvalido) {
				return erroCampo("logo", err.Error())
			}
			return err
		}
		logo = &processado
	}

	l.Nome = strings.TrimSpace(req.Nome)
	l.Endereco = strings.TrimSpace(req.Endereco)
	l.Telefone = strings.TrimSpace(req.Telefone)
	l.Email = strings.ToLower(strings.TrimSpace(req.Email))
	l.HorarioFuncionamento = req.HorarioFuncionamento
	l.PrazoEntregaDias = req.PrazoEntregaDias
	if l.PrazoEntregaDias <= 0 {
		l.PrazoEntregaDias = 3
	}
	l.Logo = logo
	if req.Status != "" {
		l.Status = req.Status
	}
	if l.Status == "" {
		l.Status = model.StatusAtivo
	}
	l.Papeis = papeis
	return nil
}

// normalizarPapeis dedupes the tenant role set. super_admin is never a
// tenant role.
func normalizarPapeis(papeis []string) (string, error) {
	if len(papeis) == 0 {
		return model.PapeisPadrao, nil
	}
	vistos := make(map[string]bool, len(papeis))
	out := make([]string, 0, len(papeis))
	for _, p := range papeis {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || vistos[p] {
			continue
		}
		if p == model.PapelSuperAdmin || strings.Contains(p, ",") {
			return "", erroCampo("papeis", "papel inválido: "+p)
		}
		vistos[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return model.PapeisPadrao, nil
	}
	return strings.Join(out, ","), nil
}
