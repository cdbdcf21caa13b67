package service

import (
	"context"
	"strings"

	"lavanderia/internal/dto"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"

	"github.com/google/uuid"
)

type FormaPagamentoService interface {
	Criar(ctx context.Context, s sessao.Sessao, req dto.FormaPagamentoRequest) (*dto.FormaPagamentoResponse, error)
	Listar(ctx context.Context, s sessao.Sessao) ([]dto.FormaPagamentoResponse, error)
	Atualizar(ctx context.Context, s sessao.Sessao, id uuid.UUID, req dto.FormaPagamentoRequest) (*dto.FormaPagamentoResponse, error)
	Excluir(ctx context.Context, s sessao.Sessao, id uuid.UUID) error
}

type formaPagamentoService struct {
	repo repository.FormaPagamentoRepository
}

func NewFormaPagamentoService(repo repository.FormaPagamentoRepository) FormaPagamentoService {
	return &formaPagamentoService{repo: repo}
}

func mapFormaPagamento(f model.FormaPagamento) dto.FormaPagamentoResponse {
	return dto.FormaPagamentoResponse{
		ID:        f.ID.String(),
		Descricao: f.Descricao,
		Sigla:     f.Sigla,
		Status:    f.Status,
	}
}

func statusSoft(s string) string {
	if s == "" {
		return model.SoftAtivo
	}
	return s
}

func (s *formaPagamentoService) Criar(ctx context.Context, sess sessao.Sessao, req dto.FormaPagamentoRequest) (*dto.FormaPagamentoResponse, error) {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	f := &model.FormaPagamento{
		LavanderiaID: lavID,
		Descricao:    strings.TrimSpace(req.Descricao),
		Sigla:        strings.ToUpper(strings.TrimSpace(req.Sigla)),
		Status:       statusSoft(req.Status),
	}
	if err := s.repo.Criar(ctx, f); err != nil {
		return nil, err
	}
	resp := mapFormaPagamento(*f)
	return &resp, nil
}

func (s *formaPagamentoService) Listar(ctx context.Context, sess sessao.Sessao) ([]dto.FormaPagamentoResponse, error) {
	list, err := s.repo.Listar(ctx, repository.EscopoDe(sess))
	if err != nil {
		return nil, err
	}
	result := make([]dto.FormaPagamentoResponse, 0, len(list))
	for _, f := range list {
		result = append(result, mapFormaPagamento(f))
	}
	return result, nil
}

func (s *formaPagamentoService) Atualizar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, req dto.FormaPagamentoRequest) (*dto.FormaPagamentoResponse, error) {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	f, err := s.repo.ObterPorID(ctx, repository.EscopoLavanderia(lavID), id)
	if err != nil {
		return nil, err
	}
	f.Descricao = strings.TrimSpace(req.Descricao)
	f.Sigla = strings.ToUpper(strings.TrimSpace(req.Sigla))
	f.Status = statusSoft(req.Status)

	if err := s.repo.Atualizar(ctx, f); err != nil {
		return nil, err
	}
	resp := mapFormaPagamento(*f)
	return &resp, nil
}

func (s *formaPagamentoService) Excluir(ctx context.Context, sess sessao.Sessao, id uuid.UUID) error {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return err
	}
	return s.repo.Excluir(ctx, repository.EscopoLavanderia(lavID), id)
}
