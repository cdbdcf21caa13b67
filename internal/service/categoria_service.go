package service

import (
	"context"
	"fmt"
	"strings"

	"lavanderia/internal/dto"
	"lavanderia/internal/model"
	"lavanderia/internal/moeda"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"

	"github.com/google/uuid"
)

// CategoriaService manages the tenant's service categories.
type CategoriaService interface {
	Criar(ctx context.Context, s sessao.Sessao, req dto.CriarCategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context, s sessao.Sessao) ([]dto.CategoriaResponse, error)
	Atualizar(ctx context.Context, s sessao.Sessao, id uuid.UUID, req dto.AtualizarCategoriaRequest) (*dto.CategoriaResponse, error)
	Excluir(ctx context.Context, s sessao.Sessao, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:             c.ID.String(),
		Codigo:         c.Codigo,
		Nome:           c.Nome,
		Descricao:      c.Descricao,
		Unidade:        c.Unidade,
		Preco:          c.Preco.StringFixed(2),
		PrecoFormatado: moeda.FormatarBRL(c.Preco),
	}
}

func (s *categoriaService) Criar(ctx context.Context, sess sessao.Sessao, req dto.CriarCategoriaRequest) (*dto.CategoriaResponse, error) {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	preco, err := moeda.Parse(req.Preco)
	if err != nil {
		return nil, erroCampo("preco", err.Error())
	}
	codigo := strings.TrimSpace(req.Codigo)
	if err := s.codigoLivre(ctx, lavID, codigo, uuid.Nil); err != nil {
		return nil, err
	}

	c := &model.Categoria{
		LavanderiaID: lavID,
		Codigo:       codigo,
		Nome:         strings.TrimSpace(req.Nome),
		Descricao:    req.Descricao,
		Unidade:      req.Unidade,
		Preco:        preco,
	}
	if err := s.repo.Criar(ctx, c); err != nil {
		return nil, err
	}
	resp := mapCategoria(*c)
	return &resp, nil
}

func (s *categoriaService) Listar(ctx context.Context, sess sessao.Sessao) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx, repository.EscopoDe(sess))
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) Atualizar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, req dto.AtualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.ObterPorID(ctx, repository.EscopoLavanderia(lavID), id)
	if err != nil {
		return nil, err
	}

	if req.Codigo != nil {
		codigo := strings.TrimSpace(*req.Codigo)
		if !strings.EqualFold(codigo, c.Codigo) {
			if err := s.codigoLivre(ctx, lavID, codigo, c.ID); err != nil {
				return nil, err
			}
		}
		c.Codigo = codigo
	}
	if req.Nome != nil {
		c.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.Descricao != nil {
		c.Descricao = req.Descricao
	}
	if req.Unidade != nil {
		c.Unidade = *req.Unidade
	}
	if req.Preco != nil {
		preco, err := moeda.Parse(*req.Preco)
		if err != nil {
			return nil, erroCampo("preco", err.Error())
		}
		c.Preco = preco
	}

	if err := s.repo.Atualizar(ctx, c); err != nil {
		return nil, err
	}
	resp := mapCategoria(*c)
	return &resp, nil
}

// Excluir removes the category. Demands keep the name snapshot taken when the
// category was attached.
func (s *categoriaService) Excluir(ctx context.Context, sess sessao.Sessao, id uuid.UUID) error {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return err
	}
	return s.repo.Excluir(ctx, repository.EscopoLavanderia(lavID), id)
}

func (s *categoriaService) codigoLivre(ctx context.Context, lavID uuid.UUID, codigo string, exceto uuid.UUID) error {
	emUso, err := s.repo.CodigoEmUso(ctx, lavID, codigo, exceto)
	if err != nil {
		return err
	}
	if emUso {
		return fmt.Errorf("categoria com código %q já existe: %w", codigo, ErrConflito)
	}
	return nil
}
