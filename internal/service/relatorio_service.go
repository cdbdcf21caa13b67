package service

import (
	"context"
	"errors"
	"time"

	"lavanderia/internal/dto"
	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/moeda"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const formatoData = "2006-01-02"

// Nota is a rendered receipt ready to be downloaded or attached.
type Nota struct {
	NomeArquivo  string
	PDF          []byte
	ClienteEmail *string
	ClienteNome  string
	Codigo       string
	Status       model.StatusDemanda
	Lavanderia   string
}

type RelatorioService interface {
	Dashboard(ctx context.Context, s sessao.Sessao) (*dto.DashboardResponse, error)
	Relatorio(ctx context.Context, s sessao.Sessao, f dto.RelatorioFilter) (*dto.RelatorioResponse, error)
	Responsaveis(ctx context.Context, s sessao.Sessao) ([]string, error)
	Nota(ctx context.Context, s sessao.Sessao, demandaID uuid.UUID) (*Nota, error)
	// NotaPorEscopo is used by background jobs that act without a session.
	NotaPorEscopo(ctx context.Context, esc repository.Escopo, demandaID uuid.UUID) (*Nota, error)
}

type relatorioService struct {
	repo        repository.RelatorioRepository
	demandas    repository.DemandaRepository
	lavanderias repository.LavanderiaRepository
	formas      repository.FormaPagamentoRepository
	usuarios    repository.UsuarioRepository
}

func NewRelatorioService(
	repo repository.RelatorioRepository,
	demandas repository.DemandaRepository,
	lavanderias repository.LavanderiaRepository,
	formas repository.FormaPagamentoRepository,
	usuarios repository.UsuarioRepository,
) RelatorioService {
	return &relatorioService{
		repo:        repo,
		demandas:    demandas,
		lavanderias: lavanderias,
		formas:      formas,
		usuarios:    usuarios,
	}
}

// Dashboard counts demands per status (every status present, zero included)
// and sums the price of fully delivered ones.
func (s *relatorioService) Dashboard(ctx context.Context, sess sessao.Sessao) (*dto.DashboardResponse, error) {
	esc := repository.EscopoDe(sess)
	contagem, err := s.repo.ContarPorStatus(ctx, esc)
	if err != nil {
		return nil, err
	}
	receita, err := s.repo.SomarPreco(ctx, esc, model.StatusEntregueTotal)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		PorStatus:                make(map[string]int64, len(model.FluxoStatus)+1),
		ReceitaEntregue:          receita.StringFixed(2),
		ReceitaEntregueFormatada: moeda.FormatarBRL(receita),
	}
	todos := append(append([]model.StatusDemanda{}, model.FluxoStatus...), model.StatusCancelado)
	for _, st := range todos {
		resp.PorStatus[string(st)] = contagem[st]
		resp.Total += contagem[st]
	}
	return resp, nil
}

// Relatorio filters by creation date (both ends inclusive) and by a
// substring of the responsible user's name.
func (s *relatorioService) Relatorio(ctx context.Context, sess sessao.Sessao, f dto.RelatorioFilter) (*dto.RelatorioResponse, error) {
	filtro := repository.FiltroRelatorio{Responsavel: f.Responsavel}
	if f.Inicio != "" {
		t, err := time.ParseInLocation(formatoData, f.Inicio, time.Local)
		if err != nil {
			return nil, erroCampo("inicio", "data deve estar no formato AAAA-MM-DD")
		}
		filtro.Inicio = &t
	}
	if f.Fim != "" {
		t, err := time.ParseInLocation(formatoData, f.Fim, time.Local)
		if err != nil {
			return nil, erroCampo("fim", "data deve estar no formato AAAA-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		filtro.Fim = &t
	}
	if filtro.Inicio != nil && filtro.Fim != nil && !filtro.Inicio.Before(*filtro.Fim) {
		return nil, erroCampo("fim", "data final anterior à inicial")
	}

	linhas, err := s.repo.Projecao(ctx, repository.EscopoDe(sess), filtro)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	out := make([]dto.RelatorioLinha, 0, len(linhas))
	for _, l := range linhas {
		total = total.Add(l.Preco)
		cats := l.Categorias
		if cats == nil {
			cats = []string{}
		}
		out = append(out, dto.RelatorioLinha{
			DemandaID:   l.DemandaID.String(),
			CodigoUnico: l.CodigoUnico,
			Lavanderia:  l.Lavanderia,
			ClienteNome: l.ClienteNome,
			Descricao:   l.Descricao,
			Categorias:  cats,
			Responsavel: l.Responsavel,
			Status:      string(l.Status),
			Preco:       l.Preco.StringFixed(2),
			Desconto:    l.Desconto.StringFixed(2),
			CriadoEm:    l.CreatedAt,
		})
	}
	return &dto.RelatorioResponse{
		Linhas:         out,
		Quantidade:     len(out),
		Total:          total.StringFixed(2),
		TotalFormatado: moeda.FormatarBRL(total),
	}, nil
}

func (s *relatorioService) Responsaveis(ctx context.Context, sess sessao.Sessao) ([]string, error) {
	nomes, err := s.repo.Responsaveis(ctx, repository.EscopoDe(sess))
	if err != nil {
		return nil, err
	}
	if nomes == nil {
		nomes = []string{}
	}
	return nomes, nil
}

func (s *relatorioService) Nota(ctx context.Context, sess sessao.Sessao, demandaID uuid.UUID) (*Nota, error) {
	return s.NotaPorEscopo(ctx, repository.EscopoDe(sess), demandaID)
}

func (s *relatorioService) NotaPorEscopo(ctx context.Context, esc repository.Escopo, demandaID uuid.UUID) (*Nota, error) {
	d, err := s.demandas.ObterPorID(ctx, esc, demandaID)
	if err != nil {
		return nil, err
	}
	lavEsc := repository.EscopoLavanderia(d.LavanderiaID)
	lav, err := s.lavanderias.ObterPorID(ctx, lavEsc, d.LavanderiaID)
	if err != nil {
		return nil, err
	}

	conteudo := infra.NotaDemanda{Lavanderia: *lav, Demanda: *d}
	if u, err := s.usuarios.ObterPorID(ctx, lavEsc, d.ResponsavelID); err == nil {
		conteudo.Responsavel = u.Nome
	} else if !errors.Is(err, repository.ErrNaoEncontrado) {
		return nil, err
	}

	for _, p := range d.Pagamentos {
		f, err := s.formas.ObterPorID(ctx, lavEsc, p.FormaPagamentoID)
		if errors.Is(err, repository.ErrNaoEncontrado) {
			continue
		}
		if err != nil {
			return nil, err
		}
		conteudo.FormasPagamento = append(conteudo.FormasPagamento, f.Descricao)
	}

	pdf, err := infra.GerarNotaPDF(conteudo)
	if err != nil {
		return nil, err
	}
	return &Nota{
		NomeArquivo:  conteudo.NomeArquivo(),
		PDF:          pdf,
		ClienteEmail: d.ClienteEmail,
		ClienteNome:  d.ClienteNome,
		Codigo:       d.CodigoUnico,
		Status:       d.Status,
		Lavanderia:   lav.Nome,
	}, nil
}
