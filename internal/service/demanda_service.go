package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"lavanderia/internal/dto"
	"lavanderia/internal/metrics"
	"lavanderia/internal/model"
	"lavanderia/internal/moeda"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	limitePadrao = 50
	limiteMaximo = 200
)

// Notificador schedules the delivery email of a demand.
type Notificador interface {
	NotificarEntrega(ctx context.Context, lavanderiaID, demandaID uuid.UUID) error
}

type DemandaService interface {
	Criar(ctx context.Context, s sessao.Sessao, req dto.CriarDemandaRequest) (*dto.DemandaResponse, error)
	Obter(ctx context.Context, s sessao.Sessao, id uuid.UUID) (*dto.DemandaResponse, error)
	Listar(ctx context.Context, s sessao.Sessao, f dto.DemandaFilter) (*dto.DemandaListResponse, error)
	Atualizar(ctx context.Context, s sessao.Sessao, id uuid.UUID, req dto.AtualizarDemandaRequest) (*dto.DemandaResponse, error)
	// Transicionar is the only way a status changes besides cancellation.
	Transicionar(ctx context.Context, s sessao.Sessao, id uuid.UUID, alvo model.StatusDemanda) (*dto.DemandaResponse, error)
	Avancar(ctx context.Context, s sessao.Sessao, id uuid.UUID, req dto.AvancarStatusRequest) (*dto.DemandaResponse, error)
	Cancelar(ctx context.Context, s sessao.Sessao, id uuid.UUID, req dto.CancelarDemandaRequest) error
	HistoricoCategorias(ctx context.Context, s sessao.Sessao, id uuid.UUID) ([]dto.DemandaCategoriaResponse, error)
}

type demandaService struct {
	repo        repository.DemandaRepository
	categorias  repository.CategoriaRepository
	formas      repository.FormaPagamentoRepository
	usuarios    repository.UsuarioRepository
	lavanderias repository.LavanderiaRepository
	notificador Notificador
	agora       func() time.Time
}

func NewDemandaService(
	repo repository.DemandaRepository,
	categorias repository.CategoriaRepository,
	formas repository.FormaPagamentoRepository,
	usuarios repository.UsuarioRepository,
	lavanderias repository.LavanderiaRepository,
	notificador Notificador,
) DemandaService {
	return &demandaService{
		repo:        repo,
		categorias:  categorias,
		formas:      formas,
		usuarios:    usuarios,
		lavanderias: lavanderias,
		notificador: notificador,
		agora:       time.Now,
	}
}

// ── Criar ────────────────────────────────────────────────────────────────────
// Everything that can fail on input is checked before the transaction:
//   1. money fields parse, discount clamped to the price
//   2. responsible user is active and in the acting tenant
//   3. delivery forecast defaults to the tenant lead time
// Inside ONE transaction: demand row, category rows (name snapshot), photo
// rows and payment rows. Categories and payment methods are read with tx.

func (s *demandaService) Criar(ctx context.Context, sess sessao.Sessao, req dto.CriarDemandaRequest) (*dto.DemandaResponse, error) {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	esc := repository.EscopoLavanderia(lavID)

	preco, err := moeda.Parse(req.Preco)
	if err != nil {
		return nil, erroCampo("preco", err.Error())
	}
	desconto := decimal.Zero
	if strings.TrimSpace(req.Desconto) != "" {
		if desconto, err = moeda.Parse(req.Desconto); err != nil {
			return nil, erroCampo("desconto", err.Error())
		}
	}
	desconto = moeda.LimitarDesconto(preco, desconto)

	categoriaIDs, err := parseIDs("categorias", req.Categorias)
	if err != nil {
		return nil, err
	}
	formaIDs, err := parseIDs("formas_pagamento", req.FormasPagamento)
	if err != nil {
		return nil, err
	}

	responsavelID := sess.UsuarioID
	if req.ResponsavelID != "" {
		if responsavelID, err = uuid.Parse(req.ResponsavelID); err != nil {
			return nil, erroCampo("responsavel_id", "uuid inválido")
		}
	}
	if err := s.validarResponsavel(ctx, esc, responsavelID); err != nil {
		return nil, err
	}

	previsao := req.PrevisaoEntrega
	if previsao == nil {
		lav, err := s.lavanderias.ObterPorID(ctx, esc, lavID)
		if err != nil {
			return nil, err
		}
		p := s.previsaoPadrao(lav.PrazoEntregaDias)
		previsao = &p
	}

	d := &model.Demanda{
		LavanderiaID:    lavID,
		CodigoUnico:     gerarCodigo(s.agora()),
		ClienteNome:     strings.TrimSpace(req.ClienteNome),
		ClienteEmail:    aparar(req.ClienteEmail),
		ClienteTelefone: strings.TrimSpace(req.ClienteTelefone),
		CpfCnpj:         aparar(req.CpfCnpj),
		Descricao:       strings.TrimSpace(req.Descricao),
		Observacoes:     req.Observacoes,
		Preco:           preco,
		Desconto:        desconto,
		Status:          model.StatusNovo,
		ResponsavelID:   responsavelID,
		PrevisaoEntrega: previsao,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cats, err := s.categoriasValidas(tx, esc, categoriaIDs)
		if err != nil {
			return err
		}
		if err := s.formasValidas(tx, esc, formaIDs); err != nil {
			return err
		}

		if err := s.repo.CriarTx(tx, d); err != nil {
			return fmt.Errorf("criar demanda: %w", err)
		}
		if err := s.repo.CriarCategoriasTx(tx, linhasCategoria(d.ID, cats)); err != nil {
			return fmt.Errorf("criar categorias da demanda: %w", err)
		}

		fotos := make([]model.DemandaFoto, 0, len(req.Fotos))
		for _, img := range req.Fotos {
			fotos = append(fotos, model.DemandaFoto{DemandaID: d.ID, Imagem: img, Status: model.SoftAtivo})
		}
		if err := s.repo.CriarFotosTx(tx, fotos); err != nil {
			return fmt.Errorf("criar fotos da demanda: %w", err)
		}

		pagamentos := make([]model.DemandaPagamento, 0, len(formaIDs))
		for _, fid := range formaIDs {
			pagamentos = append(pagamentos, model.DemandaPagamento{DemandaID: d.ID, FormaPagamentoID: fid, Status: model.SoftAtivo})
		}
		if err := s.repo.CriarPagamentosTx(tx, pagamentos); err != nil {
			return fmt.Errorf("criar pagamentos da demanda: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DemandasCriadas.Inc()
	log.Info().Str("demanda_id", d.ID.String()).Str("lavanderia_id", lavID.String()).
		Str("codigo", d.CodigoUnico).Msg("demanda criada")
	return s.Obter(ctx, sess, d.ID)
}

// ── Leitura ──────────────────────────────────────────────────────────────────

func (s *demandaService) Obter(ctx context.Context, sess sessao.Sessao, id uuid.UUID) (*dto.DemandaResponse, error) {
	d, err := s.repo.ObterPorID(ctx, repository.EscopoDe(sess), id)
	if err != nil {
		return nil, err
	}
	resp := mapDemanda(*d)
	return &resp, nil
}

// Listar treats an empty status or "all" as every open demand.
func (s *demandaService) Listar(ctx context.Context, sess sessao.Sessao, f dto.DemandaFilter) (*dto.DemandaListResponse, error) {
	page, limit := paginar(f.Page, f.Limit)

	filtro := repository.FiltroDemanda{
		Busca:  f.Busca,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	switch st := strings.TrimSpace(f.Status); st {
	case "", "all":
	default:
		if !model.StatusDemanda(st).Valido() {
			return nil, erroCampo("status", "status desconhecido")
		}
		filtro.Status = model.StatusDemanda(st)
	}

	list, total, err := s.repo.Listar(ctx, repository.EscopoDe(sess), filtro)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DemandaResponse, 0, len(list))
	for _, d := range list {
		data = append(data, mapDemanda(d))
	}
	return &dto.DemandaListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *demandaService) HistoricoCategorias(ctx context.Context, sess sessao.Sessao, id uuid.UUID) ([]dto.DemandaCategoriaResponse, error) {
	rows, err := s.repo.HistoricoCategorias(ctx, repository.EscopoDe(sess), id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DemandaCategoriaResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapDemandaCategoria(r))
	}
	return out, nil
}

// ── Atualizar ────────────────────────────────────────────────────────────────

func (s *demandaService) Atualizar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, req dto.AtualizarDemandaRequest) (*dto.DemandaResponse, error) {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	esc := repository.EscopoLavanderia(lavID)

	var preco, desconto *decimal.Decimal
	if req.Preco != nil {
		v, err := moeda.Parse(*req.Preco)
		if err != nil {
			return nil, erroCampo("preco", err.Error())
		}
		preco = &v
	}
	if req.Desconto != nil {
		v := decimal.Zero
		if strings.TrimSpace(*req.Desconto) != "" {
			if v, err = moeda.Parse(*req.Desconto); err != nil {
				return nil, erroCampo("desconto", err.Error())
			}
		}
		desconto = &v
	}

	var alvo *model.StatusDemanda
	if req.Status != nil {
		st := model.StatusDemanda(strings.TrimSpace(*req.Status))
		if !st.Valido() {
			return nil, erroCampo("status", "status desconhecido")
		}
		if st == model.StatusCancelado {
			return nil, fmt.Errorf("use o cancelamento para cancelar a demanda: %w", ErrTransicaoInvalida)
		}
		alvo = &st
	}

	var responsavelID *uuid.UUID
	if req.ResponsavelID != nil {
		rid, err := uuid.Parse(*req.ResponsavelID)
		if err != nil {
			return nil, erroCampo("responsavel_id", "uuid inválido")
		}
		if err := s.validarResponsavel(ctx, esc, rid); err != nil {
			return nil, err
		}
		responsavelID = &rid
	}

	var categoriaIDs []uuid.UUID
	if req.Categorias != nil {
		if categoriaIDs, err = parseIDs("categorias", req.Categorias); err != nil {
			return nil, err
		}
	}

	var d *model.Demanda
	var de model.StatusDemanda
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		d, err = s.repo.ObterPorIDTx(tx, esc, id)
		if err != nil {
			return err
		}
		if d.Status == model.StatusCancelado {
			return fmt.Errorf("demanda cancelada não pode ser alterada: %w", ErrConflito)
		}
		de = d.Status

		if alvo != nil && *alvo != d.Status {
			if err := validarTransicao(d.Status, *alvo); err != nil {
				return err
			}
			ok, err := s.repo.TrocarStatusTx(tx, esc, d.ID, d.Status, *alvo)
			if err != nil {
				return err
			}
			if !ok {
				return ErrStatusAlterado
			}
			d.Status = *alvo
		}

		aplicarPatch(d, req)
		if responsavelID != nil {
			d.ResponsavelID = *responsavelID
		}
		if preco != nil {
			d.Preco = *preco
		}
		if desconto != nil {
			d.Desconto = *desconto
		}
		d.Desconto = moeda.LimitarDesconto(d.Preco, d.Desconto)
		d.UpdatedAt = s.agora()

		if err := s.repo.AtualizarTx(tx, d); err != nil {
			return fmt.Errorf("atualizar demanda: %w", err)
		}

		if req.Categorias != nil {
			cats, err := s.categoriasValidas(tx, esc, categoriaIDs)
			if err != nil {
				return err
			}
			if err := s.repo.DesativarCategoriasTx(tx, d.ID); err != nil {
				return fmt.Errorf("desativar categorias: %w", err)
			}
			if err := s.repo.CriarCategoriasTx(tx, linhasCategoria(d.ID, cats)); err != nil {
				return fmt.Errorf("associar categorias: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if d.Status != de {
		s.aposTransicao(ctx, d, de, d.Status)
	}
	return s.Obter(ctx, sess, d.ID)
}

func aplicarPatch(d *model.Demanda, req dto.AtualizarDemandaRequest) {
	if req.ClienteNome != nil {
		d.ClienteNome = strings.TrimSpace(*req.ClienteNome)
	}
	if req.ClienteEmail != nil {
		d.ClienteEmail = aparar(req.ClienteEmail)
	}
	if req.ClienteTelefone != nil {
		d.ClienteTelefone = strings.TrimSpace(*req.ClienteTelefone)
	}
	if req.CpfCnpj != nil {
		d.CpfCnpj = aparar(req.CpfCnpj)
	}
	if req.Descricao != nil {
		d.Descricao = strings.TrimSpace(*req.Descricao)
	}
	if req.Observacoes != nil {
		d.Observacoes = req.Observacoes
	}
	if req.PrevisaoEntrega != nil {
		d.PrevisaoEntrega = req.PrevisaoEntrega
	}
}

// ── Status ───────────────────────────────────────────────────────────────────

// validarTransicao allows staying put or moving exactly one step forward.
func validarTransicao(de, para model.StatusDemanda) error {
	if !de.PodeIrPara(para) {
		return fmt.Errorf("%s → %s: %w", de, para, ErrTransicaoInvalida)
	}
	return nil
}

func (s *demandaService) Transicionar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, alvo model.StatusDemanda) (*dto.DemandaResponse, error) {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	esc := repository.EscopoLavanderia(lavID)

	d, err := s.repo.ObterPorID(ctx, esc, id)
	if err != nil {
		return nil, err
	}
	if err := s.transicionar(ctx, esc, d, alvo); err != nil {
		return nil, err
	}
	return s.Obter(ctx, sess, id)
}

// Avancar moves to the next status after an explicit confirmation. The
// caller's view of the current status must still be true.
func (s *demandaService) Avancar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, req dto.AvancarStatusRequest) (*dto.DemandaResponse, error) {
	if !req.Confirmar {
		return nil, erroCampo("confirmar", "confirmação obrigatória")
	}
	atual := model.StatusDemanda(req.StatusAtual)
	if !atual.Valido() {
		return nil, erroCampo("status_atual", "status desconhecido")
	}
	proximo, ok := atual.Proximo()
	if !ok {
		return nil, ErrSemProximoStatus
	}

	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return nil, err
	}
	esc := repository.EscopoLavanderia(lavID)
	d, err := s.repo.ObterPorID(ctx, esc, id)
	if err != nil {
		return nil, err
	}
	if d.Status != atual {
		return nil, ErrStatusAlterado
	}
	if err := s.transicionar(ctx, esc, d, proximo); err != nil {
		return nil, err
	}
	return s.Obter(ctx, sess, id)
}

// transicionar applies alvo to d with a compare-and-swap on d.Status.
func (s *demandaService) transicionar(ctx context.Context, esc repository.Escopo, d *model.Demanda, alvo model.StatusDemanda) error {
	if err := validarTransicao(d.Status, alvo); err != nil {
		return err
	}
	if d.Status == alvo {
		return nil
	}
	ok, err := s.repo.TrocarStatus(ctx, esc, d.ID, d.Status, alvo)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStatusAlterado
	}
	de := d.Status
	d.Status = alvo
	s.aposTransicao(ctx, d, de, alvo)
	return nil
}

// aposTransicao records the transition and schedules the delivery email.
// Notification failures never undo the transition.
func (s *demandaService) aposTransicao(ctx context.Context, d *model.Demanda, de, para model.StatusDemanda) {
	metrics.TransicoesStatus.WithLabelValues(string(de), string(para)).Inc()
	log.Info().Str("demanda_id", d.ID.String()).Str("de", string(de)).Str("para", string(para)).
		Msg("demanda: status alterado")

	if !para.Entregue() || d.ClienteEmail == nil || s.notificador == nil {
		return
	}
	if err := s.notificador.NotificarEntrega(ctx, d.LavanderiaID, d.ID); err != nil {
		log.Warn().Err(err).Str("demanda_id", d.ID.String()).Msg("demanda: falha ao agendar notificação de entrega")
	}
}

// Cancelar is a soft cancel: the row and its associations stay.
func (s *demandaService) Cancelar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, req dto.CancelarDemandaRequest) error {
	lavID, err := lavanderiaDaSessao(sess)
	if err != nil {
		return err
	}
	esc := repository.EscopoLavanderia(lavID)
	d, err := s.repo.ObterPorID(ctx, esc, id)
	if err != nil {
		return err
	}
	if !d.Status.Cancelavel() {
		return fmt.Errorf("demanda %s não pode ser cancelada: %w", d.Status, ErrTransicaoInvalida)
	}
	ok, err := s.repo.Cancelar(ctx, esc, id, aparar(req.Motivo))
	if err != nil {
		return err
	}
	if !ok {
		return ErrStatusAlterado
	}
	metrics.TransicoesStatus.WithLabelValues(string(d.Status), string(model.StatusCancelado)).Inc()
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *demandaService) validarResponsavel(ctx context.Context, esc repository.Escopo, id uuid.UUID) error {
	u, err := s.usuarios.ObterPorID(ctx, esc, id)
	if errors.Is(err, repository.ErrNaoEncontrado) || (err == nil && !u.Ativo) {
		return erroCampo("responsavel_id", "responsável inexistente, inativo ou de outra lavanderia")
	}
	return err
}

func (s *demandaService) categoriasValidas(tx *gorm.DB, esc repository.Escopo, ids []uuid.UUID) ([]model.Categoria, error) {
	cats, err := s.categorias.ObterPorIDsTx(tx, esc, ids)
	if err != nil {
		return nil, err
	}
	if len(cats) != len(ids) {
		return nil, erroCampo("categorias", "categoria inexistente ou de outra lavanderia")
	}
	return cats, nil
}

func (s *demandaService) formasValidas(tx *gorm.DB, esc repository.Escopo, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	formas, err := s.formas.ObterPorIDsTx(tx, esc, ids)
	if err != nil {
		return err
	}
	if len(formas) != len(ids) {
		return erroCampo("formas_pagamento", "forma de pagamento inexistente ou de outra lavanderia")
	}
	for _, f := range formas {
		if f.Status != model.SoftAtivo {
			return erroCampo("formas_pagamento", "forma de pagamento desativada: "+f.Sigla)
		}
	}
	return nil
}

func (s *demandaService) previsaoPadrao(dias int) time.Time {
	if dias <= 0 {
		dias = 3
	}
	return s.agora().AddDate(0, 0, dias)
}

func linhasCategoria(demandaID uuid.UUID, cats []model.Categoria) []model.DemandaCategoria {
	rows := make([]model.DemandaCategoria, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, model.DemandaCategoria{
			DemandaID:   demandaID,
			CategoriaID: c.ID,
			Nome:        c.Nome,
			Status:      model.SoftAtivo,
		})
	}
	return rows
}

// gerarCodigo builds AAAAMMDD-XXXXXXXX from the date and a random UUID. The
// per-tenant unique index rejects the rare collision.
func gerarCodigo(t time.Time) string {
	sufixo := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return t.Format("20060102") + "-" + sufixo
}

// parseIDs parses and dedupes ids keeping the first occurrence order.
func parseIDs(campo string, raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	vistos := make(map[uuid.UUID]bool, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, erroCampo(campo, "uuid inválido: "+r)
		}
		if !vistos[id] {
			vistos[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func paginar(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = limitePadrao
	}
	if limit > limiteMaximo {
		limit = limiteMaximo
	}
	return page, limit
}

// aparar trims s and turns blank into nil.
func aparar(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func mapDemandaCategoria(c model.DemandaCategoria) dto.DemandaCategoriaResponse {
	return dto.DemandaCategoriaResponse{
		ID:          c.ID.String(),
		CategoriaID: c.CategoriaID.String(),
		Nome:        c.Nome,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}

func mapDemanda(d model.Demanda) dto.DemandaResponse {
	resp := dto.DemandaResponse{
		ID:                 d.ID.String(),
		CodigoUnico:        d.CodigoUnico,
		LavanderiaID:       d.LavanderiaID.String(),
		ClienteNome:        d.ClienteNome,
		ClienteEmail:       d.ClienteEmail,
		ClienteTelefone:    d.ClienteTelefone,
		CpfCnpj:            d.CpfCnpj,
		Descricao:          d.Descricao,
		Observacoes:        d.Observacoes,
		Preco:              d.Preco.StringFixed(2),
		Desconto:           d.Desconto.StringFixed(2),
		Total:              d.Total().StringFixed(2),
		Status:             string(d.Status),
		StatusRotulo:       d.Status.Rotulo(),
		ResponsavelID:      d.ResponsavelID.String(),
		PrevisaoEntrega:    d.PrevisaoEntrega,
		MotivoCancelamento: d.MotivoCancelamento,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		Categorias:         make([]dto.DemandaCategoriaResponse, 0, len(d.Categorias)),
	}
	if prox, ok := d.Status.Proximo(); ok {
		p := string(prox)
		resp.ProximoStatus = &p
	}
	for _, c := range d.Categorias {
		resp.Categorias = append(resp.Categorias, mapDemandaCategoria(c))
	}
	for _, f := range d.Fotos {
		resp.Fotos = append(resp.Fotos, dto.DemandaFotoResponse{ID: f.ID.String(), Imagem: f.Imagem})
	}
	for _, p := range d.Pagamentos {
		resp.Pagamentos = append(resp.Pagamentos, dto.DemandaPagamentoResponse{ID: p.ID.String(), FormaPagamentoID: p.FormaPagamentoID.String()})
	}
	return resp
}
