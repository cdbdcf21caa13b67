package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"lavanderia/internal/dto"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codigoRe = regexp.MustCompile(`^\d{8}-[0-9A-F]{8}$`)

func novaDemandaReq(cats ...uuid.UUID) dto.CriarDemandaRequest {
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.String())
	}
	return dto.CriarDemandaRequest{
		ClienteNome:     "Maria Souza",
		ClienteEmail:    testutil.Ptr("maria@cliente.com"),
		ClienteTelefone: "11988887777",
		Descricao:       "Lavar edredom casal",
		Preco:           "150,00",
		Categorias:      ids,
	}
}

func TestDemandaCriar_GravaTudoNumaTransacao(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "EDR", "Edredom", "80.00")
	pix := testutil.SeedFormaPagamento(t, env.db, env.lav.ID, "Pix", "PIX")

	req := novaDemandaReq(cat.ID, cat.ID)
	req.Desconto = "200"
	req.Fotos = []string{"data:image/png;base64,AAAA"}
	req.FormasPagamento = []string{pix.ID.String()}

	antes := time.Now()
	resp, err := svc.Criar(ctx, sessaoDe(env.operador), req)
	require.NoError(t, err)

	assert.Regexp(t, codigoRe, resp.CodigoUnico)
	assert.Equal(t, string(model.StatusNovo), resp.Status)
	assert.Equal(t, "150.00", resp.Preco)
	assert.Equal(t, "150.00", resp.Desconto, "discount is clamped to the price")
	assert.Equal(t, "0.00", resp.Total)
	assert.Equal(t, env.operador.ID.String(), resp.ResponsavelID)
	require.NotNil(t, resp.ProximoStatus)
	assert.Equal(t, string(model.StatusEmAndamento), *resp.ProximoStatus)

	require.Len(t, resp.Categorias, 1, "duplicate category ids are collapsed")
	assert.Equal(t, "Edredom", resp.Categorias[0].Nome)
	assert.Len(t, resp.Fotos, 1)
	assert.Len(t, resp.Pagamentos, 1)

	require.NotNil(t, resp.PrevisaoEntrega)
	esperado := antes.AddDate(0, 0, env.lav.PrazoEntregaDias)
	assert.WithinDuration(t, esperado, *resp.PrevisaoEntrega, time.Minute)
}

func TestDemandaCriar_CategoriaDeOutraLavanderiaNaoGravaNada(t *testing.T) {
	env := novoAmbiente(t)
	svc := env.demandaService(nil)
	propria := testutil.SeedCategoria(t, env.db, env.lav.ID, "C1", "Camisa", "10")
	alheia := testutil.SeedCategoria(t, env.db, env.outra.ID, "C1", "Camisa", "10")

	_, err := svc.Criar(context.Background(), sessaoDe(env.operador), novaDemandaReq(propria.ID, alheia.ID))
	var verr *ErroValidacao
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "categorias")

	assert.Zero(t, contar(t, env.db, &model.Demanda{}, ""))
	assert.Zero(t, contar(t, env.db, &model.DemandaCategoria{}, ""))
}

func TestDemandaCriar_FormaPagamentoDesativada(t *testing.T) {
	env := novoAmbiente(t)
	svc := env.demandaService(nil)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "C1", "Camisa", "10")
	forma := testutil.SeedFormaPagamento(t, env.db, env.lav.ID, "Cheque", "CHQ")
	require.NoError(t, env.db.Model(forma).Update("status", model.SoftDesativado).Error)

	req := novaDemandaReq(cat.ID)
	req.FormasPagamento = []string{forma.ID.String()}
	_, err := svc.Criar(context.Background(), sessaoDe(env.operador), req)
	var verr *ErroValidacao
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "formas_pagamento")
	assert.Zero(t, contar(t, env.db, &model.Demanda{}, ""))
}

func TestDemandaCriar_ResponsavelDeveSerDaLavanderia(t *testing.T) {
	env := novoAmbiente(t)
	svc := env.demandaService(nil)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "C1", "Camisa", "10")
	estranho := testutil.SeedUsuario(t, env.db, "Estranho", model.PapelOperator, &env.outra.ID)

	req := novaDemandaReq(cat.ID)
	req.ResponsavelID = estranho.ID.String()
	_, err := svc.Criar(context.Background(), sessaoDe(env.operador), req)
	var verr *ErroValidacao
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "responsavel_id")

	req.ResponsavelID = env.manager.ID.String()
	resp, err := svc.Criar(context.Background(), sessaoDe(env.operador), req)
	require.NoError(t, err)
	assert.Equal(t, env.manager.ID.String(), resp.ResponsavelID)
}

func TestDemandaCriar_SemLavanderiaNaSessao(t *testing.T) {
	env := novoAmbiente(t)
	svc := env.demandaService(nil)
	_, err := svc.Criar(context.Background(), sessaoDe(env.superAdmin), novaDemandaReq(uuid.New()))
	assert.ErrorIs(t, err, ErrProibido)
}

func TestDemandaCriar_PrecoInvalido(t *testing.T) {
	env := novoAmbiente(t)
	svc := env.demandaService(nil)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "C1", "Camisa", "10")
	req := novaDemandaReq(cat.ID)
	req.Preco = "cento e cinquenta"

	_, err := svc.Criar(context.Background(), sessaoDe(env.operador), req)
	var verr *ErroValidacao
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "preco")
}

func TestDemandaAtualizar_TrocaCategorias(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	camisa := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")
	calca := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAL", "Calça", "12")
	tapete := testutil.SeedCategoria(t, env.db, env.lav.ID, "TAP", "Tapete", "90")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(camisa.ID, calca.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	// no categorias field: selection untouched
	resp, err := svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{Observacoes: testutil.Ptr("manchas na gola")})
	require.NoError(t, err)
	assert.Len(t, resp.Categorias, 2)
	assert.Equal(t, "manchas na gola", *resp.Observacoes)

	resp, err = svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{Categorias: []string{tapete.ID.String()}})
	require.NoError(t, err)
	require.Len(t, resp.Categorias, 1)
	assert.Equal(t, "Tapete", resp.Categorias[0].Nome)

	hist, err := svc.HistoricoCategorias(ctx, sess, id)
	require.NoError(t, err)
	assert.Len(t, hist, 3)
	ativos := 0
	for _, h := range hist {
		if h.Status == model.SoftAtivo {
			ativos++
		}
	}
	assert.Equal(t, 1, ativos)
}

func TestDemandaAtualizar_CategoriaInvalidaDesfazTudo(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")
	alheia := testutil.SeedCategoria(t, env.db, env.outra.ID, "X", "Alheia", "10")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	_, err = svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{
		ClienteNome: testutil.Ptr("Nome Novo"),
		Categorias:  []string{alheia.ID.String()},
	})
	var verr *ErroValidacao
	require.ErrorAs(t, err, &verr)

	atual, err := svc.Obter(ctx, sess, id)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", atual.ClienteNome)
	require.Len(t, atual.Categorias, 1)
	assert.Equal(t, "Camisa", atual.Categorias[0].Nome)
}

func TestDemandaAtualizar_StatusSoAvancaUmPasso(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	notif := &notificadorStub{}
	svc := env.demandaService(notif)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	_, err = svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{Status: testutil.Ptr(string(model.StatusPendenteInsumo))})
	assert.ErrorIs(t, err, ErrTransicaoInvalida)

	_, err = svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{Status: testutil.Ptr(string(model.StatusCancelado))})
	assert.ErrorIs(t, err, ErrTransicaoInvalida)

	resp, err := svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{
		Status: testutil.Ptr(string(model.StatusEmAndamento)),
		Preco:  testutil.Ptr("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusEmAndamento), resp.Status)
	assert.Equal(t, "50.00", resp.Preco)
	assert.Zero(t, notif.total())
}

func TestDemandaAvancar_CadeiaCompleta(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	notif := &notificadorStub{}
	svc := env.demandaService(notif)
	sess := sessaoDe(env.manager)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	atual := model.StatusNovo
	for _, esperado := range model.FluxoStatus[1:] {
		resp, err := svc.Avancar(ctx, sess, id, dto.AvancarStatusRequest{StatusAtual: string(atual), Confirmar: true})
		require.NoError(t, err)
		assert.Equal(t, string(esperado), resp.Status)
		atual = esperado
	}

	_, err = svc.Avancar(ctx, sess, id, dto.AvancarStatusRequest{StatusAtual: string(model.StatusEntregueTotal), Confirmar: true})
	assert.ErrorIs(t, err, ErrSemProximoStatus)

	// entregue_parcial and entregue_total both notify a client with email
	assert.Equal(t, 2, notif.total())
}

func TestDemandaAvancar_StatusDesatualizado(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	req := dto.AvancarStatusRequest{StatusAtual: string(model.StatusNovo), Confirmar: true}
	_, err = svc.Avancar(ctx, sess, id, req)
	require.NoError(t, err)

	// a second click with the same view must not advance twice
	_, err = svc.Avancar(ctx, sess, id, req)
	assert.ErrorIs(t, err, ErrStatusAlterado)
	assert.ErrorIs(t, err, ErrConflito)

	_, err = svc.Avancar(ctx, sess, id, dto.AvancarStatusRequest{StatusAtual: string(model.StatusEmAndamento)})
	var verr *ErroValidacao
	assert.ErrorAs(t, err, &verr)

	got, err := svc.Obter(ctx, sess, id)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusEmAndamento), got.Status)
}

func TestDemandaTransicionar(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")
	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	resp, err := svc.Transicionar(ctx, sess, id, model.StatusNovo)
	require.NoError(t, err, "same status is a no-op")
	assert.Equal(t, string(model.StatusNovo), resp.Status)

	_, err = svc.Transicionar(ctx, sess, id, model.StatusEntregueTotal)
	assert.ErrorIs(t, err, ErrTransicaoInvalida)

	resp, err = svc.Transicionar(ctx, sess, id, model.StatusEmAndamento)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusEmAndamento), resp.Status)
}

func TestDemandaNotificacaoFalhaNaoDesfazTransicao(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	notif := &notificadorStub{err: errors.New("redis fora")}
	svc := env.demandaService(notif)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")
	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)
	require.NoError(t, env.db.Model(&model.Demanda{}).Where("id = ?", id).Update("status", model.StatusPendenteInsumo).Error)

	resp, err := svc.Transicionar(ctx, sess, id, model.StatusEntregueParcial)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusEntregueParcial), resp.Status)
	assert.Equal(t, 1, notif.total())
}

func TestDemandaCancelar(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	require.NoError(t, svc.Cancelar(ctx, sess, id, dto.CancelarDemandaRequest{Motivo: testutil.Ptr("cliente desistiu")}))

	got, err := svc.Obter(ctx, sess, id)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCancelado), got.Status)
	require.NotNil(t, got.MotivoCancelamento)
	assert.Equal(t, "cliente desistiu", *got.MotivoCancelamento)
	assert.Nil(t, got.ProximoStatus)
	assert.Len(t, got.Categorias, 1, "associations survive a cancel")

	err = svc.Cancelar(ctx, sess, id, dto.CancelarDemandaRequest{})
	assert.ErrorIs(t, err, ErrTransicaoInvalida)

	_, err = svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{ClienteNome: testutil.Ptr("Outro")})
	assert.ErrorIs(t, err, ErrConflito)

	lista, err := svc.Listar(ctx, sess, dto.DemandaFilter{})
	require.NoError(t, err)
	assert.Zero(t, lista.Total)
}

func TestDemandaCancelar_EntregueRecusado(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")
	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)
	require.NoError(t, env.db.Model(&model.Demanda{}).Where("id = ?", id).Update("status", model.StatusEntregueTotal).Error)

	err = svc.Cancelar(ctx, sess, id, dto.CancelarDemandaRequest{})
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

func TestDemandaListar_FiltrosEPaginacao(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		d, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
		require.NoError(t, err)
		ids = append(ids, uuid.MustParse(d.ID))
	}
	require.NoError(t, env.db.Model(&model.Demanda{}).Where("id = ?", ids[0]).Update("status", model.StatusEntregueTotal).Error)

	for _, st := range []string{"", "all"} {
		lista, err := svc.Listar(ctx, sess, dto.DemandaFilter{Status: st})
		require.NoError(t, err)
		assert.EqualValues(t, 2, lista.Total, "status %q hides delivered demands", st)
		assert.Equal(t, 50, lista.Limit)
	}

	lista, err := svc.Listar(ctx, sess, dto.DemandaFilter{Status: string(model.StatusEntregueTotal)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, lista.Total)

	lista, err = svc.Listar(ctx, sess, dto.DemandaFilter{Limit: 1000, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 200, lista.Limit)

	lista, err = svc.Listar(ctx, sess, dto.DemandaFilter{Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.Len(t, lista.Data, 1)
	assert.Equal(t, 2, lista.TotalPages)

	_, err = svc.Listar(ctx, sess, dto.DemandaFilter{Status: "perdido"})
	var verr *ErroValidacao
	assert.ErrorAs(t, err, &verr)

	// other tenant sees nothing
	estranho := testutil.SeedUsuario(t, env.db, "Estranho", model.PapelOperator, &env.outra.ID)
	lista, err = svc.Listar(ctx, sessaoDe(estranho), dto.DemandaFilter{})
	require.NoError(t, err)
	assert.Zero(t, lista.Total)
	_, err = svc.Obter(ctx, sessaoDe(estranho), ids[1])
	assert.ErrorIs(t, err, ErrNaoEncontrado)
}

func TestDemandaCategoriaExcluidaMantemNome(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	cats := NewCategoriaService(repository.NewCategoriaRepository(env.db))
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	require.NoError(t, cats.Excluir(ctx, sessaoDe(env.admin), cat.ID))

	got, err := svc.Obter(ctx, sess, uuid.MustParse(criada.ID))
	require.NoError(t, err)
	require.Len(t, got.Categorias, 1)
	assert.Equal(t, "Camisa", got.Categorias[0].Nome)
}

func TestDemandaCategoriaRenomeadaMantemNome(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	cats := NewCategoriaService(repository.NewCategoriaRepository(env.db))
	sess := sessaoDe(env.operador)
	cat := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(cat.ID))
	require.NoError(t, err)
	_, err = cats.Atualizar(ctx, sessaoDe(env.admin), cat.ID, dto.AtualizarCategoriaRequest{Nome: testutil.Ptr("Camisa Social")})
	require.NoError(t, err)

	got, err := svc.Obter(ctx, sess, uuid.MustParse(criada.ID))
	require.NoError(t, err)
	require.Len(t, got.Categorias, 1)
	assert.Equal(t, "Camisa", got.Categorias[0].Nome)
}

func TestDemandaAtualizar_MesmaSelecaoIdempotente(t *testing.T) {
	env := novoAmbiente(t)
	ctx := context.Background()
	svc := env.demandaService(nil)
	sess := sessaoDe(env.operador)
	camisa := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAM", "Camisa", "10")
	calca := testutil.SeedCategoria(t, env.db, env.lav.ID, "CAL", "Calça", "12")

	criada, err := svc.Criar(ctx, sess, novaDemandaReq(camisa.ID))
	require.NoError(t, err)
	id := uuid.MustParse(criada.ID)

	selecao := []string{camisa.ID.String(), calca.ID.String()}
	for i := 0; i < 2; i++ {
		resp, err := svc.Atualizar(ctx, sess, id, dto.AtualizarDemandaRequest{Categorias: selecao})
		require.NoError(t, err)
		require.Len(t, resp.Categorias, 2)
		assert.Equal(t, "Calça", resp.Categorias[0].Nome)
		assert.Equal(t, "Camisa", resp.Categorias[1].Nome)
	}
	assert.EqualValues(t, 2, contar(t, env.db, &model.DemandaCategoria{}, "demanda_id = ? AND status = ?", id, model.SoftAtivo))
}

func TestGerarCodigo(t *testing.T) {
	dia := time.Date(2026, 2, 9, 15, 0, 0, 0, time.UTC)
	a, b := gerarCodigo(dia), gerarCodigo(dia)
	assert.Regexp(t, codigoRe, a)
	assert.Equal(t, "20260209", a[:8])
	assert.NotEqual(t, a, b)
}

func TestParseIDs(t *testing.T) {
	id := uuid.New()
	out, err := parseIDs("x", []string{id.String(), id.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, out)

	_, err = parseIDs("x", []string{"nope"})
	var verr *ErroValidacao
	assert.ErrorAs(t, err, &verr)
}
