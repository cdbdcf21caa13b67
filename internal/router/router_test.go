package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"lavanderia/internal/config"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/service"
	"lavanderia/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const senha = "Senha@123"

func init() { gin.SetMode(gin.TestMode) }

// ipSeq gives every request its own client IP so the per-IP limiters never
// interfere across tests.
var ipSeq atomic.Int64

type app struct {
	t        *testing.T
	db       *gorm.DB
	engine   *gin.Engine
	provedor service.ProvedorIdentidade
	lav      *model.Lavanderia
	outra    *model.Lavanderia
}

func novoApp(t *testing.T) *app {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "segredo-de-teste",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
		ResetTokenMinutes:  30,
	}
	a := &app{
		t:        t,
		db:       db,
		engine:   New(cfg, db, nil, Deps{BcryptCusto: bcrypt.MinCost}),
		provedor: service.NewProvedorLocal(repository.NewIdentidadeRepository(db), bcrypt.MinCost),
		lav:      testutil.SeedLavanderia(t, db, "Lava Rapido"),
		outra:    testutil.SeedLavanderia(t, db, "Outra Lavanderia"),
	}
	return a
}

// conta registers an identity + profile and returns its email.
func (a *app) conta(nome, papel string, lavID *uuid.UUID) string {
	a.t.Helper()
	email := strings.ToLower(strings.ReplaceAll(nome, " ", ".")) + "@exemplo.com"
	uid, err := a.provedor.Registrar(context.Background(), email, senha)
	require.NoError(a.t, err)
	require.NoError(a.t, a.db.Create(&model.Usuario{
		AuthUID: uid, Nome: nome, Email: email, Papel: papel, LavanderiaID: lavID, Ativo: true,
	}).Error)
	return email
}

func (a *app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	n := ipSeq.Add(1)
	req.RemoteAddr = fmt.Sprintf("10.%d.%d.%d:40000", (n>>16)&0xff, (n>>8)&0xff, n&0xff)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (a *app) login(email string) tokens {
	a.t.Helper()
	w := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "senha": senha})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var tk tokens
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &tk))
	return tk
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEMetrics(t *testing.T) {
	a := novoApp(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)

	w = a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lavanderia_http_requests_total")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRotasProtegidasExigemToken(t *testing.T) {
	a := novoApp(t)
	for _, p := range []string{"/v1/demandas", "/v1/usuarios/me", "/v1/dashboard", "/v1/lavanderias"} {
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, p, "", nil).Code, p)
	}
}

func TestLoginFalhaSemEmitirToken(t *testing.T) {
	a := novoApp(t)
	email := a.conta("Olga Operadora", model.PapelOperator, &a.lav.ID)

	w := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "senha": "Errada@123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "access_token")

	require.NoError(t, a.db.Model(&model.Usuario{}).Where("email = ?", email).Update("ativo", false).Error)
	w = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "senha": senha})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEncerraSessao(t *testing.T) {
	a := novoApp(t)
	tk := a.login(a.conta("Olga Operadora", model.PapelOperator, &a.lav.ID))

	w := a.do(http.MethodGet, "/v1/usuarios/me", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operator", decode[map[string]any](t, w)["papel"])

	w = a.do(http.MethodPost, "/v1/auth/logout", tk.AccessToken, map[string]string{"refresh_token": tk.RefreshToken})
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/usuarios/me", tk.AccessToken, nil).Code)
	w = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": tk.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotaciona(t *testing.T) {
	a := novoApp(t)
	tk := a.login(a.conta("Marcos Gerente", model.PapelManager, &a.lav.ID))

	w := a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": tk.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	novo := decode[tokens](t, w)
	assert.NotEmpty(t, novo.AccessToken)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/usuarios/me", novo.AccessToken, nil).Code)

	w = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": tk.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEsqueciSenhaNaoRevelaConta(t *testing.T) {
	a := novoApp(t)
	email := a.conta("Alice Admin", model.PapelAdmin, &a.lav.ID)

	for _, e := range []string{email, "ninguem@exemplo.com"} {
		w := a.do(http.MethodPost, "/v1/auth/esqueci-senha", "", map[string]string{"email": e})
		assert.Equal(t, http.StatusAccepted, w.Code)
	}
	var n int64
	require.NoError(t, a.db.Model(&model.SolicitacaoSenha{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestLavanderias_PapeisEIsolamento(t *testing.T) {
	a := novoApp(t)
	root := a.login(a.conta("Root", model.PapelSuperAdmin, nil))
	admin := a.login(a.conta("Alice Admin", model.PapelAdmin, &a.lav.ID))

	nova := map[string]any{
		"nome": "Lavanderia Nova", "endereco": "Av. Central, 1", "telefone": "1140028922", "email": "nova@exemplo.com",
	}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/lavanderias", admin.AccessToken, nova).Code)
	w := a.do(http.MethodPost, "/v1/lavanderias", root.AccessToken, nova)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/v1/lavanderias", root.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 3)

	w = a.do(http.MethodGet, "/v1/lavanderias", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lista := decode[[]map[string]any](t, w)
	require.Len(t, lista, 1)
	assert.Equal(t, a.lav.ID.String(), lista[0]["id"])

	w = a.do(http.MethodGet, "/v1/lavanderias/"+a.outra.ID.String(), admin.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodDelete, "/v1/lavanderias/"+a.lav.ID.String(), root.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUsuarios_AdminCriaNaPropriaLavanderia(t *testing.T) {
	a := novoApp(t)
	admin := a.login(a.conta("Alice Admin", model.PapelAdmin, &a.lav.ID))
	oper := a.login(a.conta("Olga Operadora", model.PapelOperator, &a.lav.ID))

	req := map[string]any{"nome": "Paulo Passador", "email": "paulo@exemplo.com", "senha": "Senha@123", "papel": "operator"}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/usuarios", oper.AccessToken, req).Code)

	w := a.do(http.MethodPost, "/v1/usuarios", admin.AccessToken, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	criado := decode[map[string]any](t, w)
	assert.Equal(t, a.lav.ID.String(), criado["lavanderia_id"])

	// the new user can log in right away
	paulo := a.login("paulo@exemplo.com")
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/usuarios/me", paulo.AccessToken, nil).Code)

	req["email"] = "fraca@exemplo.com"
	req["senha"] = "fraca"
	w = a.do(http.MethodPost, "/v1/usuarios", admin.AccessToken, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodDelete, "/v1/usuarios/"+criado["id"].(string), admin.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "paulo@exemplo.com", "senha": senha})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// tokens issued before the deactivation stop working too
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/usuarios/me", paulo.AccessToken, nil).Code)
}

func TestFluxoDemanda(t *testing.T) {
	a := novoApp(t)
	admin := a.login(a.conta("Alice Admin", model.PapelAdmin, &a.lav.ID))
	oper := a.login(a.conta("Olga Operadora", model.PapelOperator, &a.lav.ID))
	gerente := a.login(a.conta("Marcos Gerente", model.PapelManager, &a.lav.ID))

	// catalog is written by the admin only
	cat := map[string]any{"codigo": "LAV", "nome": "Lavagem", "unidade": "KG_ROUPA", "preco": "12,50"}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/categorias", oper.AccessToken, cat).Code)
	w := a.do(http.MethodPost, "/v1/categorias", admin.AccessToken, cat)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	catID := decode[map[string]any](t, w)["id"].(string)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/v1/categorias", admin.AccessToken, cat).Code)

	w = a.do(http.MethodGet, "/v1/categorias", oper.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(http.MethodPost, "/v1/formas-pagamento", admin.AccessToken, map[string]any{"descricao": "Pix", "sigla": "PIX"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	formaID := decode[map[string]any](t, w)["id"].(string)

	demanda := map[string]any{
		"cliente_nome":     "Maria Souza",
		"cliente_email":    "maria@cliente.com",
		"cliente_telefone": "11999998888",
		"descricao":        "Edredom casal",
		"preco":            "150,00",
		"desconto":         "10",
		"categorias":       []string{catID},
		"formas_pagamento": []string{formaID},
	}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/demandas", admin.AccessToken, demanda).Code)
	w = a.do(http.MethodPost, "/v1/demandas", oper.AccessToken, demanda)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	criada := decode[map[string]any](t, w)
	id := criada["id"].(string)
	assert.Equal(t, "novo", criada["status"])
	assert.Equal(t, "140.00", criada["total"])

	// advance needs the status the caller saw
	w = a.do(http.MethodPost, "/v1/demandas/"+id+"/avancar", oper.AccessToken, map[string]any{"status_atual": "em_andamento", "confirmar": true})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = a.do(http.MethodPost, "/v1/demandas/"+id+"/avancar", oper.AccessToken, map[string]any{"status_atual": "novo", "confirmar": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "em_andamento", decode[map[string]any](t, w)["status"])

	// skipping a step is refused
	w = a.do(http.MethodPatch, "/v1/demandas/"+id+"/status", gerente.AccessToken, map[string]any{"status": "entregue_total"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = a.do(http.MethodPatch, "/v1/demandas/"+id+"/status", gerente.AccessToken, map[string]any{"status": "pendente_insumo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/v1/demandas?status=all", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["total"])

	w = a.do(http.MethodGet, "/v1/demandas/"+id+"/nota", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = a.do(http.MethodGet, "/v1/demandas/"+id+"/historico-categorias", oper.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(http.MethodGet, "/v1/dashboard", oper.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["total"])

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/relatorios/demandas", oper.AccessToken, nil).Code)
	w = a.do(http.MethodGet, "/v1/relatorios/demandas", gerente.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["quantidade"])

	// cancel keeps the row
	w = a.do(http.MethodDelete, "/v1/demandas/"+id, oper.AccessToken, map[string]string{"motivo": "cliente desistiu"})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/v1/demandas/"+id, oper.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelado", decode[map[string]any](t, w)["status"])
	assert.Equal(t, http.StatusConflict, a.do(http.MethodDelete, "/v1/demandas/"+id, oper.AccessToken, nil).Code)
}

func TestDemandas_OutraLavanderiaInvisivel(t *testing.T) {
	a := novoApp(t)
	cat := testutil.SeedCategoria(t, a.db, a.lav.ID, "LAV", "Lavagem", "10.00")
	oper := a.login(a.conta("Olga Operadora", model.PapelOperator, &a.lav.ID))
	intruso := a.login(a.conta("Ivo Intruso", model.PapelOperator, &a.outra.ID))

	w := a.do(http.MethodPost, "/v1/demandas", oper.AccessToken, map[string]any{
		"cliente_nome": "Maria Souza", "cliente_telefone": "11999998888", "descricao": "Camisas",
		"preco": "30.00", "categorias": []string{cat.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]any](t, w)["id"].(string)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/demandas/"+id, intruso.AccessToken, nil).Code)
	w = a.do(http.MethodPost, "/v1/demandas/"+id+"/avancar", intruso.AccessToken, map[string]any{"status_atual": "novo", "confirmar": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the foreign tenant cannot use this tenant's categories either
	w = a.do(http.MethodPost, "/v1/demandas", intruso.AccessToken, map[string]any{
		"cliente_nome": "Joao", "cliente_telefone": "11999998888", "descricao": "Calças",
		"preco": "30.00", "categorias": []string{cat.ID.String()},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
