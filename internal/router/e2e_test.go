//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lavanderia/internal/config"
	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/service"
	"lavanderia/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

type e2eEnv struct {
	*app
	rdb *redis.Client
	cfg *config.Config
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("lavanderia_test"),
		tcPostgres.WithUsername("lavanderia"),
		tcPostgres.WithPassword("lavanderia"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		ResetTokenMinutes:  30,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
	}

	require.NoError(t, infra.RunMigrations(cfg.DatabaseURL))
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	a := &app{
		t:  t,
		db: db,
		engine: New(cfg, db, rdb, Deps{
			Revogacao:   infra.NewListaRevogacao(rdb),
			Notificador: worker.NewDispatcher(rdb),
			BcryptCusto: bcrypt.MinCost,
		}),
		provedor: service.NewProvedorLocal(repository.NewIdentidadeRepository(db), bcrypt.MinCost),
	}
	return &e2eEnv{app: a, rdb: rdb, cfg: cfg}
}

func TestE2E_CicloCompletoDaDemanda(t *testing.T) {
	env := setupE2E(t)
	ctx := context.Background()

	root := env.login(env.conta("Root", model.PapelSuperAdmin, nil))

	w := env.do(http.MethodPost, "/v1/lavanderias", root.AccessToken, map[string]any{
		"nome": "Lava Bem", "endereco": "Rua A, 10", "telefone": "1133334444", "email": "contato@lavabem.com",
		"prazo_entrega_dias": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lavID := decode[map[string]any](t, w)["id"].(string)

	w = env.do(http.MethodPost, "/v1/usuarios", root.AccessToken, map[string]any{
		"nome": "Alice Admin", "email": "alice@lavabem.com", "senha": "Senha@123", "papel": "admin", "lavanderia_id": lavID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	admin := env.login("alice@lavabem.com")

	w = env.do(http.MethodPost, "/v1/usuarios", admin.AccessToken, map[string]any{
		"nome": "Olga Operadora", "email": "olga@lavabem.com", "senha": "Senha@123", "papel": "operator",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	oper := env.login("olga@lavabem.com")

	w = env.do(http.MethodPost, "/v1/categorias", admin.AccessToken, map[string]any{
		"codigo": "EDR", "nome": "Edredom", "unidade": "PC", "preco": "R$ 1.234,50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	catID := decode[map[string]any](t, w)["id"].(string)

	w = env.do(http.MethodPost, "/v1/demandas", oper.AccessToken, map[string]any{
		"cliente_nome": "Maria Souza", "cliente_email": "maria@cliente.com", "cliente_telefone": "11999998888",
		"descricao": "Edredom king", "preco": "1.234,50", "categorias": []string{catID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	demanda := decode[map[string]any](t, w)
	id := demanda["id"].(string)
	assert.Regexp(t, `^\d{8}-[0-9A-F]{8}$`, demanda["codigo_unico"])

	previsao, err := time.Parse(time.RFC3339, demanda["previsao_entrega"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 2), previsao, time.Minute)

	for _, atual := range []string{"novo", "em_andamento", "pendente_insumo"} {
		w = env.do(http.MethodPost, "/v1/demandas/"+id+"/avancar", oper.AccessToken, map[string]any{"status_atual": atual, "confirmar": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// reaching entregue_parcial queues exactly one delivery notification
	n, err := env.rdb.LLen(ctx, worker.QueueNotificacao).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	w = env.do(http.MethodGet, "/v1/dashboard", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, dash["por_status"].(map[string]any)["entregue_parcial"])
}

func TestE2E_LogoutValeParaOutrasInstancias(t *testing.T) {
	env := setupE2E(t)
	tk := env.login(env.conta("Root", model.PapelSuperAdmin, nil))

	// a second instance with its own local set, sharing Redis
	outra := New(env.cfg, env.db, env.rdb, Deps{BcryptCusto: bcrypt.MinCost})

	w := env.do(http.MethodPost, "/v1/auth/logout", tk.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	env.engine = outra
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/v1/usuarios/me", tk.AccessToken, nil).Code)
}

func TestE2E_Health(t *testing.T) {
	env := setupE2E(t)
	w := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"connected"}`, w.Body.String())
}
