package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"lavanderia/internal/config"
	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"
	"lavanderia/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const senhaTeste = "Senha@123"

// ambiente is a tenant with one user per role on a fresh database.
type ambiente struct {
	db         *gorm.DB
	lav        *model.Lavanderia
	outra      *model.Lavanderia
	superAdmin *model.Usuario
	admin      *model.Usuario
	manager    *model.Usuario
	operador   *model.Usuario
	provedor   ProvedorIdentidade
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	db := testutil.NewDB(t)
	env := &ambiente{
		db:       db,
		lav:      testutil.SeedLavanderia(t, db, "Lava Rapido"),
		outra:    testutil.SeedLavanderia(t, db, "Outra Lavanderia"),
		provedor: NewProvedorLocal(repository.NewIdentidadeRepository(db), bcrypt.MinCost),
	}
	env.superAdmin = env.conta(t, "Root", model.PapelSuperAdmin, nil)
	env.admin = env.conta(t, "Alice Admin", model.PapelAdmin, &env.lav.ID)
	env.manager = env.conta(t, "Marcos Gerente", model.PapelManager, &env.lav.ID)
	env.operador = env.conta(t, "Olga Operadora", model.PapelOperator, &env.lav.ID)
	return env
}

// conta registers an identity with senhaTeste and a matching profile.
func (e *ambiente) conta(t *testing.T, nome, papel string, lavID *uuid.UUID) *model.Usuario {
	t.Helper()
	email := strings.ToLower(strings.ReplaceAll(nome, " ", ".")) + "@exemplo.com"
	uid, err := e.provedor.Registrar(context.Background(), email, senhaTeste)
	require.NoError(t, err)
	u := &model.Usuario{AuthUID: uid, Nome: nome, Email: email, Papel: papel, LavanderiaID: lavID, Ativo: true}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func sessaoDe(u *model.Usuario) sessao.Sessao {
	return sessao.Sessao{UsuarioID: u.ID, Papel: u.Papel, LavanderiaID: u.LavanderiaID, TokenID: uuid.NewString()}
}

func cfgTeste() *config.Config {
	return &config.Config{
		JWTSecret:          "segredo-de-teste",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
		ResetTokenMinutes:  30,
	}
}

func (e *ambiente) authService() (AuthService, *infra.ListaRevogacao) {
	lista := infra.NewListaRevogacao(nil)
	svc := NewAuthService(
		e.provedor,
		repository.NewUsuarioRepository(e.db),
		repository.NewSolicitacaoSenhaRepository(e.db),
		lista,
		cfgTeste(),
	)
	return svc, lista
}

func (e *ambiente) demandaService(n Notificador) *demandaService {
	return NewDemandaService(
		repository.NewDemandaRepository(e.db),
		repository.NewCategoriaRepository(e.db),
		repository.NewFormaPagamentoRepository(e.db),
		repository.NewUsuarioRepository(e.db),
		repository.NewLavanderiaRepository(e.db),
		n,
	).(*demandaService)
}

// notificadorStub records every scheduled delivery email.
type notificadorStub struct {
	mu       sync.Mutex
	chamadas []uuid.UUID
	err      error
}

func (n *notificadorStub) NotificarEntrega(_ context.Context, _ uuid.UUID, demandaID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chamadas = append(n.chamadas, demandaID)
	return n.err
}

func (n *notificadorStub) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.chamadas)
}

func contar(t *testing.T, db *gorm.DB, modelo interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(modelo)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
