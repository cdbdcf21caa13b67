// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=0", name, uuid.NewString()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.Todos()...))
	return db
}

// SeedLavanderia inserts an active tenant with the default role set.
func SeedLavanderia(t *testing.T, db *gorm.DB, nome string) *model.Lavanderia {
	t.Helper()
	l := &model.Lavanderia{
		Nome:             nome,
		Endereco:         "Rua das Flores, 100",
		Telefone:         "1133334444",
		Email:            strings.ToLower(strings.ReplaceAll(nome, " ", "")) + "@exemplo.com",
		PrazoEntregaDias: 3,
		Status:           model.StatusAtivo,
		Papeis:           model.PapeisPadrao,
	}
	require.NoError(t, db.Create(l).Error)
	return l
}

// SeedUsuario inserts an active profile bound to lavanderiaID (nil for super_admin).
func SeedUsuario(t *testing.T, db *gorm.DB, nome, papel string, lavanderiaID *uuid.UUID) *model.Usuario {
	t.Helper()
	u := &model.Usuario{
		AuthUID:      uuid.New(),
		Nome:         nome,
		Email:        strings.ToLower(strings.ReplaceAll(nome, " ", ".")) + "@exemplo.com",
		Papel:        papel,
		LavanderiaID: lavanderiaID,
		Ativo:        true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedCategoria inserts a catalog entry priced at preco.
func SeedCategoria(t *testing.T, db *gorm.DB, lavanderiaID uuid.UUID, codigo, nome, preco string) *model.Categoria {
	t.Helper()
	c := &model.Categoria{
		LavanderiaID: lavanderiaID,
		Codigo:       codigo,
		Nome:         nome,
		Unidade:      "UN",
		Preco:        decimal.RequireFromString(preco),
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// SeedFormaPagamento inserts an active payment method.
func SeedFormaPagamento(t *testing.T, db *gorm.DB, lavanderiaID uuid.UUID, descricao, sigla string) *model.FormaPagamento {
	t.Helper()
	f := &model.FormaPagamento{
		LavanderiaID: lavanderiaID,
		Descricao:    descricao,
		Sigla:        sigla,
		Status:       model.SoftAtivo,
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Hoje returns midnight of the current day in local time.
func Hoje() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
