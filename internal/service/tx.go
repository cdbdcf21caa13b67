package service

import (
	"context"

	"lavanderia/internal/sessao"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit-test mode with stubs).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// lavanderiaDaSessao returns the tenant a write acts on. Sessions without a
// tenant (super_admin) cannot write tenant-owned records.
func lavanderiaDaSessao(s sessao.Sessao) (uuid.UUID, error) {
	if s.LavanderiaID == nil || *s.LavanderiaID == uuid.Nil {
		return uuid.Nil, ErrProibido
	}
	return *s.LavanderiaID, nil
}
