package repository

import (
	"errors"

	"lavanderia/internal/sessao"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNaoEncontrado is returned when a record does not exist or is outside the
// caller's tenant. Both cases look the same to the caller.
var ErrNaoEncontrado = errors.New("registro não encontrado")

// Escopo restricts every tenant-scoped query. Repositories take one instead
// of a raw tenant id so no call site can forget the filter.
type Escopo struct {
	LavanderiaID uuid.UUID
	Global       bool
}

// EscopoDe derives the scope from a session. A non-global session without a
// tenant gets uuid.Nil, which matches nothing.
func EscopoDe(s sessao.Sessao) Escopo {
	if s.Global() {
		return Escopo{Global: true}
	}
	esc := Escopo{}
	if s.LavanderiaID != nil {
		esc.LavanderiaID = *s.LavanderiaID
	}
	return esc
}

// EscopoLavanderia scopes to a single tenant regardless of role.
func EscopoLavanderia(id uuid.UUID) Escopo { return Escopo{LavanderiaID: id} }

// Aplicar adds the tenant filter on coluna.
func (e Escopo) Aplicar(q *gorm.DB, coluna string) *gorm.DB {
	if e.Global {
		return q
	}
	return q.Where(coluna+" = ?", e.LavanderiaID)
}

// Permite reports whether a row owned by lavanderiaID is visible.
func (e Escopo) Permite(lavanderiaID uuid.UUID) bool {
	return e.Global || (e.LavanderiaID != uuid.Nil && e.LavanderiaID == lavanderiaID)
}

func naoEncontrado(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNaoEncontrado
	}
	return err
}
