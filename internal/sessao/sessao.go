// Package sessao carries the acting identity through a request. A Sessao is
// built once by the auth middleware and passed explicitly to every service call.
package sessao

import (
	"time"

	"lavanderia/internal/model"

	"github.com/google/uuid"
)

// Sessao is the authenticated actor: who they are, what they may do and which
// tenant they act for.
type Sessao struct {
	UsuarioID    uuid.UUID
	Papel        string
	LavanderiaID *uuid.UUID
	TokenID      string
	ExpiraEm     time.Time
}

// Global reports whether the session may act across tenants.
func (s Sessao) Global() bool { return s.Papel == model.PapelSuperAdmin }

// Capacidade returns the role whose capabilities this session carries.
func (s Sessao) Capacidade() string { return model.PapelEfetivo(s.Papel) }

// Pertence reports whether the session may touch data of the given tenant.
func (s Sessao) Pertence(lavanderiaID uuid.UUID) bool {
	if s.Global() {
		return true
	}
	return s.LavanderiaID != nil && *s.LavanderiaID == lavanderiaID
}
