package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names. Tenants may define extra roles; those act with operator capabilities.
const (
	PapelSuperAdmin = "super_admin"
	PapelAdmin      = "admin"
	PapelManager    = "manager"
	PapelOperator   = "operator"
)

// PapelEfetivo maps a stored role name to the capability set it grants.
func PapelEfetivo(papel string) string {
	switch papel {
	case PapelSuperAdmin, PapelAdmin, PapelManager, PapelOperator:
		return papel
	default:
		return PapelOperator
	}
}

// Usuario is the tenant-scoped profile of an authenticated identity.
// AuthUID points at the Identidade that owns the credentials.
type Usuario struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AuthUID      uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	Nome         string     `gorm:"not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	Papel        string     `gorm:"type:varchar(40);not null"`
	LavanderiaID *uuid.UUID `gorm:"type:uuid;index"` // nil only for super_admin
	Ativo        bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Identidade holds credentials. It is owned by the identity provider and
// never exposed through the API.
type Identidade struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	SenhaHash string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Identidade) TableName() string { return "identidades" }

func (i *Identidade) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

var telas = map[string][]string{
	PapelSuperAdmin: {"lavanderias", "usuarios", "perfil"},
	PapelAdmin:      {"dashboard", "usuarios", "lavanderia", "categorias", "formas-pagamento", "demandas", "perfil"},
	PapelManager:    {"dashboard", "nova-demanda", "demandas", "relatorios", "perfil"},
	PapelOperator:   {"dashboard", "nova-demanda", "demandas", "perfil"},
}

// TelasPorPapel lists the screens a role can navigate to.
func TelasPorPapel(papel string) []string {
	t := telas[PapelEfetivo(papel)]
	out := make([]string, len(t))
	copy(out, t)
	return out
}
