package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusAtivo   = "atv"
	StatusInativo = "inativo"
)

// PapeisPadrao is the role set every new tenant starts with.
const PapeisPadrao = "admin,manager,operator"

// Lavanderia is the tenant. Every operational entity belongs to exactly one.
type Lavanderia struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nome                 string    `gorm:"not null"`
	Endereco             string    `gorm:"not null"`
	Telefone             string    `gorm:"not null"`
	Email                string    `gorm:"not null"`
	HorarioFuncionamento *string
	// PrazoEntregaDias is the default delivery lead time applied to new demands.
	PrazoEntregaDias int     `gorm:"not null;default:3"`
	Logo             *string `gorm:"type:text"` // PNG data URL, at most 200x200
	Status           string  `gorm:"type:varchar(10);not null;default:atv"`
	Papeis           string  `gorm:"not null;default:admin,manager,operator"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Lavanderia) TableName() string { return "lavanderias" }

func (l *Lavanderia) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ListaPapeis returns the tenant-local role names, falling back to the defaults.
func (l Lavanderia) ListaPapeis() []string {
	raw := l.Papeis
	if strings.TrimSpace(raw) == "" {
		raw = PapeisPadrao
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AceitaPapel reports whether papel is part of the tenant's role set.
func (l Lavanderia) AceitaPapel(papel string) bool {
	for _, p := range l.ListaPapeis() {
		if p == papel {
			return true
		}
	}
	return false
}
