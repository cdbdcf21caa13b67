package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SolicitacaoSenha is a queued password-reset request. The drain job issues a
// token, stores only its SHA-256 and marks the row as sent.
type SolicitacaoSenha struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"not null;index"`
	Enviado    bool      `gorm:"not null;default:false;index"`
	Tentativas int       `gorm:"not null;default:0"`
	TokenHash  *string   `gorm:"type:varchar(64);index"`
	ExpiraEm   *time.Time
	UsadoEm    *time.Time
	UltimoErro *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (SolicitacaoSenha) TableName() string { return "solicitacoes_senha" }

func (s *SolicitacaoSenha) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Todos lists every persisted model, in dependency order.
func Todos() []interface{} {
	return []interface{}{
		&Lavanderia{},
		&Identidade{},
		&Usuario{},
		&Categoria{},
		&FormaPagamento{},
		&Demanda{},
		&DemandaCategoria{},
		&DemandaFoto{},
		&DemandaPagamento{},
		&SolicitacaoSenha{},
	}
}
