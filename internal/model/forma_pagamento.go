package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SoftAtivo      = "atv"
	SoftDesativado = "dtv"
)

// FormaPagamento is a payment method offered by a tenant.
type FormaPagamento struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	LavanderiaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Descricao    string    `gorm:"not null"`
	Sigla        string    `gorm:"type:varchar(10);not null"`
	Status       string    `gorm:"type:varchar(3);not null;default:atv"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (FormaPagamento) TableName() string { return "formas_pagamento" }

func (f *FormaPagamento) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
