package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusDemanda is a position in the demand lifecycle.
type StatusDemanda string

const (
	StatusNovo            StatusDemanda = "novo"
	StatusEmAndamento     StatusDemanda = "em_andamento"
	StatusPendenteInsumo  StatusDemanda = "pendente_insumo"
	StatusEntregueParcial StatusDemanda = "entregue_parcial"
	StatusEntregueTotal   StatusDemanda = "entregue_total"
	// StatusCancelado sits outside the forward chain.
	StatusCancelado StatusDemanda = "cancelado"
)

// FluxoStatus is the ordered forward chain.
var FluxoStatus = []StatusDemanda{
	StatusNovo,
	StatusEmAndamento,
	StatusPendenteInsumo,
	StatusEntregueParcial,
	StatusEntregueTotal,
}

var rotulos = map[StatusDemanda]string{
	StatusNovo:            "Novo",
	StatusEmAndamento:     "Em andamento",
	StatusPendenteInsumo:  "Pendente de insumo",
	StatusEntregueParcial: "Entregue parcial",
	StatusEntregueTotal:   "Entregue total",
	StatusCancelado:       "Cancelado",
}

func (s StatusDemanda) Valido() bool {
	_, ok := rotulos[s]
	return ok
}

func (s StatusDemanda) Rotulo() string {
	if r, ok := rotulos[s]; ok {
		return r
	}
	return string(s)
}

// Proximo returns the immediate successor. ok is false at the end of the
// chain and for cancelled demands.
func (s StatusDemanda) Proximo() (StatusDemanda, bool) {
	for i, st := range FluxoStatus {
		if st == s && i+1 < len(FluxoStatus) {
			return FluxoStatus[i+1], true
		}
	}
	return "", false
}

// PodeIrPara is the single legality rule for status writes: stay put or move
// exactly one step forward.
func (s StatusDemanda) PodeIrPara(alvo StatusDemanda) bool {
	if alvo == s {
		return true
	}
	prox, ok := s.Proximo()
	return ok && prox == alvo
}

// Entregue reports whether the demand reached a delivered state.
func (s StatusDemanda) Entregue() bool {
	return s == StatusEntregueParcial || s == StatusEntregueTotal
}

// Cancelavel reports whether the demand may still be soft-cancelled.
func (s StatusDemanda) Cancelavel() bool {
	return !s.Entregue() && s != StatusCancelado
}

// Demanda is a tracked service request.
type Demanda struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LavanderiaID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_demanda_codigo"`
	CodigoUnico        string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_demanda_codigo"`
	ClienteNome        string          `gorm:"not null"`
	ClienteEmail       *string
	ClienteTelefone    string          `gorm:"not null"`
	CpfCnpj            *string
	Descricao          string          `gorm:"type:text;not null"`
	Observacoes        *string         `gorm:"type:text"`
	Preco              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desconto           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status             StatusDemanda   `gorm:"type:varchar(20);not null;index"`
	ResponsavelID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrevisaoEntrega    *time.Time
	MotivoCancelamento *string
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time

	Categorias []DemandaCategoria `gorm:"foreignKey:DemandaID"`
	Fotos      []DemandaFoto      `gorm:"foreignKey:DemandaID"`
	Pagamentos []DemandaPagamento `gorm:"foreignKey:DemandaID"`
}

func (Demanda) TableName() string { return "demandas" }

func (d *Demanda) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Total is price minus discount.
func (d Demanda) Total() decimal.Decimal {
	return d.Preco.Sub(d.Desconto)
}

// DemandaCategoria links a demand to a catalog entry. Nome is a snapshot taken
// at write time so renaming or deleting the category keeps history readable.
// Rows are never deleted, only moved to dtv.
type DemandaCategoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DemandaID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CategoriaID uuid.UUID `gorm:"type:uuid;not null"`
	Nome        string    `gorm:"not null"`
	Status      string    `gorm:"type:varchar(3);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DemandaCategoria) TableName() string { return "demanda_categorias" }

func (dc *DemandaCategoria) BeforeCreate(_ *gorm.DB) error {
	if dc.ID == uuid.Nil {
		dc.ID = uuid.New()
	}
	return nil
}

// DemandaFoto holds an inline image payload (data URL).
type DemandaFoto struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DemandaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Imagem    string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(3);not null"`
	CreatedAt time.Time
}

func (DemandaFoto) TableName() string { return "demanda_fotos" }

func (df *DemandaFoto) BeforeCreate(_ *gorm.DB) error {
	if df.ID == uuid.Nil {
		df.ID = uuid.New()
	}
	return nil
}

type DemandaPagamento struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	DemandaID        uuid.UUID `gorm:"type:uuid;not null;index"`
	FormaPagamentoID uuid.UUID `gorm:"type:uuid;not null"`
	Status           string    `gorm:"type:varchar(3);not null"`
	CreatedAt        time.Time
}

func (DemandaPagamento) TableName() string { return "demanda_pagamentos" }

func (dp *DemandaPagamento) BeforeCreate(_ *gorm.DB) error {
	if dp.ID == uuid.Nil {
		dp.ID = uuid.New()
	}
	return nil
}
