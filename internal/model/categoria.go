package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Unidades lists the accepted units of supply for a category.
var Unidades = []string{"UN", "CX", "PC", "KG", "MT", "CM", "DZ", "PAR", "H", "KG_ROUPA", "TON", "SERV", "CARGA", "LOTE"}

// Categoria is a billable service type of a tenant's catalog.
type Categoria struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LavanderiaID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_categoria_codigo"`
	Codigo       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_categoria_codigo"`
	Nome         string          `gorm:"not null"`
	Descricao    *string
	Unidade      string          `gorm:"type:varchar(10);not null"`
	Preco        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides GORM's default pluralization for Portuguese names.
func (Categoria) TableName() string { return "categorias" }

func (c *Categoria) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
