package infra

import (
	"bytes"
	"testing"
	"time"

	"lavanderia/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGerarNotaPDF(t *testing.T) {
	email := "cliente@exemplo.com"
	previsao := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	nota := NotaDemanda{
		Lavanderia: model.Lavanderia{Nome: "Lavanderia São João", Endereco: "Rua A, 1", Telefone: "11 9999-0000", Email: "contato@lav.com"},
		Demanda: model.Demanda{
			CodigoUnico:     "20260305-1A2B3C4D",
			ClienteNome:     "José",
			ClienteEmail:    &email,
			ClienteTelefone: "11 98888-7777",
			Descricao:       "Lavagem de edredom",
			Preco:           decimal.RequireFromString("150.00"),
			Desconto:        decimal.RequireFromString("10.00"),
			Status:          model.StatusEntregueTotal,
			PrevisaoEntrega: &previsao,
			CreatedAt:       time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC),
			Categorias: []model.DemandaCategoria{
				{Nome: "Edredom", Status: model.SoftAtivo},
				{Nome: "Antiga", Status: model.SoftDesativado},
			},
		},
		Responsavel:     "Maria",
		FormasPagamento: []string{"PIX"},
	}

	out, err := GerarNotaPDF(nota)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "nota_20260305-1A2B3C4D.pdf", nota.NomeArquivo())
}
