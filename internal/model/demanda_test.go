package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProximo_SegueOrdemFixa(t *testing.T) {
	atual := StatusNovo
	var visitados []StatusDemanda
	for {
		visitados = append(visitados, atual)
		prox, ok := atual.Proximo()
		if !ok {
			break
		}
		atual = prox
	}
	assert.Equal(t, FluxoStatus, visitados)
	assert.Equal(t, StatusEntregueTotal, atual)
}

func TestProximo_CanceladoNaoAvanca(t *testing.T) {
	_, ok := StatusCancelado.Proximo()
	assert.False(t, ok)
}

func TestPodeIrPara(t *testing.T) {
	assert.True(t, StatusNovo.PodeIrPara(StatusNovo))
	assert.True(t, StatusNovo.PodeIrPara(StatusEmAndamento))
	assert.False(t, StatusNovo.PodeIrPara(StatusPendenteInsumo), "skipping a step")
	assert.False(t, StatusEmAndamento.PodeIrPara(StatusNovo), "moving backwards")
	assert.True(t, StatusEntregueParcial.PodeIrPara(StatusEntregueTotal))
	assert.False(t, StatusEntregueTotal.PodeIrPara(StatusCancelado))
}

func TestCancelavel(t *testing.T) {
	assert.True(t, StatusNovo.Cancelavel())
	assert.True(t, StatusPendenteInsumo.Cancelavel())
	assert.False(t, StatusEntregueParcial.Cancelavel())
	assert.False(t, StatusEntregueTotal.Cancelavel())
	assert.False(t, StatusCancelado.Cancelavel())
}

func TestValidoERotulo(t *testing.T) {
	assert.True(t, StatusEmAndamento.Valido())
	assert.False(t, StatusDemanda("arquivado").Valido())
	assert.Equal(t, "Entregue total", StatusEntregueTotal.Rotulo())
	assert.Equal(t, "arquivado", StatusDemanda("arquivado").Rotulo())
}

func TestDemandaTotal(t *testing.T) {
	d := Demanda{Preco: decimal.RequireFromString("150.00"), Desconto: decimal.RequireFromString("20.50")}
	assert.True(t, d.Total().Equal(decimal.RequireFromString("129.50")))
}

func TestLavanderia_Papeis(t *testing.T) {
	l := Lavanderia{}
	assert.Equal(t, []string{"admin", "manager", "operator"}, l.ListaPapeis())

	l.Papeis = "admin, manager ,operator,passadeira"
	assert.True(t, l.AceitaPapel("passadeira"))
	assert.False(t, l.AceitaPapel(PapelSuperAdmin))
	assert.Equal(t, PapelOperator, PapelEfetivo("passadeira"))
	assert.Equal(t, PapelManager, PapelEfetivo(PapelManager))
}

func TestTelasPorPapel(t *testing.T) {
	assert.Contains(t, TelasPorPapel(PapelManager), "relatorios")
	assert.NotContains(t, TelasPorPapel(PapelOperator), "relatorios")
	assert.Equal(t, TelasPorPapel(PapelOperator), TelasPorPapel("passadeira"))

	telasAdmin := TelasPorPapel(PapelAdmin)
	telasAdmin[0] = "alterado"
	assert.Equal(t, "dashboard", TelasPorPapel(PapelAdmin)[0])
}
