package handler

import (
	"net/http"

	"lavanderia/internal/dto"
	"lavanderia/internal/middleware"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
)

type RelatoriosHandler struct{ svc service.RelatorioService }

func NewRelatoriosHandler(svc service.RelatorioService) *RelatoriosHandler {
	return &RelatoriosHandler{svc: svc}
}

// Dashboard godoc
// @Summary Contagem por status e receita entregue
// @Tags relatorios
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Security BearerAuth
// @Router /v1/dashboard [get]
func (h *RelatoriosHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context(), middleware.GetSessao(c))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Relatorio godoc
// @Summary Relatório de demandas por período e responsável
// @Tags relatorios
// @Produce json
// @Param inicio query string false "YYYY-MM-DD"
// @Param fim query string false "YYYY-MM-DD (inclusivo)"
// @Param responsavel query string false "Nome do responsável"
// @Success 200 {object} dto.RelatorioResponse
// @Failure 422 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /v1/relatorios/demandas [get]
func (h *RelatoriosHandler) Relatorio(c *gin.Context) {
	var filtro dto.RelatorioFilter
	if !bindQuery(c, &filtro) {
		return
	}
	resp, err := h.svc.Relatorio(c.Request.Context(), middleware.GetSessao(c), filtro)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Responsaveis GET /v1/relatorios/responsaveis
func (h *RelatoriosHandler) Responsaveis(c *gin.Context) {
	resp, err := h.svc.Responsaveis(c.Request.Context(), middleware.GetSessao(c))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
