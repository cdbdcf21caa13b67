package handler

import (
	"fmt"
	"net/http"

	"lavanderia/internal/dto"
	"lavanderia/internal/middleware"
	"lavanderia/internal/model"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
)

type DemandasHandler struct {
	svc        service.DemandaService
	relatorios service.RelatorioService
}

func NewDemandasHandler(svc service.DemandaService, relatorios service.RelatorioService) *DemandasHandler {
	return &DemandasHandler{svc: svc, relatorios: relatorios}
}

// Criar godoc
// @Summary Registra nova demanda
// @Description Demanda, categorias, fotos e pagamentos são gravados numa única transação.
// @Tags demandas
// @Accept json
// @Produce json
// @Param body body dto.CriarDemandaRequest true "Demanda"
// @Success 201 {object} dto.DemandaResponse
// @Failure 403 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /v1/demandas [post]
func (h *DemandasHandler) Criar(c *gin.Context) {
	var req dto.CriarDemandaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.GetSessao(c), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista demandas
// @Description status=all (padrão) lista as demandas em aberto.
// @Tags demandas
// @Produce json
// @Param busca query string false "Texto em nome, descrição ou e-mail"
// @Param status query string false "Status ou all"
// @Param page query int false "Página"
// @Param limit query int false "Itens por página (máx. 200)"
// @Success 200 {object} dto.DemandaListResponse
// @Security BearerAuth
// @Router /v1/demandas [get]
func (h *DemandasHandler) Listar(c *gin.Context) {
	var filtro dto.DemandaFilter
	if !bindQuery(c, &filtro) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetSessao(c), filtro)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter GET /v1/demandas/:id
func (h *DemandasHandler) Obter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), middleware.GetSessao(c), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atualizar PUT /v1/demandas/:id
func (h *DemandasHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AtualizarDemandaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), middleware.GetSessao(c), id, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Avancar godoc
// @Summary Avança a demanda para o próximo status
// @Tags demandas
// @Accept json
// @Produce json
// @Param body body dto.AvancarStatusRequest true "Status visto e confirmação"
// @Success 200 {object} dto.DemandaResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/demandas/{id}/avancar [post]
func (h *DemandasHandler) Avancar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AvancarStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Avancar(c.Request.Context(), middleware.GetSessao(c), id, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transicionar PATCH /v1/demandas/:id/status
func (h *DemandasHandler) Transicionar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.TransicionarStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transicionar(c.Request.Context(), middleware.GetSessao(c), id, model.StatusDemanda(req.Status))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar DELETE /v1/demandas/:id
func (h *DemandasHandler) Cancelar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CancelarDemandaRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), middleware.GetSessao(c), id, req); err != nil {
		responderErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Historico GET /v1/demandas/:id/historico-categorias
func (h *DemandasHandler) Historico(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.HistoricoCategorias(c.Request.Context(), middleware.GetSessao(c), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Nota godoc
// @Summary Nota da demanda em PDF
// @Tags demandas
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/demandas/{id}/nota [get]
func (h *DemandasHandler) Nota(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	nota, err := h.relatorios.Nota(c.Request.Context(), middleware.GetSessao(c), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, nota.NomeArquivo))
	c.Data(http.StatusOK, "application/pdf", nota.PDF)
}
